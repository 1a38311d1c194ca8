package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// NewFriendlyErrorHandler renders error records as a short, human-readable
// block for the console:
//
//	Error: unable to load dataset
//	  suggestion: run 'dashctl list datasets'
//	  path: users.csv
func NewFriendlyErrorHandler(w io.Writer) slog.Handler {
	return &friendlyHandler{w: w}
}

type friendlyHandler struct {
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

type attrEntry struct {
	key   string
	value string
}

func (h *friendlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *friendlyHandler) Handle(_ context.Context, record slog.Record) error {
	entries := h.collect(record)

	summary := strings.TrimSpace(record.Message)
	var suggestion string
	others := make([]attrEntry, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.key == "error" && summary == "":
			summary = e.value
		case e.key == "suggestion":
			suggestion = e.value
		case e.key == "error" || e.value == "":
		default:
			others = append(others, e)
		}
	}
	if summary == "" {
		summary = "an unknown error occurred"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", summary)
	if suggestion != "" {
		fmt.Fprintf(&sb, "  suggestion: %s\n", suggestion)
	}
	sort.SliceStable(others, func(i, j int) bool { return others[i].key < others[j].key })
	for _, e := range others {
		writeEntry(&sb, e)
	}

	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *friendlyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *friendlyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *friendlyHandler) collect(record slog.Record) []attrEntry {
	entries := make([]attrEntry, 0, len(h.attrs)+record.NumAttrs())
	add := func(attr slog.Attr) bool {
		key := attr.Key
		if len(h.groups) > 0 {
			key = strings.Join(append(append([]string{}, h.groups...), key), ".")
		}
		entries = append(entries, attrEntry{key: key, value: valueString(attr.Value.Resolve())})
		return true
	}
	for _, attr := range h.attrs {
		add(attr)
	}
	record.Attrs(add)
	return entries
}

func valueString(val slog.Value) string {
	switch val.Kind() {
	case slog.KindGroup:
		parts := make([]string, 0, len(val.Group()))
		for _, attr := range val.Group() {
			parts = append(parts, attr.Key+"="+valueString(attr.Value.Resolve()))
		}
		return strings.Join(parts, ", ")
	case slog.KindAny:
		if err, ok := val.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(val.Any())
	default:
		return val.String()
	}
}

func writeEntry(sb *strings.Builder, e attrEntry) {
	lines := strings.Split(strings.TrimSpace(e.value), "\n")
	fmt.Fprintf(sb, "  %s: %s\n", e.key, strings.TrimSpace(lines[0]))
	for _, line := range lines[1:] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			fmt.Fprintf(sb, "    %s\n", trimmed)
		}
	}
}
