package render

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/muesli/termenv"
)

var (
	renderers   = map[int]*glamour.TermRenderer{}
	renderersMu sync.RWMutex
)

// Options controls markdown rendering behaviour.
type Options struct {
	NoColor bool
	// Width wraps output at this many columns; 0 keeps glamour's default.
	Width int
}

// Markdown renders the provided Markdown string tailored for terminal output.
// Rendering failures return the source unchanged.
func Markdown(markdown string, opts Options) string {
	r, err := getRenderer(opts)
	if err != nil {
		return markdown
	}

	str, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return str
}

func getRenderer(opts Options) (*glamour.TermRenderer, error) {
	if opts.NoColor {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle("noColor"),
			glamour.WithColorProfile(termenv.Ascii),
			glamour.WithWordWrap(opts.Width),
		)
	}

	renderersMu.RLock()
	if r, ok := renderers[opts.Width]; ok {
		renderersMu.RUnlock()
		return r, nil
	}
	renderersMu.RUnlock()

	renderersMu.Lock()
	defer renderersMu.Unlock()
	if r, ok := renderers[opts.Width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithColorProfile(termenv.TrueColor),
		glamour.WithWordWrap(opts.Width),
	)
	if err != nil {
		return nil, err
	}
	renderers[opts.Width] = r
	return r, nil
}

// RecordMarkdown describes rec as a Markdown document: a field table in
// column order using each column's rendering, followed by the raw values of
// fields no column shows.
func RecordMarkdown(title string, columns []datatable.Column, rec datatable.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	b.WriteString("| Field | Value |\n|---|---|\n")
	shown := make(map[string]bool, len(columns))
	for _, col := range columns {
		shown[col.Key] = true
		fmt.Fprintf(&b, "| %s | %s |\n", escape(col.Title()), escape(col.Cell(rec)))
	}

	var rest []string
	for key := range rec {
		if !shown[key] {
			rest = append(rest, key)
		}
	}
	if len(rest) > 0 {
		slices.Sort(rest)
		b.WriteString("\n## Other fields\n\n")
		for _, key := range rest {
			fmt.Fprintf(&b, "- **%s**: %s\n", escape(key), escape(datatable.Text(rec[key])))
		}
	}
	return b.String()
}

// Record renders rec for the terminal.
func Record(title string, columns []datatable.Column, rec datatable.Record, opts Options) string {
	return Markdown(RecordMarkdown(title, columns, rec), opts)
}

var escaper = strings.NewReplacer("|", `\|`, "\n", " ", "*", `\*`, "_", `\_`)

func escape(s string) string {
	return escaper.Replace(s)
}
