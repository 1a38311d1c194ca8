package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// consoleMirror controls whether error records are copied to the console
// handler. The interactive table turns it off while it owns the terminal.
var consoleMirror atomic.Bool

func init() {
	consoleMirror.Store(true)
}

// EnableErrorMirroring copies error records to the console handler again.
func EnableErrorMirroring() {
	consoleMirror.Store(true)
}

// DisableErrorMirroring stops copying error records to the console handler.
func DisableErrorMirroring() {
	consoleMirror.Store(false)
}

// NewDualHandler sends every enabled record to file and, while mirroring is
// on, error records to console as well. Either handler may be nil.
func NewDualHandler(file slog.Handler, console slog.Handler) slog.Handler {
	return &dualHandler{file: file, console: console}
}

type dualHandler struct {
	file    slog.Handler
	console slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.file != nil && h.file.Enabled(ctx, level) {
		return true
	}
	return h.mirrors(level) && h.console.Enabled(ctx, level)
}

func (h *dualHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.file != nil && h.file.Enabled(ctx, record.Level) {
		if err := h.file.Handle(ctx, record); err != nil {
			return err
		}
	}
	if h.mirrors(record.Level) && h.console.Enabled(ctx, record.Level) {
		return h.console.Handle(ctx, record.Clone())
	}
	return nil
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(inner slog.Handler) slog.Handler { return inner.WithAttrs(attrs) })
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(inner slog.Handler) slog.Handler { return inner.WithGroup(name) })
}

func (h *dualHandler) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := &dualHandler{}
	if h.file != nil {
		next.file = fn(h.file)
	}
	if h.console != nil {
		next.console = fn(h.console)
	}
	return next
}

func (h *dualHandler) mirrors(level slog.Level) bool {
	return h.console != nil && level >= slog.LevelError && consoleMirror.Load()
}
