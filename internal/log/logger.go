package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Settings are the logging knobs read from configuration.
type Settings struct {
	Level string
	File  string
}

// New builds the command logger: records at or above the configured level go
// to the log file, and errors are mirrored to console in the friendly format.
// The returned closer releases the log file.
func New(settings Settings, console io.Writer) (*slog.Logger, io.Closer, error) {
	level := ConfigLevelStringToSlogLevel(settings.Level)
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(LevelName(lvl))
				}
			}
			return a
		},
	}

	var file slog.Handler
	var closer io.Closer = nopCloser{}
	if settings.File != "" {
		path := os.ExpandEnv(settings.File)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		file = slog.NewTextHandler(f, opts)
		closer = f
	}

	var friendly slog.Handler
	if console != nil {
		friendly = NewFriendlyErrorHandler(console)
	}
	return slog.New(NewDualHandler(file, friendly)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
