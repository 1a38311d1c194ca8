package log

import (
	"log/slog"
	"strings"
)

type Key struct{}

// LoggerKey stores the command logger on a context.
var LoggerKey = Key{}

// LevelTrace is a custom trace level for slog, one step below debug (-8).
// Table state transitions are logged here.
const LevelTrace = slog.LevelDebug - 4

// ConfigLevelStringToSlogLevel maps a configured level name to a slog level.
// Unknown names resolve to error so a typo never floods the log file.
func ConfigLevelStringToSlogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

// LevelName is the inverse of ConfigLevelStringToSlogLevel and renders trace
// records as TRACE instead of slog's DEBUG-4.
func LevelName(level slog.Level) string {
	if level <= LevelTrace {
		return "TRACE"
	}
	return level.String()
}
