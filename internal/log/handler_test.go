package log

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDualHandlerMirrorsErrorsToConsole(t *testing.T) {
	t.Cleanup(EnableErrorMirroring)
	EnableErrorMirroring()

	var fileBuf, consoleBuf bytes.Buffer
	file := slog.NewTextHandler(&fileBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(NewDualHandler(file, NewFriendlyErrorHandler(&consoleBuf)))

	logger.Error("boom", slog.String("dataset", "users"))
	logger.Info("still going")

	require.Contains(t, fileBuf.String(), "boom")
	require.Contains(t, fileBuf.String(), "still going")
	require.Contains(t, consoleBuf.String(), "Error: boom")
	require.Contains(t, consoleBuf.String(), "dataset: users")
	require.NotContains(t, consoleBuf.String(), "still going")
}

func TestDualHandlerCanDisableMirroring(t *testing.T) {
	t.Cleanup(EnableErrorMirroring)
	DisableErrorMirroring()

	var fileBuf, consoleBuf bytes.Buffer
	file := slog.NewTextHandler(&fileBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(NewDualHandler(file, NewFriendlyErrorHandler(&consoleBuf)))

	logger.Error("boom")

	require.Contains(t, fileBuf.String(), "boom")
	require.Empty(t, consoleBuf.String())
}

func TestFriendlyHandlerUsesErrorAttrWhenMessageEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewFriendlyErrorHandler(&buf))

	logger.Error("", "error", errors.New("file not found"), "suggestion", "check the path")

	require.Equal(t, "Error: file not found\n  suggestion: check the path\n", buf.String())
}

func TestConfigLevelStringToSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace":   LevelTrace,
		"DEBUG":   slog.LevelDebug,
		" info ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelError,
	}
	for in, want := range cases {
		require.Equal(t, want, ConfigLevelStringToSlogLevel(in), in)
	}
	require.Equal(t, "TRACE", LevelName(LevelTrace))
	require.Equal(t, "INFO", LevelName(slog.LevelInfo))
}

func TestNewWritesTraceRecordsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dashctl.log")
	logger, closer, err := New(Settings{Level: "trace", File: path}, nil)
	require.NoError(t, err)

	logger.Log(t.Context(), LevelTrace, "sort changed", "key", "price")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "level=TRACE")
	require.Contains(t, string(content), "key=price")
}
