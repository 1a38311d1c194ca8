package root

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/kong/dashctl/internal/cmd"
	"github.com/kong/dashctl/internal/cmd/common"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"version", "list", "view", "export", "license"} {
		require.True(t, names[want], "missing %s command", want)
	}

	for flagName := range flagBindings {
		require.NotNil(t, rootCmd.PersistentFlags().Lookup(flagName), flagName)
	}
	require.NotNil(t, rootCmd.PersistentFlags().Lookup(common.ConfigFilePathFlagName))
	require.NotNil(t, rootCmd.PersistentFlags().ShorthandLookup(common.ProfileFlagShort))
}

func TestOutputFlagRejectsUnknownFormat(t *testing.T) {
	f := newRootCmd().PersistentFlags().Lookup(common.OutputFlagName)
	require.NoError(t, f.Value.Set("yaml"))
	require.Error(t, f.Value.Set("xml"))
	require.Equal(t, "yaml", f.Value.String())
}

func TestColorThemeFlagValidatesThemes(t *testing.T) {
	f := newRootCmd().PersistentFlags().Lookup(common.ColorThemeFlagName)
	require.NoError(t, f.Value.Set("dash-light"))
	require.Error(t, f.Value.Set("no-such-theme"))
}

func executionError() error {
	return fmt.Errorf("wrapped: %w", &cmd.ExecutionError{
		Msg:   "unable to load dataset",
		Err:   errors.New("open users.csv: no such file"),
		Attrs: []any{"dataset", "users.csv", "suggestion", "run 'dashctl list datasets'"},
	})
}

func TestReportErrorText(t *testing.T) {
	var out bytes.Buffer
	reportError(executionError(), "text", &out, nil)

	got := out.String()
	require.Contains(t, got, "Error: unable to load dataset\n")
	require.Contains(t, got, "suggestion: run 'dashctl list datasets'")
	require.Contains(t, got, "reason: open users.csv: no such file")
	require.Contains(t, got, "dataset: users.csv")
}

func TestReportErrorJSON(t *testing.T) {
	var out bytes.Buffer
	reportError(executionError(), "json", &out, nil)

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, map[string]string{
		"error":      "unable to load dataset",
		"details":    "open users.csv: no such file",
		"dataset":    "users.csv",
		"suggestion": "run 'dashctl list datasets'",
	}, got)
}

func TestReportErrorIgnoresOtherErrors(t *testing.T) {
	var out bytes.Buffer
	reportError(&cmd.ConfigurationError{Err: errors.New("bad flag")}, "text", &out, nil)
	require.Empty(t, out.String())
}

func TestReportErrorExpandsJSONCause(t *testing.T) {
	var out bytes.Buffer
	reportError(&cmd.ExecutionError{
		Msg:   "unable to read dataset",
		Err:   errors.New(`{"line": 4, "column": "amount"}`),
		Attrs: []any{"dataset", "payments.json"},
	}, "json", &out, nil)

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, "payments.json", got["dataset"])
	require.Equal(t, "4", got["line"])
	require.Equal(t, "amount", got["column"])
}
