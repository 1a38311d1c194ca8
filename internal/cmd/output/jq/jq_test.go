package jq

import (
	"bytes"
	"testing"

	cmdcommon "github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

type stubConfig struct {
	values     map[string]string
	boolValues map[string]bool
}

func (s stubConfig) Save() error                           { return nil }
func (s stubConfig) GetString(key string) string           { return s.values[key] }
func (s stubConfig) GetBool(key string) bool               { return s.boolValues[key] }
func (s stubConfig) GetInt(string) int                     { return 0 }
func (s stubConfig) GetIntOrElse(_ string, orElse int) int { return orElse }
func (s stubConfig) GetStringSlice(string) []string        { return nil }
func (s stubConfig) SetString(string, string)              {}
func (s stubConfig) Set(string, any)                       {}
func (s stubConfig) Get(string) any                        { return nil }
func (s stubConfig) BindFlag(string, *pflag.Flag) error    { return nil }
func (s stubConfig) GetProfile() string                    { return "default" }
func (s stubConfig) GetPath() string                       { return "" }

func newCommand() *cobra.Command {
	command := &cobra.Command{Use: "export"}
	AddFlags(command.Flags())
	return command
}

func TestResolveSettingsDefaults(t *testing.T) {
	settings, err := ResolveSettings(newCommand(), nil)
	require.NoError(t, err)
	require.False(t, settings.Enabled())
	require.Equal(t, cmdcommon.ColorModeAuto, settings.ColorMode)
	require.Equal(t, DefaultTheme, settings.Theme)
}

func TestResolveSettingsEmptyFilterIsIdentity(t *testing.T) {
	command := newCommand()
	require.NoError(t, command.Flags().Set(FlagName, " "))

	settings, err := ResolveSettings(command, nil)
	require.NoError(t, err)
	require.Equal(t, ".", settings.Filter)
}

func TestResolveSettingsRawOutputShortFlag(t *testing.T) {
	command := newCommand()
	require.NoError(t, command.Flags().Parse([]string{"-r", "--jq", ".[].name"}))

	settings, err := ResolveSettings(command, nil)
	require.NoError(t, err)
	require.True(t, settings.RawOutput)
	require.Equal(t, ".[].name", settings.Filter)
}

func TestResolveSettingsReadsConfig(t *testing.T) {
	cfg := stubConfig{
		values: map[string]string{
			ColorEnabledConfigPath: "ALWAYS",
			ColorThemeConfigPath:   "github",
		},
		boolValues: map[string]bool{RawOutputConfigPath: true},
	}

	settings, err := ResolveSettings(newCommand(), cfg)
	require.NoError(t, err)
	require.Equal(t, cmdcommon.ColorModeAlways, settings.ColorMode)
	require.Equal(t, "github", settings.Theme)
	require.True(t, settings.RawOutput)

	cfg.values[ColorEnabledConfigPath] = "rainbow"
	_, err = ResolveSettings(newCommand(), cfg)
	require.Error(t, err)
}

func TestResolveSettingsWithoutFlag(t *testing.T) {
	settings, err := ResolveSettings(&cobra.Command{Use: "view"}, stubConfig{})
	require.NoError(t, err)
	require.False(t, settings.Enabled())
}

func TestValidateOutputFormat(t *testing.T) {
	require.ErrorContains(t, ValidateOutputFormat(cmdcommon.TEXT, Settings{Filter: "."}), "only supported")
	require.ErrorContains(t, ValidateOutputFormat(cmdcommon.JSON, Settings{RawOutput: true}), "requires")
	require.ErrorContains(t,
		ValidateOutputFormat(cmdcommon.YAML, Settings{Filter: ".", RawOutput: true}), "--output json")
	require.NoError(t, ValidateOutputFormat(cmdcommon.YAML, Settings{Filter: "."}))
	require.NoError(t, ValidateOutputFormat(cmdcommon.TEXT, Settings{}))
}

func TestApplyOnRecords(t *testing.T) {
	records := []datatable.Record{
		{"name": "Smart Watch", "price": 299.99},
		{"name": "Phone Case", "price": 19.99},
	}
	settings := Settings{Filter: "map(select(.price > 100) | .name)", ColorMode: cmdcommon.ColorModeNever}

	result, handled, err := Apply(records, cmdcommon.YAML, settings, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, handled)
	require.Equal(t, []any{"Smart Watch"}, result)
}

func TestApplyStreamCollapses(t *testing.T) {
	value := map[string]any{"a": 1, "b": 2}

	result, _, err := Apply(value, cmdcommon.JSON, Settings{Filter: ".a, .b", ColorMode: cmdcommon.ColorModeNever}, nil)
	require.NoError(t, err)
	require.Equal(t, []any{float64(1), float64(2)}, result)

	result, _, err = Apply(value, cmdcommon.JSON, Settings{Filter: "empty", ColorMode: cmdcommon.ColorModeNever}, nil)
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestApplyColorizedJSONWritesDirectly(t *testing.T) {
	buf := &bytes.Buffer{}
	result, handled, err := Apply(map[string]any{"foo": map[string]any{"bar": 1}}, cmdcommon.JSON,
		Settings{Filter: ".", ColorMode: cmdcommon.ColorModeAlways, Theme: DefaultTheme}, buf)
	require.NoError(t, err)
	require.True(t, handled)
	require.Nil(t, result)
	require.Contains(t, buf.String(), "\x1b[")
}

func TestApplyRawOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	records := []datatable.Record{{"name": "a", "active": true}, {"name": "b", "active": false}}
	_, handled, err := Apply(records, cmdcommon.JSON, Settings{Filter: ".[] | .name, .active", RawOutput: true}, buf)
	require.NoError(t, err)
	require.True(t, handled)
	require.Equal(t, "a\ntrue\nb\nfalse\n", buf.String())
}

func TestRunRejectsInvalidExpression(t *testing.T) {
	_, err := Run(map[string]any{"foo": 1}, ".foo[")
	require.ErrorContains(t, err, "invalid jq expression")

	_, err = Run(map[string]any{"foo": 1}, ".foo | error(\"nope\")")
	require.ErrorContains(t, err, "jq filter failed")
}

func TestShouldUseColor(t *testing.T) {
	require.True(t, ShouldUseColor(cmdcommon.ColorModeAlways, &bytes.Buffer{}))
	require.False(t, ShouldUseColor(cmdcommon.ColorModeNever, &bytes.Buffer{}))
	require.False(t, ShouldUseColor(cmdcommon.ColorModeAuto, &bytes.Buffer{}))
}
