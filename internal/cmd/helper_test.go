package cmd

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/kong/dashctl/internal/build"
	"github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/iostreams"
	"github.com/kong/dashctl/internal/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFlagEnum(t *testing.T) {
	e := NewEnum([]string{"json", "yaml", "text"}, "text")
	require.Equal(t, "text", e.String())
	require.Equal(t, "string", e.Type())

	require.NoError(t, e.Set(" JSON "))
	require.Equal(t, "json", e.String())

	err := e.Set("xml")
	require.EqualError(t, err, `invalid value "xml", must be one of [json yaml text]`)
	require.Equal(t, "json", e.String())
}

func newCommand(ctx context.Context) *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.SetContext(ctx)
	return c
}

func TestHelperReadsContext(t *testing.T) {
	cfg := config.BuildProfiledConfig("default", "", viper.New())
	cfg.SetString(common.OutputConfigPath, "yaml")
	s, _, _, _ := iostreams.NewTestIOStreams()
	logger := slog.New(slog.DiscardHandler)
	info := &build.Info{Version: "1.0.0"}

	ctx := context.WithValue(context.Background(), config.ConfigKey, config.Hook(cfg))
	ctx = context.WithValue(ctx, iostreams.StreamsKey, &s)
	ctx = context.WithValue(ctx, log.LoggerKey, logger)
	ctx = context.WithValue(ctx, build.InfoKey, info)
	helper := BuildHelper(newCommand(ctx), []string{"users"})

	require.Equal(t, []string{"users"}, helper.GetArgs())
	require.Same(t, &s, helper.GetStreams())

	got, err := helper.GetConfig()
	require.NoError(t, err)
	require.Equal(t, "default", got.GetProfile())

	format, err := helper.GetOutputFormat()
	require.NoError(t, err)
	require.Equal(t, common.YAML, format)

	l, err := helper.GetLogger()
	require.NoError(t, err)
	require.Same(t, logger, l)

	bi, err := helper.GetBuildInfo()
	require.NoError(t, err)
	require.Equal(t, "1.0.0", bi.Version)
}

func TestHelperMissingContext(t *testing.T) {
	helper := BuildHelper(newCommand(context.Background()), nil)

	_, err := helper.GetConfig()
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)

	_, err = helper.GetLogger()
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, err = helper.GetBuildInfo()
	require.ErrorAs(t, err, &cfgErr)

	require.Nil(t, helper.GetStreams())
}

func TestIsInteractive(t *testing.T) {
	s, _, _, _ := iostreams.NewTestIOStreams()
	ctx := context.WithValue(context.Background(), iostreams.StreamsKey, &s)

	c := newCommand(ctx)
	helper := BuildHelper(c, nil)
	interactive, err := helper.IsInteractive()
	require.NoError(t, err)
	require.False(t, interactive, "commands without the flag are never interactive")

	c.Flags().BoolP(common.InteractiveFlagName, common.InteractiveFlagShort, true, "")
	interactive, err = helper.IsInteractive()
	require.NoError(t, err)
	require.False(t, interactive, "an unchanged flag follows the terminal")

	require.NoError(t, c.Flags().Set(common.InteractiveFlagName, "true"))
	interactive, err = helper.IsInteractive()
	require.NoError(t, err)
	require.True(t, interactive)
}

func TestPrepareExecutionError(t *testing.T) {
	c := newCommand(context.Background())
	cause := errors.New("boom")

	err := PrepareExecutionErrorWithHelper(BuildHelper(c, nil), "unable to render", cause, "dataset", "users")
	require.True(t, c.SilenceUsage)
	require.True(t, c.SilenceErrors)
	require.Equal(t, "unable to render", err.Msg)
	require.ErrorIs(t, err, cause)
	require.Equal(t, []any{"dataset", "users"}, err.Attrs)

	msgErr := PrepareExecutionErrorMsg(nil, "")
	require.EqualError(t, msgErr, "an unknown error occurred")
	require.Nil(t, PrepareExecutionErrorFromErr(nil, nil))
}

func TestTryConvertErrorToAttrs(t *testing.T) {
	attrs := TryConvertErrorToAttrs(errors.New(`{"status": 404}`))
	require.Equal(t, []any{"status", float64(404)}, attrs)
	require.Nil(t, TryConvertErrorToAttrs(errors.New("plain")))
}
