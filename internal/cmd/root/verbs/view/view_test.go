package view

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	cmdpkg "github.com/kong/dashctl/internal/cmd"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/iostreams"
	"github.com/kong/dashctl/internal/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newTestRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cobra.EnableTraverseRunHooks = true

	viewCmd, err := NewViewCmd()
	require.NoError(t, err)

	cfg := config.BuildProfiledConfig("default", "", viper.New())
	s, _, out, _ := iostreams.NewTestIOStreams()
	streams := &s
	logger := slog.New(slog.DiscardHandler)

	root := &cobra.Command{
		Use:           "dashctl",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			ctx := context.WithValue(c.Context(), config.ConfigKey, config.Hook(cfg))
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, log.LoggerKey, logger)
			c.SetContext(ctx)
		},
	}
	root.AddCommand(viewCmd)
	root.SetContext(context.Background())
	return root, out
}

func runView(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, out := newTestRoot(t)
	root.SetArgs(append([]string{"view"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestViewPrintsRequestedPage(t *testing.T) {
	out, err := runView(t, "payments", "--interactive=false",
		"--columns", "reference,status", "--sort", "amount:desc", "--page-size", "2", "--page", "2")
	require.NoError(t, err)

	require.Contains(t, out, "Payments")
	require.Contains(t, out, "Reference")
	require.Contains(t, out, "sub_9876543210")
	require.Contains(t, out, "bt_1122334455")
	require.NotContains(t, out, "pp_9988776655")
	require.Contains(t, out, "Showing 3 to 4 of 5 results")
}

func TestViewSearchWithoutMatches(t *testing.T) {
	out, err := runView(t, "users", "--interactive=false", "--search", "zzz-no-such-user")
	require.NoError(t, err)
	require.Contains(t, out, `No results match "zzz-no-such-user".`)
	require.NotContains(t, out, "Showing")
}

func TestViewErrors(t *testing.T) {
	_, err := runView(t, "no-such-dataset", "--interactive=false")
	var execErr *cmdpkg.ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "unknown dataset", execErr.Msg)

	_, err = runView(t, "payments", "--interactive=false", "--sort", "client")
	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, err = runView(t)
	require.ErrorContains(t, err, "a dataset name or file path is required")
}
