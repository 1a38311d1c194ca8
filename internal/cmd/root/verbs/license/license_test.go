package license

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/iostreams"
	licensepkg "github.com/kong/dashctl/internal/license"
	"github.com/kong/dashctl/internal/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	root *cobra.Command
	cfg  *config.ProfiledConfig
	out  *bytes.Buffer
}

func newTestRoot(t *testing.T) *testEnv {
	t.Helper()
	cobra.EnableTraverseRunHooks = true

	prev := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = prev })

	licenseCmd, err := NewLicenseCmd()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.BuildProfiledConfig("default", path, viper.New())
	s, _, out, _ := iostreams.NewTestIOStreams()
	streams := &s
	logger := slog.New(slog.DiscardHandler)

	root := &cobra.Command{
		Use:           "dashctl",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			if f := c.Flags().Lookup(common.OutputFlagName); f != nil {
				_ = cfg.BindFlag(common.OutputConfigPath, f)
			}
			ctx := context.WithValue(c.Context(), config.ConfigKey, config.Hook(cfg))
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, log.LoggerKey, logger)
			c.SetContext(ctx)
		},
	}
	root.PersistentFlags().StringP(common.OutputFlagName, common.OutputFlagShort,
		common.DefaultOutputFormat, "Output format (text|json|yaml)")
	root.AddCommand(licenseCmd)
	root.SetContext(context.Background())

	return &testEnv{root: root, cfg: cfg, out: out}
}

func (e *testEnv) run(args ...string) (string, error) {
	e.out.Reset()
	e.root.SetArgs(append([]string{"license"}, args...))
	err := e.root.Execute()
	return e.out.String(), err
}

func TestShowDefaultsToFree(t *testing.T) {
	env := newTestRoot(t)

	out, err := env.run("show")
	require.NoError(t, err)
	require.Contains(t, out, "Tier:    free")
	require.Contains(t, out, "Expires: never")
	require.Contains(t, out, "Features")
	require.Contains(t, out, "dashboards")
	require.Contains(t, out, "exportData")
}

func TestActivateAndShowJSON(t *testing.T) {
	env := newTestRoot(t)

	out, err := env.run("activate", "pro", "PRO-2024-DASHBOARD-KEY")
	require.NoError(t, err)
	require.Contains(t, out, "Tier:    pro")
	require.Contains(t, out, "Expires: 2027-03-01")

	require.Equal(t, "pro", env.cfg.GetString(common.LicenseTypeConfigPath))
	require.FileExists(t, env.cfg.GetPath())

	out, err = env.run("show", "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "pro", got["type"])
	require.Equal(t, true, got["valid"])
	features := got["features"].(map[string]any)
	require.Equal(t, float64(25), features["dashboards"])
	require.Equal(t, true, features["exportData"])
}

func TestActivateRejectsBadInput(t *testing.T) {
	env := newTestRoot(t)

	_, err := env.run("activate", "pro", "WRONG")
	require.ErrorIs(t, err, licensepkg.ErrInvalidKey)

	_, err = env.run("activate", "platinum", "KEY")
	require.ErrorIs(t, err, licensepkg.ErrUnknownTier)

	require.Empty(t, env.cfg.GetString(common.LicenseKeyConfigPath))
}

func TestCheck(t *testing.T) {
	env := newTestRoot(t)

	out, err := env.run("check", "export-data")
	require.NoError(t, err)
	require.Equal(t, "export-data is not available on the free tier\n", out)

	out, err = env.run("check", "dashboards")
	require.NoError(t, err)
	require.Equal(t, "dashboards is available on the free tier\n", out)

	_, err = env.run("activate", "enterprise", "ENT-2024-DASHBOARD-KEY")
	require.NoError(t, err)

	out, err = env.run("check", "export-data", "-o", "json")
	require.NoError(t, err)
	var got checkResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, checkResult{Feature: "export-data", Tier: licensepkg.Enterprise, Available: true}, got)

	out, err = env.run("check", "analytics", "-o", "text")
	require.NoError(t, err)
	require.Equal(t, "analytics is not available on the enterprise tier\n", out)
}

func TestCheckFallsBackWhenExpired(t *testing.T) {
	env := newTestRoot(t)
	env.cfg.SetString(common.LicenseTypeConfigPath, "pro")
	env.cfg.SetString(common.LicenseKeyConfigPath, "PRO-2024-DASHBOARD-KEY")
	env.cfg.SetString(common.LicenseExpiryConfigKey, fixedNow.Add(-time.Hour).Format(time.RFC3339))

	out, err := env.run("check", "customBranding")
	require.NoError(t, err)
	require.Equal(t, "customBranding is not available on the free tier\n", out)
}
