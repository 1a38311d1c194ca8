package list

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/dataset"
	"github.com/kong/dashctl/internal/iostreams"
	"github.com/kong/dashctl/internal/log"
	"github.com/kong/dashctl/internal/profile"
	"github.com/kong/dashctl/internal/theme"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	root *cobra.Command
	cfg  *config.ProfiledConfig
	out  *bytes.Buffer
}

func newTestRoot(t *testing.T, mainv *viper.Viper) *testEnv {
	t.Helper()
	cobra.EnableTraverseRunHooks = true

	listCmd, err := NewListCmd()
	require.NoError(t, err)

	cfg := config.BuildProfiledConfig(profile.DefaultProfile, "", mainv)
	s, _, out, _ := iostreams.NewTestIOStreams()
	streams := &s

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
			ctx = context.WithValue(ctx, log.LoggerKey, slog.New(slog.DiscardHandler))
			ctx = context.WithValue(ctx, profile.ProfileManagerKey, profile.NewManager(mainv))
			c.SetContext(ctx)
		},
	}
	root.PersistentFlags().StringP(common.OutputFlagName, common.OutputFlagShort,
		common.DefaultOutputFormat, "Output format (text|json|yaml)")
	root.AddCommand(listCmd)
	root.SetContext(context.Background())

	return &testEnv{root: root, cfg: cfg, out: out}
}

func (e *testEnv) run(args ...string) (string, error) {
	e.out.Reset()
	e.root.SetArgs(append([]string{"list"}, args...))
	err := e.root.Execute()
	return e.out.String(), err
}

func TestListDatasets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams.json"),
		[]byte(`[{"name":"core"},{"name":"edge"}]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0o600))

	env := newTestRoot(t, viper.New())
	env.cfg.SetString(common.DatasetDirConfigPath, dir)

	out, err := env.run("datasets", "-o", "json")
	require.NoError(t, err)

	var infos []dataset.Info
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	require.Equal(t, append(dataset.Names(), "teams"), names)

	teams := infos[len(infos)-1]
	require.Equal(t, 2, teams.Records)
	require.Equal(t, filepath.Join(dir, "teams.json"), teams.Source)
	require.Equal(t, dataset.SourceBuiltin, infos[0].Source)
}

func TestListDatasetsText(t *testing.T) {
	env := newTestRoot(t, viper.New())

	out, err := env.run("datasets")
	require.NoError(t, err)
	require.Contains(t, out, "Datasets")
	for _, name := range dataset.Names() {
		require.Contains(t, out, name)
	}
}

func TestListThemes(t *testing.T) {
	env := newTestRoot(t, viper.New())
	env.cfg.SetString(common.ColorThemeConfigPath, "dash-light")

	out, err := env.run("themes", "-o", "json")
	require.NoError(t, err)

	var themes []themeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &themes))
	require.Len(t, themes, len(theme.Available()))

	var active []string
	for _, th := range themes {
		if th.Active {
			active = append(active, th.ID)
		}
	}
	require.Equal(t, []string{"dash-light"}, active)

	out, err = env.run("themes", "-o", "text")
	require.NoError(t, err)
	require.Contains(t, out, "*dash-light")
}

func TestListProfiles(t *testing.T) {
	mainv := viper.New()
	mainv.Set("default", map[string]any{
		"color-theme": "dash-dark",
		"table":       map[string]any{"page-size": 10},
		"license":     map[string]any{"type": "free"},
	})
	mainv.Set("work", map[string]any{
		"color-theme": "dash-light",
		"table":       map[string]any{"page-size": 25},
		"license":     map[string]any{"type": "pro"},
	})
	env := newTestRoot(t, mainv)

	out, err := env.run("profiles", "-o", "json")
	require.NoError(t, err)

	var got []profileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, []profileOutput{
		{Name: "default", Active: true, PageSize: 10, Theme: "dash-dark", License: "free"},
		{Name: "work", PageSize: 25, Theme: "dash-light", License: "pro"},
	}, got)
}
