package viper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewViperEnvKeyReplacer(t *testing.T) {
	t.Setenv("DASHCTL_LOG_LEVEL", "debug")
	t.Setenv("DASHCTL_TABLE_PAGE_SIZE", "25")

	v := NewViper("nonexistent.yaml")

	require.Equal(t, "debug", v.GetString("log-level"))
	require.Equal(t, 25, v.GetInt("table.page-size"))
}

func TestNewViperEnvKeyReplacerProfileWithDashes(t *testing.T) {
	t.Setenv("DASHCTL_TEAM_A_B_C_LICENSE_KEY", "PRO-2024-DASHBOARD-KEY")

	v := NewViper("nonexistent.yaml")
	v.Set("team-a-b-c", map[string]any{})

	profile := v.Sub("team-a-b-c")
	require.NotNil(t, profile)
	require.Equal(t, "PRO-2024-DASHBOARD-KEY", profile.GetString("license.key"))
}

func TestNewViperEFailsOnMissingFile(t *testing.T) {
	_, err := NewViperE(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestInitializeDefaultViperWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	v, err := InitializeDefaultViper(map[string]any{
		"default": map[string]any{"output": "text"},
	}, path)
	require.NoError(t, err)
	require.Equal(t, "text", v.GetString("default.output"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "output: text")
}
