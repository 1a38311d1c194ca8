package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kong/dashctl/internal/cmd/common"
	utilviper "github.com/kong/dashctl/internal/util/viper"
	"github.com/stretchr/testify/require"
)

func TestBuildProfiledConfig_ProfileEnvWithDashes(t *testing.T) {
	t.Setenv("DASHCTL_TEAM_A_B_C_TABLE_PAGE_SIZE", "25")

	profile := "team-a-b-c"
	mainv := utilviper.NewViper("nonexistent.yaml")
	mainv.Set(profile, map[string]any{})

	cfg := BuildProfiledConfig(profile, "nonexistent.yaml", mainv)

	require.Equal(t, 25, cfg.GetInt(common.PageSizeConfigPath))
}

func TestBuildProfiledConfig_MissingProfileReadsEnv(t *testing.T) {
	t.Setenv("DASHCTL_STAGING_OUTPUT", "json")

	mainv := utilviper.NewViper("nonexistent.yaml")
	cfg := BuildProfiledConfig("staging", "nonexistent.yaml", mainv)

	require.Equal(t, "json", cfg.GetString(common.OutputConfigPath))
	require.Equal(t, 7, cfg.GetIntOrElse("table.unknown", 7))
}

func TestGetConfigInitializesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashctl", "config.yaml")

	cfg, err := GetConfig(path, "default", path)
	require.NoError(t, err)

	require.Equal(t, "text", cfg.GetString(common.OutputConfigPath))
	require.Equal(t, DefaultPageSize, cfg.GetInt(common.PageSizeConfigPath))
	require.True(t, cfg.GetBool(common.PaginationConfigPath))
	require.Equal(t, "free", cfg.GetString(common.LicenseTypeConfigPath))
	require.Equal(t, common.DefaultColorTheme, cfg.GetString(common.ColorThemeConfigPath))
	require.Equal(t,
		filepath.Join(filepath.Dir(path), "logs", "dashctl.log"),
		cfg.GetString(common.LogFileConfigPath))

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestGetConfigRejectsMissingCustomPath(t *testing.T) {
	dir := t.TempDir()
	_, err := GetConfig(filepath.Join(dir, "custom.yaml"), "default", filepath.Join(dir, "config.yaml"))
	require.Error(t, err)
}

func TestSavePersistsProfileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := GetConfig(path, "default", path)
	require.NoError(t, err)

	cfg.SetString(common.LicenseTypeConfigPath, "pro")
	cfg.SetString(common.LicenseKeyConfigPath, "PRO-2024-DASHBOARD-KEY")
	require.NoError(t, cfg.Save())

	reloaded, err := GetConfig(path, "default", path)
	require.NoError(t, err)
	require.Equal(t, "pro", reloaded.GetString(common.LicenseTypeConfigPath))
	require.Equal(t, "PRO-2024-DASHBOARD-KEY", reloaded.GetString(common.LicenseKeyConfigPath))
	require.Equal(t, DefaultPageSize, reloaded.GetInt(common.PageSizeConfigPath))
}
