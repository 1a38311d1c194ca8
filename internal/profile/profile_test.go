package profile

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestManagerListsTopLevelKeys(t *testing.T) {
	v := viper.New()
	v.Set("default.output", "text")
	v.Set("default.table.page-size", 10)
	v.Set("work.license.type", "pro")

	m := NewManager(v)
	require.Equal(t, []string{"default", "work"}, m.GetProfiles())
	require.Equal(t, "pro", m.GetProfile("work")["license"].(map[string]any)["type"])
	require.Empty(t, m.GetProfile("missing"))
}
