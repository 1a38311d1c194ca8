package profile

import (
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultProfile = "default"
)

// Manager reads the profiles stored in the main configuration file. Every
// top-level key of the file is a profile.
type Manager interface {
	GetProfiles() []string
	GetProfile(name string) map[string]any
}

type profileManager struct {
	config *viper.Viper
}

// Empty type to represent the _type_ Manager. Genesis is to support a key in a Context
type Key struct{}

// Global instance of the ProfileManagerKey type
var ProfileManagerKey = Key{}

func (v *profileManager) GetProfiles() []string {
	seen := make(map[string]bool)
	for _, key := range v.config.AllKeys() {
		seen[strings.Split(key, ".")[0]] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (v *profileManager) GetProfile(name string) map[string]any {
	return v.config.GetStringMap(name)
}

func NewManager(config *viper.Viper) Manager {
	return &profileManager{
		config: config,
	}
}
