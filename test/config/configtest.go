// Package config provides an in-memory config.Hook for command tests.
package config

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/spf13/pflag"
)

// MockConfigHook keeps values in a flat map keyed by config path. Bound
// flags are consulted when the flag was changed and the key has no value.
type MockConfigHook struct {
	Values  map[string]any
	Profile string
	Path    string
	// SaveMock replaces Save when set. Saves are counted either way.
	SaveMock func() error
	Saves    int
	flags    map[string]*pflag.Flag
}

// NewMockConfigHook returns a hook pre-populated with values.
func NewMockConfigHook(values map[string]any) *MockConfigHook {
	m := &MockConfigHook{Values: map[string]any{}, Profile: "default"}
	maps.Copy(m.Values, values)
	return m
}

func (m *MockConfigHook) Save() error {
	m.Saves++
	if m.SaveMock != nil {
		return m.SaveMock()
	}
	return nil
}

func (m *MockConfigHook) Get(key string) any {
	if v, ok := m.Values[key]; ok {
		return v
	}
	if f, ok := m.flags[key]; ok && f.Changed {
		return f.Value.String()
	}
	return nil
}

func (m *MockConfigHook) GetString(key string) string {
	switch v := m.Get(key).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (m *MockConfigHook) GetBool(key string) bool {
	switch v := m.Get(key).(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

func (m *MockConfigHook) GetInt(key string) int {
	return m.GetIntOrElse(key, 0)
}

func (m *MockConfigHook) GetIntOrElse(key string, orElse int) int {
	switch v := m.Get(key).(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		return orElse
	default:
		return orElse
	}
}

func (m *MockConfigHook) GetStringSlice(key string) []string {
	v, _ := m.Get(key).([]string)
	return v
}

func (m *MockConfigHook) SetString(k string, v string) {
	m.Values[k] = v
}

func (m *MockConfigHook) Set(k string, v any) {
	m.Values[k] = v
}

func (m *MockConfigHook) BindFlag(configPath string, f *pflag.Flag) error {
	if m.flags == nil {
		m.flags = map[string]*pflag.Flag{}
	}
	m.flags[configPath] = f
	return nil
}

func (m *MockConfigHook) GetProfile() string {
	return m.Profile
}

func (m *MockConfigHook) GetPath() string {
	return m.Path
}
