package viper

import (
	"strings"

	"github.com/kong/dashctl/internal/meta"
	"github.com/kong/dashctl/internal/util"
	v "github.com/spf13/viper"
)

// InitializeDefaultViper initializes a viper instance with default values and a path to a file
// If the file does not exist, it will be created with the default values
func InitializeDefaultViper(defaultValues map[string]any, path string) (*v.Viper, error) {
	var err error

	err = util.InitDir(path, 0o755)
	if err != nil {
		return nil, err
	}

	rv := NewViper(path)

	if len(rv.AllSettings()) == 0 {
		// nothing was loaded, seed the defaults and write them back
		err = rv.MergeConfigMap(defaultValues)
		if err != nil {
			return nil, err
		}
		err = rv.WriteConfig()
		if err != nil {
			return nil, err
		}
	}

	return rv, err
}

// ConfigureEnvVars makes rv resolve keys from environment variables named
// PREFIX_KEY, with dots and dashes in the key mapped to underscores.
func ConfigureEnvVars(rv *v.Viper, prefix string) {
	rv.AutomaticEnv()
	rv.SetEnvPrefix(prefix)
	rv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func NewViperE(path string) (*v.Viper, error) {
	rv := v.New()
	rv.SetConfigFile(path)
	ConfigureEnvVars(rv, meta.EnvPrefix)
	err := rv.ReadInConfig()
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func NewViper(path string) *v.Viper {
	rv := v.New()
	rv.SetConfigFile(path)
	ConfigureEnvVars(rv, meta.EnvPrefix)
	_ = rv.ReadInConfig()
	return rv
}
