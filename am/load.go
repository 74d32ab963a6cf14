package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rbb-data/cpisync/errors"
)

// ProjectConfigName is searched for from the working directory upwards.
const ProjectConfigName = "cpisync.toml"

var globalConfig *Config
var viperInstance *viper.Viper
var explicitPath string

// SetConfigFile makes Load read path on top of the config cascade.
// Used by the --config flag; resets any cached configuration.
func SetConfigFile(path string) {
	explicitPath = path
	Reset()
}

// Load reads the cpisync configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v, err := initViper()
	if err != nil {
		return nil, err
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path, defaults
// included, without environment overrides.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	return LoadWithViper(v)
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() (*viper.Viper, error) {
	if viperInstance != nil {
		return viperInstance, nil
	}

	v := viper.New()

	v.SetEnvPrefix("CPISYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindSensitiveEnvVars(v)
	SetDefaults(v)

	if err := mergeConfigFiles(v); err != nil {
		return nil, err
	}

	viperInstance = v
	return v, nil
}

// ConfigSource is one step of the file cascade
type ConfigSource struct {
	Path   string
	Exists bool
}

// ConfigSources lists the config files consulted, lowest precedence first
func ConfigSources() []ConfigSource {
	var paths []string
	paths = append(paths, "/etc/cpisync/config.toml")
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".cpisync", "config.toml"))
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, project)
	}
	if explicitPath != "" {
		paths = append(paths, explicitPath)
	}

	sources := make([]ConfigSource, 0, len(paths))
	for _, p := range paths {
		_, err := os.Stat(p)
		sources = append(sources, ConfigSource{Path: p, Exists: err == nil})
	}
	return sources
}

// findProjectConfig walks up from the working directory looking for
// cpisync.toml. Returns "" if none is found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// mergeConfigFiles merges existing config files in precedence order.
// A missing file is skipped; an unreadable explicit file is an error.
func mergeConfigFiles(v *viper.Viper) error {
	for _, source := range ConfigSources() {
		if !source.Exists {
			if source.Path == explicitPath {
				return errors.Newf("config file %s does not exist", explicitPath)
			}
			continue
		}

		fileViper := viper.New()
		fileViper.SetConfigFile(source.Path)
		fileViper.SetConfigType("toml")

		if err := fileViper.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", source.Path)
		}
		if err := v.MergeConfigMap(fileViper.AllSettings()); err != nil {
			return errors.Wrapf(err, "failed to merge config file %s", source.Path)
		}
	}
	return nil
}
