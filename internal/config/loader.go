package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigDirName is the per-project directory holding config.yml.
const ConfigDirName = ".depscout"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file
// instead of searching the project directory.
func NewFileLoader(path string) Loader {
	return &loader{
		configFile: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DEPSCOUT_*)
// 2. Config file (.depscout/config.yml or .depscout/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ConfigDirName))
	}

	// DEPSCOUT_SEARCH_TIMEOUT overrides search.timeout
	v.SetEnvPrefix("DEPSCOUT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("search.ripgrep_path")
	v.BindEnv("search.storage_dir")
	v.BindEnv("search.max_columns")
	v.BindEnv("search.timeout")
	v.BindEnv("search.heavy_concurrency")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless it was named explicitly
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("search.ripgrep_path", defaults.Search.RipgrepPath)
	v.SetDefault("search.storage_dir", defaults.Search.StorageDir)
	v.SetDefault("search.extensions", defaults.Search.Extensions)
	v.SetDefault("search.exclude", defaults.Search.Exclude)
	v.SetDefault("search.max_columns", defaults.Search.MaxColumns)
	v.SetDefault("search.timeout", defaults.Search.Timeout)
	v.SetDefault("search.heavy_concurrency", defaults.Search.HeavyConcurrency)

	v.SetDefault("dependencies.node_paths", defaults.Dependencies.NodePaths)
	v.SetDefault("dependencies.ignore_patterns", defaults.Dependencies.IgnorePatterns)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
