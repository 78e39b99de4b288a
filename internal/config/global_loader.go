package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadGlobalConfig loads global configuration from ~/.depscout/config.yml.
// Returns default values if file doesn't exist (not an error).
// Environment variables override file values (DEPSCOUT_* prefix).
func LoadGlobalConfig() (*GlobalConfig, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	baseDir := filepath.Join(home, ConfigDirName)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(baseDir)

	v.SetEnvPrefix("DEPSCOUT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindGlobalEnvVars(v)
	setGlobalDefaults(v, baseDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &GlobalConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// bindGlobalEnvVars binds all environment variables for global config.
func bindGlobalEnvVars(v *viper.Viper) {
	v.BindEnv("ripgrep.path")
	v.BindEnv("ripgrep.app_roots")
	v.BindEnv("storage.dir")
}

// setGlobalDefaults configures viper with default values for global config.
func setGlobalDefaults(v *viper.Viper, baseDir string) {
	v.SetDefault("ripgrep.path", "")
	v.SetDefault("ripgrep.app_roots", []string{})
	v.SetDefault("storage.dir", filepath.Join(baseDir, "tmp"))
}
