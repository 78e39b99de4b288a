// Package config provides configuration loading for depscout.
//
// It supports two configuration scopes:
//
// 1. Global Configuration (~/.depscout/config.yml)
//   - Machine-wide ripgrep location and editor install roots
//   - Scratch directory for pattern files
//   - Loaded via LoadGlobalConfig()
//
// 2. Project Configuration (<root>/.depscout/config.yml)
//   - File extensions and exclude globs for the search
//   - Column limit, timeout, heavy search concurrency
//   - package.json sections and ignored manifests
//   - Loaded via Load()
//
// Project settings win over global ones where both apply (ripgrep path,
// storage dir). Environment variables use the DEPSCOUT_ prefix with nested
// fields joined by underscores (DEPSCOUT_SEARCH_TIMEOUT,
// DEPSCOUT_RIPGREP_PATH).
//
// Example usage:
//
//	cfg, err := config.LoadConfigFromDir(root)
//	if err != nil {
//	    return err
//	}
//	global, err := config.LoadGlobalConfig()
//	if err != nil {
//	    return err
//	}
//	svc := cfg.NewService(global)
//	defer svc.Close()
package config

// GlobalConfig holds machine-wide configuration.
// Loaded from ~/.depscout/config.yml (not project .depscout/config.yml).
type GlobalConfig struct {
	Ripgrep RipgrepConfig       `yaml:"ripgrep" mapstructure:"ripgrep"`
	Storage GlobalStorageConfig `yaml:"storage" mapstructure:"storage"`
}

// RipgrepConfig describes where to find the rg binary.
type RipgrepConfig struct {
	Path     string   `yaml:"path" mapstructure:"path"`           // explicit binary, skips discovery
	AppRoots []string `yaml:"app_roots" mapstructure:"app_roots"` // editor installs that bundle rg
}

// GlobalStorageConfig holds scratch storage settings.
type GlobalStorageConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // pattern files (~/.depscout/tmp)
}
