package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete depscout project configuration.
// It can be loaded from .depscout/config.yml with environment variable overrides.
type Config struct {
	Search       SearchConfig       `yaml:"search" mapstructure:"search"`
	Dependencies DependenciesConfig `yaml:"dependencies" mapstructure:"dependencies"`
}

// SearchConfig configures the ripgrep based usage search.
type SearchConfig struct {
	RipgrepPath      string        `yaml:"ripgrep_path" mapstructure:"ripgrep_path"`           // explicit rg binary; empty means PATH lookup
	StorageDir       string        `yaml:"storage_dir" mapstructure:"storage_dir"`             // scratch dir for pattern files
	Extensions       []string      `yaml:"extensions" mapstructure:"extensions"`               // file extensions to search, without dot
	Exclude          []string      `yaml:"exclude" mapstructure:"exclude"`                     // glob patterns to skip
	MaxColumns       int           `yaml:"max_columns" mapstructure:"max_columns"`             // omit longer lines; 0 disables
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`                     // per search; 0 disables
	HeavyConcurrency int           `yaml:"heavy_concurrency" mapstructure:"heavy_concurrency"` // 0 means two thirds of the CPUs
}

// DependenciesConfig defines which package.json dependencies are inspected.
type DependenciesConfig struct {
	NodePaths      []string `yaml:"node_paths" mapstructure:"node_paths"`           // dotted paths, e.g. "dependencies"
	IgnorePatterns []string `yaml:"ignore_patterns" mapstructure:"ignore_patterns"` // manifests to skip, relative to root
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			RipgrepPath: "",
			StorageDir:  "", // Empty means <os temp>/depscout
			Extensions: []string{
				"js",
				"jsx",
				"cjs",
				"mjs",
				"ts",
				"tsx",
				"cts",
				"mts",
				"html",
				"vue",
				"svelte",
			},
			Exclude: []string{
				"**/vendor/**",
				"**/node_modules/**",
				"**/bower_components/**",
				"**/*.code-search/**",
				// output
				"**/dist/**",
				"**/build/**",
				"**/_output/**",
				"**/*.min.*",
				"**/*.map",
				// config files
				"**/.*/**",
			},
			MaxColumns:       500,
			Timeout:          0,
			HeavyConcurrency: 0,
		},
		Dependencies: DependenciesConfig{
			NodePaths: []string{
				"dependencies",
				"devDependencies",
				"peerDependencies",
				"optionalDependencies",
			},
			IgnorePatterns: []string{},
		},
	}
}

// DefaultStorageDir returns the scratch directory used when none is configured.
func DefaultStorageDir() string {
	return filepath.Join(os.TempDir(), "depscout")
}
