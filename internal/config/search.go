package config

import (
	"github.com/mvp-joe/depscout/internal/search"
)

// RunOptions converts the search section to ripgrep invocation options.
func (c *Config) RunOptions() search.RunOptions {
	return search.RunOptions{
		IncludeExtensions: append([]string{}, c.Search.Extensions...),
		ExcludeGlobs:      append([]string{}, c.Search.Exclude...),
		MaxColumns:        c.Search.MaxColumns,
	}
}

// NewService wires an executor, pool and service from configuration.
// Machine-wide settings from global take effect when the project config
// leaves them unset. Call Close on the returned service when done.
func (c *Config) NewService(global *GlobalConfig, opts ...Option) *search.Service {
	o := applyOptions(opts)

	ripgrepPath := c.Search.RipgrepPath
	storageDir := c.Search.StorageDir
	var appRoots []string
	if global != nil {
		if ripgrepPath == "" {
			ripgrepPath = global.Ripgrep.Path
		}
		if storageDir == "" {
			storageDir = global.Storage.Dir
		}
		appRoots = global.Ripgrep.AppRoots
	}
	if storageDir == "" {
		storageDir = DefaultStorageDir()
	}

	executor := search.NewExecutor(storageDir,
		search.WithBinaryPath(ripgrepPath),
		search.WithAppRoots(appRoots...),
		search.WithExecutorLogger(o.logger),
	)
	pool := search.NewPool(executor, c.RunOptions(),
		search.WithHeavyConcurrency(c.Search.HeavyConcurrency),
		search.WithTimeout(c.Search.Timeout),
		search.WithPoolLogger(o.logger),
	)
	o.logger.Debug("search pool ready", "ripgrep", ripgrepPath, "heavy_slots", pool.HeavyLimit())
	return search.NewService(pool, search.WithServiceLogger(o.logger))
}
