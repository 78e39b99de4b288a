package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mvp-joe/depscout/internal/config"
	"github.com/mvp-joe/depscout/internal/manifest"
	"github.com/mvp-joe/depscout/internal/search"
)

// project is the loaded state a command works on.
type project struct {
	root   string
	cfg    *config.Config
	svc    *search.Service
	logger *log.Logger
}

// openProject resolves the root, loads project and global configuration and
// starts a search session. Callers must Close the project.
func openProject(ctx context.Context, opts *rootOptions) (*project, error) {
	root := opts.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("invalid root: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("invalid root: %s is not a directory", root)
	}

	var cfg *config.Config
	if opts.cfgFile != "" {
		cfg, err = config.NewFileLoader(opts.cfgFile).Load()
	} else {
		cfg, err = config.LoadConfigFromDir(root)
	}
	if err != nil {
		return nil, err
	}

	global, err := config.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}

	logger := loggerFromContext(ctx)
	return &project{
		root:   root,
		cfg:    cfg,
		svc:    cfg.NewService(global, config.WithLogger(logger)),
		logger: logger,
	}, nil
}

// manifest loads <root>/package.json. ok is false when the manifest matches
// dependencies.ignore_patterns.
func (p *project) manifest() (m *manifest.Manifest, ok bool, err error) {
	m, err = manifest.LoadDir(p.root)
	if err != nil {
		return nil, false, err
	}
	ignored, err := manifest.Ignored(m.Path, p.root, p.cfg.Dependencies.IgnorePatterns)
	if err != nil {
		return nil, false, err
	}
	if ignored {
		p.logger.Warn("manifest matches ignore_patterns, skipping", "path", m.Path)
		return m, false, nil
	}
	return m, true, nil
}

// declaredNames lists unique dependency names in manifest order.
func (p *project) declaredNames(m *manifest.Manifest) []string {
	seen := make(map[string]bool)
	var names []string
	for _, dep := range m.Dependencies(p.cfg.Dependencies.NodePaths) {
		if seen[dep.Name] {
			continue
		}
		seen[dep.Name] = true
		names = append(names, dep.Name)
	}
	return names
}

func (p *project) Close() error {
	return p.svc.Close()
}
