package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Global Config Loader:
// - LoadGlobalConfig() returns defaults when file doesn't exist (not an error)
// - LoadGlobalConfig() loads from ~/.depscout/config.yml when present
// - LoadGlobalConfig() environment variables override YAML values
// - LoadGlobalConfig() returns error for malformed YAML

func writeGlobalConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ConfigDirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0644))
}

func TestLoadGlobalConfig_MissingFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, err := LoadGlobalConfig()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.Ripgrep.Path)
	assert.Empty(t, cfg.Ripgrep.AppRoots)
	assert.Equal(t, filepath.Join(tempHome, ".depscout", "tmp"), cfg.Storage.Dir)
}

func TestLoadGlobalConfig_WithFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	writeGlobalConfig(t, tempHome, `
ripgrep:
  path: /custom/rg
  app_roots:
    - /usr/share/code/resources/app
    - /opt/vscodium/resources/app

storage:
  dir: /custom/scratch
`)

	cfg, err := LoadGlobalConfig()

	require.NoError(t, err)
	assert.Equal(t, "/custom/rg", cfg.Ripgrep.Path)
	assert.Equal(t, []string{"/usr/share/code/resources/app", "/opt/vscodium/resources/app"}, cfg.Ripgrep.AppRoots)
	assert.Equal(t, "/custom/scratch", cfg.Storage.Dir)
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	writeGlobalConfig(t, tempHome, `
ripgrep:
  path: /file/rg
storage:
  dir: /file/scratch
`)

	t.Setenv("DEPSCOUT_RIPGREP_PATH", "/env/rg")
	t.Setenv("DEPSCOUT_STORAGE_DIR", "/env/scratch")

	cfg, err := LoadGlobalConfig()

	require.NoError(t, err)
	assert.Equal(t, "/env/rg", cfg.Ripgrep.Path)
	assert.Equal(t, "/env/scratch", cfg.Storage.Dir)
}

func TestLoadGlobalConfig_PartialConfig(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	writeGlobalConfig(t, tempHome, `
ripgrep:
  path: /only/rg
`)

	cfg, err := LoadGlobalConfig()

	require.NoError(t, err)
	assert.Equal(t, "/only/rg", cfg.Ripgrep.Path)
	assert.Equal(t, filepath.Join(tempHome, ".depscout", "tmp"), cfg.Storage.Dir)
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	writeGlobalConfig(t, tempHome, `
ripgrep:
  path: "not closed
  unclosed_quote_above
`)

	cfg, err := LoadGlobalConfig()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to")
}
