package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/mvp-joe/depscout/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CLI commands:
// - usages prints one line per match and the summary, --json emits matches
// - usages of @types/x reports imports of x
// - unused lists declared dependencies without imports, --all lists every one
// - missing lists used packages not declared, skipping builtins and self imports
// - ignored manifests are skipped
// - watch prints a report and refreshes it when package.json changes
// - version prints build information
// - summarize/missingDependencies helpers

func TestMain(m *testing.M) {
	color.NoColor = true
	home, err := os.MkdirTemp("", "depscout-home")
	if err != nil {
		panic(err)
	}
	os.Setenv("HOME", home)
	code := m.Run()
	os.RemoveAll(home)
	os.Exit(code)
}

// fakeRipgrep answers by looking at the pattern file: the used-dependencies
// scan, lodash, react, or no matches for anything else.
const fakeRipgrep = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "ripgrep 14.1.0"
  exit 0
fi
pattern=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--file" ]; then
    pattern=$(cat "$2")
  fi
  shift
done
case "$pattern" in
  *'from\s+'*)
    printf '%s\n' \
      "src/app.tsx:1:1:import React from 'react';" \
      "src/util.ts:1:1:import axios from 'axios';" \
      "src/util.ts:2:1:import path from 'path';" \
      "src/util.ts:3:1:import { debounce } from 'lodash';" \
      "src/self.ts:1:1:import x from 'web-app/utils';" ;;
  *lodash*)
    printf '%s\n' "src/util.ts:3:1:import { debounce } from 'lodash';" ;;
  *react*)
    printf '%s\n' \
      "src/app.tsx:1:1:import React from 'react';" \
      "src/types.ts:1:1:import type { FC } from 'react';" ;;
  *)
    exit 1 ;;
esac
`

const testManifest = `{
  "name": "web-app",
  "dependencies": {
    "react": "^18.2.0",
    "lodash": "4.17.21",
    "left-pad": "1.3.0"
  },
  "devDependencies": {
    "@types/react": "^18.0.0"
  }
}`

func setupProject(t *testing.T, extraConfig string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ripgrep scripts require a POSIX shell")
	}

	tools := t.TempDir()
	rg := filepath.Join(tools, "rg")
	require.NoError(t, os.WriteFile(rg, []byte(fakeRipgrep), 0755))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(testManifest), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))

	configDir := filepath.Join(root, ".depscout")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	config := "search:\n" +
		"  ripgrep_path: " + rg + "\n" +
		"  storage_dir: " + filepath.Join(tools, "storage") + "\n" +
		extraConfig
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(config), 0644))

	return root
}

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runCLI(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out, errOut syncBuffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestUsagesCommand(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")

	out, err := runCLI(t, context.Background(), "usages", "react", "--root", root)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "src/app.tsx:1:1  import React from 'react';", lines[0])
	assert.Equal(t, "src/types.ts:1:1  import type { FC } from 'react'; (type)", lines[1])
	assert.Equal(t, "2 imports", lines[2])
}

func TestUsagesCommand_TypesPackage(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")

	out, err := runCLI(t, context.Background(), "usages", "@types/react", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "2 imports")
}

func TestUsagesCommand_Unused(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")

	out, err := runCLI(t, context.Background(), "usages", "left-pad", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "unused\n", out)
}

func TestUsagesCommand_JSON(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")

	out, err := runCLI(t, context.Background(), "usages", "lodash", "--root", root, "--json")
	require.NoError(t, err)

	var matches []search.SearchImportsMatch
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "lodash", matches[0].SearchedDep)
	assert.Equal(t, filepath.Join(root, "src", "util.ts"), matches[0].AbsPath)
	assert.Equal(t, 2, matches[0].Line)
	assert.Equal(t, 0, matches[0].Column)
	assert.Equal(t, "import { debounce } from 'lodash';", matches[0].ImportStatement)
	assert.False(t, matches[0].IsTypeImport)
}

func TestUsagesCommand_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing argument", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, context.Background(), "usages")
		assert.Error(t, err)
	})

	t.Run("root does not exist", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, context.Background(), "usages", "react", "--root", filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("ripgrep not found", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		configDir := filepath.Join(root, ".depscout")
		require.NoError(t, os.MkdirAll(configDir, 0755))
		config := "search:\n  ripgrep_path: " + filepath.Join(root, "missing-rg") + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(config), 0644))

		_, err := runCLI(t, context.Background(), "usages", "react", "--root", root)
		require.Error(t, err)
		assert.ErrorIs(t, err, search.ErrToolNotFound)
	})
}

func TestUnusedCommand(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")

	out, err := runCLI(t, context.Background(), "unused", "--root", root, "--quiet")
	require.NoError(t, err)
	assert.Equal(t, "left-pad  unused\n", out)
}

func TestUnusedCommand_All(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")

	out, err := runCLI(t, context.Background(), "unused", "--root", root, "--all", "--quiet")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"react         2 imports",
		"lodash        1 imports",
		"left-pad      unused",
		"@types/react  2 imports",
	}, lines)
}

func TestUnusedCommand_JSON(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")

	out, err := runCLI(t, context.Background(), "unused", "--root", root, "--json")
	require.NoError(t, err)

	var usages []depUsage
	require.NoError(t, json.Unmarshal([]byte(out), &usages))
	require.Len(t, usages, 1)
	assert.Equal(t, "left-pad", usages[0].Name)
	assert.Empty(t, usages[0].Matches)
}

func TestUnusedCommand_IgnoredManifest(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "dependencies:\n  ignore_patterns:\n    - \"package.json\"\n")

	out, err := runCLI(t, context.Background(), "unused", "--root", root, "--quiet")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnusedCommand_NoManifest(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")
	require.NoError(t, os.Remove(filepath.Join(root, "package.json")))

	_, err := runCLI(t, context.Background(), "unused", "--root", root, "--quiet")
	assert.Error(t, err)
}

func TestMissingCommand(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")

	out, err := runCLI(t, context.Background(), "missing", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "axios\n", out)

	out, err = runCLI(t, context.Background(), "missing", "--root", root, "--json")
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{"axios"}, names)
}

func TestWatchCommand(t *testing.T) {
	t.Parallel()
	root := setupProject(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out, errOut syncBuffer
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"watch", "--root", root, "--debounce", "50ms"})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "left-pad")
	}, 5*time.Second, 20*time.Millisecond, "initial report")
	// Let the watcher register before changing the manifest
	time.Sleep(200 * time.Millisecond)

	updated := strings.Replace(testManifest, `"left-pad": "1.3.0"`, `"left-pad": "1.3.0",
    "chalk": "5.3.0"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(updated), 0644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "chalk")
	}, 5*time.Second, 20*time.Millisecond, "refreshed report")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "depscout dev")
	assert.Contains(t, out, "Git commit: none")
}
