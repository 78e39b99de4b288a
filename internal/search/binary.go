package search

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// exeName returns the platform specific ripgrep executable name.
func exeName() string {
	if runtime.GOOS == "windows" {
		return "rg.exe"
	}
	return "rg"
}

// bundledCandidateDirs are the locations editors ship ripgrep under,
// relative to the editor's application root.
var bundledCandidateDirs = []string{
	"node_modules/vscode-ripgrep/bin/",
	"node_modules.asar.unpacked/vscode-ripgrep/bin/",
	"node_modules/@vscode/ripgrep/bin/",
	"node_modules.asar.unpacked/@vscode/ripgrep/bin/",
}

// lookPath resolves an executable on PATH.
// Declared as a variable to allow mocking in tests.
var lookPath = exec.LookPath

// findBinary locates ripgrep. An explicit path wins, then PATH, then the
// bundled copies under each application root.
func findBinary(explicit string, appRoots []string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrToolNotFound, explicit, err)
		}
		return explicit, nil
	}

	if p, err := lookPath(exeName()); err == nil {
		return p, nil
	}

	for _, root := range appRoots {
		for _, dir := range bundledCandidateDirs {
			candidate := filepath.Join(root, dir, exeName())
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", ErrToolNotFound
}

// verifyBinary checks the ripgrep binary is usable by running --version.
// Declared as a variable to allow mocking in tests.
var verifyBinary = func(ctx context.Context, binaryPath string) error {
	cmd := exec.CommandContext(ctx, binaryPath, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("binary verification failed: %w", err)
	}

	// Expected format: "ripgrep 14.1.0" followed by feature lines
	outputStr := strings.TrimSpace(string(output))
	if !strings.HasPrefix(outputStr, "ripgrep") {
		return fmt.Errorf("invalid binary output: %s", outputStr)
	}

	return nil
}
