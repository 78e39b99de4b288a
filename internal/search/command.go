package search

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// BuildArgs constructs the ripgrep argv for one search.
// This function NEVER uses shell execution - it builds argv directly.
func BuildArgs(patternFile, rootDirectory string, opts RunOptions) ([]string, error) {
	if patternFile == "" {
		return nil, errors.New("pattern file is required")
	}

	cleanRoot := filepath.Clean(rootDirectory)
	if !filepath.IsAbs(cleanRoot) {
		return nil, fmt.Errorf("root directory must be absolute path: %s", rootDirectory)
	}

	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	args := []string{
		// ignore ~/.ripgreprc and RIPGREP_CONFIG_PATH
		"--no-config",
		// make every match result one line: path:line:column:text
		"--vimgrep",
		"--case-sensitive",
		"--color", "never",
		"--encoding", "UTF-8",
	}

	if opts.Multiline {
		args = append(args, "--multiline")
	}
	if opts.ThreadCount > 0 {
		args = append(args, "--threads", strconv.Itoa(opts.ThreadCount))
	}
	if opts.MaxColumns > 0 {
		args = append(args, "--max-columns", strconv.Itoa(opts.MaxColumns))
	}

	// read pattern from file
	args = append(args, "--file", patternFile)

	for _, ext := range opts.IncludeExtensions {
		args = append(args, "--glob", "**/*."+ext)
	}
	for _, p := range opts.ExcludeGlobs {
		args = append(args, "--glob", "!"+p)
	}

	// Searching the absolute root (not ".") makes ripgrep print absolute paths.
	args = append(args, cleanRoot)

	return args, nil
}

func validateOptions(opts RunOptions) error {
	if len(opts.IncludeExtensions) == 0 {
		return errors.New("at least one file extension is required")
	}
	for _, ext := range opts.IncludeExtensions {
		if ext == "" || strings.ContainsAny(ext, "*?[]{}/\\!") || strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid file extension: %q", ext)
		}
	}
	for _, p := range opts.ExcludeGlobs {
		if strings.TrimSpace(p) == "" {
			return errors.New("exclude glob cannot be empty")
		}
	}
	if opts.ThreadCount < 0 {
		return fmt.Errorf("thread count cannot be negative, got %d", opts.ThreadCount)
	}
	if opts.MaxColumns < 0 {
		return fmt.Errorf("max columns cannot be negative, got %d", opts.MaxColumns)
	}
	return nil
}

// escapeCommand renders argv the way a shell user would type it, for logs.
func escapeCommand(bin string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{bin}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
