package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyExtensions indicates no file extensions to search
	ErrEmptyExtensions = errors.New("empty search extensions")

	// ErrInvalidExtension indicates a malformed file extension
	ErrInvalidExtension = errors.New("invalid search extension")

	// ErrInvalidGlob indicates an exclude or ignore pattern that does not compile
	ErrInvalidGlob = errors.New("invalid glob pattern")

	// ErrInvalidMaxColumns indicates a negative column limit
	ErrInvalidMaxColumns = errors.New("invalid max columns")

	// ErrInvalidTimeout indicates a negative search timeout
	ErrInvalidTimeout = errors.New("invalid search timeout")

	// ErrInvalidConcurrency indicates a negative heavy search limit
	ErrInvalidConcurrency = errors.New("invalid heavy concurrency")

	// ErrEmptyNodePaths indicates no package.json sections to read
	ErrEmptyNodePaths = errors.New("empty dependency node paths")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateSearch(&cfg.Search); err != nil {
		errs = append(errs, err)
	}

	if err := validateDependencies(&cfg.Dependencies); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSearch(cfg *SearchConfig) error {
	var errs []error

	if len(cfg.Extensions) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one extension required", ErrEmptyExtensions))
	}
	for _, ext := range cfg.Extensions {
		if ext == "" || strings.ContainsAny(ext, "./\\*{}") {
			errs = append(errs, fmt.Errorf("%w: %q (use bare extensions like \"ts\")", ErrInvalidExtension, ext))
		}
	}

	for _, pattern := range cfg.Exclude {
		if err := validateGlob(pattern); err != nil {
			errs = append(errs, fmt.Errorf("exclude: %w", err))
		}
	}

	if cfg.MaxColumns < 0 {
		errs = append(errs, fmt.Errorf("%w: max_columns cannot be negative, got %d", ErrInvalidMaxColumns, cfg.MaxColumns))
	}

	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: timeout cannot be negative, got %s", ErrInvalidTimeout, cfg.Timeout))
	}

	if cfg.HeavyConcurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: heavy_concurrency cannot be negative, got %d", ErrInvalidConcurrency, cfg.HeavyConcurrency))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateDependencies(cfg *DependenciesConfig) error {
	var errs []error

	if len(cfg.NodePaths) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one node path required", ErrEmptyNodePaths))
	}

	for _, pattern := range cfg.IgnorePatterns {
		if err := validateGlob(pattern); err != nil {
			errs = append(errs, fmt.Errorf("ignore_patterns: %w", err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateGlob(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("%w: empty pattern", ErrInvalidGlob)
	}
	if _, err := glob.Compile(pattern, '/'); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidGlob, pattern, err)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
