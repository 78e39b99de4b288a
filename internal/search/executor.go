package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultKillGrace is how long a cancelled ripgrep process gets to exit after
// SIGTERM before it is force-killed.
const DefaultKillGrace = 2 * time.Second

// rgExitNoMatches is ripgrep's exit status when nothing matched.
const rgExitNoMatches = 1

// Runner executes one text search and returns the raw output lines.
type Runner interface {
	Run(ctx context.Context, patternSource, rootDirectory string, opts RunOptions) ([]string, error)
}

// Executor runs ripgrep over a directory tree. The binary is located lazily
// on first use and cached afterwards.
type Executor struct {
	storageDir   string
	explicitPath string
	appRoots     []string
	killGrace    time.Duration
	logger       *log.Logger

	mu          sync.Mutex
	binaryPath  string
	initialized bool
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithBinaryPath pins the ripgrep executable instead of searching for it.
func WithBinaryPath(path string) ExecutorOption {
	return func(e *Executor) { e.explicitPath = path }
}

// WithAppRoots adds editor application roots to probe for a bundled ripgrep.
func WithAppRoots(roots ...string) ExecutorOption {
	return func(e *Executor) { e.appRoots = append(e.appRoots, roots...) }
}

// WithKillGrace sets the SIGTERM to SIGKILL grace period.
func WithKillGrace(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.killGrace = d }
}

// WithExecutorLogger sets the logger. Defaults to log.Default().
func WithExecutorLogger(l *log.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an executor that writes temporary pattern files under
// storageDir. The directory is created on demand.
func NewExecutor(storageDir string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		storageDir: storageDir,
		killGrace:  DefaultKillGrace,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ensureBinary locates and verifies ripgrep once.
// Thread-safe: concurrent callers share one lookup.
func (e *Executor) ensureBinary(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return e.binaryPath, nil
	}

	binaryPath, err := findBinary(e.explicitPath, e.appRoots)
	if err != nil {
		return "", err
	}
	if err := verifyBinary(ctx, binaryPath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrToolNotFound, err)
	}

	e.binaryPath = binaryPath
	e.initialized = true
	return binaryPath, nil
}

// BinaryPath returns the resolved ripgrep path, or "" before first use.
func (e *Executor) BinaryPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.binaryPath
}

// createPatternFile writes the pattern to a uniquely named file. The pattern
// is read from a file because the regexp is long and complex enough to break
// argument parsing. The returned cleanup must always be called.
func (e *Executor) createPatternFile(patternSource string) (string, func(), error) {
	if err := os.MkdirAll(e.storageDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	patternFile := filepath.Join(e.storageDir, fmt.Sprintf("ripgrep-pattern-%s.txt", uuid.NewString()))
	if err := os.WriteFile(patternFile, []byte(patternSource), 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write pattern file: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(patternFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("failed to remove pattern file", "path", patternFile, "err", err)
		}
	}
	return patternFile, cleanup, nil
}

// Run searches rootDirectory for patternSource and returns the non-empty
// output lines. No matches is an empty result, not an error. When ctx is
// cancelled the process is terminated and the cancellation cause returned.
func (e *Executor) Run(ctx context.Context, patternSource, rootDirectory string, opts RunOptions) ([]string, error) {
	binaryPath, err := e.ensureBinary(ctx)
	if err != nil {
		return nil, err
	}

	patternFile, cleanup, err := e.createPatternFile(patternSource)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	args, err := BuildArgs(patternFile, rootDirectory, opts)
	if err != nil {
		return nil, fmt.Errorf("command build failed: %w", err)
	}
	if err := checkRoot(rootDirectory); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, binaryPath, args...)
	cmd.Dir = rootDirectory
	cmd.Cancel = func() error { return terminate(cmd.Process) }
	cmd.WaitDelay = e.killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	escapedPattern := strings.ReplaceAll(patternSource, "/", `\/`)
	escapedCommand := escapeCommand(binaryPath, args)

	start := time.Now()
	err = cmd.Run()
	took := time.Since(start)

	if ctx.Err() != nil {
		e.logger.Debug("killed search process", "root", rootDirectory, "cause", context.Cause(ctx))
		return nil, context.Cause(ctx)
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr) && exitErr.ExitCode() == rgExitNoMatches:
			// when no matches, rg exit code is 1
			return []string{}, nil
		case errors.As(err, &exitErr) && stdout.Len() > 0:
			// Exit status 2 with output: some files could not be read but
			// matches were still found.
			e.logger.Warn("ripgrep reported errors", "stderr", strings.TrimSpace(stderr.String()), "command", escapedCommand)
		case isChdirError(err):
			return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
		case errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("%w: %v", ErrToolNotFound, err)
		default:
			e.logger.Error("search failed", "err", err, "stderr", strings.TrimSpace(stderr.String()))
			e.logger.Error("search failed", "pattern", escapedPattern)
			e.logger.Error("search failed", "command", escapedCommand)
			if stderr.Len() > 0 {
				return nil, fmt.Errorf("ripgrep error: %s: %w", strings.TrimSpace(stderr.String()), err)
			}
			return nil, fmt.Errorf("execution failed: %w", err)
		}
	}

	e.logger.Debug("search finished", "pattern", escapedPattern, "command", escapedCommand, "took", took.Round(time.Millisecond))

	return splitLines(stdout.String()), nil
}

// checkRoot verifies that rootDirectory is an existing directory.
func checkRoot(rootDirectory string) error {
	info, err := os.Stat(rootDirectory)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, rootDirectory)
	}
	return nil
}

// isChdirError reports whether starting the process failed while changing
// into its working directory, as opposed to locating the binary.
func isChdirError(err error) bool {
	var pathErr *fs.PathError
	return errors.As(err, &pathErr) && pathErr.Op == "chdir"
}

// splitLines splits output into non-empty lines, dropping CR from CRLF.
func splitLines(out string) []string {
	lines := []string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// terminate asks the process to exit. WaitDelay force-kills it afterwards.
func terminate(p *os.Process) error {
	if p == nil {
		return nil
	}
	var err error
	if runtime.GOOS == "windows" {
		err = p.Kill()
	} else {
		err = p.Signal(syscall.SIGTERM)
	}
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
