package search

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// fakeRunner stands in for ripgrep. Each Run reports on started (if set),
// then blocks until release is closed or ctx is cancelled.
type fakeRunner struct {
	lines   []string
	err     error
	started chan SearchRequest
	release chan struct{}

	mu   sync.Mutex
	opts []RunOptions

	calls     atomic.Int32
	active    atomic.Int32
	maxActive atomic.Int32
}

func newFakeRunner(lines ...string) *fakeRunner {
	return &fakeRunner{
		lines:   lines,
		started: make(chan SearchRequest, 64),
		release: make(chan struct{}),
	}
}

// immediate makes every Run return without blocking.
func (f *fakeRunner) immediate() *fakeRunner {
	close(f.release)
	return f
}

func (f *fakeRunner) Run(ctx context.Context, patternSource, rootDirectory string, opts RunOptions) ([]string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.opts = append(f.opts, opts)
	f.mu.Unlock()

	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		cur := f.maxActive.Load()
		if n <= cur || f.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	f.started <- SearchRequest{DependencyName: patternSource, RootDirectory: rootDirectory}

	select {
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case <-f.release:
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]string{}, f.lines...), nil
}

func (f *fakeRunner) recordedOpts() []RunOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RunOptions{}, f.opts...)
}

// waitStarted waits for n Run calls to begin.
func (f *fakeRunner) waitStarted(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.started:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for search %d of %d to start", i+1, n)
		}
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

var testRunOptions = RunOptions{
	IncludeExtensions: []string{"js", "ts"},
	ExcludeGlobs:      []string{"**/node_modules/**"},
}

func newTestPool(runner Runner, opts ...PoolOption) *Pool {
	return NewPool(runner, testRunOptions, append([]PoolOption{WithPoolLogger(quietLogger())}, opts...)...)
}
