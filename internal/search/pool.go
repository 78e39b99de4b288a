package search

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"
)

// HeavyConcurrency returns how many heavy searches may run at once for the
// given CPU count: two thirds of the cores, rounded up, never fewer than two.
// The remaining third is left to the editor.
func HeavyConcurrency(cpuCount int) int {
	n := (cpuCount*2 + 2) / 3
	if n < 2 {
		return 2
	}
	return n
}

// processHandle is the registry entry for one running search.
type processHandle struct {
	cancel context.CancelCauseFunc
}

// Pool runs searches with per-key supersession and a global admission queue
// for heavy searches. At most one search per key is registered at any time;
// starting a new one cancels the previous one with ErrSuperseded.
type Pool struct {
	runner  Runner
	opts    RunOptions
	heavy   *semaphore.Weighted
	limit   int
	timeout time.Duration
	logger  *log.Logger

	mu      sync.Mutex
	running map[SearchRequest]*processHandle
}

// PoolOption customizes a Pool.
type PoolOption func(*Pool)

// WithHeavyConcurrency overrides the heavy search slot count. Zero keeps the
// CPU based default.
func WithHeavyConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.limit = n
		}
	}
}

// WithTimeout cancels any search running longer than d. Zero disables it.
func WithTimeout(d time.Duration) PoolOption {
	return func(p *Pool) { p.timeout = d }
}

// WithPoolLogger sets the logger. Defaults to log.Default().
func WithPoolLogger(l *log.Logger) PoolOption {
	return func(p *Pool) { p.logger = l }
}

// NewPool creates a pool running searches through runner with the base
// options opts (extensions, excludes, column limit).
func NewPool(runner Runner, opts RunOptions, poolOpts ...PoolOption) *Pool {
	p := &Pool{
		runner:  runner,
		opts:    opts,
		limit:   HeavyConcurrency(runtime.NumCPU()),
		logger:  log.Default(),
		running: make(map[SearchRequest]*processHandle),
	}
	for _, opt := range poolOpts {
		opt(p)
	}
	p.heavy = semaphore.NewWeighted(int64(p.limit))
	return p
}

// HeavyLimit returns the number of heavy search slots.
func (p *Pool) HeavyLimit() int {
	return p.limit
}

// Search runs patternSource under key.RootDirectory. Heavy searches wait
// for a slot in the FIFO admission queue and run single-threaded in
// multiline mode. A superseded caller receives ErrSuperseded; the newer
// caller is unaffected.
func (p *Pool) Search(ctx context.Context, key SearchRequest, patternSource string, heavy bool) ([]string, error) {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	h := &processHandle{cancel: cancel}
	p.mu.Lock()
	// Checked under the lock so a search cancelled before registering can
	// never supersede a newer one.
	if runCtx.Err() != nil {
		p.mu.Unlock()
		return nil, context.Cause(runCtx)
	}
	if old, ok := p.running[key]; ok {
		// remove, kill, then insert
		delete(p.running, key)
		old.cancel(ErrSuperseded)
		p.logger.Debug("superseding search", "key", key)
	}
	p.running[key] = h
	p.mu.Unlock()
	defer p.release(key, h)

	opts := p.opts
	if heavy {
		if err := p.heavy.Acquire(runCtx, 1); err != nil {
			return nil, context.Cause(runCtx)
		}
		defer p.heavy.Release(1)
		opts.ThreadCount = 1
		opts.Multiline = true
	}

	if p.timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeoutCause(runCtx, p.timeout, ErrSearchTimeout)
		defer cancelTimeout()
	}

	if runCtx.Err() != nil {
		return nil, context.Cause(runCtx)
	}

	lines, err := p.runner.Run(runCtx, patternSource, key.RootDirectory, opts)
	if err != nil {
		if runCtx.Err() != nil {
			return nil, context.Cause(runCtx)
		}
		return nil, err
	}
	return lines, nil
}

// release drops the registry entry unless a newer search replaced it.
func (p *Pool) release(key SearchRequest, h *processHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running[key] == h {
		delete(p.running, key)
	}
}

// Cancel kills the search registered for key, if any. Safe to call for keys
// that already finished.
func (p *Pool) Cancel(key SearchRequest) {
	p.mu.Lock()
	h, ok := p.running[key]
	if ok {
		delete(p.running, key)
	}
	p.mu.Unlock()

	if ok {
		h.cancel(ErrSuperseded)
	}
}

// CancelAll kills every registered search.
func (p *Pool) CancelAll() {
	p.mu.Lock()
	handles := make([]*processHandle, 0, len(p.running))
	for key, h := range p.running {
		handles = append(handles, h)
		delete(p.running, key)
	}
	p.mu.Unlock()

	for _, h := range handles {
		h.cancel(ErrSuperseded)
	}
}

// active reports whether a search is registered for key.
func (p *Pool) active(key SearchRequest) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.running[key]
	return ok
}

// Len returns the number of registered searches.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.running)
}
