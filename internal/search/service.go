package search

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// entry is one cached usage search. It moves from searching to done exactly
// once; matches and err are written before done is closed.
type entry struct {
	key     SearchRequest
	cancel  context.CancelCauseFunc
	done    chan struct{}
	status  atomic.Value // Status
	matches []SearchImportsMatch
	err     error
}

func newEntry(key SearchRequest, cancel context.CancelCauseFunc) *entry {
	e := &entry{key: key, cancel: cancel, done: make(chan struct{})}
	e.status.Store(StatusSearching)
	return e
}

func (e *entry) finish(matches []SearchImportsMatch, err error) {
	e.matches = matches
	e.err = err
	e.status.Store(StatusDone)
	close(e.done)
}

// Pending is a handle on a search that may still be running. Every caller
// asking for the same key while it is cached receives the same search.
type Pending struct {
	e *entry
}

// Request returns the normalized key of the search.
func (p *Pending) Request() SearchRequest {
	return p.e.key
}

// Status reports whether the search is still running.
func (p *Pending) Status() Status {
	return p.e.status.Load().(Status)
}

// Done is closed once the search finished.
func (p *Pending) Done() <-chan struct{} {
	return p.e.done
}

// Wait blocks until the search finished or ctx is done. The returned slice
// is shared between callers and must not be modified.
func (p *Pending) Wait(ctx context.Context) ([]SearchImportsMatch, error) {
	select {
	case <-p.e.done:
		return p.e.matches, p.e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Service is the dependency usage search engine. It memoizes searches per
// (dependency, project root) so concurrent requests collapse into one
// ripgrep process, and drops the memo on Reset.
type Service struct {
	pool   *Pool
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	entries   map[SearchRequest]*entry
	listeners []func(SearchRequest)
	closed    bool
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger. Defaults to log.Default().
func WithServiceLogger(l *log.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service that runs its searches through pool.
// Close must be called to stop outstanding searches.
func NewService(pool *Pool, opts ...ServiceOption) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		pool:    pool,
		logger:  log.Default(),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[SearchRequest]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnDone registers fn to be called after a search finishes with a result
// or a failure, so consumers that showed a "searching" state can refresh.
// Searches cancelled by a reset or by a newer search do not notify. fn runs
// on the search goroutine and must not block.
func (s *Service) OnDone(fn func(SearchRequest)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Start returns the cached search for the dependency, starting one if none
// exists. It never blocks on the search itself.
func (s *Service) Start(dependencyName, rootDirectory string) *Pending {
	key := NewSearchRequest(dependencyName, rootDirectory)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		e := newEntry(key, func(error) {})
		e.finish(nil, ErrServiceClosed)
		return &Pending{e: e}
	}
	if e, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return &Pending{e: e}
	}

	ctx, cancel := context.WithCancelCause(s.ctx)
	e := newEntry(key, cancel)
	s.entries[key] = e
	s.mu.Unlock()

	go s.run(ctx, e)

	return &Pending{e: e}
}

// Usages returns every import of dependencyName under rootDirectory. Order
// follows ripgrep output and is not sorted. A search cancelled by a session
// reset is transparently re-attached to the current search for the key.
// A missing ripgrep binary is reported as ErrToolNotFound.
func (s *Service) Usages(ctx context.Context, dependencyName, rootDirectory string) ([]SearchImportsMatch, error) {
	for {
		matches, err := s.Start(dependencyName, rootDirectory).Wait(ctx)
		if errors.Is(err, ErrSuperseded) && ctx.Err() == nil {
			continue
		}
		return matches, err
	}
}

func (s *Service) run(ctx context.Context, e *entry) {
	defer e.cancel(nil)

	pattern := BuildImportPattern(e.key.DependencyName)
	lines, err := s.pool.Search(ctx, e.key, pattern, true)

	var matches []SearchImportsMatch
	if err == nil {
		matches = ParseOutput(lines, pattern, e.key.DependencyName, e.key.RootDirectory)
	}

	s.mu.Lock()
	if err != nil && s.entries[e.key] == e {
		// evict so the next request retries instead of replaying the failure
		delete(s.entries, e.key)
	}
	listeners := append([]func(SearchRequest){}, s.listeners...)
	s.mu.Unlock()

	e.finish(matches, err)

	switch {
	case err == nil:
		s.logger.Debug("usage search done", "dep", e.key.DependencyName, "root", e.key.RootDirectory, "matches", len(matches))
	case IsObsolete(err):
		s.logger.Debug("usage search cancelled", "dep", e.key.DependencyName, "root", e.key.RootDirectory)
		return
	default:
		s.logger.Error("usage search failed", "dep", e.key.DependencyName, "root", e.key.RootDirectory, "err", err)
	}
	for _, fn := range listeners {
		fn(e.key)
	}
}

// Reset drops every cached search and kills the ones still running.
func (s *Service) Reset() {
	s.resetWhere(func(SearchRequest) bool { return true })
}

// ResetRoot drops the cached searches of one project.
func (s *Service) ResetRoot(rootDirectory string) {
	root := filepath.Clean(rootDirectory)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	s.resetWhere(func(key SearchRequest) bool { return key.RootDirectory == root })
}

func (s *Service) resetWhere(match func(SearchRequest) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if !match(key) {
			continue
		}
		delete(s.entries, key)
		e.cancel(ErrSuperseded)
		s.pool.Cancel(key)
	}
}

// Len returns the number of cached searches.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close cancels all searches. Later calls fail with ErrServiceClosed.
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Reset()
	s.cancel()
	return nil
}
