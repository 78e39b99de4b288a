package watcher

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// WatchCoordinator routes file changes of one project to its search session:
// every batch resets the project's cached searches, which kills their
// processes, and then runs a refresh. A newer batch cancels the refresh
// still running for an older one.
type WatchCoordinator struct {
	root     string
	files    FileWatcher
	resetter SessionResetter
	refresh  RefreshFunc
	logger   *log.Logger

	mu            sync.Mutex
	ctx           context.Context
	cancelRefresh context.CancelFunc
	refreshes     sync.WaitGroup
}

// NewWatchCoordinator creates a new watch coordinator. refresh may be nil.
func NewWatchCoordinator(
	root string,
	files FileWatcher,
	resetter SessionResetter,
	refresh RefreshFunc,
	logger *log.Logger,
) *WatchCoordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &WatchCoordinator{
		root:     root,
		files:    files,
		resetter: resetter,
		refresh:  refresh,
		logger:   logger,
	}
}

// Start begins routing changes. Blocks until ctx is cancelled or the file
// watcher fails to start.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

// cleanup stops the watcher and waits for running refreshes.
func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		c.logger.Warn("file watcher stop failed", "err", err)
	}

	c.mu.Lock()
	if c.cancelRefresh != nil {
		c.cancelRefresh()
		c.cancelRefresh = nil
	}
	c.mu.Unlock()

	c.refreshes.Wait()
}

// handleFileChange resets the session for the root and starts a refresh.
func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	c.logger.Info("project changed, resetting searches", "root", c.root, "files", len(files))
	c.resetter.ResetRoot(c.root)

	if c.refresh == nil {
		return
	}

	c.mu.Lock()
	if c.ctx == nil || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	if c.cancelRefresh != nil {
		c.cancelRefresh()
	}
	refreshCtx, cancel := context.WithCancel(c.ctx)
	c.cancelRefresh = cancel
	c.refreshes.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.refreshes.Done()
		defer cancel()
		c.refresh(refreshCtx, files)
	}()
}
