package watcher

import "context"

// FileWatcher monitors a project tree for changes with debouncing.
type FileWatcher interface {
	// Start begins watching, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error
}

// SessionResetter drops cached searches for a project root and cancels the
// processes still running for it. *search.Service satisfies it.
type SessionResetter interface {
	ResetRoot(rootDirectory string)
}

// RefreshFunc recomputes whatever the caller shows for the project after a
// reset. ctx is cancelled when a newer change supersedes this refresh.
type RefreshFunc func(ctx context.Context, changed []string)
