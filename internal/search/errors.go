package search

import (
	"context"
	"errors"
)

var (
	// ErrToolNotFound indicates the ripgrep executable could not be located.
	ErrToolNotFound = errors.New("can't find ripgrep path")

	// ErrInvalidRoot indicates the directory to search does not exist or is
	// not a directory.
	ErrInvalidRoot = errors.New("invalid search root")

	// ErrSuperseded indicates a search was killed because a newer search
	// for the same key started, or because its session was reset.
	ErrSuperseded = errors.New("search superseded")

	// ErrSearchTimeout indicates a search exceeded the configured timeout.
	ErrSearchTimeout = errors.New("search timed out")

	// ErrServiceClosed indicates the service no longer accepts searches.
	ErrServiceClosed = errors.New("search service closed")
)

// IsObsolete reports whether err only means the result is no longer wanted.
// Callers normally swallow these errors instead of showing them.
func IsObsolete(err error) bool {
	return errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled)
}
