package search

import "context"

// UsageSearcher finds where a project imports a dependency.
//
// This interface enables:
// - Dependency injection for testing (mock implementations)
// - CLI and watcher integration without concrete type dependencies
// - Swapping the regex scanner for a real tokenizer later
type UsageSearcher interface {
	// Usages returns every import/require site of dependencyName under
	// rootDirectory, in the order the search tool reported them.
	//
	// Error types:
	// - ErrToolNotFound: ripgrep unavailable; callers usually degrade to
	//   "unknown usage"
	// - context errors: the caller gave up
	// - anything else: the search process failed
	Usages(ctx context.Context, dependencyName, rootDirectory string) ([]SearchImportsMatch, error)

	// UsedDependencies returns the package names imported anywhere under
	// rootDirectory.
	UsedDependencies(ctx context.Context, rootDirectory string) ([]string, error)

	// Reset drops cached results and kills running searches.
	Reset()
}

var _ UsageSearcher = (*Service)(nil)
