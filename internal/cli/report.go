package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mvp-joe/depscout/internal/search"
	"golang.org/x/sync/errgroup"
)

var (
	unusedColor  = color.New(color.FgYellow).SprintFunc()
	typeColor    = color.New(color.FgCyan).SprintFunc()
	pathColor    = color.New(color.FgMagenta).SprintFunc()
	nameColor    = color.New(color.Bold).SprintFunc()
	unknownColor = color.New(color.FgRed).SprintFunc()
)

// depUsage holds the search result for one declared dependency. Error is
// set when the search failed and the usage is unknown.
type depUsage struct {
	Name    string                      `json:"name"`
	Matches []search.SearchImportsMatch `json:"matches"`
	Error   string                      `json:"error,omitempty"`
}

// known reports whether the search for u succeeded.
func (u depUsage) known() bool {
	return u.Error == ""
}

// summarize renders the usage count the way it is shown next to a
// dependency: "unused", "N type imports" when every usage is type-only,
// "N imports" otherwise.
func summarize(matches []search.SearchImportsMatch) string {
	if len(matches) == 0 {
		return "unused"
	}
	typeImports := 0
	for _, m := range matches {
		if m.IsTypeImport {
			typeImports++
		}
	}
	if typeImports == len(matches) {
		return fmt.Sprintf("%d type imports", len(matches))
	}
	return fmt.Sprintf("%d imports", len(matches))
}

// collectUsages searches every name concurrently through the session and
// returns results in input order. The heavy search limit of the session's
// pool bounds how many ripgrep processes run at once. A failed search marks
// its dependency as unknown. Cancellation and a missing ripgrep abort.
func collectUsages(ctx context.Context, svc *search.Service, root string, names []string, prog *searchProgress) ([]depUsage, error) {
	logger := loggerFromContext(ctx)
	results := make([]depUsage, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		pending := svc.Start(name, root)
		g.Go(func() error {
			matches, err := pending.Wait(gctx)
			switch {
			case err == nil:
				results[i] = depUsage{Name: name, Matches: matches}
			case search.IsObsolete(err) || errors.Is(err, search.ErrToolNotFound) || gctx.Err() != nil:
				return fmt.Errorf("%s: %w", name, err)
			default:
				logger.Warn("usage unknown", "dep", name, "err", err)
				results[i] = depUsage{Name: name, Error: err.Error()}
			}
			prog.searched()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	prog.finish()
	return results, nil
}

// printMatches writes one line per usage, paths relative to root.
func printMatches(w io.Writer, root string, matches []search.SearchImportsMatch) {
	for _, m := range matches {
		path := m.AbsPath
		if rel, err := filepath.Rel(root, m.AbsPath); err == nil {
			path = rel
		}
		location := fmt.Sprintf("%s:%d:%d", filepath.ToSlash(path), m.Line+1, m.Column+1)
		statement := m.ImportStatement
		if m.IsTypeImport {
			statement += " " + typeColor("(type)")
		}
		fmt.Fprintf(w, "%s  %s\n", pathColor(location), statement)
	}
}

// printSummaries writes "name  summary" for each dependency.
func printSummaries(w io.Writer, usages []depUsage) {
	width := 0
	for _, u := range usages {
		width = max(width, len(u.Name))
	}
	for _, u := range usages {
		var summary string
		switch {
		case !u.known():
			summary = unknownColor("unknown")
		case len(u.Matches) == 0:
			summary = unusedColor(summarize(u.Matches))
		default:
			summary = summarize(u.Matches)
		}
		fmt.Fprintf(w, "%s%*s  %s\n", nameColor(u.Name), width-len(u.Name), "", summary)
	}
}
