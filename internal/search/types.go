package search

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SearchRequest identifies one logical search. Two requests are equal iff
// both fields are equal, which makes the struct usable as a map key.
type SearchRequest struct {
	DependencyName string `json:"dependency_name"`
	RootDirectory  string `json:"root_directory"`
}

// String renders the request for logs.
func (r SearchRequest) String() string {
	return fmt.Sprintf("%s@%s", r.DependencyName, r.RootDirectory)
}

// NewSearchRequest normalizes a dependency name and project root into a key.
// The @types/ prefix is stripped since the import site uses the underlying
// package name, so "@types/foo" and "foo" share one search.
func NewSearchRequest(dependencyName, rootDirectory string) SearchRequest {
	root := filepath.Clean(rootDirectory)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return SearchRequest{
		DependencyName: normalizeDependencyName(dependencyName),
		RootDirectory:  root,
	}
}

const atTypesPrefix = "@types/"

func normalizeDependencyName(dep string) string {
	dep = strings.TrimSpace(dep)
	return strings.TrimPrefix(dep, atTypesPrefix)
}

// RawMatch is one line of ripgrep --vimgrep output before import extraction.
// Line and Column are 1-based, as emitted by the tool.
type RawMatch struct {
	Path     string
	Line     int
	Column   int
	LineText string
}

// SearchImportsMatch is a single import/require site of a dependency.
type SearchImportsMatch struct {
	SearchedDep     string `json:"searched_dep"`
	AbsPath         string `json:"abs_path"`
	Line            int    `json:"line"`   // 0-based
	Column          int    `json:"column"` // 0-based byte offset
	LineStr         string `json:"line_str"`
	ImportStatement string `json:"import_statement"`
	IsTypeImport    bool   `json:"is_type_import"`
}

// RunOptions configures a single ripgrep invocation.
type RunOptions struct {
	IncludeExtensions []string // e.g. "ts", "vue"
	ExcludeGlobs      []string // e.g. "**/node_modules/**"
	ThreadCount       int      // 0 leaves the choice to ripgrep
	Multiline         bool
	MaxColumns        int // 0 disables the limit
}

// Status is the lifecycle state of a cached search.
type Status string

const (
	StatusSearching Status = "searching"
	StatusDone      Status = "done"
)
