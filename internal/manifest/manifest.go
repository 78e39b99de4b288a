// Package manifest reads package.json files and lists the dependencies they
// declare.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/tidwall/jsonc"
)

// FileName is the manifest file name inside a project root.
const FileName = "package.json"

// ErrNotObject is returned when the manifest's top level is not a JSON object.
var ErrNotObject = errors.New("manifest is not a JSON object")

// Dependency is one declared dependency.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Section string `json:"section"` // dotted node path it was declared under
}

// Manifest is a parsed package.json.
type Manifest struct {
	Path string
	Name string

	root map[string]json.RawMessage
}

// Load reads and parses the manifest at path. Comments and trailing commas
// are tolerated.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(path, content)
}

// LoadDir loads <dir>/package.json.
func LoadDir(dir string) (*Manifest, error) {
	return Load(filepath.Join(dir, FileName))
}

// Parse parses manifest content. path is recorded for Dir and error messages.
func Parse(path string, content []byte) (*Manifest, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(content), &root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotObject)
	}

	m := &Manifest{Path: path, root: root}
	if raw, ok := root["name"]; ok {
		// non-string names are ignored
		_ = json.Unmarshal(raw, &m.Name)
	}
	return m, nil
}

// Dir returns the directory containing the manifest, the project root for searches.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// Dependencies returns the entries found under each dotted node path, in
// manifest order within a section. Missing sections and entries whose version
// is not a string are skipped.
func (m *Manifest) Dependencies(nodePaths []string) []Dependency {
	var deps []Dependency
	for _, nodePath := range nodePaths {
		raw, ok := m.lookup(strings.Split(nodePath, "."))
		if !ok {
			continue
		}
		entries, err := orderedEntries(raw)
		if err != nil {
			continue
		}
		for _, e := range entries {
			var version string
			if err := json.Unmarshal(e.value, &version); err != nil {
				continue
			}
			deps = append(deps, Dependency{Name: e.key, Version: version, Section: nodePath})
		}
	}
	return deps
}

// Declared reports whether name appears under any of the node paths.
func (m *Manifest) Declared(name string, nodePaths []string) bool {
	for _, dep := range m.Dependencies(nodePaths) {
		if dep.Name == name {
			return true
		}
	}
	return false
}

func (m *Manifest) lookup(path []string) (json.RawMessage, bool) {
	current := m.root
	for i, key := range path {
		raw, ok := current[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return raw, true
		}
		var next map[string]json.RawMessage
		if err := json.Unmarshal(raw, &next); err != nil || next == nil {
			return nil, false
		}
		current = next
	}
	return nil, false
}

type entry struct {
	key   string
	value json.RawMessage
}

// orderedEntries decodes a JSON object keeping key order, which maps lose.
func orderedEntries(raw json.RawMessage) ([]entry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	var entries []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return entries, nil
}

// Ignored reports whether the manifest at path matches one of the glob
// patterns. Patterns are matched against the path relative to root using
// forward slashes, both bare and with a leading slash so "**/" also matches
// zero directories. Paths outside root are matched as given.
func Ignored(path, root string, patterns []string) (bool, error) {
	if len(patterns) == 0 {
		return false, nil
	}

	candidates := []string{filepath.ToSlash(path)}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		rel = filepath.ToSlash(rel)
		candidates = []string{rel, "/" + rel}
	}

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return false, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		for _, candidate := range candidates {
			if g.Match(candidate) {
				return true, nil
			}
		}
	}
	return false, nil
}
