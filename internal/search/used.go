package search

import (
	"context"
	"fmt"
	"sort"
)

// usedDependenciesTarget keys the project-wide module scan in the pool.
const usedDependenciesTarget = "<used-dependencies>"

// UsedDependencies scans rootDirectory for every bare module specifier and
// returns the sorted set of package names valid for new npm packages.
// Builtins, relative paths and invalid names are skipped. The scan is a light
// search: it bypasses the heavy queue but is still superseded per root.
func (s *Service) UsedDependencies(ctx context.Context, rootDirectory string) ([]string, error) {
	key := NewSearchRequest(usedDependenciesTarget, rootDirectory)

	lines, err := s.pool.Search(ctx, key, usedDependenciesPattern, false)
	if err != nil {
		return nil, fmt.Errorf("used dependencies search failed: %w", err)
	}

	return collectPackageNames(lines), nil
}

func collectPackageNames(lines []string) []string {
	used := make(map[string]bool)
	for _, line := range lines {
		raw, ok := ParseRawLine(line)
		if !ok || raw.Column-1 >= len(raw.LineText) {
			continue
		}
		m := usedModulePathRegexp.FindStringSubmatch(raw.LineText[raw.Column-1:])
		if m == nil {
			continue
		}
		name := PackageNameFromModulePath(m[1])
		if ValidPackageName(name) {
			used[name] = true
		}
	}

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
