package search

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/maypok86/otter"
)

var (
	// path:line:column:text; the lazy path group keeps drive letters intact.
	lineRegexp       = regexp.MustCompile(`^(.+?):(\d+):(\d+):(.*)$`)
	typeImportRegexp = regexp.MustCompile(`^import\s+type\s+`)
)

// omittedLinePrefix is what ripgrep prints instead of lines over --max-columns.
const omittedLinePrefix = "[Omitted long line"

const regexpCacheSize = 1024

// regexpCache holds anchored regexps compiled from pattern sources. Usage
// searches for the same dependency parse many lines with one pattern.
var regexpCache = mustRegexpCache()

func mustRegexpCache() otter.Cache[string, *regexp.Regexp] {
	c, err := otter.MustBuilder[string, *regexp.Regexp](regexpCacheSize).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build regexp cache: %v", err))
	}
	return c
}

// compileAnchored compiles ^(?:patternSource), caching by source.
func compileAnchored(patternSource string) (*regexp.Regexp, error) {
	if re, ok := regexpCache.Get(patternSource); ok {
		return re, nil
	}
	re, err := regexp.Compile(anchoredPattern(patternSource))
	if err != nil {
		return nil, err
	}
	regexpCache.Set(patternSource, re)
	return re, nil
}

// ParseRawLine splits one line of --vimgrep output. It returns false for
// lines not shaped like path:line:column:text.
func ParseRawLine(rawLine string) (RawMatch, bool) {
	m := lineRegexp.FindStringSubmatch(rawLine)
	if m == nil {
		return RawMatch{}, false
	}
	line, err := strconv.Atoi(m[2])
	if err != nil || line < 1 {
		return RawMatch{}, false
	}
	column, err := strconv.Atoi(m[3])
	if err != nil || column < 1 {
		return RawMatch{}, false
	}
	return RawMatch{Path: m[1], Line: line, Column: column, LineText: m[4]}, true
}

// ParseLine turns one raw output line into a match. Coordinates become
// 0-based. The import statement is the text matched by patternSource
// anchored at the match column; when that re-match fails the rest of the
// line is used instead. Malformed lines return false.
func ParseLine(rawLine, patternSource, dependencyName string) (SearchImportsMatch, bool) {
	raw, ok := ParseRawLine(rawLine)
	if !ok {
		return SearchImportsMatch{}, false
	}
	if strings.HasPrefix(raw.LineText, omittedLinePrefix) {
		return SearchImportsMatch{}, false
	}

	column := raw.Column - 1
	if column >= len(raw.LineText) {
		return SearchImportsMatch{}, false
	}
	rest := raw.LineText[column:]

	importStatement := ""
	if re, err := compileAnchored(patternSource); err == nil {
		importStatement = re.FindString(rest)
	}
	if importStatement == "" {
		importStatement = rest
	}

	return SearchImportsMatch{
		SearchedDep:     normalizeDependencyName(dependencyName),
		AbsPath:         raw.Path,
		Line:            raw.Line - 1,
		Column:          column,
		LineStr:         raw.LineText,
		ImportStatement: importStatement,
		IsTypeImport:    typeImportRegexp.MatchString(importStatement),
	}, true
}

// ParseOutput parses every line, dropping malformed ones, and resolves
// relative paths against rootDirectory.
func ParseOutput(lines []string, patternSource, dependencyName, rootDirectory string) []SearchImportsMatch {
	matches := make([]SearchImportsMatch, 0, len(lines))
	for _, line := range lines {
		match, ok := ParseLine(line, patternSource, dependencyName)
		if !ok {
			continue
		}
		if !filepath.IsAbs(match.AbsPath) {
			match.AbsPath = filepath.Join(rootDirectory, match.AbsPath)
		}
		matches = append(matches, match)
	}
	return matches
}
