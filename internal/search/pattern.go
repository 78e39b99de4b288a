package search

import (
	"regexp"
	"strings"
)

// Fragments are written in the common subset of Go RE2 and Rust regex syntax:
// ripgrep matches with them and ParseLine re-matches with them.
const (
	// for example: import(/* webpackChunkName: "heic2any" */ 'heic2any')
	magicComment   = `/\*\s*webpackChunkName:\s*['"][\w\-.]+['"]\s*\*/`
	subpathPattern = `(?:/[\w.\-@]+)*`
	queryPattern   = `(?:\?[^'"\s]*)?`
	bindingList    = `[\w$*{}\s,]+?`
	trailingSemi   = `\s*;?`
)

// modulePathPattern matches the quoted dependency name, optionally followed by
// subpath segments and a ?query. The closing quote must match the opening one.
func modulePathPattern(dep string) string {
	body := regexp.QuoteMeta(dep) + subpathPattern + queryPattern
	return `(?:'` + body + `'|"` + body + `")`
}

// BuildImportPattern returns the regular expression source matching every
// import or require form that references dependencyName. A leading @types/
// is stripped before building.
//
// Recognized forms:
//
//	require('dep')
//	import x from 'dep' / import type { X } from 'dep'
//	export { x } from 'dep'
//	import 'dep'
//	import('dep') / import(/* webpackChunkName: "x" */ 'dep')
func BuildImportPattern(dependencyName string) string {
	mp := modulePathPattern(normalizeDependencyName(dependencyName))

	forms := []string{
		// require ( 'lodash'   )
		`\brequire\s*\(\s*` + mp + `\s*\)` + trailingSemi,
		// import { add } from 'lodash';
		`\bimport\s+(?:type\s+)?` + bindingList + `\s*from\s*` + mp + trailingSemi,
		// export { add } from 'lodash';
		`\bexport\s+(?:type\s+)?` + bindingList + `\s*from\s*` + mp + trailingSemi,
		// import 'core-js/stable';
		`\bimport\s*` + mp + trailingSemi,
		// await import ('lodash')
		`\bimport\s*\(\s*(?:` + magicComment + `\s*)?` + mp + `\s*\)` + trailingSemi,
	}

	wrapped := make([]string, len(forms))
	for i, f := range forms {
		wrapped[i] = "(?:" + f + ")"
	}
	return strings.Join(wrapped, "|")
}

// anchoredPattern anchors a combined pattern at the start of the input.
// The whole alternation is grouped so ^ applies to every branch.
func anchoredPattern(patternSource string) string {
	return `^(?:` + patternSource + `)`
}

const moduleChars = `\w\-@/`

var (
	usedModulePath = `['"]([` + moduleChars + `]{1,2}[` + moduleChars + `.]*)['"]`

	// usedDependenciesPattern matches any bare module specifier in unnamed
	// imports, from clauses and require calls.
	usedDependenciesPattern = strings.Join([]string{
		`\bimport\s+` + usedModulePath,
		`\bfrom\s+` + usedModulePath,
		`\brequire\s*\(\s*` + usedModulePath + `\s*\)`,
	}, "|")

	usedModulePathRegexp = regexp.MustCompile(usedModulePath)
)

// PackageNameFromModulePath reduces a module specifier to its package name:
// "@scope/name/sub" becomes "@scope/name" and "name/sub" becomes "name".
func PackageNameFromModulePath(modulePath string) string {
	firstSlash := strings.IndexByte(modulePath, '/')
	if strings.HasPrefix(modulePath, "@") {
		if firstSlash == -1 {
			return modulePath
		}
		secondSlash := strings.IndexByte(modulePath[firstSlash+1:], '/')
		if secondSlash == -1 {
			return modulePath
		}
		return modulePath[:firstSlash+1+secondSlash]
	}
	if firstSlash == -1 {
		return modulePath
	}
	return modulePath[:firstSlash]
}
