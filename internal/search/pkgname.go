package search

import (
	"net/url"
	"strings"
)

var nodeBuiltins = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"sys": true, "timers": true, "tls": true, "trace_events": true, "tty": true,
	"url": true, "util": true, "v8": true, "vm": true, "wasi": true,
	"worker_threads": true, "zlib": true,
}

var blacklistedNames = map[string]bool{
	"node_modules": true,
	"favicon.ico":  true,
}

const maxPackageNameLength = 214

// IsNodeBuiltin reports whether name is a Node.js core module.
func IsNodeBuiltin(name string) bool {
	name = strings.TrimPrefix(name, "node:")
	if i := strings.IndexByte(name, '/'); i != -1 {
		name = name[:i]
	}
	return nodeBuiltins[name]
}

// ValidPackageName reports whether name could be published as a new npm
// package. Builtin module names and legacy forms (upper case, special
// characters) are rejected.
func ValidPackageName(name string) bool {
	if name == "" || len(name) > maxPackageNameLength {
		return false
	}
	if strings.TrimSpace(name) != name {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	if blacklistedNames[strings.ToLower(name)] || nodeBuiltins[name] {
		return false
	}
	if strings.ToLower(name) != name {
		return false
	}
	if strings.ContainsAny(name, "~'!()*") {
		return false
	}

	if strings.HasPrefix(name, "@") {
		scope, pkg, ok := strings.Cut(name[1:], "/")
		if !ok || scope == "" || pkg == "" {
			return false
		}
		if strings.HasPrefix(pkg, ".") || strings.HasPrefix(pkg, "_") {
			return false
		}
		return url.QueryEscape(scope) == scope && url.QueryEscape(pkg) == pkg
	}

	return url.QueryEscape(name) == name
}
