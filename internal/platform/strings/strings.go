// Package strings provides small string and slice helpers
package strings

import std "strings"

// IfEmpty returns def when in has no items
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustString returns s when it has non-whitespace content and panics naming
// the missing value otherwise
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}
