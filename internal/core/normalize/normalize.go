// Package normalize folds free-form payload values into comparable tokens.
// Pipeline order
// 1 strip control bytes and invalid UTF-8
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove zero-width and format characters
// 5 Width fold fullwidth to ASCII
// 6 Collapse whitespace runs to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Fold returns the comparable form of s
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	return strings.Join(strings.Fields(ns), " ")
}

// Canonical matches s against allowed after folding both sides and returns the
// allowed spelling, so "Eng_ng " resolves to "eng_NG"
func Canonical(s string, allowed []string) (string, bool) {
	f := Fold(s)
	if f == "" {
		return "", false
	}
	for _, a := range allowed {
		if Fold(a) == f {
			return a, true
		}
	}
	return "", false
}

// LanguageTag parses a campaign language code such as "eng_NG" as a BCP 47 tag
func LanguageTag(code string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}
