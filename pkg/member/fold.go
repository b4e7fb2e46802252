// CLAUDE:SUMMARY Unicode folding: case-only for header matching, case plus accents for free-text search.
package member

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold trims s and applies full Unicode case folding, so " STATUS " and
// "status" compare equal. A Caser is stateful, hence one per call.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// FoldSearch is Fold with combining marks removed, so "José" and "jose"
// compare equal. Header binding does not use it.
func FoldSearch(s string) string {
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(strip, Fold(s))
	if err != nil {
		return Fold(s)
	}
	return out
}

// ContainsFolded reports whether needle occurs in s, ignoring case and
// accents. needle must already be passed through FoldSearch.
func ContainsFolded(s, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(FoldSearch(s), needle)
}
