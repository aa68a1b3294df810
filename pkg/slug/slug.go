// Package slug turns arbitrary titles into URL- and filename-safe slugs.
// The engine uses it for attachment download filenames.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes unicode, strips combining marks (diacritics) and
// recomposes, so "Café" folds to "Cafe".
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Make converts s into a lowercase hyphen-separated slug. Diacritics are
// folded to their base letters; anything that is not a letter or digit
// becomes a separator; runs of separators collapse.
func Make(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
	}

	return b.String()
}

// MakeWithFallback returns Make(s), or fallback when the slug comes out empty
// (e.g. the input was all punctuation).
func MakeWithFallback(s, fallback string) string {
	if out := Make(s); out != "" {
		return out
	}
	return fallback
}
