// Package headline canonicalizes headline text for comparison. Clustering and
// trend dedup both run on these forms, so the rules here are deliberately
// fixed: lowercase, punctuation stripped, whitespace collapsed, stopwords and
// short tokens dropped.
package headline

import (
	"strings"
	"unicode"
)

// stopwords are articles, prepositions and connectors that carry no topical
// signal in a headline.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {}, "for": {},
	"to": {}, "and": {}, "or": {}, "at": {}, "by": {}, "with": {}, "from": {},
	"as": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "this": {},
	"that": {}, "it": {}, "its": {}, "after": {}, "over": {}, "into": {},
	"about": {}, "new": {},
}

// Normalize lowercases text, strips punctuation and symbol runes, collapses
// whitespace runs to single spaces and trims. Punctuation-only input yields
// the empty string.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// stripped entirely, no separator inserted
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Keywords returns the token set of the normalized text minus stopwords and
// tokens of length <= 2. An empty result marks the record unclusterable.
func Keywords(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(Normalize(text)) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if len([]rune(tok)) <= 2 {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

// Overlap counts keywords shared by both sets.
func Overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// DisplayKey is the per-bucket dedup key for story display:
// normalized headline joined with the lowercased source name.
func DisplayKey(headline, sourceName string) string {
	return Normalize(headline) + "::" + strings.ToLower(strings.TrimSpace(sourceName))
}
