// Package mesh builds the in-memory semantic index used for internal-link
// relevance ranking.
package mesh

import "strings"

// stopWords is a small language-agnostic set; titles and slugs are short
// enough that a fuller list buys nothing.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "has": {}, "had": {}, "how": {}, "its": {},
	"who": {}, "what": {}, "with": {}, "this": {}, "that": {}, "from": {},
	"they": {}, "will": {}, "your": {}, "best": {}, "top": {},
}

// Tokenize lowercases text, strips punctuation, and returns the set of
// tokens longer than two characters that are not stop words.
func Tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})

	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := b.String()
		b.Reset()
		if len(tok) <= 2 {
			return
		}
		if _, stop := stopWords[tok]; stop {
			return
		}
		tokens[tok] = struct{}{}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// Relevance returns the Jaccard similarity of two token sets in [0,1].
// Two empty sets score 0, not NaN.
func Relevance(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
