// Package textnorm folds user text into the form every keyword table in Eco
// is written in: lowercase, no diacritics, single spaces.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips accents and collapses whitespace.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// transformers keep state, so a fresh chain per call keeps this safe
	// for concurrent callers.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	return strings.Join(strings.Fields(folded), " ")
}

// ContainsAny reports whether normalized text contains any of the phrases.
// Phrases are expected to be normalized already.
func ContainsAny(text string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if p != "" && strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// WordCount counts whitespace separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
