package search

import (
	"strings"
	"unicode"
)

// words splits s into lowercased maximal runs of letters, digits and '_'.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
}

func wordSet(parts ...string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, p := range parts {
		for _, w := range words(p) {
			out[w] = struct{}{}
		}
	}
	return out
}

// overlap counts the members of query also present in other.
func overlap(query, other map[string]struct{}) int {
	n := 0
	for w := range query {
		if _, ok := other[w]; ok {
			n++
		}
	}
	return n
}
