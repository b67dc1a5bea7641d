package resolver

import (
	"strings"
	"unicode/utf8"
)

// Normalize trims and lower-cases a raw query.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Tokenize splits a normalized query on whitespace and keeps tokens of at
// least minLen characters. Duplicates are kept: each occurrence scores.
func Tokenize(normalized string, minLen int) []string {
	var tokens []string
	for _, f := range strings.Fields(normalized) {
		if utf8.RuneCountInString(f) >= minLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// uniqueTokens returns tokens without duplicates, first occurrence order.
func uniqueTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
