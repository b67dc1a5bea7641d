// Package ahocorasick provides multi-pattern substring matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library so a query's tokens can be
// located in every dataset entry with one pass per entry.
package ahocorasick

import (
	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/chatmon/internal/ports"
)

// Matcher reports which query tokens occur in a piece of text.
// Build() compiles an automaton; Match() returns the tokens present.
type Matcher struct {
	automaton aho.AhoCorasick
	patterns  []string
	built     bool
}

// NewMatcher compiles patterns into a ready Matcher. It satisfies
// ports.MatcherFactory.
func NewMatcher(patterns []string) ports.PatternMatcher {
	m := &Matcher{}
	m.Build(patterns)
	return m
}

// Build compiles the automaton from the given patterns. Empty patterns are skipped.
func (m *Matcher) Build(patterns []string) {
	m.patterns = make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			m.patterns = append(m.patterns, p)
		}
	}

	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	m.automaton = builder.Build(m.patterns)
	m.built = true
}

// Match returns every pattern found in content, each once, in pattern order.
// Overlapping occurrences are reported, so "post" and "posts" both match "posts".
func (m *Matcher) Match(content string) []string {
	if !m.built || len(m.patterns) == 0 || content == "" {
		return nil
	}

	hit := make([]bool, len(m.patterns))
	n := 0
	iter := m.automaton.IterOverlappingByte([]byte(content))
	for next := iter.Next(); next != nil; next = iter.Next() {
		idx := next.Pattern()
		if !hit[idx] {
			hit[idx] = true
			n++
			if n == len(m.patterns) {
				break
			}
		}
	}
	if n == 0 {
		return nil
	}

	result := make([]string, 0, n)
	for i, ok := range hit {
		if ok {
			result = append(result, m.patterns[i])
		}
	}
	return result
}
