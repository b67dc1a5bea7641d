package resolver

import (
	"strings"

	"github.com/corey/chatmon/internal/ports"
)

// substringMatcher is the dependency-free PatternMatcher used when no
// factory is injected: one strings.Contains per pattern.
type substringMatcher struct {
	patterns []string
}

func newSubstringMatcher(patterns []string) ports.PatternMatcher {
	p := make([]string, 0, len(patterns))
	for _, s := range patterns {
		if s != "" {
			p = append(p, s)
		}
	}
	return &substringMatcher{patterns: p}
}

// Match returns the patterns present in content, in pattern order.
func (m *substringMatcher) Match(content string) []string {
	var found []string
	for _, p := range m.patterns {
		if strings.Contains(content, p) {
			found = append(found, p)
		}
	}
	return found
}
