package ports

// PatternMatcher finds which of a fixed set of patterns occur in content using
// multi-pattern matching (Aho-Corasick). A single pass over the content finds
// every pattern regardless of how many patterns are in the set.
//
// The resolver builds one matcher per query (patterns = query tokens) and
// scans each pair's question and lower-cased response with it.
type PatternMatcher interface {
	// Match returns the distinct patterns found in content, in first-seen
	// order. Returns nil if nothing matches. Content is matched as-is
	// (caller normalizes case).
	Match(content string) []string
}

// MatcherFactory compiles a PatternMatcher for the given patterns.
// Empty patterns must be tolerated (the matcher then never matches).
type MatcherFactory func(patterns []string) PatternMatcher
