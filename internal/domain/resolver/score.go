package resolver

import (
	"strings"

	"github.com/corey/chatmon/internal/ports"
)

// candidate is the running best of the scoring fold.
type candidate struct {
	index int // entry index; -1 until some entry scores above zero
	score int
}

// scanResult is the fold output: the best-scoring entry and the first
// entries that share any token with the query.
type scanResult struct {
	best    candidate
	related []int
}

// scan scores every entry against the query tokens in table order.
//
// Per token occurrence (duplicates count again), an entry gains
// wholeTokenWeight when the token is one of its question words and
// substringWeight when the token occurs anywhere in its question or response.
// An entry whose question appears inside the query gains containsQuestionBonus.
// Only a strictly higher score replaces the best, so ties keep the earlier
// entry. related collects up to SuggestionLimit entries with a substring hit.
func (r *Resolver) scan(q string, tokens []string) scanResult {
	res := scanResult{best: candidate{index: -1}}
	if len(r.entries) == 0 {
		return res
	}

	var m ports.PatternMatcher
	if len(tokens) > 0 {
		m = r.opts.Matcher(uniqueTokens(tokens))
	}

	for i, e := range r.entries {
		found := make(map[string]bool, len(tokens))
		if m != nil {
			for _, tok := range m.Match(e.haystack) {
				found[tok] = true
			}
		}

		score := 0
		for _, tok := range tokens {
			if e.tokens[tok] {
				score += wholeTokenWeight
			}
			if found[tok] {
				score += substringWeight
			}
		}
		if strings.Contains(q, e.pair.Question) {
			score += containsQuestionBonus
		}

		if score > res.best.score {
			res.best = candidate{index: i, score: score}
		}
		if len(found) > 0 && len(res.related) < r.opts.SuggestionLimit {
			res.related = append(res.related, i)
		}
	}
	return res
}
