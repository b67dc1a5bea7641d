// Package resolver maps a free-text question to the best canned response in a
// dataset table.
//
// Tiers are evaluated in order and the first that produces a response wins:
//
//	exact      normalized query equals a question
//	greeting   query starts with a greeting; answered by a prefix question or a fixed reply
//	scored     keyword overlap score >= threshold
//	contextual up to N related responses, listed as suggestions
//	default    fixed message naming the topics the assistant covers
//
// A Resolver is immutable after New and safe for concurrent use.
package resolver

import (
	"strings"

	"github.com/corey/chatmon/internal/ports"
)

// Result is the outcome of one resolution.
type Result struct {
	Response string
	Tier     ports.Tier
	Question string // matched question; empty for greeting default, contextual and default
	Score    int    // best keyword score seen; zero for exact and greeting tiers
}

// entry is a table pair with its lookup forms precomputed.
type entry struct {
	pair     ports.QAPair
	tokens   map[string]bool // whitespace tokens of the question
	haystack string          // question + "\n" + lower-cased response
}

// Resolver answers queries against one table.
type Resolver struct {
	table   ports.Table
	entries []entry
	opts    Options
}

// New prepares a resolver for table. The table must not be modified afterwards.
func New(table ports.Table, opts Options) *Resolver {
	r := &Resolver{
		table:   table,
		entries: make([]entry, len(table)),
		opts:    opts.withDefaults(),
	}
	for i, p := range table {
		toks := make(map[string]bool)
		for _, f := range strings.Fields(p.Question) {
			toks[f] = true
		}
		r.entries[i] = entry{
			pair:     p,
			tokens:   toks,
			haystack: p.Question + "\n" + strings.ToLower(p.Response),
		}
	}
	return r
}

// Resolve returns the response text for query against table with default options.
func Resolve(query string, table ports.Table) string {
	return New(table, Options{}).Resolve(query).Response
}

// Table returns the table the resolver was built from.
func (r *Resolver) Table() ports.Table {
	return r.table
}

// Options returns the effective options.
func (r *Resolver) Options() Options {
	return r.opts
}

// Resolve runs the tier chain for query. Callers reject empty queries first;
// an empty query falls through to the default tier.
func (r *Resolver) Resolve(query string) Result {
	q := Normalize(query)

	if res, ok := r.exact(q); ok {
		return res
	}
	if res, ok := r.greeting(q); ok {
		return res
	}

	tokens := Tokenize(q, r.opts.MinTokenLength)
	scan := r.scan(q, tokens)
	if scan.best.index >= 0 && scan.best.score >= r.opts.ScoreThreshold {
		p := r.entries[scan.best.index].pair
		return Result{
			Response: p.Response,
			Tier:     ports.TierScored,
			Question: p.Question,
			Score:    scan.best.score,
		}
	}

	if len(scan.related) > 0 {
		return Result{
			Response: r.suggest(scan.related),
			Tier:     ports.TierContextual,
			Score:    scan.best.score,
		}
	}

	return Result{
		Response: r.opts.FallbackReply,
		Tier:     ports.TierDefault,
		Score:    scan.best.score,
	}
}

// exact returns the first pair whose question equals q.
func (r *Resolver) exact(q string) (Result, bool) {
	for _, e := range r.entries {
		if e.pair.Question == q {
			return Result{Response: e.pair.Response, Tier: ports.TierExact, Question: e.pair.Question}, true
		}
	}
	return Result{}, false
}

// greeting short-circuits greeting queries before any scoring. A pair whose
// question prefixes the query answers it; otherwise the fixed reply does.
func (r *Resolver) greeting(q string) (Result, bool) {
	if !r.isGreeting(q) {
		return Result{}, false
	}
	for _, e := range r.entries {
		if strings.HasPrefix(q, e.pair.Question) {
			return Result{Response: e.pair.Response, Tier: ports.TierGreeting, Question: e.pair.Question}, true
		}
	}
	return Result{Response: r.opts.GreetingReply, Tier: ports.TierGreeting}, true
}

func (r *Resolver) isGreeting(q string) bool {
	for _, g := range r.opts.Greetings {
		if strings.HasPrefix(q, g) {
			return true
		}
	}
	return false
}

// suggest formats the contextual tier reply.
func (r *Resolver) suggest(related []int) string {
	var sb strings.Builder
	sb.WriteString(suggestionLead)
	sb.WriteByte('\n')
	for _, i := range related {
		sb.WriteString(suggestionBullet)
		sb.WriteString(r.entries[i].pair.Response)
		sb.WriteByte('\n')
	}
	sb.WriteString(suggestionHint)
	return sb.String()
}
