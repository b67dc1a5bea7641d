package ports

import "time"

// Tier identifies which resolver strategy produced a response.
type Tier string

// Resolver tiers in evaluation order.
const (
	TierExact      Tier = "exact"
	TierGreeting   Tier = "greeting"
	TierScored     Tier = "scored"
	TierContextual Tier = "contextual"
	TierDefault    Tier = "default"
)

// Tiers lists every tier in evaluation order.
var Tiers = []Tier{TierExact, TierGreeting, TierScored, TierContextual, TierDefault}

// Outcome is the record of one resolution, as handed to the stats store.
// Query is the normalized query. Question is the matched pair's question and
// is empty when no single pair was picked.
type Outcome struct {
	Query    string
	Tier     Tier
	Question string
	Score    int
	At       time.Time
}

// StatsStore persists aggregate lookup statistics for dataset curation.
// The backing store (bbolt) is transactional: a crash mid-write cannot
// corrupt previously committed counters. Concurrent reads are safe; writes
// are serialized by the adapter.
type StatsStore interface {
	// Record folds one outcome into the tier counters, the per-question hit
	// counters and, for TierDefault, the unanswered log.
	Record(o Outcome) error

	// Snapshot returns the current counters.
	// Returns an empty, non-nil snapshot for a fresh store.
	Snapshot() (*LookupStats, error)

	// Unanswered returns up to limit unanswered queries, most frequent first.
	// limit <= 0 means no limit.
	Unanswered(limit int) ([]UnansweredQuery, error)

	// Reset removes all counters and the unanswered log.
	// Idempotent: resetting a fresh store is not an error.
	Reset() error
}

// LookupStats holds the aggregate counters kept by a StatsStore.
// LastQueryAt is in Unix seconds.
type LookupStats struct {
	Total        uint64            `json:"total"`
	TierCounts   map[Tier]uint64   `json:"tier_counts"`
	QuestionHits map[string]uint64 `json:"question_hits"`
	LastQueryAt  int64             `json:"last_query_at"`
}

// UnansweredQuery is one entry of the unanswered log. FirstSeen and
// LastSeen are in Unix seconds.
type UnansweredQuery struct {
	Query     string `json:"query"`
	Count     uint64 `json:"count"`
	FirstSeen int64  `json:"first_seen"`
	LastSeen  int64  `json:"last_seen"`
}
