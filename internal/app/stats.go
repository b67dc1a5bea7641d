package app

import (
	"sort"

	"github.com/corey/chatmon/internal/adapters/socket"
)

// DefaultUnansweredLimit caps Unanswered when the caller passes no limit.
const DefaultUnansweredLimit = 20

// LookupStats returns tier counts and the top most-hit questions.
// Implements socket.AppQueries.
func (a *App) LookupStats(top int) (socket.StatsResult, error) {
	a.storeMu.RLock()
	defer a.storeMu.RUnlock()
	if a.store == nil {
		return socket.StatsResult{TierCounts: map[string]uint64{}, TopQuestions: []socket.RankedItem{}}, nil
	}
	snap, err := a.store.Snapshot()
	if err != nil {
		return socket.StatsResult{}, err
	}

	tiers := make(map[string]uint64, len(snap.TierCounts))
	for tier, n := range snap.TierCounts {
		tiers[string(tier)] = n
	}
	return socket.StatsResult{
		Enabled:      true,
		Total:        snap.Total,
		TierCounts:   tiers,
		TopQuestions: sortAndTruncate(snap.QuestionHits, top),
		LastQueryAt:  snap.LastQueryAt,
	}, nil
}

// Unanswered returns the most frequent queries that got the default reply.
// Implements socket.AppQueries.
func (a *App) Unanswered(limit int) (socket.UnansweredResult, error) {
	a.storeMu.RLock()
	defer a.storeMu.RUnlock()
	if a.store == nil {
		return socket.UnansweredResult{Queries: []socket.UnansweredItem{}}, nil
	}
	if limit <= 0 {
		limit = DefaultUnansweredLimit
	}
	queries, err := a.store.Unanswered(limit)
	if err != nil {
		return socket.UnansweredResult{}, err
	}

	items := make([]socket.UnansweredItem, len(queries))
	for i, q := range queries {
		items[i] = socket.UnansweredItem{
			Query:     q.Query,
			Count:     q.Count,
			FirstSeen: q.FirstSeen,
			LastSeen:  q.LastSeen,
		}
	}
	return socket.UnansweredResult{Queries: items, Count: len(items)}, nil
}

// ResetStats clears every counter and the unanswered log.
func (a *App) ResetStats() error {
	a.storeMu.RLock()
	defer a.storeMu.RUnlock()
	if a.store == nil {
		return ErrStatsDisabled
	}
	return a.store.Reset()
}

// sortAndTruncate ranks by count descending, then name ascending.
// limit <= 0 keeps everything.
func sortAndTruncate(m map[string]uint64, limit int) []socket.RankedItem {
	items := make([]socket.RankedItem, 0, len(m))
	for name, count := range m {
		items = append(items, socket.RankedItem{Name: name, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
