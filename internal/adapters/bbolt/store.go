// Package bbolt implements ports.StatsStore using bbolt (embedded B+ tree).
// Each dataset gets its own top-level bucket. Within that bucket, "tiers" and
// "questions" sub-buckets hold counters and "unanswered" holds JSON records of
// queries that reached the default tier, keyed by a hash of the query so any
// query length fits a bbolt key. Timestamps are Unix seconds. Writes are
// transactional, so a crash mid-write cannot corrupt previously committed counts.
package bbolt

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/corey/chatmon/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketTiers      = []byte("tiers")
	bucketQuestions  = []byte("questions")
	bucketUnanswered = []byte("unanswered")
	bucketMeta       = []byte("meta")
	keyTotal         = []byte("total")
	keyLastQueryAt   = []byte("last_query_at")
)

// maxQuestionKey caps per-question counter keys well below bolt.MaxKeySize.
// Longer questions share the counter of their truncated prefix.
const maxQuestionKey = 4096

// Store implements ports.StatsStore backed by bbolt.
type Store struct {
	db    *bolt.DB
	scope []byte
}

// NewStore opens (or creates) a bbolt database at the given path. Stats are
// kept under scope, normally the dataset source name, so switching datasets
// does not mix their counts.
func NewStore(path, scope string) (*Store, error) {
	if scope == "" {
		return nil, fmt.Errorf("bbolt open: empty scope")
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db, scope: []byte(scope)}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record counts one resolution. Pairs matched by the exact, greeting or
// scored tiers bump their question's hit count; default-tier queries are
// added to the unanswered log.
func (s *Store) Record(o ports.Outcome) error {
	at := o.At
	if at.IsZero() {
		at = time.Now()
	}
	ts := at.Unix()

	return s.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(s.scope)
		if err != nil {
			return err
		}

		meta, err := root.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := incr(meta, keyTotal, 1); err != nil {
			return err
		}
		if err := meta.Put(keyLastQueryAt, encodeUint64(uint64(ts))); err != nil {
			return err
		}

		tiers, err := root.CreateBucketIfNotExists(bucketTiers)
		if err != nil {
			return err
		}
		if err := incr(tiers, []byte(o.Tier), 1); err != nil {
			return err
		}

		if o.Question != "" {
			qb, err := root.CreateBucketIfNotExists(bucketQuestions)
			if err != nil {
				return err
			}
			if err := incr(qb, questionKey(o.Question), 1); err != nil {
				return err
			}
		}

		if o.Tier == ports.TierDefault && o.Query != "" {
			ub, err := root.CreateBucketIfNotExists(bucketUnanswered)
			if err != nil {
				return err
			}
			return putUnanswered(ub, o.Query, ts)
		}
		return nil
	})
}

// questionKey returns q as a counter key, truncated to maxQuestionKey bytes
// on a rune boundary.
func questionKey(q string) []byte {
	if len(q) <= maxQuestionKey {
		return []byte(q)
	}
	n := maxQuestionKey
	for n > 0 && !utf8.RuneStart(q[n]) {
		n--
	}
	return []byte(q[:n])
}

// unansweredKey is the bucket key of a logged query. The full text lives in
// the record.
func unansweredKey(query string) []byte {
	sum := sha256.Sum256([]byte(query))
	return []byte(hex.EncodeToString(sum[:]))
}

// putUnanswered upserts the unanswered record for query.
func putUnanswered(b *bolt.Bucket, query string, ts int64) error {
	key := unansweredKey(query)
	rec := ports.UnansweredQuery{Query: query, FirstSeen: ts}
	if v := b.Get(key); v != nil {
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("unmarshal unanswered %q: %w", query, err)
		}
	}
	rec.Count++
	rec.LastSeen = ts

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal unanswered: %w", err)
	}
	return b.Put(key, data)
}

// Snapshot returns the accumulated counters. A fresh store returns zero
// counts with non-nil maps.
func (s *Store) Snapshot() (*ports.LookupStats, error) {
	stats := &ports.LookupStats{
		TierCounts:   make(map[ports.Tier]uint64),
		QuestionHits: make(map[string]uint64),
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(s.scope)
		if root == nil {
			return nil
		}

		if meta := root.Bucket(bucketMeta); meta != nil {
			if v := meta.Get(keyTotal); v != nil {
				n, err := decodeUint64(v)
				if err != nil {
					return fmt.Errorf("total: %w", err)
				}
				stats.Total = n
			}
			if v := meta.Get(keyLastQueryAt); v != nil {
				n, err := decodeUint64(v)
				if err != nil {
					return fmt.Errorf("last query: %w", err)
				}
				stats.LastQueryAt = int64(n)
			}
		}

		tiers, err := readCounters(root.Bucket(bucketTiers))
		if err != nil {
			return fmt.Errorf("tiers: %w", err)
		}
		for k, n := range tiers {
			stats.TierCounts[ports.Tier(k)] = n
		}

		hits, err := readCounters(root.Bucket(bucketQuestions))
		if err != nil {
			return fmt.Errorf("questions: %w", err)
		}
		stats.QuestionHits = hits
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Unanswered returns logged default-tier queries, most frequent first, ties
// broken by most recent. limit <= 0 returns all of them.
func (s *Store) Unanswered(limit int) ([]ports.UnansweredQuery, error) {
	var out []ports.UnansweredQuery

	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(s.scope)
		if root == nil {
			return nil
		}
		ub := root.Bucket(bucketUnanswered)
		if ub == nil {
			return nil
		}
		return ub.ForEach(func(k, v []byte) error {
			var rec ports.UnansweredQuery
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal unanswered %q: %w", k, err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].LastSeen > out[j].LastSeen
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Reset removes all stats for the store's scope.
// Idempotent: resetting an empty store is not an error.
func (s *Store) Reset() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.scope); err == bolt.ErrBucketNotFound {
			return nil // idempotent
		} else {
			return err
		}
	})
}
