package bbolt

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/corey/chatmon/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

// =============================================================================
// bbolt Stats Store: per-tier counters, question hits, unanswered log
// Expectation: counts survive reopen, datasets are isolated, reset is idempotent
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.db")
	store, err := NewStore(path, "embedded")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStore_FreshSnapshot(t *testing.T) {
	store, _ := newTestStore(t)

	stats, err := store.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Zero(t, stats.Total)
	assert.NotNil(t, stats.TierCounts)
	assert.NotNil(t, stats.QuestionHits)
	assert.Empty(t, stats.TierCounts)

	un, err := store.Unanswered(10)
	require.NoError(t, err)
	assert.Empty(t, un)
}

func TestStore_RecordCountsTiersAndQuestions(t *testing.T) {
	store, _ := newTestStore(t)
	at := time.Unix(1700000000, 0)

	outcomes := []ports.Outcome{
		{Query: "hi", Tier: ports.TierExact, Question: "hi", At: at},
		{Query: "how do i post", Tier: ports.TierScored, Question: "how do i create a post", Score: 12, At: at},
		{Query: "how to post", Tier: ports.TierScored, Question: "how do i create a post", Score: 8, At: at},
		{Query: "hello", Tier: ports.TierGreeting, At: at},
		{Query: "stor", Tier: ports.TierContextual, At: at.Add(time.Second)},
	}
	for _, o := range outcomes {
		require.NoError(t, store.Record(o))
	}

	stats, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), stats.Total)
	assert.Equal(t, map[ports.Tier]uint64{
		ports.TierExact:      1,
		ports.TierScored:     2,
		ports.TierGreeting:   1,
		ports.TierContextual: 1,
	}, stats.TierCounts)
	assert.Equal(t, map[string]uint64{
		"hi":                     1,
		"how do i create a post": 2,
	}, stats.QuestionHits)
	assert.Equal(t, at.Add(time.Second).Unix(), stats.LastQueryAt)

	un, err := store.Unanswered(0)
	require.NoError(t, err)
	assert.Empty(t, un, "only default-tier queries are unanswered")
}

func TestStore_UnansweredLog(t *testing.T) {
	store, _ := newTestStore(t)
	base := time.Unix(1700000000, 0)

	record := func(q string, offset time.Duration) {
		require.NoError(t, store.Record(ports.Outcome{Query: q, Tier: ports.TierDefault, At: base.Add(offset)}))
	}
	record("xyz", 0)
	record("can i go live", 1*time.Second)
	record("can i go live", 2*time.Second)
	record("dark mode", 3*time.Second)

	un, err := store.Unanswered(0)
	require.NoError(t, err)
	require.Len(t, un, 3)

	assert.Equal(t, "can i go live", un[0].Query)
	assert.Equal(t, uint64(2), un[0].Count)
	assert.Equal(t, base.Add(1*time.Second).Unix(), un[0].FirstSeen)
	assert.Equal(t, base.Add(2*time.Second).Unix(), un[0].LastSeen)

	// Equal counts: most recent first.
	assert.Equal(t, "dark mode", un[1].Query)
	assert.Equal(t, "xyz", un[2].Query)

	limited, err := store.Unanswered(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "can i go live", limited[0].Query)
}

func TestStore_TimestampsAreUnixSeconds(t *testing.T) {
	store, _ := newTestStore(t)
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ports.Outcome{Query: "dark mode", Tier: ports.TierDefault, At: at}))

	stats, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, at.Unix(), stats.LastQueryAt)
	assert.Equal(t, at, time.Unix(stats.LastQueryAt, 0).UTC())

	un, err := store.Unanswered(0)
	require.NoError(t, err)
	require.Len(t, un, 1)
	assert.Equal(t, at.Unix(), un[0].FirstSeen)
	assert.Equal(t, at.Unix(), un[0].LastSeen)
}

func TestStore_LongQueryStillRecorded(t *testing.T) {
	store, _ := newTestStore(t)
	long := strings.Repeat("gibberish ", 3500) // 35000 bytes, past bolt.MaxKeySize
	require.Greater(t, len(long), bolt.MaxKeySize)

	require.NoError(t, store.Record(ports.Outcome{Query: long, Tier: ports.TierDefault}))
	require.NoError(t, store.Record(ports.Outcome{Query: long, Tier: ports.TierDefault}))

	stats, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Total)
	assert.Equal(t, uint64(2), stats.TierCounts[ports.TierDefault])

	un, err := store.Unanswered(0)
	require.NoError(t, err)
	require.Len(t, un, 1)
	assert.Equal(t, long, un[0].Query, "full text is kept in the record")
	assert.Equal(t, uint64(2), un[0].Count)
}

func TestStore_LongQuestionCounted(t *testing.T) {
	store, _ := newTestStore(t)
	question := strings.Repeat("é", 20000) // 40000 bytes of two-byte runes

	require.NoError(t, store.Record(ports.Outcome{Query: "q", Tier: ports.TierScored, Question: question}))

	stats, err := store.Snapshot()
	require.NoError(t, err)
	require.Len(t, stats.QuestionHits, 1)
	for name, n := range stats.QuestionHits {
		assert.Equal(t, uint64(1), n)
		assert.LessOrEqual(t, len(name), maxQuestionKey)
		assert.True(t, utf8.ValidString(name), "truncated on a rune boundary")
		assert.True(t, strings.HasPrefix(question, name))
	}
}

func TestStore_EmptyQueryNotLogged(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Record(ports.Outcome{Tier: ports.TierDefault}))

	un, err := store.Unanswered(0)
	require.NoError(t, err)
	assert.Empty(t, un)

	stats, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Total)
	assert.NotZero(t, stats.LastQueryAt, "zero At is stamped with now")
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.Record(ports.Outcome{Query: "reels", Tier: ports.TierExact, Question: "reels"}))
	require.NoError(t, store.Record(ports.Outcome{Query: "zzz", Tier: ports.TierDefault}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path, "embedded")
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Total)
	assert.Equal(t, uint64(1), stats.QuestionHits["reels"])

	un, err := reopened.Unanswered(0)
	require.NoError(t, err)
	require.Len(t, un, 1)
	assert.Equal(t, "zzz", un[0].Query)
}

func TestStore_ScopesAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")

	a, err := NewStore(path, "corpus-a.txt")
	require.NoError(t, err)
	require.NoError(t, a.Record(ports.Outcome{Query: "hi", Tier: ports.TierExact, Question: "hi"}))
	require.NoError(t, a.Close())

	b, err := NewStore(path, "corpus-b.txt")
	require.NoError(t, err)
	defer b.Close()

	stats, err := b.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestStore_EmptyScopeRejected(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "stats.db"), "")
	assert.Error(t, err)
}

func TestStore_Reset(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Record(ports.Outcome{Query: "zzz", Tier: ports.TierDefault}))

	require.NoError(t, store.Reset())
	stats, err := store.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, stats.Total)

	un, err := store.Unanswered(0)
	require.NoError(t, err)
	assert.Empty(t, un)

	// Idempotent
	require.NoError(t, store.Reset())
}

func TestStore_CorruptCounter(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Record(ports.Outcome{Query: "hi", Tier: ports.TierExact, Question: "hi"}))

	require.NoError(t, store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(store.scope).Bucket(bucketTiers).Put([]byte(ports.TierExact), []byte("bad"))
	}))

	_, err := store.Snapshot()
	assert.Error(t, err)
	assert.Error(t, store.Record(ports.Outcome{Query: "hi", Tier: ports.TierExact}))
}

func TestStore_ConcurrentRecord(t *testing.T) {
	store, _ := newTestStore(t)

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				q := fmt.Sprintf("q%d", w)
				assert.NoError(t, store.Record(ports.Outcome{Query: q, Tier: ports.TierDefault}))
			}
		}(w)
	}
	wg.Wait()

	stats, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(workers*perWorker), stats.Total)
	assert.Equal(t, uint64(workers*perWorker), stats.TierCounts[ports.TierDefault])

	un, err := store.Unanswered(0)
	require.NoError(t, err)
	require.Len(t, un, workers)
	for _, u := range un {
		assert.Equal(t, uint64(perWorker), u.Count)
	}
}

func TestEncoding_Counter(t *testing.T) {
	n, err := decodeUint64(encodeUint64(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)

	_, err = decodeUint64([]byte{1, 2, 3})
	assert.Error(t, err)
}
