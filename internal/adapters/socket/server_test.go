package socket

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/chatmon/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Unix Socket Daemon: JSON-over-socket protocol for ask, stats, reload, shutdown
// =============================================================================

// fakeQueries implements AppQueries with canned answers.
type fakeQueries struct {
	mu       sync.Mutex
	asked    []string
	reloads  int
	statsTop int // last top requested through LookupStats
}

func (f *fakeQueries) Ask(ctx context.Context, query string) (AskResult, error) {
	if query == "" {
		return AskResult{}, ports.ErrEmptyQuery
	}
	f.mu.Lock()
	f.asked = append(f.asked, query)
	f.mu.Unlock()
	return AskResult{Response: "Tap the + icon.", Tier: "scored", Question: "how do i create a post", Score: 17}, nil
}

func (f *fakeQueries) Health() HealthResult {
	return HealthResult{Status: "ok", Dataset: "embedded:datasets/chatmon.txt", Entries: 65}
}

func (f *fakeQueries) LookupStats(top int) (StatsResult, error) {
	f.mu.Lock()
	f.statsTop = top
	f.mu.Unlock()

	// 30 ranked questions, most hit first.
	items := make([]RankedItem, 0, 30)
	for i := 0; i < 30; i++ {
		items = append(items, RankedItem{Name: fmt.Sprintf("question %02d", i), Count: uint64(30 - i)})
	}
	if top > 0 && len(items) > top {
		items = items[:top]
	}
	return StatsResult{
		Enabled:      true,
		Total:        3,
		TierCounts:   map[string]uint64{"exact": 2, "default": 1},
		TopQuestions: items,
	}, nil
}

func (f *fakeQueries) lastStatsTop() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsTop
}

func (f *fakeQueries) Unanswered(limit int) (UnansweredResult, error) {
	items := []UnansweredItem{{Query: "dark mode", Count: 3}, {Query: "xyz", Count: 1}}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return UnansweredResult{Queries: items, Count: len(items)}, nil
}

func (f *fakeQueries) Reload(ctx context.Context) (ReloadResult, error) {
	f.mu.Lock()
	f.reloads++
	f.mu.Unlock()
	return ReloadResult{Dataset: "faq.txt", Entries: 12, Rows: 13, Dropped: 1}, nil
}

// testSocketPath returns a unique socket path for a test.
func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sock")
}

func startServer(t *testing.T) (*Server, *Client, *fakeQueries) {
	t.Helper()
	q := &fakeQueries{}
	srv := NewServer(q, testSocketPath(t))
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return srv, NewClient(srv.Addr()), q
}

func TestServer_Ask(t *testing.T) {
	_, client, q := startServer(t)

	result, err := client.Ask("how do I create a post on this app")
	require.NoError(t, err)
	assert.Equal(t, "Tap the + icon.", result.Response)
	assert.Equal(t, "scored", result.Tier)
	assert.Equal(t, 17, result.Score)
	assert.Equal(t, []string{"how do I create a post on this app"}, q.asked)
}

func TestServer_AskEmptyQuery(t *testing.T) {
	_, client, _ := startServer(t)

	_, err := client.Ask("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty query")
}

func TestServer_Health(t *testing.T) {
	_, client, _ := startServer(t)

	result, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, 65, result.Entries)
}

func TestServer_StatsAndUnanswered(t *testing.T) {
	_, client, _ := startServer(t)

	stats, err := client.Stats(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.Total)
	assert.Equal(t, uint64(2), stats.TierCounts["exact"])
	require.Len(t, stats.TopQuestions, 1)
	assert.Equal(t, "question 00", stats.TopQuestions[0].Name)

	un, err := client.Unanswered(1)
	require.NoError(t, err)
	require.Equal(t, 1, un.Count)
	assert.Equal(t, "dark mode", un.Queries[0].Query)
}

func TestServer_StatsHonorsTop(t *testing.T) {
	_, client, q := startServer(t)

	stats, err := client.Stats(25)
	require.NoError(t, err)
	assert.Len(t, stats.TopQuestions, 25, "more than the default ten")
	assert.Equal(t, 25, q.lastStatsTop())

	stats, err = client.Stats(0)
	require.NoError(t, err)
	assert.Len(t, stats.TopQuestions, DefaultStatsTop)
	assert.Equal(t, DefaultStatsTop, q.lastStatsTop())
}

func TestServer_Reload(t *testing.T) {
	_, client, q := startServer(t)

	result, err := client.Reload()
	require.NoError(t, err)
	assert.Equal(t, 12, result.Entries)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, 1, q.reloads)
}

func TestServer_UnknownMethodAndBadJSON(t *testing.T) {
	srv, _, _ := startServer(t)

	conn, err := net.Dial("unix", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewScanner(conn)

	_, err = conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	require.True(t, reader.Scan())
	var resp Response
	require.NoError(t, json.Unmarshal(reader.Bytes(), &resp))
	assert.Equal(t, "invalid request JSON", resp.Error)

	_, err = conn.Write([]byte(`{"id":"abc","method":"nope"}` + "\n"))
	require.NoError(t, err)
	require.True(t, reader.Scan())
	require.NoError(t, json.Unmarshal(reader.Bytes(), &resp))
	assert.Equal(t, "abc", resp.ID)
	assert.Contains(t, resp.Error, "unknown method")
}

func TestServer_Shutdown(t *testing.T) {
	srv, client, _ := startServer(t)

	require.NoError(t, client.Shutdown())
	select {
	case <-srv.ShutdownCh():
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown channel not closed")
	}

	require.NoError(t, srv.Stop())
	assert.False(t, client.Ping())
}

func TestServer_StaleSocket(t *testing.T) {
	path := testSocketPath(t)
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	// Simulate a crashed daemon: unlink disabled so the file stays behind.
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	ln.Close()

	srv := NewServer(&fakeQueries{}, path)
	require.NoError(t, srv.Start(), "stale socket should be replaced")
	defer srv.Stop()
	assert.True(t, NewClient(path).Ping())
}

func TestServer_AlreadyRunning(t *testing.T) {
	srv, _, _ := startServer(t)

	second := NewServer(&fakeQueries{}, srv.Addr())
	err := second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestServer_StopClosesIdleConnections(t *testing.T) {
	srv, _, _ := startServer(t)

	conn, err := net.Dial("unix", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		srv.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an idle client")
	}
}

func TestServer_ConcurrentClients(t *testing.T) {
	_, client, q := startServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Ask("reels")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, q.asked, 20)
}

func TestSocketPath_Stable(t *testing.T) {
	a := SocketPath("/tmp/project")
	assert.Equal(t, a, SocketPath("/tmp/project"))
	assert.NotEqual(t, a, SocketPath("/tmp/other"))
	assert.Regexp(t, `^/tmp/chatmon-[0-9a-f]{12}\.sock$`, a)
}
