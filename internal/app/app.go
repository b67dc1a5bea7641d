// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the chatmon daemon: create, start, stop.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/corey/chatmon/internal/adapters/ahocorasick"
	"github.com/corey/chatmon/internal/adapters/bbolt"
	"github.com/corey/chatmon/internal/adapters/socket"
	"github.com/corey/chatmon/internal/adapters/source"
	"github.com/corey/chatmon/internal/adapters/web"
	"github.com/corey/chatmon/internal/config"
	"github.com/corey/chatmon/internal/domain/dataset"
	"github.com/corey/chatmon/internal/domain/resolver"
	"github.com/corey/chatmon/internal/domain/status"
	"github.com/corey/chatmon/internal/logger"
	"github.com/corey/chatmon/internal/metrics"
	"github.com/corey/chatmon/internal/ports"
)

// ErrEmptyQuery is returned by Ask for blank queries.
var ErrEmptyQuery = ports.ErrEmptyQuery

// ErrStatsDisabled is returned by stats operations when recording is off.
var ErrStatsDisabled = errors.New("stats are disabled")

// App is the chatmon application: one dataset, one resolver, and the
// services that expose them.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Settings    *config.Config
	Source      ports.DatasetSource
	Metrics     *metrics.Metrics
	Server      *socket.Server
	WebServer   *web.Server // nil when the HTTP API is disabled
	Watcher     ports.Watcher

	active     atomic.Pointer[loaded] // nil until the first load
	loadMu     sync.Mutex             // serializes loads; readers never take it
	reloads    atomic.Int64
	rate       *QueryRate
	statusPath string // written on every swap once the daemon starts
	started    time.Time
	stopOnce   sync.Once

	storeMu sync.RWMutex // guards store; held for reading across each use
	store   *bbolt.Store // nil when stats are disabled or closed
}

// loaded is one immutable generation of the dataset.
type loaded struct {
	resolver *resolver.Resolver
	report   dataset.LoadReport
	at       time.Time
}

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string
	Settings    *config.Config      // nil = config.Default()
	DBPath      string              // path to bbolt file (default: .chatmon/stats.db)
	Source      ports.DatasetSource // nil = built from Settings.Dataset
}

// New creates an App with all dependencies wired. Does not load the dataset
// or start services.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	paths := NewPaths(cfg.ProjectRoot)
	if cfg.DBPath == "" {
		cfg.DBPath = paths.DB
	}
	if cfg.Source == nil {
		cfg.Source = source.New(cfg.Settings.Dataset, cfg.Settings.DatasetTimeout)
	}

	a := &App{
		ProjectRoot: cfg.ProjectRoot,
		Paths:       paths,
		Settings:    cfg.Settings,
		Source:      cfg.Source,
		Metrics:     metrics.New(),
		rate:        NewQueryRate(DefaultRateWindow),
	}

	if cfg.Settings.Stats {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("create stats dir: %w", err)
		}
		store, err := bbolt.NewStore(cfg.DBPath, cfg.Source.Name())
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = store
	}

	a.Server = socket.NewServer(a, socket.SocketPath(cfg.ProjectRoot))
	if cfg.Settings.HTTP.Enabled {
		a.WebServer = web.NewServer(a, a.Metrics, paths.AddrFile)
	}
	return a, nil
}

// resolverOptions maps settings onto resolver options.
func (a *App) resolverOptions() resolver.Options {
	rc := a.Settings.Resolver
	return resolver.Options{
		ScoreThreshold:  rc.ScoreThreshold,
		MinTokenLength:  rc.MinTokenLength,
		SuggestionLimit: rc.SuggestionLimit,
		Greetings:       rc.Greetings,
		GreetingReply:   rc.GreetingReply,
		FallbackReply:   rc.FallbackReply,
		Matcher:         ahocorasick.NewMatcher,
	}
}

// Start loads the dataset and brings up the socket server, the HTTP API and
// the dataset watcher. Only the socket server is fatal.
func (a *App) Start() error {
	a.started = time.Now()
	if err := a.Paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create dirs: %w", err)
	}
	a.statusPath = a.Paths.Status

	ctx, cancel := context.WithTimeout(context.Background(), a.loadTimeout())
	a.ensureLoaded(ctx)
	cancel()
	a.loadMu.Lock()
	a.writeStatus(a.active.Load())
	a.loadMu.Unlock()

	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	if a.WebServer != nil {
		if err := a.WebServer.Start(a.Settings.HTTP.Addr); err != nil {
			logger.Log.Warn("HTTP API unavailable", zap.Error(err))
		}
	}
	if err := a.startWatcher(); err != nil {
		logger.Log.Warn("dataset watcher unavailable", zap.Error(err))
	}
	return nil
}

// Stop shuts down all services and closes the stats store. Idempotent.
func (a *App) Stop() error {
	a.stopOnce.Do(func() {
		if a.Watcher != nil {
			a.Watcher.Stop()
		}
		if a.WebServer != nil {
			a.WebServer.Stop()
		}
		a.Server.Stop()
		a.closeStore()
	})
	return nil
}

// Close releases the stats store without touching services. For
// in-process use, where Start was never called.
func (a *App) Close() error {
	return a.closeStore()
}

func (a *App) closeStore() error {
	a.storeMu.Lock()
	defer a.storeMu.Unlock()
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *App) loadTimeout() time.Duration {
	if a.Settings.DatasetTimeout > 0 {
		return a.Settings.DatasetTimeout
	}
	return config.DefaultDatasetTimeout
}

// ensureLoaded returns the active generation, loading the dataset on first
// use. Concurrent first callers share one load.
func (a *App) ensureLoaded(ctx context.Context) *loaded {
	if cur := a.active.Load(); cur != nil {
		return cur
	}
	a.loadMu.Lock()
	defer a.loadMu.Unlock()
	if cur := a.active.Load(); cur != nil {
		return cur
	}
	next := a.load(ctx)
	a.swap(next)
	return next
}

// swap activates a generation. Callers hold loadMu.
func (a *App) swap(next *loaded) {
	a.active.Store(next)
	a.writeStatus(next)
}

// writeStatus publishes the generation to the status file, if one is set.
// Callers hold loadMu.
func (a *App) writeStatus(cur *loaded) {
	if a.statusPath == "" {
		return
	}
	data := status.Generate(cur.report, cur.resolver.Table().Len(), cur.at, int(a.reloads.Load()))
	if err := status.WriteJSON(a.statusPath, data); err != nil {
		logger.Log.Warn("write status file", zap.Error(err))
	}
}

// load fetches and parses the dataset and builds a resolver over it.
// Callers hold loadMu.
func (a *App) load(ctx context.Context) *loaded {
	table, report := dataset.Load(ctx, a.Source)
	a.Metrics.ObserveLoad(table.Len(), report.Dropped, report.Fallback, report.Elapsed)

	log := logger.Log.With(
		zap.String("source", report.Source),
		zap.Int("entries", table.Len()),
		zap.Int("dropped", report.Dropped),
		logger.WithDuration(report.Elapsed),
	)
	if report.Fallback {
		log.Warn("dataset unavailable, using built-in table", zap.Error(report.Err))
	} else {
		log.Debug("dataset loaded")
	}

	return &loaded{
		resolver: resolver.New(table, a.resolverOptions()),
		report:   report,
		at:       time.Now(),
	}
}

// table returns the active table, loading it if needed.
func (a *App) table(ctx context.Context) ports.Table {
	return a.ensureLoaded(ctx).resolver.Table()
}

// LoadReport returns the report of the active load and whether one exists.
func (a *App) LoadReport() (dataset.LoadReport, bool) {
	cur := a.active.Load()
	if cur == nil {
		return dataset.LoadReport{}, false
	}
	return cur.report, true
}

// Ask resolves one query against the active table, loading it on first use.
// Implements socket.AppQueries.
func (a *App) Ask(ctx context.Context, query string) (socket.AskResult, error) {
	if strings.TrimSpace(query) == "" {
		return socket.AskResult{}, ErrEmptyQuery
	}
	cur := a.ensureLoaded(ctx)

	start := time.Now()
	res := cur.resolver.Resolve(query)
	elapsed := time.Since(start)
	a.rate.Record()

	a.Metrics.ObserveResolution(string(res.Tier), res.Score, elapsed)
	a.record(query, res, start)
	logger.Log.Debug("query resolved",
		logger.WithTier(string(res.Tier)),
		zap.Int("score", res.Score),
		zap.String("question", res.Question),
		logger.WithDuration(elapsed),
	)

	return socket.AskResult{
		Response:  res.Response,
		Tier:      string(res.Tier),
		Question:  res.Question,
		Score:     res.Score,
		ElapsedUs: elapsed.Microseconds(),
	}, nil
}

// record folds a resolution into the stats store. Failures are logged; a
// stats problem never fails a query.
func (a *App) record(query string, res resolver.Result, at time.Time) {
	a.storeMu.RLock()
	defer a.storeMu.RUnlock()
	if a.store == nil {
		return
	}
	err := a.store.Record(ports.Outcome{
		Query:    resolver.Normalize(query),
		Tier:     res.Tier,
		Question: res.Question,
		Score:    res.Score,
		At:       at,
	})
	if err != nil {
		logger.Log.Warn("record lookup stats", zap.Error(err))
	}
}

// Reload refetches the dataset and swaps in a new resolver. When the fetch
// fails while a real dataset is active, the active table is kept and an
// error is returned. Implements socket.AppQueries.
func (a *App) Reload(ctx context.Context) (socket.ReloadResult, error) {
	a.loadMu.Lock()
	defer a.loadMu.Unlock()

	next := a.load(ctx)
	rep := next.report
	result := socket.ReloadResult{
		Dataset:   rep.Source,
		Entries:   next.resolver.Table().Len(),
		Rows:      rep.Rows,
		Dropped:   rep.Dropped,
		Fallback:  rep.Fallback,
		ElapsedMs: rep.Elapsed.Milliseconds(),
	}
	if rep.Err != nil {
		result.Reason = rep.Err.Error()
	}

	if cur := a.active.Load(); rep.Fallback && cur != nil && !cur.report.Fallback {
		return result, fmt.Errorf("reload %s: %w (keeping %d entries)",
			rep.Source, rep.Err, cur.resolver.Table().Len())
	}

	a.reloads.Add(1)
	a.swap(next)
	return result, nil
}

// Health reports the active dataset. It never triggers a load.
// Implements socket.AppQueries.
func (a *App) Health() socket.HealthResult {
	h := socket.HealthResult{
		Status:  "loading",
		Dataset: a.Source.Name(),
		Reloads: int(a.reloads.Load()),

		Asked:         a.rate.Total(),
		QueriesPerMin: a.rate.PerMin(),
	}
	if !a.started.IsZero() {
		h.Uptime = time.Since(a.started).Round(time.Second).String()
	}
	if cur := a.active.Load(); cur != nil {
		h.Status = "ok"
		if cur.report.Fallback {
			h.Status = "degraded"
		}
		h.Entries = cur.resolver.Table().Len()
		h.Fallback = cur.report.Fallback
		h.LoadedAt = cur.at.Unix()
	}
	return h
}
