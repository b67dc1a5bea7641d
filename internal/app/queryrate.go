package app

import (
	"sync"
	"time"
)

// DefaultRateWindow is the rolling window behind Health's queries per minute.
const DefaultRateWindow = 5 * time.Minute

// QueryRate computes a rolling query rate over a fixed window.
// Safe for concurrent use.
type QueryRate struct {
	mu      sync.Mutex
	window  time.Duration
	samples []time.Time
	total   uint64
}

// NewQueryRate creates a tracker with the given rolling window.
func NewQueryRate(window time.Duration) *QueryRate {
	return &QueryRate{window: window}
}

// Record counts one query at the current time. The clock is read under the
// lock, so concurrent callers append in order.
func (r *QueryRate) Record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(time.Now())
}

// RecordAt counts one query at ts. A ts older than the newest sample is
// clamped to it, keeping samples sorted.
func (r *QueryRate) RecordAt(ts time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(ts)
}

// add appends a sample. Callers hold mu.
func (r *QueryRate) add(ts time.Time) {
	if n := len(r.samples); n > 0 && ts.Before(r.samples[n-1]) {
		ts = r.samples[n-1]
	}
	r.samples = append(r.samples, ts)
	r.total++
	r.evict(ts)
}

// PerMin returns the current rate in queries per minute.
func (r *QueryRate) PerMin() float64 {
	return r.PerMinAt(time.Now())
}

// PerMinAt computes the rate as of now: queries still in the window divided
// by the time since the oldest of them. Fewer than two samples give 0.
func (r *QueryRate) PerMinAt(now time.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evict(now)
	if len(r.samples) < 2 {
		return 0
	}
	span := now.Sub(r.samples[0])
	if span <= 0 {
		return 0
	}
	return float64(len(r.samples)) / span.Minutes()
}

// Total returns the lifetime number of recorded queries.
func (r *QueryRate) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// evict drops samples older than the window. Callers hold mu.
func (r *QueryRate) evict(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.samples) && r.samples[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		r.samples = r.samples[i:]
	}
}
