// Package metrics exposes Prometheus instruments for resolutions, dataset
// loads and the HTTP API. Each Metrics owns its registry so daemons and tests
// never collide on global registration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chatmon"

// Metrics holds all instruments.
type Metrics struct {
	registry *prometheus.Registry

	// Resolver
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration prometheus.Histogram
	ResolutionScore    prometheus.Histogram

	// Dataset
	DatasetEntries      prometheus.Gauge
	DatasetDroppedRows  prometheus.Gauge
	DatasetLoadsTotal   *prometheus.CounterVec
	DatasetLoadDuration prometheus.Histogram

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all instruments on a fresh registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ResolutionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Total queries resolved, by tier",
			},
			[]string{"tier"},
		),
		ResolutionDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolution_duration_seconds",
				Help:      "Time spent resolving one query",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),
		ResolutionScore: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolution_best_score",
				Help:      "Best keyword score seen per scored query",
				Buckets:   []float64{0, 1, 3, 6, 9, 12, 18, 30},
			},
		),

		DatasetEntries: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_entries",
				Help:      "Pairs in the active dataset table",
			},
		),
		DatasetDroppedRows: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_dropped_rows",
				Help:      "Rows dropped while parsing the active dataset",
			},
		),
		DatasetLoadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_loads_total",
				Help:      "Dataset loads, by result (ok or fallback)",
			},
			[]string{"result"},
		),
		DatasetLoadDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dataset_load_duration_seconds",
				Help:      "Time spent fetching and parsing the dataset",
				Buckets:   prometheus.DefBuckets,
			},
		),

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"method", "path", "status"},
		),
	}
}

// ObserveResolution records one resolved query.
func (m *Metrics) ObserveResolution(tier string, score int, elapsed time.Duration) {
	m.ResolutionsTotal.WithLabelValues(tier).Inc()
	m.ResolutionDuration.Observe(elapsed.Seconds())
	if score > 0 {
		m.ResolutionScore.Observe(float64(score))
	}
}

// ObserveLoad records one dataset load.
func (m *Metrics) ObserveLoad(entries, dropped int, fallback bool, elapsed time.Duration) {
	result := "ok"
	if fallback {
		result = "fallback"
	}
	m.DatasetLoadsTotal.WithLabelValues(result).Inc()
	m.DatasetLoadDuration.Observe(elapsed.Seconds())
	m.DatasetEntries.Set(float64(entries))
	m.DatasetDroppedRows.Set(float64(dropped))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
