// Package metrics holds the Prometheus collectors shared by the catalog
// decorators and resolution sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Cache results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Fetch outcomes recorded by sessions.
const (
	FetchCommitted  = "committed"
	FetchSuperseded = "superseded"
	FetchFailed     = "failed"
	FetchRetried    = "retried"
)

// Metrics groups the collectors for catalog lookups, caching and session
// fetches.
type Metrics struct {
	CatalogLookups        *prometheus.CounterVec
	CatalogLookupDuration prometheus.Histogram
	CacheResults          *prometheus.CounterVec
	SessionFetches        *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg creates
// unregistered collectors, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CatalogLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressfields_catalog_lookups_total",
			Help: "Country metadata lookups by outcome",
		}, []string{"outcome"}),
		CatalogLookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "addressfields_catalog_lookup_duration_seconds",
			Help:    "Duration of country metadata lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		CacheResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressfields_catalog_cache_results_total",
			Help: "Country metadata cache lookups by result",
		}, []string{"result"}),
		SessionFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressfields_session_fetches_total",
			Help: "Session metadata fetches by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveLookup records a catalog lookup that started at start.
func (m *Metrics) ObserveLookup(start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.CatalogLookups.WithLabelValues(outcome).Inc()
	m.CatalogLookupDuration.Observe(time.Since(start).Seconds())
}

// IncCache records a cache lookup result.
func (m *Metrics) IncCache(result string) {
	if m == nil {
		return
	}
	m.CacheResults.WithLabelValues(result).Inc()
}

// IncFetch records a session fetch outcome.
func (m *Metrics) IncFetch(outcome string) {
	if m == nil {
		return
	}
	m.SessionFetches.WithLabelValues(outcome).Inc()
}
