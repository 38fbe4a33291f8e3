// Package metrics exposes Prometheus counters for the catalog workflows.
//
// Usage:
//
//	m := metrics.New()
//	m.RecordSearch(len(results) > 0)
//	m.RecordBorrow(metrics.OutcomeOK)
//	http.Handle("/metrics", m.Handler())
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for borrow and reserve attempts.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeAvailable   = "available"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
)

// Metrics holds the collectors and the registry they are registered in.
type Metrics struct {
	registry *prometheus.Registry

	// SearchesTotal counts ranked searches by result ("hit" or "miss").
	SearchesTotal *prometheus.CounterVec

	// DiscoverHits tracks how many hits each discover query returned.
	DiscoverHits prometheus.Histogram

	// BorrowsTotal and ReservesTotal count attempts by outcome.
	BorrowsTotal  *prometheus.CounterVec
	ReservesTotal *prometheus.CounterVec

	// RecommendationSize tracks how many entries each recommendation returned.
	RecommendationSize prometheus.Histogram

	// OverdueNotificationsTotal counts notifications created by the sweep.
	OverdueNotificationsTotal prometheus.Counter

	// CatalogSize is the number of catalog entries after the last change.
	CatalogSize prometheus.Gauge

	// LoginsTotal counts login attempts by result.
	LoginsTotal *prometheus.CounterVec
}

// New creates a Metrics with a private registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SearchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_searches_total",
			Help: "Total number of ranked catalog searches",
		}, []string{"result"}),
		DiscoverHits: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_discover_hits",
			Help:    "Number of hits returned by discover queries",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		BorrowsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_borrows_total",
			Help: "Total number of borrow attempts",
		}, []string{"outcome"}),
		ReservesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_reserves_total",
			Help: "Total number of reserve attempts",
		}, []string{"outcome"}),
		RecommendationSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_recommendation_size",
			Help:    "Number of entries returned by recommendations",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		}),
		OverdueNotificationsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_overdue_notifications_total",
			Help: "Total number of overdue notifications created",
		}),
		CatalogSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_entries",
			Help: "Number of entries in the catalog",
		}),
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_logins_total",
			Help: "Total number of login attempts",
		}, []string{"result"}),
	}
}

// Registry returns the registry the collectors are registered in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSearch records a ranked search.
func (m *Metrics) RecordSearch(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SearchesTotal.WithLabelValues(result).Inc()
}

// RecordDiscover records the number of hits of a discover query.
func (m *Metrics) RecordDiscover(hits int) {
	if m == nil {
		return
	}
	m.DiscoverHits.Observe(float64(hits))
}

// RecordBorrow records a borrow attempt.
func (m *Metrics) RecordBorrow(outcome string) {
	if m == nil {
		return
	}
	m.BorrowsTotal.WithLabelValues(outcome).Inc()
}

// RecordReserve records a reserve attempt.
func (m *Metrics) RecordReserve(outcome string) {
	if m == nil {
		return
	}
	m.ReservesTotal.WithLabelValues(outcome).Inc()
}

// RecordRecommendation records the size of a recommendation result.
func (m *Metrics) RecordRecommendation(size int) {
	if m == nil {
		return
	}
	m.RecommendationSize.Observe(float64(size))
}

// RecordOverdue adds n created overdue notifications.
func (m *Metrics) RecordOverdue(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.OverdueNotificationsTotal.Add(float64(n))
}

// SetCatalogSize sets the catalog size gauge.
func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.CatalogSize.Set(float64(n))
}

// RecordLogin records a login attempt.
func (m *Metrics) RecordLogin(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}
