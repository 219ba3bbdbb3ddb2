// Package metrics holds the Prometheus collectors for the market data pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tredia"

type Metrics struct {
	registry *prometheus.Registry

	// upstream fetch outcomes, labelled by category and provenance
	FetchesTotal *prometheus.CounterVec
	// cache lookups, labelled by result (hit, miss, error)
	CacheLookupsTotal *prometheus.CounterVec
	// refreshes dropped by the in-flight guard
	RefreshSkippedTotal *prometheus.CounterVec
	RefreshDuration     *prometheus.HistogramVec
}

// New builds the collectors on a private registry so tests can create as many
// instances as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Market data fetches by category and provenance",
		}, []string{"category", "provenance"}),
		CacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result",
		}, []string{"result"}),
		RefreshSkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_skipped_total",
			Help:      "Refreshes skipped because one was already in flight",
		}, []string{"category"}),
		RefreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Refresh duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category"}),
	}
	m.registry.MustRegister(
		m.FetchesTotal,
		m.CacheLookupsTotal,
		m.RefreshSkippedTotal,
		m.RefreshDuration,
	)
	return m
}

func (m *Metrics) ObserveFetch(category, provenance string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(category, provenance).Inc()
}

func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRefreshSkipped(category string) {
	if m == nil {
		return
	}
	m.RefreshSkippedTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveRefresh(category string, started time.Time) {
	if m == nil {
		return
	}
	m.RefreshDuration.WithLabelValues(category).Observe(time.Since(started).Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
