package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/lazyref-go/core/lazyref"
	"github.com/codewandler/lazyref-go/core/metrics"
)

// attrMetrics implements lazyref.AttrMetrics using Prometheus.
type attrMetrics struct {
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	loadFailures *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	slotsTracked *prometheus.GaugeVec
}

// NewAttrMetrics creates a new Prometheus implementation of AttrMetrics.
func NewAttrMetrics(reg prometheus.Registerer) lazyref.AttrMetrics {
	m := &attrMetrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lazyref_cache_hits_total",
			Help: "Total number of reads served from a live weak handle",
		}, []string{"attr"}),

		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lazyref_cache_misses_total",
			Help: "Total number of reads that had to invoke the loader",
		}, []string{"attr"}),

		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lazyref_load_failures_total",
			Help: "Total number of loader invocations that returned an error",
		}, []string{"attr"}),

		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lazyref_load_duration_seconds",
			Help:    "Loader latency in seconds",
			Buckets: defaultBuckets,
		}, []string{"attr"}),

		slotsTracked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lazyref_slots_tracked",
			Help: "Number of owners currently tracked in the attribute's side table",
		}, []string{"attr"}),
	}

	reg.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.loadFailures,
		m.loadDuration,
		m.slotsTracked,
	)

	return m
}

func (m *attrMetrics) CacheHit(attr string) {
	m.cacheHits.WithLabelValues(attr).Inc()
}

func (m *attrMetrics) CacheMiss(attr string) {
	m.cacheMisses.WithLabelValues(attr).Inc()
}

func (m *attrMetrics) LoadDuration(attr string) metrics.Timer {
	return newTimer(m.loadDuration.WithLabelValues(attr))
}

func (m *attrMetrics) LoadFailure(attr string) {
	m.loadFailures.WithLabelValues(attr).Inc()
}

func (m *attrMetrics) SlotsTracked(attr string, n int) {
	m.slotsTracked.WithLabelValues(attr).Set(float64(n))
}

var _ lazyref.AttrMetrics = (*attrMetrics)(nil)
