package lazyref

import "github.com/codewandler/lazyref-go/core/metrics"

// AttrMetrics defines the metrics interface for attribute caching.
// Implementations should be thread-safe.
type AttrMetrics interface {
	// Cache
	CacheHit(attr string)
	CacheMiss(attr string)

	// Loader
	LoadDuration(attr string) metrics.Timer
	LoadFailure(attr string)

	// Slot tracking
	SlotsTracked(attr string, n int)
}

// nopAttrMetrics is a no-op implementation of AttrMetrics.
type nopAttrMetrics struct{}

func (nopAttrMetrics) CacheHit(string)  {}
func (nopAttrMetrics) CacheMiss(string) {}

func (nopAttrMetrics) LoadDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopAttrMetrics) LoadFailure(string)                {}

func (nopAttrMetrics) SlotsTracked(string, int) {}

// NopAttrMetrics returns a no-op AttrMetrics implementation.
func NopAttrMetrics() AttrMetrics { return nopAttrMetrics{} }
