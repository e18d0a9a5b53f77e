// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Lookup service metrics.
	MetricQueries       = "citycache_queries_total"
	MetricIndexHits     = "citycache_index_hits_total"
	MetricNotFound      = "citycache_not_found_total"
	MetricQueryDuration = "citycache_query_duration_seconds"

	// Cache metrics.
	MetricCacheHits      = "citycache_cache_hits_total"
	MetricCacheMisses    = "citycache_cache_misses_total"
	MetricCacheEvictions = "citycache_cache_evictions_total"
	MetricCacheSize      = "citycache_cache_size"

	// Ingestion metrics.
	MetricRecordsLoaded  = "citycache_records_loaded_total"
	MetricRecordsSkipped = "citycache_records_skipped_total"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
