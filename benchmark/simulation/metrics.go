package simulation

import (
	"slices"
	"time"
)

// Metrics contains computed metrics from a run.
type Metrics struct {
	Strategy string
	Queries  int
	Total    time.Duration
	Average  time.Duration

	// Latency distribution.
	Min time.Duration
	P50 time.Duration
	P90 time.Duration
	P99 time.Duration
	Max time.Duration

	HitRate float64 // Percentage of queries served from the cache.
}

// ComputeMetrics computes latency percentiles and hit rate for a run.
func ComputeMetrics(result *RunResult) *Metrics {
	m := &Metrics{
		Strategy: result.Strategy,
		Queries:  result.Queries(),
		Total:    result.Total(),
		Average:  result.Average(),
		HitRate:  result.HitRate(),
	}

	if len(result.Latencies) > 0 {
		sorted := slices.Clone(result.Latencies)
		slices.Sort(sorted)

		m.Min = sorted[0]
		m.Max = sorted[len(sorted)-1]
		m.P50 = percentile(sorted, 50)
		m.P90 = percentile(sorted, 90)
		m.P99 = percentile(sorted, 99)
	}

	return m
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p / 100)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
