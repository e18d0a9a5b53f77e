// Package simulation replays query workloads against cache clients and
// records per-query latency and hit counts.
package simulation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/citylookup/citycache"
	"github.com/citylookup/citycache/benchmark/workload"
	"github.com/citylookup/citycache/internal/index"
	"github.com/citylookup/citycache/internal/stats"
)

// Querier answers population queries. *citycache.Client implements it.
type Querier interface {
	Query(countryCode, cityName string) (citycache.Result, error)
}

// Compile-time check that the client satisfies Querier.
var _ Querier = (*citycache.Client)(nil)

// RunResult holds the outcome of replaying one workload under one strategy.
type RunResult struct {
	Strategy  string
	Latencies []time.Duration

	// Hits counts queries served from the cache. Misses counts every other
	// query, including NotFound ones.
	Hits     int
	Misses   int
	NotFound int
}

// Total returns the summed latency of all queries.
func (r *RunResult) Total() time.Duration {
	var total time.Duration
	for _, d := range r.Latencies {
		total += d
	}
	return total
}

// Average returns the mean query latency, or 0 for an empty run.
func (r *RunResult) Average() time.Duration {
	if len(r.Latencies) == 0 {
		return 0
	}
	return r.Total() / time.Duration(len(r.Latencies))
}

// Queries returns the number of queries replayed.
func (r *RunResult) Queries() int {
	return len(r.Latencies)
}

// HitRate returns the percentage of queries served from the cache.
func (r *RunResult) HitRate() float64 {
	n := r.Hits + r.Misses
	if n == 0 {
		return 0
	}
	return float64(r.Hits) / float64(n) * 100
}

// Micros returns the latencies in microseconds.
func (r *RunResult) Micros() []float64 {
	out := make([]float64, len(r.Latencies))
	for i, d := range r.Latencies {
		out[i] = float64(d.Nanoseconds()) / 1e3
	}
	return out
}

// Run replays queries against q in order, timing each call.
func Run(q Querier, strategy string, queries []workload.Query) (*RunResult, error) {
	res := &RunResult{
		Strategy:  strategy,
		Latencies: make([]time.Duration, 0, len(queries)),
	}
	for i, query := range queries {
		start := time.Now()
		r, err := q.Query(query.CountryCode, query.City)
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("query %d (%s, %s): %w", i, query.CountryCode, query.City, err)
		}

		res.Latencies = append(res.Latencies, elapsed)
		if r.Hit() {
			res.Hits++
			continue
		}
		res.Misses++
		if !r.Found() {
			res.NotFound++
		}
	}
	return res, nil
}

// Config describes a multi-policy benchmark.
type Config struct {
	Index    *index.Index
	Capacity int
	Policies []string
	Queries  []workload.Query

	// Seed, if non-zero, seeds the random policy so that repeated runs over
	// the same queries evict the same keys.
	Seed uint64

	// Parallel bounds how many policies run at once. Values below 1 run
	// them one at a time.
	Parallel int

	// Collector, if set, returns the stats collector for a policy's client.
	Collector func(policy string) stats.Collector
	Logger    *zap.Logger
}

// RunPolicies builds one fresh client per policy over the shared index and
// replays the same workload against each. Results follow cfg.Policies order.
func RunPolicies(ctx context.Context, cfg Config) ([]*RunResult, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("simulation")

	results := make([]*RunResult, len(cfg.Policies))

	g, ctx := errgroup.WithContext(ctx)
	limit := cfg.Parallel
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, policy := range cfg.Policies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			opts := []citycache.Option{
				citycache.WithIndex(cfg.Index),
				citycache.WithCapacity(cfg.Capacity),
				citycache.WithPolicy(policy),
				citycache.WithLogger(logger),
			}
			if cfg.Seed != 0 {
				opts = append(opts, citycache.WithSeed(cfg.Seed))
			}
			if cfg.Collector != nil {
				opts = append(opts, citycache.WithStats(cfg.Collector(policy)))
			}
			client, err := citycache.New(opts...)
			if err != nil {
				return fmt.Errorf("creating %s client: %w", policy, err)
			}
			defer client.Close()

			res, err := Run(client, policy, cfg.Queries)
			if err != nil {
				return fmt.Errorf("running %s: %w", policy, err)
			}
			logger.Info("policy finished",
				zap.String("policy", policy),
				zap.Int("hits", res.Hits),
				zap.Int("misses", res.Misses),
				zap.Duration("total", res.Total()),
			)
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
