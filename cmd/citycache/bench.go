package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citylookup/citycache/benchmark/analysis"
	"github.com/citylookup/citycache/benchmark/reporting"
	"github.com/citylookup/citycache/benchmark/simulation"
	"github.com/citylookup/citycache/benchmark/workload"
	"github.com/citylookup/citycache/internal/cache"
	"github.com/citylookup/citycache/internal/stats"
	promstats "github.com/citylookup/citycache/internal/stats/prometheus"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare eviction policies on a generated workload",
	Long: `Generate a query workload from the dataset's (country code, city) pairs
and replay it against one fresh cache per policy. Every policy sees the
same query sequence. Each query is timed; a hit is a query served from
the cache.

Examples:
  # Uniform workload, CSV results
  citycache bench --queries 1000 --output cache_results.csv

  # Skewed workload, markdown report and Prometheus metrics
  citycache bench --distribution zipf --capacity 50 \
      --markdown report.md --metrics-out bench.prom`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

var (
	benchQueries      int
	benchPolicies     []string
	benchDistribution string
	benchZipfS        float64
	benchSeed         uint64
	benchParallel     int
	benchOutput       string
	benchMarkdown     string
	benchMetricsOut   string
)

func init() {
	benchCmd.Flags().IntVarP(&benchQueries, "queries", "n", 100, "queries per policy")
	benchCmd.Flags().StringSliceVarP(&benchPolicies, "policies", "p", cache.PolicyNames(), "policies to compare; the first is the baseline")
	benchCmd.Flags().StringVar(&benchDistribution, "distribution", "uniform", "workload distribution: uniform, zipf")
	benchCmd.Flags().Float64Var(&benchZipfS, "zipf-s", 1.2, "zipf exponent, must exceed 1")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", 0, "workload and random-eviction seed (0 picks one from the clock)")
	benchCmd.Flags().IntVar(&benchParallel, "parallel", 1, "policies to run concurrently")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "", "CSV results file")
	benchCmd.Flags().StringVar(&benchMarkdown, "markdown", "", "markdown report file")
	benchCmd.Flags().StringVar(&benchMetricsOut, "metrics-out", "", "Prometheus text-format metrics file")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	for _, p := range benchPolicies {
		if _, err := cache.NewPolicy(p); err != nil {
			return err
		}
	}

	idx, _, err := loadIndex(cmd.Context(), logger)
	if err != nil {
		return err
	}
	pairs := workload.FromIndex(idx)
	if len(pairs) == 0 {
		return fmt.Errorf("dataset %s has no records", dataURI)
	}

	seed := benchSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var queries []workload.Query
	switch strings.ToLower(benchDistribution) {
	case "uniform":
		queries = workload.Uniform(pairs, benchQueries, rng)
	case "zipf":
		queries = workload.Zipf(workload.Shuffle(pairs, rng), benchQueries, benchZipfS, rng)
	default:
		return fmt.Errorf("unknown distribution %q (want uniform or zipf)", benchDistribution)
	}
	logger.Debug("workload generated",
		zap.String("distribution", benchDistribution),
		zap.Int("queries", len(queries)),
		zap.Uint64("seed", seed),
	)

	registry := prometheus.NewRegistry()
	results, err := simulation.RunPolicies(cmd.Context(), simulation.Config{
		Index:    idx,
		Capacity: capacity,
		Policies: benchPolicies,
		Queries:  queries,
		Seed:     seed,
		Parallel: benchParallel,
		Collector: func(policy string) stats.Collector {
			return promstats.New(registry, promstats.WithConstLabels(prometheus.Labels{"policy": policy}))
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	var comparison *analysis.MultiStrategyComparison
	if len(results) >= 2 {
		comparison = analysis.CompareAll(results, results[0].Strategy, 10000, 0.95)
	}

	writeTextReport(cmd.OutOrStdout(), idx.Len(), seed, results, comparison)

	if benchOutput != "" {
		report := reporting.NewCSVReport()
		for _, r := range results {
			report.Add(r)
		}
		if err := writeFile(benchOutput, report.Flush); err != nil {
			return fmt.Errorf("writing CSV results: %w", err)
		}
	}

	if benchMarkdown != "" {
		err := writeFile(benchMarkdown, func(w io.Writer) error {
			writeMarkdownReport(w, idx.Len(), results, comparison)
			return nil
		})
		if err != nil {
			return fmt.Errorf("writing markdown report: %w", err)
		}
	}

	if benchMetricsOut != "" {
		if err := prometheus.WriteToTextfile(benchMetricsOut, registry); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	return nil
}

func writeTextReport(w io.Writer, records int, seed uint64, results []*simulation.RunResult, comp *analysis.MultiStrategyComparison) {
	fmt.Fprintf(w, "Eviction Policy Benchmark\n")
	fmt.Fprintf(w, "=========================\n\n")
	fmt.Fprintf(w, "Records:      %d\n", records)
	fmt.Fprintf(w, "Queries:      %d (%s, seed %d)\n", benchQueries, benchDistribution, seed)
	fmt.Fprintf(w, "Capacity:     %d\n\n", capacity)

	for _, res := range results {
		m := simulation.ComputeMetrics(res)
		fmt.Fprintf(w, "%s:\n", res.Strategy)
		fmt.Fprintf(w, "  Hits/misses:  %d/%d (%.1f%%)\n", res.Hits, res.Misses, m.HitRate)
		fmt.Fprintf(w, "  Total time:   %s\n", m.Total)
		fmt.Fprintf(w, "  Avg latency:  %s\n", m.Average)
		fmt.Fprintf(w, "  P99 latency:  %s\n\n", m.P99)
	}

	if comp != nil {
		fmt.Fprintf(w, "Statistical Analysis (baseline %s):\n", comp.Baseline)
		fmt.Fprintf(w, "-----------------------------------\n\n")
		for _, c := range comp.Comparisons {
			fmt.Fprintln(w, c.Summary())
			fmt.Fprintln(w)
		}
	}
}

func writeMarkdownReport(w io.Writer, records int, results []*simulation.RunResult, comp *analysis.MultiStrategyComparison) {
	report := reporting.NewMarkdownReport(w)
	report.WriteHeader("Eviction Policy Benchmark")
	report.WriteMethodology(records, benchQueries, capacity, benchDistribution)
	report.WriteSummaryTable(results)
	if comp != nil {
		for _, c := range comp.Comparisons {
			report.WriteComparison(c)
		}
	}
	for _, r := range results {
		report.WriteDistributionChart(r)
	}
	report.WriteFooter()
}

// writeFile creates path and hands it to write, closing it afterwards.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
