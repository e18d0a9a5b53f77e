package analysis

import (
	"fmt"

	"github.com/citylookup/citycache/benchmark/simulation"
)

// StrategyComparison contains a full statistical comparison between two
// eviction policies' query latencies, in microseconds.
type StrategyComparison struct {
	Strategy1       string
	Strategy2       string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	HitRate1        float64
	HitRate2        float64
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	BootstrapCI     *BootstrapResult
	Winner          string // Name of the policy with lower mean latency, or "tie".
	WinnerConfident bool   // True if statistically significant.
}

// CompareStrategies performs a full statistical comparison between two runs.
func CompareStrategies(
	result1, result2 *simulation.RunResult,
	bootstrapIterations int,
	confidence float64,
) *StrategyComparison {
	sample1 := result1.Micros()
	sample2 := result2.Micros()

	mw := MannWhitneyU(sample1, sample2)
	es := ComputeEffectSize(sample1, sample2)
	bs := BootstrapConfidenceInterval(sample1, sample2, bootstrapIterations, confidence)

	stats1 := Describe(sample1)
	stats2 := Describe(sample2)

	var winner string
	var confident bool

	switch {
	case stats1.Mean < stats2.Mean:
		winner = result1.Strategy
		confident = mw.Significant
	case stats2.Mean < stats1.Mean:
		winner = result2.Strategy
		confident = mw.Significant
	default:
		winner = "tie"
	}

	return &StrategyComparison{
		Strategy1:       result1.Strategy,
		Strategy2:       result2.Strategy,
		Stats1:          stats1,
		Stats2:          stats2,
		HitRate1:        result1.HitRate(),
		HitRate2:        result2.HitRate(),
		MannWhitney:     mw,
		EffectSize:      es,
		BootstrapCI:     bs,
		Winner:          winner,
		WinnerConfident: confident,
	}
}

// Summary returns a human-readable summary of the comparison.
func (c *StrategyComparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: mean=%.2fµs, median=%.2fµs, p99=%.2fµs, hit rate=%.1f%%\n"+
			"  %s: mean=%.2fµs, median=%.2fµs, p99=%.2fµs, hit rate=%.1f%%\n"+
			"  Difference: %.2fµs/query (%.1f%%)\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s, %s",
		c.Strategy1, c.Strategy2,
		c.Strategy1, c.Stats1.Mean, c.Stats1.Median, c.Stats1.P99, c.HitRate1,
		c.Strategy2, c.Stats2.Mean, c.Stats2.Median, c.Stats2.P99, c.HitRate2,
		c.Stats1.Mean-c.Stats2.Mean,
		safePctDiff(c.Stats1.Mean, c.Stats2.Mean),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

// MultiStrategyComparison compares multiple policies against a baseline.
type MultiStrategyComparison struct {
	Baseline    string
	Comparisons []*StrategyComparison
}

// CompareAll compares every run against the one named baseline, in input
// order. It returns nil if no run has that name.
func CompareAll(
	results []*simulation.RunResult,
	baseline string,
	bootstrapIterations int,
	confidence float64,
) *MultiStrategyComparison {
	var base *simulation.RunResult
	for _, r := range results {
		if r.Strategy == baseline {
			base = r
			break
		}
	}
	if base == nil {
		return nil
	}

	multi := &MultiStrategyComparison{Baseline: baseline}
	for _, r := range results {
		if r == base {
			continue
		}
		multi.Comparisons = append(multi.Comparisons, CompareStrategies(base, r, bootstrapIterations, confidence))
	}
	return multi
}
