// Package reporting provides report generation for benchmark results.
package reporting

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/citylookup/citycache/benchmark/analysis"
	"github.com/citylookup/citycache/benchmark/simulation"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w io.Writer
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(records, queries, capacity int, distribution string) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Dataset records:** %d\n", records)
	fmt.Fprintf(r.w, "- **Queries per policy:** %d (%s)\n", queries, distribution)
	fmt.Fprintf(r.w, "- **Cache capacity:** %d\n", capacity)
	fmt.Fprintln(r.w, "- **Metric:** Query latency in microseconds (lower is better) and cache hit rate")
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U (non-parametric), Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes the summary comparison table, one row per run
// in input order.
func (r *MarkdownReport) WriteSummaryTable(results []*simulation.RunResult) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Policy | Queries | Hit Rate | Avg (µs) | P50 (µs) | P90 (µs) | P99 (µs) | Total (µs) |")
	fmt.Fprintln(r.w, "|--------|---------|----------|----------|----------|----------|----------|------------|")

	for _, res := range results {
		m := simulation.ComputeMetrics(res)
		fmt.Fprintf(r.w, "| %s | %d | %.1f%% | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			m.Strategy, m.Queries, m.HitRate,
			micros(m.Average), micros(m.P50), micros(m.P90), micros(m.P99), micros(m.Total))
	}
	fmt.Fprintln(r.w)
}

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e3
}

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(comp *analysis.StrategyComparison) {
	fmt.Fprintf(r.w, "## %s vs %s\n\n", comp.Strategy1, comp.Strategy2)

	// Statistics table.
	fmt.Fprintln(r.w, "### Descriptive Statistics")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Strategy1+" | "+comp.Strategy2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Strategy1)+2)+"|"+strings.Repeat("-", len(comp.Strategy2)+2)+"|")
	fmt.Fprintf(r.w, "| Hit rate | %.1f%% | %.1f%% |\n", comp.HitRate1, comp.HitRate2)
	fmt.Fprintf(r.w, "| Mean (µs) | %.2f | %.2f |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| Median (µs) | %.2f | %.2f |\n", comp.Stats1.Median, comp.Stats2.Median)
	fmt.Fprintf(r.w, "| P99 (µs) | %.2f | %.2f |\n", comp.Stats1.P99, comp.Stats2.P99)
	fmt.Fprintf(r.w, "| Std Dev | %.2f | %.2f |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintf(r.w, "| Min (µs) | %.2f | %.2f |\n", comp.Stats1.Min, comp.Stats2.Min)
	fmt.Fprintf(r.w, "| Max (µs) | %.2f | %.2f |\n", comp.Stats1.Max, comp.Stats2.Max)
	fmt.Fprintln(r.w)

	// Statistical tests.
	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean difference (µs):** [%.2f, %.2f]\n",
		comp.BootstrapCI.Confidence*100, comp.BootstrapCI.LowerBound, comp.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)

	// Conclusion.
	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** answers queries significantly faster than %s ",
			comp.Winner, otherStrategy(comp.Winner, comp.Strategy1, comp.Strategy2))
		fmt.Fprintf(r.w, "(p < 0.05, effect size: %s).\n", comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintln(r.w, "No statistically significant difference detected between strategies (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

func otherStrategy(winner, s1, s2 string) string {
	if winner == s1 {
		return s2
	}
	return s1
}

// WriteDistributionChart writes an ASCII histogram of a run's latencies.
func (r *MarkdownReport) WriteDistributionChart(res *simulation.RunResult) {
	fmt.Fprintf(r.w, "### %s Latency Distribution\n\n", res.Strategy)
	fmt.Fprintln(r.w, "```")

	const buckets = 10
	hist, lo, width := makeHistogram(res.Micros(), buckets)
	maxCount := 0
	for _, count := range hist {
		maxCount = max(maxCount, count)
	}

	const barWidth = 40
	for i, count := range hist {
		barLen := 0
		if maxCount > 0 {
			barLen = count * barWidth / maxCount
		}
		bar := strings.Repeat("█", barLen)
		from := lo + float64(i)*width
		fmt.Fprintf(r.w, "%8.2f-%8.2fµs │ %s %d\n", from, from+width, bar, count)
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

// makeHistogram buckets data into equal-width bins and returns the counts,
// the lower bound and the bin width.
func makeHistogram(data []float64, buckets int) ([]int, float64, float64) {
	hist := make([]int, buckets)
	if len(data) == 0 {
		return hist, 0, 1
	}

	lo, hi := slices.Min(data), slices.Max(data)
	if hi == lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(buckets)

	for _, v := range data {
		bucket := int((v - lo) / width)
		if bucket >= buckets {
			bucket = buckets - 1
		}
		hist[bucket]++
	}
	return hist, lo, width
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by citycache bench*")
}
