package reporting

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/citylookup/citycache/benchmark/simulation"
)

// ErrFlushed indicates a CSVReport that has already been written.
var ErrFlushed = errors.New("reporting: report already flushed")

// CSVHeader is the first row of every CSV report.
var CSVHeader = []string{"strategy", "total_time_us", "avg_time_us", "hits", "misses"}

// CSVReport accumulates run results and writes them as CSV, one row per run.
// It is safe for concurrent Add calls.
type CSVReport struct {
	mu      sync.Mutex
	rows    []*simulation.RunResult
	flushed bool
}

// NewCSVReport creates an empty report.
func NewCSVReport() *CSVReport {
	return &CSVReport{}
}

// Add appends a run. Rows are written in Add order.
func (r *CSVReport) Add(res *simulation.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, res)
}

// Len returns the number of accumulated runs.
func (r *CSVReport) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// Flush writes the header and every accumulated row to w. A report can be
// flushed once; later calls return ErrFlushed and write nothing.
func (r *CSVReport) Flush(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.flushed {
		return ErrFlushed
	}
	r.flushed = true

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, res := range r.rows {
		if err := cw.Write([]string{
			res.Strategy,
			formatMicros(res.Total()),
			formatMicros(res.Average()),
			strconv.Itoa(res.Hits),
			strconv.Itoa(res.Misses),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatMicros(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Nanoseconds())/1e3, 'f', 3, 64)
}
