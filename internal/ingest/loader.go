// Package ingest loads city records from delimited text into an index.
//
// The expected format is one record per line:
//
//	country code,city name,population
//
// An optional header on the first line is skipped. Rows that fail
// validation are logged and skipped; I/O errors abort the load.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/citylookup/citycache/internal/source"
	"github.com/citylookup/citycache/internal/stats"
)

// DefaultProgressInterval is how many lines pass between progress reports.
const DefaultProgressInterval = 10000

// Sink receives validated records. *index.Index satisfies it.
type Sink interface {
	Insert(cityName, countryCode string, population int64)
}

// Summary reports the outcome of a load.
type Summary struct {
	Lines    int64 // Rows read, header included
	Loaded   int64
	Skipped  int64
	Bytes    int64 // Decompressed bytes consumed
	Duration time.Duration
}

// Loader parses datasets.
type Loader struct {
	logger    *zap.Logger
	collector stats.Collector
	progress  ProgressFunc
	interval  int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for per-record warnings.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithCollector reports loaded and skipped record counts to c.
func WithCollector(c stats.Collector) Option {
	return func(ld *Loader) { ld.collector = stats.OrNoop(c) }
}

// WithProgress sets the progress callback. Default is none.
func WithProgress(fn ProgressFunc) Option {
	return func(ld *Loader) { ld.progress = fn }
}

// WithProgressInterval sets how many lines pass between progress reports.
func WithProgressInterval(n int) Option {
	return func(ld *Loader) {
		if n > 0 {
			ld.interval = int64(n)
		}
	}
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger:    zap.NewNop(),
		collector: stats.NewNoop(),
		interval:  DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("ingest")
	return l
}

// Load reads records from r into sink until EOF.
func (l *Loader) Load(ctx context.Context, r io.Reader, sink Sink) (Summary, error) {
	start := time.Now()
	var bytesRead atomic.Int64

	cr := csv.NewReader(newProgressReader(r, &bytesRead))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var sum Summary
	finish := func(err error) (Summary, error) {
		sum.Bytes = bytesRead.Load()
		sum.Duration = time.Since(start)
		p := Progress{
			Phase:     "done",
			Lines:     sum.Lines,
			Loaded:    sum.Loaded,
			Skipped:   sum.Skipped,
			BytesRead: sum.Bytes,
			StartTime: start,
			Error:     err,
		}
		if err != nil {
			p.Phase = "error"
		}
		l.report(p)
		return sum, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if err != nil && !errors.As(err, &perr) {
			return finish(fmt.Errorf("reading dataset: %w", err))
		}

		sum.Lines++
		if err != nil {
			l.skip(&sum, &RecordError{Line: perr.StartLine, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, perr.Err)})
			continue
		}
		line, _ := cr.FieldPos(0)
		if line == 1 && isHeader(fields) {
			continue
		}

		rec, err := ParseRecord(line, fields)
		if err != nil {
			l.skip(&sum, err)
			continue
		}
		sink.Insert(rec.City, rec.CountryCode, rec.Population)
		sum.Loaded++
		l.collector.IncCounter(stats.MetricRecordsLoaded, 1)

		if sum.Lines%l.interval == 0 {
			l.report(Progress{
				Phase:     "load",
				Lines:     sum.Lines,
				Loaded:    sum.Loaded,
				Skipped:   sum.Skipped,
				BytesRead: bytesRead.Load(),
				StartTime: start,
			})
		}
	}

	l.logger.Info("dataset loaded",
		zap.Int64("loaded", sum.Loaded),
		zap.Int64("skipped", sum.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return finish(nil)
}

// LoadFrom opens name in src and loads it into sink.
func (l *Loader) LoadFrom(ctx context.Context, src source.Source, name string, sink Sink) (Summary, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return Summary{}, fmt.Errorf("opening dataset %s: %w", name, err)
	}
	defer rc.Close()

	return l.Load(ctx, rc, sink)
}

func (l *Loader) skip(sum *Summary, err error) {
	sum.Skipped++
	l.collector.IncCounter(stats.MetricRecordsSkipped, 1)

	var rerr *RecordError
	if errors.As(err, &rerr) {
		l.logger.Warn("skipping record",
			zap.Int("line", rerr.Line),
			zap.String("raw", rerr.Raw),
			zap.Error(rerr.Err),
		)
		return
	}
	l.logger.Warn("skipping record", zap.Error(err))
}

func (l *Loader) report(p Progress) {
	if l.progress != nil {
		l.progress(p)
	}
}
