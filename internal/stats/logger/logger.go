// Package logger provides a zap-based stats collector that logs metrics.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/citylookup/citycache/internal/stats"
)

// Collector implements stats.Collector by logging every observation via zap.
// Counters are also accumulated so each log line carries the running total.
type Collector struct {
	logger *zap.Logger
	level  zapcore.Level

	mu     sync.Mutex
	totals map[string]int64
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithLevel sets the level metrics are logged at. Default is debug.
func WithLevel(l zapcore.Level) Option {
	return func(c *Collector) { c.level = l }
}

// New creates a new logger-based collector.
// If logger is nil, a no-op logger is used.
func New(logger *zap.Logger, opts ...Option) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger,
		level:  zapcore.DebugLevel,
		totals: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IncCounter logs a counter increment along with the new total.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	c.totals[name] += delta
	total := c.totals[name]
	c.mu.Unlock()

	c.log("counter",
		zap.String("metric", name),
		zap.Int64("delta", delta),
		zap.Int64("total", total),
	)
}

// SetGauge logs a gauge value.
func (c *Collector) SetGauge(name string, value int64) {
	c.log("gauge",
		zap.String("metric", name),
		zap.Int64("value", value),
	)
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.log("histogram",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}

// Total returns the accumulated value of a counter.
func (c *Collector) Total(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals[name]
}

func (c *Collector) log(msg string, fields ...zap.Field) {
	if ce := c.logger.Check(c.level, msg); ce != nil {
		ce.Write(fields...)
	}
}
