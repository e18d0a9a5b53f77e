package citycache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/citylookup/citycache/internal/cache"
	"github.com/citylookup/citycache/internal/cache/policy/lru"
	"github.com/citylookup/citycache/internal/dataset"
	"github.com/citylookup/citycache/internal/index"
	"github.com/citylookup/citycache/internal/ingest"
	"github.com/citylookup/citycache/internal/stats"
)

// DefaultCapacity is the cache capacity used when none is configured.
const DefaultCapacity = 100

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	index    *index.Index
	cache    *cache.Cache
	capacity int
	policy   string
	seed     *uint64
	stats    stats.Collector
	logger   *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		capacity: DefaultCapacity,
		policy:   lru.Name,
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithIndex sets the dataset index to answer cache misses from.
func WithIndex(idx *index.Index) Option {
	return optionFunc(func(o *options) {
		o.index = idx
	})
}

// WithCache uses a preconfigured cache. WithCapacity and WithPolicy are
// then ignored.
func WithCache(c *cache.Cache) Option {
	return optionFunc(func(o *options) {
		o.cache = c
	})
}

// WithCapacity sets the cache capacity.
// Default is 100.
func WithCapacity(n int) Option {
	return optionFunc(func(o *options) {
		o.capacity = n
	})
}

// WithPolicy selects the eviction policy by name: lru, fifo, random or lfu.
// Default is lru.
func WithPolicy(name string) Option {
	return optionFunc(func(o *options) {
		o.policy = name
	})
}

// WithSeed makes the random policy evict reproducibly. It has no effect on
// the other policies or together with WithCache.
func WithSeed(seed uint64) Option {
	return optionFunc(func(o *options) {
		o.seed = &seed
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		if l != nil {
			o.logger = l
		}
	})
}

// WithDataset loads the dataset at uri into a new index. See package
// dataset for the accepted URI forms. Records that fail validation are
// skipped; the returned option fails only on I/O errors.
func WithDataset(ctx context.Context, uri string, opts ...ingest.Option) (Option, error) {
	idx, _, err := LoadIndex(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	return WithIndex(idx), nil
}

// LoadIndex reads the dataset at uri into a new index.
func LoadIndex(ctx context.Context, uri string, opts ...ingest.Option) (*index.Index, ingest.Summary, error) {
	return LoadIndexWith(ctx, uri, nil, opts...)
}

// LoadIndexWith is LoadIndex with backend settings, such as an S3 endpoint,
// for the source the dataset is read from.
func LoadIndexWith(ctx context.Context, uri string, access []dataset.Option, opts ...ingest.Option) (*index.Index, ingest.Summary, error) {
	src, name, err := dataset.Open(ctx, uri, access...)
	if err != nil {
		return nil, ingest.Summary{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer src.Close()

	idx := index.New()
	sum, err := ingest.NewLoader(opts...).LoadFrom(ctx, src, name, idx)
	if err != nil {
		return nil, sum, fmt.Errorf("loading dataset: %w", err)
	}
	return idx, sum, nil
}
