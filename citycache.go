// Package citycache answers city population queries from an in-memory
// dataset, fronted by a fixed-capacity cache with a pluggable eviction
// policy.
//
// Example usage:
//
//	opt, err := citycache.WithDataset(ctx, "./data/cities.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := citycache.New(opt, citycache.WithPolicy("lfu"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	res, err := client.Query("jp", "Tokyo")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d (from %s)\n", res.Population, res.Source)
package citycache

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/citylookup/citycache/internal/cache"
	"github.com/citylookup/citycache/internal/index"
	"github.com/citylookup/citycache/internal/ingest"
	"github.com/citylookup/citycache/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("citycache: client closed")

	// ErrNoIndex indicates no index or dataset was provided.
	ErrNoIndex = errors.New("citycache: no index provided")

	// ErrSeparatorCollision indicates a country code or city name that
	// contains the cache key separator.
	ErrSeparatorCollision = errors.New("citycache: field contains key separator")
)

// Client answers population queries: cache first, then the index.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	index  *index.Index
	cache  *cache.Cache
	stats  stats.Collector
	logger *zap.Logger
	closed atomic.Bool
}

// New creates a new Client with the given options. An index is required,
// either through WithIndex or WithDataset.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.index == nil {
		return nil, ErrNoIndex
	}

	c := &Client{
		index:  cfg.index,
		cache:  cfg.cache,
		stats:  stats.OrNoop(cfg.stats),
		logger: cfg.logger.Named("citycache"),
	}

	if c.cache == nil {
		var popts []cache.PolicyOption
		if cfg.seed != nil {
			popts = append(popts, cache.WithSeed(*cfg.seed))
		}
		p, err := cache.NewPolicy(cfg.policy, popts...)
		if err != nil {
			return nil, err
		}
		c.cache, err = cache.New(cfg.capacity, p, cache.WithCollector(c.stats))
		if err != nil {
			return nil, err
		}
	}

	c.logger.Debug("client initialized",
		zap.Int("capacity", c.cache.Cap()),
		zap.String("policy", c.cache.Policy()),
		zap.Int("records", c.index.Len()),
	)

	return c, nil
}

// Query returns the population of cityName in countryCode. A city that is
// not in the dataset yields a Result with Source SourceNotFound, not an
// error.
func (c *Client) Query(countryCode, cityName string) (Result, error) {
	if c.closed.Load() {
		return Result{}, ErrClosed
	}

	key, err := Key(countryCode, cityName)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	defer func() {
		c.stats.ObserveHistogram(stats.MetricQueryDuration, time.Since(start).Seconds())
	}()
	c.stats.IncCounter(stats.MetricQueries, 1)

	res := Result{CountryCode: countryCode, City: cityName}

	if v, ok := c.cache.Get(key); ok {
		pop, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Result{}, fmt.Errorf("decoding cached value for %s: %w", key, err)
		}
		res.Population, res.Source = pop, SourceCache
		return res, nil
	}

	pop, ok := c.index.Search(cityName, countryCode)
	if !ok {
		c.stats.IncCounter(stats.MetricNotFound, 1)
		res.Source = SourceNotFound
		return res, nil
	}

	c.cache.Put(key, strconv.FormatInt(pop, 10))
	c.stats.IncCounter(stats.MetricIndexHits, 1)
	res.Population, res.Source = pop, SourceIndex
	return res, nil
}

// Key builds the cache key for a (country code, city name) pair.
func Key(countryCode, cityName string) (string, error) {
	if strings.Contains(countryCode, ingest.Separator) || strings.Contains(cityName, ingest.Separator) {
		return "", fmt.Errorf("%w: %q, %q", ErrSeparatorCollision, countryCode, cityName)
	}
	return ingest.Record{CountryCode: countryCode, City: cityName}.Key(), nil
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	c.logger.Debug("client closed", zap.Any("cache", c.cache.Stats()))
	return nil
}

// Cache returns the cache fronting the index.
func (c *Client) Cache() *cache.Cache {
	return c.cache
}

// Index returns the dataset index.
func (c *Client) Index() *index.Index {
	return c.index
}
