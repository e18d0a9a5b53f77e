// Package cache implements a fixed-capacity key/value cache with a
// pluggable eviction policy.
//
// A Cache is safe for concurrent use. One mutex guards the map and the
// order list together, so an eviction and the insertion that caused it are
// never observed separately.
package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/citylookup/citycache/internal/cache/policy"
	"github.com/citylookup/citycache/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrInvalidCapacity indicates a capacity below 1.
	ErrInvalidCapacity = errors.New("cache: capacity must be at least 1")

	// ErrNoPolicy indicates no eviction policy was provided.
	ErrNoPolicy = errors.New("cache: no eviction policy provided")
)

// Pair is a key/value snapshot returned by Entries.
type Pair struct {
	Key   string
	Value string
}

// Cache is a bounded key/value store. Len never exceeds Cap.
type Cache struct {
	mu       sync.Mutex
	capacity int
	store    *store
	policy   string
	evictor  policy.Evictor

	collector stats.Collector
	onEvict   func(key, value string)

	hits      int64
	misses    int64
	evictions int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithCollector reports hits, misses, evictions and size to c.
func WithCollector(c stats.Collector) Option {
	return func(ca *Cache) { ca.collector = stats.OrNoop(c) }
}

// WithOnEvict registers a callback invoked for every evicted entry.
// It runs under the cache lock and must not call back into the cache.
func WithOnEvict(fn func(key, value string)) Option {
	return func(c *Cache) { c.onEvict = fn }
}

// New creates a cache holding at most capacity entries, evicting according
// to p.
func New(capacity int, p policy.Policy, opts ...Option) (*Cache, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	if p == nil {
		return nil, ErrNoPolicy
	}

	c := &Cache{
		capacity:  capacity,
		store:     newStore(capacity),
		policy:    p.Name(),
		collector: stats.NewNoop(),
	}
	c.evictor = p.New(c.store)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the value stored under key. A hit is reported to the policy,
// which may reorder the entry. A miss has no side effect besides counting.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.lookup(key)
	if !ok {
		c.misses++
		c.collector.IncCounter(stats.MetricCacheMisses, 1)
		return "", false
	}
	c.evictor.OnAccess(e)
	c.hits++
	c.collector.IncCounter(stats.MetricCacheHits, 1)
	return e.value, true
}

// Peek returns the value stored under key without touching the policy or
// the counters.
func (c *Cache) Peek(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.lookup(key)
	if !ok {
		return "", false
	}
	return e.value, true
}

// Put stores value under key. Updating an existing key counts as an access.
// Inserting a new key into a full cache first evicts one victim.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.store.lookup(key); ok {
		e.value = value
		c.evictor.OnAccess(e)
		return
	}

	if c.store.Len() >= c.capacity {
		c.evictLocked()
	}
	e := c.store.insert(key, value)
	c.evictor.OnAdd(e)
	c.collector.SetGauge(stats.MetricCacheSize, int64(c.store.Len()))
}

// Remove deletes key and reports whether it was present. Explicit removal
// is not counted as an eviction.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.lookup(key)
	if !ok {
		return false
	}
	c.store.remove(e)
	c.evictor.OnRemove(e)
	c.collector.SetGauge(stats.MetricCacheSize, int64(c.store.Len()))
	return true
}

// Clear removes every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var all []*entry
	c.store.each(func(e *entry) bool {
		all = append(all, e)
		return true
	})
	for _, e := range all {
		c.store.remove(e)
		c.evictor.OnRemove(e)
	}
	c.collector.SetGauge(stats.MetricCacheSize, 0)
}

// Resize changes the capacity, evicting victims until the cache fits.
func (c *Cache) Resize(capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.capacity = capacity
	for c.store.Len() > c.capacity {
		c.evictLocked()
	}
	c.collector.SetGauge(stats.MetricCacheSize, int64(c.store.Len()))
	return nil
}

// Contains reports whether key is resident, without side effects.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store.lookup(key)
	return ok
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Cap returns the capacity.
func (c *Cache) Cap() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// Policy returns the name of the eviction policy.
func (c *Cache) Policy() string {
	return c.policy
}

// Entries returns a snapshot of the resident entries in order, front first.
// For lru and fifo the front is the next victim.
func (c *Cache) Entries() []Pair {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Pair, 0, c.store.Len())
	c.store.each(func(e *entry) bool {
		out = append(out, Pair{Key: e.key, Value: e.value})
		return true
	})
	return out
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.store.Len(),
		Capacity:  c.capacity,
	}
}

// evictLocked removes one victim chosen by the policy. c.mu must be held
// and the store must be non-empty.
func (c *Cache) evictLocked() {
	var victim *entry
	if v := c.evictor.Victim(); v != nil {
		victim, _ = c.store.lookup(v.Key())
	}
	if victim == nil {
		// Policy named nothing resident; take the order front.
		victim = c.store.Front().(*entry)
	}

	c.store.remove(victim)
	c.evictor.OnRemove(victim)
	c.evictions++
	c.collector.IncCounter(stats.MetricCacheEvictions, 1)
	if c.onEvict != nil {
		c.onEvict(victim.key, victim.value)
	}
}
