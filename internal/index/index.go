// Package index provides the exact-match city dataset: a prefix tree keyed
// by city name whose termini map country codes to populations.
//
// Nodes live in a single arena slice and refer to their children by slot
// number. The index owns every node; nodes are created on insert and never
// removed.
package index

import (
	"maps"
	"slices"
	"sync"
)

// root is the arena slot of the root node.
const root = 0

type node struct {
	children map[rune]int32
	// cities is non-nil exactly when the node is a terminus.
	cities map[string]int64
}

// Index is a prefix tree from city name to country code to population.
// Searches may run concurrently; Insert takes an exclusive lock.
type Index struct {
	mu      sync.RWMutex
	nodes   []node
	cities  int
	records int
}

// Stats describes the size of an index.
type Stats struct {
	Nodes   int // Arena slots in use, including the root
	Cities  int // Terminus nodes
	Records int // (city, country code) pairs
}

// New creates an empty index.
func New() *Index {
	return &Index{nodes: make([]node, 1, 64)}
}

// Insert records population for (cityName, countryCode), overwriting any
// earlier value for the same pair.
func (x *Index) Insert(cityName, countryCode string, population int64) {
	x.mu.Lock()
	defer x.mu.Unlock()

	cur := int32(root)
	for _, r := range cityName {
		next, ok := x.nodes[cur].children[r]
		if !ok {
			next = int32(len(x.nodes))
			x.nodes = append(x.nodes, node{})
			if x.nodes[cur].children == nil {
				x.nodes[cur].children = make(map[rune]int32, 1)
			}
			x.nodes[cur].children[r] = next
		}
		cur = next
	}

	n := &x.nodes[cur]
	if n.cities == nil {
		n.cities = make(map[string]int64, 1)
		x.cities++
	}
	if _, ok := n.cities[countryCode]; !ok {
		x.records++
	}
	n.cities[countryCode] = population
}

// Search returns the population recorded for (cityName, countryCode).
func (x *Index) Search(cityName, countryCode string) (int64, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n, ok := x.find(cityName)
	if !ok {
		return 0, false
	}
	pop, ok := n.cities[countryCode]
	return pop, ok
}

// Countries returns a copy of the country code to population mapping for
// cityName, or nil if no record ends there.
func (x *Index) Countries(cityName string) map[string]int64 {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n, ok := x.find(cityName)
	if !ok || n.cities == nil {
		return nil
	}
	return maps.Clone(n.cities)
}

// Walk calls fn for every record, ordered by city name then country code.
// It stops early when fn returns false. fn must not call Insert.
func (x *Index) Walk(fn func(city, countryCode string, population int64) bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	x.walk(root, nil, fn)
}

func (x *Index) walk(slot int32, prefix []rune, fn func(string, string, int64) bool) bool {
	n := &x.nodes[slot]
	if n.cities != nil {
		city := string(prefix)
		for _, code := range slices.Sorted(maps.Keys(n.cities)) {
			if !fn(city, code, n.cities[code]) {
				return false
			}
		}
	}
	for _, r := range slices.Sorted(maps.Keys(n.children)) {
		if !x.walk(n.children[r], append(prefix, r), fn) {
			return false
		}
	}
	return true
}

// Len returns the number of (city, country code) records.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.records
}

// Stats returns the current size of the index.
func (x *Index) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return Stats{Nodes: len(x.nodes), Cities: x.cities, Records: x.records}
}

// find walks the path for name. Caller holds x.mu.
func (x *Index) find(name string) (*node, bool) {
	cur := int32(root)
	for _, r := range name {
		next, ok := x.nodes[cur].children[r]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return &x.nodes[cur], true
}
