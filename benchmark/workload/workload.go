// Package workload generates query sequences for cache benchmarks.
package workload

import (
	"math/rand/v2"

	"github.com/citylookup/citycache/internal/index"
)

// Query is one lookup in a workload.
type Query struct {
	CountryCode string
	City        string
}

// FromIndex returns every (country code, city) pair in idx, in walk order.
func FromIndex(idx *index.Index) []Query {
	pairs := make([]Query, 0, idx.Len())
	idx.Walk(func(city, code string, _ int64) bool {
		pairs = append(pairs, Query{CountryCode: code, City: city})
		return true
	})
	return pairs
}

// Uniform draws n queries from pairs with replacement, each pair equally
// likely. It returns nil when pairs is empty.
func Uniform(pairs []Query, n int, rng *rand.Rand) []Query {
	if len(pairs) == 0 || n <= 0 {
		return nil
	}
	out := make([]Query, n)
	for i := range out {
		out[i] = pairs[rng.IntN(len(pairs))]
	}
	return out
}

// Zipf draws n queries from pairs with replacement, where the pair at rank
// k is chosen with probability proportional to 1/(k+1)^s. s must be
// greater than 1. A skewed workload rewards policies that keep hot keys.
func Zipf(pairs []Query, n int, s float64, rng *rand.Rand) []Query {
	if len(pairs) == 0 || n <= 0 {
		return nil
	}
	if s <= 1 {
		s = 1.01
	}
	z := rand.NewZipf(rng, s, 1, uint64(len(pairs)-1))
	out := make([]Query, n)
	for i := range out {
		out[i] = pairs[z.Uint64()]
	}
	return out
}

// Shuffle returns a copy of pairs in random order. Zipf ranks follow the
// slice order, so shuffling first decouples hotness from walk order.
func Shuffle(pairs []Query, rng *rand.Rand) []Query {
	out := make([]Query, len(pairs))
	copy(out, pairs)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
