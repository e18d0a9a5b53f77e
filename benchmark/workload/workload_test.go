package workload

import (
	"math/rand/v2"
	"testing"

	"github.com/citylookup/citycache/internal/index"
)

func testPairs(n int) []Query {
	pairs := make([]Query, n)
	for i := range pairs {
		pairs[i] = Query{CountryCode: "xx", City: string(rune('a' + i))}
	}
	return pairs
}

func TestFromIndex(t *testing.T) {
	idx := index.New()
	idx.Insert("Paris", "fr", 2100000)
	idx.Insert("Paris", "us", 25000)
	idx.Insert("Lyon", "fr", 520000)

	got := FromIndex(idx)
	want := []Query{
		{CountryCode: "fr", City: "Lyon"},
		{CountryCode: "fr", City: "Paris"},
		{CountryCode: "us", City: "Paris"},
	}
	if len(got) != len(want) {
		t.Fatalf("FromIndex() returned %d pairs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestUniform(t *testing.T) {
	pairs := testPairs(4)
	rng := rand.New(rand.NewPCG(1, 2))

	got := Uniform(pairs, 4000, rng)
	if len(got) != 4000 {
		t.Fatalf("len = %d, want 4000", len(got))
	}

	counts := make(map[Query]int)
	for _, q := range got {
		counts[q]++
	}
	for _, p := range pairs {
		// Expected 1000 each; allow a wide margin.
		if c := counts[p]; c < 800 || c > 1200 {
			t.Errorf("pair %v drawn %d times, want about 1000", p, c)
		}
	}
}

func TestUniform_Empty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	if got := Uniform(nil, 10, rng); got != nil {
		t.Errorf("Uniform(nil) = %v, want nil", got)
	}
	if got := Uniform(testPairs(3), 0, rng); got != nil {
		t.Errorf("Uniform(n=0) = %v, want nil", got)
	}
}

func TestZipf_Skewed(t *testing.T) {
	pairs := testPairs(20)
	rng := rand.New(rand.NewPCG(3, 4))

	got := Zipf(pairs, 5000, 1.5, rng)
	if len(got) != 5000 {
		t.Fatalf("len = %d, want 5000", len(got))
	}

	counts := make(map[Query]int)
	for _, q := range got {
		counts[q]++
	}
	if counts[pairs[0]] <= counts[pairs[19]] {
		t.Errorf("rank 0 drawn %d times, rank 19 drawn %d; want rank 0 hotter",
			counts[pairs[0]], counts[pairs[19]])
	}
}

func TestZipf_SinglePair(t *testing.T) {
	pairs := testPairs(1)
	rng := rand.New(rand.NewPCG(5, 6))
	for _, q := range Zipf(pairs, 10, 2, rng) {
		if q != pairs[0] {
			t.Fatalf("got %v, want %v", q, pairs[0])
		}
	}
}

func TestSeedIsReproducible(t *testing.T) {
	pairs := testPairs(10)
	a := Uniform(pairs, 50, rand.New(rand.NewPCG(9, 9)))
	b := Uniform(pairs, 50, rand.New(rand.NewPCG(9, 9)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("query %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestShuffle_KeepsPairs(t *testing.T) {
	pairs := testPairs(10)
	got := Shuffle(pairs, rand.New(rand.NewPCG(1, 1)))
	if len(got) != len(pairs) {
		t.Fatalf("len = %d, want %d", len(got), len(pairs))
	}
	seen := make(map[Query]bool)
	for _, q := range got {
		seen[q] = true
	}
	for _, p := range pairs {
		if !seen[p] {
			t.Errorf("pair %v lost", p)
		}
	}
	if pairs[0].City != "a" {
		t.Error("Shuffle modified its input")
	}
}
