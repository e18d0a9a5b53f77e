// Package random implements uniform random eviction.
package random

import (
	"math/rand/v2"

	"github.com/citylookup/citycache/internal/cache/policy"
)

// Name is the identifier of this policy.
const Name = "random"

// Compile-time check that Policy implements policy.Policy.
var _ policy.Policy = (*Policy)(nil)

// Policy evicts an entry chosen uniformly at random among the current
// occupants.
type Policy struct {
	seeded bool
	seed   uint64
}

// New returns a random policy seeded from the runtime's random source.
func New() *Policy {
	return &Policy{}
}

// NewSeeded returns a random policy whose evictors produce a reproducible
// victim sequence.
func NewSeeded(seed uint64) *Policy {
	return &Policy{seeded: true, seed: seed}
}

// Name returns "random".
func (p *Policy) Name() string { return Name }

// New binds a random evictor to the cache. The order list is not used.
func (p *Policy) New(policy.Order) policy.Evictor {
	seed1, seed2 := rand.Uint64(), rand.Uint64()
	if p.seeded {
		seed1, seed2 = p.seed, p.seed^0x9e3779b97f4a7c15
	}
	return &evictor{
		rng:   rand.New(rand.NewPCG(seed1, seed2)),
		index: make(map[string]int),
	}
}

// evictor keeps a dense slice of occupants so a victim can be drawn in O(1).
type evictor struct {
	rng   *rand.Rand
	slots []policy.Entry
	index map[string]int
}

func (e *evictor) OnAdd(n policy.Entry) {
	e.index[n.Key()] = len(e.slots)
	e.slots = append(e.slots, n)
}

func (e *evictor) OnAccess(policy.Entry) {}

// OnRemove swaps the last slot into the hole.
func (e *evictor) OnRemove(n policy.Entry) {
	i, ok := e.index[n.Key()]
	if !ok {
		return
	}
	last := len(e.slots) - 1
	if i != last {
		moved := e.slots[last]
		e.slots[i] = moved
		e.index[moved.Key()] = i
	}
	e.slots[last] = nil
	e.slots = e.slots[:last]
	delete(e.index, n.Key())
}

func (e *evictor) Victim() policy.Entry {
	if len(e.slots) == 0 {
		return nil
	}
	return e.slots[e.rng.IntN(len(e.slots))]
}
