// Package lru implements recency-based eviction.
package lru

import "github.com/citylookup/citycache/internal/cache/policy"

// Name is the identifier of this policy.
const Name = "lru"

// Compile-time check that Policy implements policy.Policy.
var _ policy.Policy = (*Policy)(nil)

// Policy evicts the least recently used entry. Both reads and updates
// count as a use.
type Policy struct{}

// New returns the LRU policy.
func New() *Policy {
	return &Policy{}
}

// Name returns "lru".
func (p *Policy) Name() string { return Name }

// New binds an LRU evictor to the cache order. The front of the order is
// the least recently used end.
func (p *Policy) New(o policy.Order) policy.Evictor {
	return &evictor{order: o}
}

type evictor struct {
	order policy.Order
}

// OnAdd is a no-op: the cache appends new entries at the most recent end.
func (e *evictor) OnAdd(policy.Entry) {}

// OnAccess refreshes the entry's position.
func (e *evictor) OnAccess(n policy.Entry) { e.order.MoveToBack(n) }

func (e *evictor) OnRemove(policy.Entry) {}

func (e *evictor) Victim() policy.Entry { return e.order.Front() }
