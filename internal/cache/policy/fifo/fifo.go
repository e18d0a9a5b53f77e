// Package fifo implements insertion-order eviction.
package fifo

import "github.com/citylookup/citycache/internal/cache/policy"

// Name is the identifier of this policy.
const Name = "fifo"

// Compile-time check that Policy implements policy.Policy.
var _ policy.Policy = (*Policy)(nil)

// Policy evicts the oldest inserted entry still present. Reads and updates
// never change an entry's position.
type Policy struct{}

// New returns the FIFO policy.
func New() *Policy {
	return &Policy{}
}

// Name returns "fifo".
func (p *Policy) Name() string { return Name }

// New binds a FIFO evictor to the cache order.
func (p *Policy) New(o policy.Order) policy.Evictor {
	return &evictor{order: o}
}

type evictor struct {
	order policy.Order
}

func (e *evictor) OnAdd(policy.Entry)    {}
func (e *evictor) OnAccess(policy.Entry) {}
func (e *evictor) OnRemove(policy.Entry) {}

// Victim returns the front of the order, which is never reordered and so
// holds the oldest insertion.
func (e *evictor) Victim() policy.Entry { return e.order.Front() }
