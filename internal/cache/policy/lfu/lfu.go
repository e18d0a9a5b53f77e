// Package lfu implements frequency-based eviction.
//
// Every entry carries an access counter. The victim is the entry with the
// lowest count; among equal counts, the one accessed least recently.
// Entries are grouped in per-count buckets ordered by last access, which
// keeps every operation O(1) except removal of the last entry of the
// minimum bucket by something other than eviction.
package lfu

import (
	"container/list"

	"github.com/citylookup/citycache/internal/cache/policy"
)

// Name is the identifier of this policy.
const Name = "lfu"

// Compile-time check that Policy implements policy.Policy.
var _ policy.Policy = (*Policy)(nil)

// Policy evicts the least frequently used entry.
type Policy struct{}

// New returns the LFU policy.
func New() *Policy {
	return &Policy{}
}

// Name returns "lfu".
func (p *Policy) Name() string { return Name }

// New binds an LFU evictor to the cache. The order list is not used.
func (p *Policy) New(policy.Order) policy.Evictor {
	return &evictor{
		nodes:   make(map[string]*node),
		buckets: make(map[uint64]*list.List),
	}
}

type node struct {
	entry policy.Entry
	count uint64
	elem  *list.Element
}

type evictor struct {
	nodes   map[string]*node
	buckets map[uint64]*list.List // count -> nodes, front = least recently accessed
	min     uint64
}

func (e *evictor) OnAdd(n policy.Entry) {
	nd := &node{entry: n, count: 1}
	nd.elem = e.bucket(1).PushBack(nd)
	e.nodes[n.Key()] = nd
	e.min = 1
}

func (e *evictor) OnAccess(n policy.Entry) {
	nd, ok := e.nodes[n.Key()]
	if !ok {
		return
	}
	if e.detach(nd) && e.min == nd.count {
		e.min++
	}
	nd.count++
	nd.elem = e.bucket(nd.count).PushBack(nd)
}

func (e *evictor) OnRemove(n policy.Entry) {
	nd, ok := e.nodes[n.Key()]
	if !ok {
		return
	}
	delete(e.nodes, n.Key())
	if e.detach(nd) && e.min == nd.count {
		e.min = e.lowestCount()
	}
}

func (e *evictor) Victim() policy.Entry {
	b, ok := e.buckets[e.min]
	if !ok {
		if e.min = e.lowestCount(); e.min == 0 {
			return nil
		}
		b = e.buckets[e.min]
	}
	return b.Front().Value.(*node).entry
}

// count reports the access count of a resident key, for inspection.
func (e *evictor) count(key string) (uint64, bool) {
	nd, ok := e.nodes[key]
	if !ok {
		return 0, false
	}
	return nd.count, true
}

func (e *evictor) bucket(count uint64) *list.List {
	b, ok := e.buckets[count]
	if !ok {
		b = list.New()
		e.buckets[count] = b
	}
	return b
}

// detach unlinks nd from its bucket and reports whether the bucket emptied.
func (e *evictor) detach(nd *node) bool {
	b := e.buckets[nd.count]
	b.Remove(nd.elem)
	nd.elem = nil
	if b.Len() > 0 {
		return false
	}
	delete(e.buckets, nd.count)
	return true
}

// lowestCount scans the buckets; 0 means there are none.
func (e *evictor) lowestCount() uint64 {
	var lowest uint64
	for c := range e.buckets {
		if lowest == 0 || c < lowest {
			lowest = c
		}
	}
	return lowest
}
