package cache

import (
	"container/list"

	"github.com/citylookup/citycache/internal/cache/policy"
)

// entry is a resident key/value pair together with its position in the
// shared order list.
type entry struct {
	key   string
	value string
	elem  *list.Element
}

// Key implements policy.Entry.
func (e *entry) Key() string { return e.key }

// store is the bookkeeping shared by every policy: the key map plus the
// order list. Every mutation goes through insert/remove so that the two
// always hold the same set of keys.
type store struct {
	items map[string]*entry
	order *list.List
}

// Compile-time check that store exposes policy.Order hooks.
var _ policy.Order = (*store)(nil)

func newStore(capacity int) *store {
	return &store{
		items: make(map[string]*entry, capacity),
		order: list.New(),
	}
}

func (s *store) lookup(key string) (*entry, bool) {
	e, ok := s.items[key]
	return e, ok
}

// insert appends a new entry at the back of the order.
func (s *store) insert(key, value string) *entry {
	e := &entry{key: key, value: value}
	e.elem = s.order.PushBack(e)
	s.items[key] = e
	return e
}

func (s *store) remove(e *entry) {
	s.order.Remove(e.elem)
	e.elem = nil
	delete(s.items, e.key)
}

// each visits entries front to back until fn returns false.
func (s *store) each(fn func(*entry) bool) {
	for el := s.order.Front(); el != nil; el = el.Next() {
		if !fn(el.Value.(*entry)) {
			return
		}
	}
}

// Front implements policy.Order.
func (s *store) Front() policy.Entry {
	el := s.order.Front()
	if el == nil {
		return nil
	}
	return el.Value.(*entry)
}

// MoveToBack implements policy.Order.
func (s *store) MoveToBack(n policy.Entry) {
	s.order.MoveToBack(n.(*entry).elem)
}

// Len implements policy.Order.
func (s *store) Len() int {
	return len(s.items)
}
