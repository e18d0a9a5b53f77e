// Package policy defines the contract between a bounded cache and its
// eviction policies.
//
// The cache owns the key/value map and a shared order list. A Policy is a
// factory: each cache calls New once with hooks into its own order list and
// keeps the returned Evictor for its whole lifetime, so policy state is
// never shared between caches.
package policy

// Entry is the view of a resident cache entry exposed to policies.
type Entry interface {
	Key() string
}

// Order exposes the cache's shared order list to a policy.
// New entries are appended at the back before OnAdd is called.
//
// Concurrency: hooks are only called while the cache lock is held.
type Order interface {
	// Front returns the entry at the front of the order, or nil if empty.
	Front() Entry
	// MoveToBack moves a resident entry to the back of the order.
	MoveToBack(Entry)
	// Len returns the number of resident entries.
	Len() int
}

// Evictor is the per-cache eviction state produced by a Policy.
//
// Semantics:
//   - OnAdd is called after a new entry was inserted.
//   - OnAccess is called on a Get hit and on a Put that updates an
//     existing key.
//   - OnRemove is called after an entry left the store for any reason
//     (eviction, explicit removal, clear).
//   - Victim selects the entry to evict. It is only called when the store
//     is non-empty and must return a resident entry. It must not mutate
//     state; the cache calls OnRemove once the victim is gone.
type Evictor interface {
	OnAdd(Entry)
	OnAccess(Entry)
	OnRemove(Entry)
	Victim() Entry
}

// Policy creates cache-local Evictors.
type Policy interface {
	// Name returns the short identifier of the policy, e.g. "lru".
	Name() string
	// New binds a fresh Evictor to the given order.
	New(Order) Evictor
}
