package fifo

import (
	"testing"

	"github.com/citylookup/citycache/internal/cache/policy"
)

type key string

func (k key) Key() string { return string(k) }

// staticOrder is a policy.Order that fails the test if reordered.
type staticOrder struct {
	t    *testing.T
	keys []policy.Entry
}

func (o *staticOrder) Front() policy.Entry {
	if len(o.keys) == 0 {
		return nil
	}
	return o.keys[0]
}

func (o *staticOrder) MoveToBack(e policy.Entry) {
	o.t.Errorf("MoveToBack(%s) called; fifo must not reorder", e.Key())
}

func (o *staticOrder) Len() int { return len(o.keys) }

func TestEvictor_IgnoresAccess(t *testing.T) {
	o := &staticOrder{t: t, keys: []policy.Entry{key("a"), key("b")}}
	e := New().New(o)

	e.OnAdd(key("b"))
	e.OnAccess(key("a"))
	e.OnAccess(key("a"))

	if v := e.Victim(); v.Key() != "a" {
		t.Errorf("Victim() = %s, want a", v.Key())
	}
}

func TestEvictor_EmptyOrder(t *testing.T) {
	e := New().New(&staticOrder{t: t})
	if v := e.Victim(); v != nil {
		t.Errorf("Victim() = %v, want nil", v)
	}
}
