package cache

import (
	"errors"
	"fmt"
	"strings"

	"github.com/citylookup/citycache/internal/cache/policy"
	"github.com/citylookup/citycache/internal/cache/policy/fifo"
	"github.com/citylookup/citycache/internal/cache/policy/lfu"
	"github.com/citylookup/citycache/internal/cache/policy/lru"
	"github.com/citylookup/citycache/internal/cache/policy/random"
)

// ErrUnknownPolicy indicates a policy name with no implementation.
var ErrUnknownPolicy = errors.New("cache: unknown eviction policy")

// PolicyNames lists the policies NewPolicy accepts.
func PolicyNames() []string {
	return []string{lru.Name, fifo.Name, random.Name, lfu.Name}
}

// PolicyOption configures NewPolicy.
type PolicyOption func(*policyOptions)

type policyOptions struct {
	seeded bool
	seed   uint64
}

// WithSeed fixes the seed of policies that pick victims at random, so the
// same operations evict the same keys on every run. Other policies ignore it.
func WithSeed(seed uint64) PolicyOption {
	return func(o *policyOptions) {
		o.seeded = true
		o.seed = seed
	}
}

// NewPolicy returns a fresh policy for a user-supplied name.
// Matching is case-insensitive.
func NewPolicy(name string, opts ...PolicyOption) (policy.Policy, error) {
	var o policyOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case lru.Name:
		return lru.New(), nil
	case fifo.Name:
		return fifo.New(), nil
	case random.Name:
		if o.seeded {
			return random.NewSeeded(o.seed), nil
		}
		return random.New(), nil
	case lfu.Name:
		return lfu.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownPolicy, name, strings.Join(PolicyNames(), ", "))
	}
}
