// Package interp provides the per-invocation execution records an AML
// dispatcher runs on: walk-states carrying operand and result stacks,
// argument and local slots, scope and control frames, and the per-thread
// chain that links nested method invocations.
//
// The package does not interpret opcodes. It is the substrate a dispatcher
// is built on, and everything here is allocated through the caches so a
// busy interpreter reuses the same records over and over.
package interp

import (
	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/cache"
	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/state"
)

// Pools bundles the allocation sources a dispatcher draws on while
// executing methods: the walk-state cache and the shared state pool.
type Pools struct {
	walks  *cache.Cache[WalkState]
	states *state.Pool
	log    zerolog.Logger
}

// NewPools creates a Pools from its two backing allocators.
func NewPools(walks *cache.Cache[WalkState], states *state.Pool, log zerolog.Logger) (*Pools, error) {
	if walks == nil {
		return nil, errz.New(errz.BadParameter, "pools require a walk-state cache")
	}
	if states == nil {
		return nil, errz.New(errz.BadParameter, "pools require a state pool")
	}
	return &Pools{walks: walks, states: states, log: log}, nil
}

// WalkCache returns the walk-state cache.
func (p *Pools) WalkCache() *cache.Cache[WalkState] {
	return p.walks
}

// States returns the shared state pool.
func (p *Pools) States() *state.Pool {
	return p.states
}
