// Package pool implements sampling without replacement over roster slots.
//
// The Engine keeps one global pool and one pool per group. Each pool is a
// FIFO of slots that have not been picked in the current cycle. An empty pool
// is refilled from the complete current membership and shuffled with a
// uniform Fisher-Yates permutation, so every member is picked exactly once per
// cycle before any repeat.
package pool

import (
	"math/rand/v2"

	"github.com/alem-hub/rollcall/internal/domain/shared"
)

// Membership lists the slots eligible for each scope.
type Membership interface {
	// Slots returns every slot in the roster.
	Slots() []int

	// SlotsInGroup returns the slots whose group equals group.
	SlotsInGroup(group string) []int
}

// ══════════════════════════════════════════════════════════════════════════════
// SCOPE
// ══════════════════════════════════════════════════════════════════════════════

// Scope selects the pool a pick draws from: the whole roster or one group.
type Scope struct {
	group string
	bound bool
}

// Global is the scope covering the whole roster.
var Global = Scope{}

// Group returns the scope restricted to one group.
func Group(name string) Scope {
	return Scope{group: name, bound: true}
}

// IsGlobal reports whether the scope covers the whole roster.
func (s Scope) IsGlobal() bool {
	return !s.bound
}

// Name returns the group name, or "" for the global scope.
func (s Scope) Name() string {
	return s.group
}

// String implements fmt.Stringer.
func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "group:" + s.group
}

// ══════════════════════════════════════════════════════════════════════════════
// POOL
// ══════════════════════════════════════════════════════════════════════════════

// Pool is a FIFO of slots not yet picked in the current cycle.
type Pool struct {
	slots []int
}

// Len returns the number of slots left in the cycle.
func (p *Pool) Len() int {
	return len(p.slots)
}

// Empty reports whether the cycle is exhausted.
func (p *Pool) Empty() bool {
	return len(p.slots) == 0
}

// fill replaces the content with a shuffled copy of slots.
func (p *Pool) fill(slots []int, rng *rand.Rand) {
	p.slots = append(p.slots[:0], slots...)
	rng.Shuffle(len(p.slots), func(i, j int) {
		p.slots[i], p.slots[j] = p.slots[j], p.slots[i]
	})
}

// pop removes and returns the front slot. The pool must not be empty.
func (p *Pool) pop() int {
	slot := p.slots[0]
	p.slots = p.slots[1:]
	return slot
}

func (p *Pool) clear() {
	p.slots = nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Engine owns the global pool, the group pools and the random source.
// It is not safe for concurrent use; the owning session serializes access.
type Engine struct {
	rng    *rand.Rand
	global Pool
	groups map[string]*Pool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes shuffles reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand uses the given random source.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// NewEngine creates an engine with empty pools. Without options the random
// source is seeded from the runtime's entropy once and kept for the life of
// the engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{groups: make(map[string]*Pool)}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// Next returns the next slot for scope, refilling the pool first if the
// current cycle is exhausted. It returns ErrNoEligibleStudents when the scope
// has no members; no state changes in that case.
func (e *Engine) Next(scope Scope, m Membership) (int, error) {
	p := e.poolFor(scope)
	if p.Empty() {
		e.refill(scope, p, m)
	}
	if p.Empty() {
		if !scope.IsGlobal() {
			delete(e.groups, scope.Name())
		}
		return -1, shared.ErrNoEligibleStudents.WithMessage("no eligible students in %s", scope)
	}
	return p.pop(), nil
}

// Remaining returns how many picks are left in the current cycle of scope.
// Zero means the next pick starts a new cycle.
func (e *Engine) Remaining(scope Scope) int {
	if scope.IsGlobal() {
		return e.global.Len()
	}
	if p, ok := e.groups[scope.Name()]; ok {
		return p.Len()
	}
	return 0
}

// Reset discards the global pool and every group pool.
func (e *Engine) Reset() {
	e.global.clear()
	clear(e.groups)
}

func (e *Engine) poolFor(scope Scope) *Pool {
	if scope.IsGlobal() {
		return &e.global
	}
	p, ok := e.groups[scope.Name()]
	if !ok {
		p = &Pool{}
		e.groups[scope.Name()] = p
	}
	return p
}

func (e *Engine) refill(scope Scope, p *Pool, m Membership) {
	var eligible []int
	if scope.IsGlobal() {
		eligible = m.Slots()
	} else {
		eligible = m.SlotsInGroup(scope.Name())
	}
	p.fill(eligible, e.rng)
}
