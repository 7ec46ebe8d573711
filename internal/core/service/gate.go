package service

import (
	"context"
	"sync"

	"github.com/yndnr/supsim/internal/core/domain"
)

// Ticket identifies the flow that holds the outer lock.
type Ticket uint64

// faultOwner marks an outer lock taken by ToggleFault. No flow ever
// receives ticket zero, so End never releases a fault.
const faultOwner Ticket = 0

// Gate serializes snapshot creation with two independent locks.
//
// The outer lock is a non-queueing admission flag: a second creation is
// rejected with domain.ErrSnapshotBusy instead of waiting. The inner lock
// is a blocking critical section around the actual work. ToggleFault
// flips the outer lock outside the normal pairing, which lets a test
// wedge or unwedge creation at will.
type Gate struct {
	mu    sync.Mutex
	held  bool
	owner Ticket
	next  Ticket

	inner chan struct{}

	onChange func(held bool)
}

// NewGate creates a gate with both locks free. onChange, if not nil, is
// called with the new outer state on every transition.
func NewGate(onChange func(held bool)) *Gate {
	return &Gate{
		inner:    make(chan struct{}, 1),
		onChange: onChange,
	}
}

// TryBegin takes the outer lock or fails immediately with ErrSnapshotBusy.
func (g *Gate) TryBegin() (Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return 0, domain.ErrSnapshotBusy
	}
	g.next++
	g.held = true
	g.owner = g.next
	g.notify()
	return g.owner, nil
}

// End releases the outer lock if t still owns it. A ToggleFault in the
// meantime moves ownership away from the flow, and End is then a no-op.
func (g *Gate) End(t Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.held || g.owner != t {
		return
	}
	g.held = false
	g.owner = faultOwner
	g.notify()
}

// WithInner runs fn while holding the inner lock. Waiting for the lock
// stops when ctx is done.
func (g *Gate) WithInner(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case g.inner <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-g.inner }()

	return fn(ctx)
}

// ToggleFault releases the outer lock if anything holds it, and takes it
// on behalf of the fault otherwise. It returns the new held state.
func (g *Gate) ToggleFault() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.held = !g.held
	g.owner = faultOwner
	g.notify()
	return g.held
}

// Held reports whether the outer lock is taken.
func (g *Gate) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

// InnerHeld reports whether a flow is inside the inner lock.
func (g *Gate) InnerHeld() bool {
	return len(g.inner) == 1
}

func (g *Gate) notify() {
	if g.onChange != nil {
		g.onChange(g.held)
	}
}
