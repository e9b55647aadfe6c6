// Package view holds helpers shared by the stateful views.
package view

import (
	"context"
	"sync"
)

// Guard issues request generations for one view. Begin cancels the previous
// in-flight request; Current tells whether a response still belongs to the
// latest request.
type Guard struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Begin starts a new generation and returns a context that is cancelled by
// the next Begin or Reset
func (g *Guard) Begin(parent context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	g.gen++
	g.cancel = cancel
	return ctx, g.gen
}

// Current reports whether gen is still the latest generation
func (g *Guard) Current(gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return gen == g.gen
}

// Done releases the context of gen if it is still current
func (g *Guard) Done(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen == g.gen && g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// Reset cancels any in-flight request and invalidates its generation
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.gen++
}

// Generation returns the latest generation
func (g *Guard) Generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen
}
