package bookingflow

import (
	"context"
	"sync"
	"time"
)

// Registry holds one Flow per browser session
type Registry struct {
	origin string
	flows  sync.Map // sid -> *Flow
}

// NewRegistry creates a registry whose flows build links under origin
func NewRegistry(origin string) *Registry {
	return &Registry{origin: origin}
}

// Get returns the flow of sid, creating an idle one on first use
func (r *Registry) Get(sid string) *Flow {
	if f, ok := r.flows.Load(sid); ok {
		return f.(*Flow)
	}
	f, _ := r.flows.LoadOrStore(sid, New(r.origin))
	return f.(*Flow)
}

// Remove closes and drops the flow of sid
func (r *Registry) Remove(sid string) {
	if f, ok := r.flows.LoadAndDelete(sid); ok {
		f.(*Flow).Close()
	}
}

// Sweep drops flows untouched for longer than maxIdle and returns how many.
// Flows waiting on the backend are kept.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	r.flows.Range(func(key, value interface{}) bool {
		if value.(*Flow).idleBefore(cutoff) {
			r.Remove(key.(string))
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of tracked flows
func (r *Registry) Len() int {
	n := 0
	r.flows.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// RunJanitor sweeps idle flows every interval until ctx is done
func (r *Registry) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}
