package app

import (
	"sync"

	"github.com/brewline/maitre/core/model"
)

// Roster holds the current staff snapshots the dispatcher draws candidates
// from. It is the in-process stand-in for the platform's entity store.
type Roster struct {
	mu      sync.RWMutex
	waiters map[string]model.Waiter
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{waiters: make(map[string]model.Waiter)}
}

// Replace swaps the full staff snapshot.
func (r *Roster) Replace(waiters []model.Waiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waiters = make(map[string]model.Waiter, len(waiters))
	for _, w := range waiters {
		r.waiters[w.ID] = w
	}
}

// Upsert adds or updates a single staff snapshot.
func (r *Roster) Upsert(w model.Waiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waiters[w.ID] = w
}

// SetAvailable flips a waiter's availability, reporting whether the waiter
// is known.
func (r *Roster) SetAvailable(id string, available bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.waiters[id]
	if !ok {
		return false
	}
	w.Available = available
	r.waiters[id] = w
	return true
}

// Available reports whether the waiter is currently able to take offers.
// Unknown waiters are unavailable. Satisfies dispatch.AvailabilityChecker.
func (r *Roster) Available(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.waiters[id]
	return ok && w.Available
}

// Waiters returns a copy of the current staff snapshot.
func (r *Roster) Waiters() []model.Waiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Waiter, 0, len(r.waiters))
	for _, w := range r.waiters {
		out = append(out, w)
	}
	return out
}
