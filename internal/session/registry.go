package session

import (
	"context"
	"sync"
	"time"
)

// Registry owns all live sessions. At most one State exists per session
// identifier; lookups hand out the mutable instance under the
// single-writer-per-session assumption. The mutex covers only the map
// structure, never collaborator calls.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

type entry struct {
	state       *State
	lastTouched time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// GetOrCreate returns the session with the given id, creating a fresh
// state for studentID when none exists.
func (r *Registry) GetOrCreate(id, studentID string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		e = &entry{state: New(studentID)}
		r.sessions[id] = e
	}
	e.lastTouched = r.now()
	return e.state
}

// Get returns the session with the given id, if present.
func (r *Registry) Get(id string) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastTouched = r.now()
	return e.state, true
}

// Remove drops the session. After removal no component holds a
// reference to its state.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// evictIdle removes sessions untouched for longer than idleTimeout and
// returns how many were dropped.
func (r *Registry) evictIdle(idleTimeout time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idleTimeout)
	evicted := 0
	for id, e := range r.sessions {
		if e.lastTouched.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper evicts idle sessions every interval until ctx is
// canceled. Without a sweeper, entries stay resident until explicit
// session end.
func (r *Registry) StartSweeper(ctx context.Context, idleTimeout, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.evictIdle(idleTimeout)
			}
		}
	}()
}
