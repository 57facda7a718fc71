// Package session tracks at most one live workflow instance per user.
// Each user maps to a slot with its own mutex, so concurrent updates
// from the same user are serialized while different users never contend.
package session

import (
	"sync"
	"time"

	"github.com/dkazmin/pvzbot/internal/workflow"
)

type Registry struct {
	mu    sync.Mutex
	slots map[int64]*slot
	ttl   time.Duration
	now   func() time.Time
}

type slot struct {
	mu      sync.Mutex
	dead    bool
	inst    *workflow.Instance
	touched time.Time
}

// Option customizes the registry.
type Option func(*Registry)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.now = clock
		}
	}
}

func New(ttl time.Duration, opts ...Option) *Registry {
	r := &Registry{
		slots: make(map[int64]*slot),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session is an acquired, locked per-user slot. It must be released
// exactly once.
type Session struct {
	s       *slot
	expired bool
}

// Acquire locks the user's slot, creating it if needed. An instance idle
// past the TTL is evicted here and reported via Expired.
func (r *Registry) Acquire(userID int64) *Session {
	for {
		r.mu.Lock()
		s, ok := r.slots[userID]
		if !ok {
			s = &slot{}
			r.slots[userID] = s
		}
		r.mu.Unlock()

		s.mu.Lock()
		if s.dead {
			// Swept out from under us between map lookup and lock.
			s.mu.Unlock()
			continue
		}

		sess := &Session{s: s}
		if s.inst != nil && r.now().Sub(s.touched) > r.ttl {
			s.inst = nil
			sess.expired = true
		}
		return sess
	}
}

// Release unlocks the slot.
func (s *Session) Release() {
	s.s.mu.Unlock()
}

// Active returns the live instance, or nil.
func (s *Session) Active() *workflow.Instance {
	return s.s.inst
}

// Expired reports whether an idle instance was evicted on this acquire.
func (s *Session) Expired() bool {
	return s.expired
}

// Begin installs a new instance, force-replacing any active one. The
// replaced instance is returned so the caller can tell the user their
// prior workflow was discarded; its collected fields die with it.
func (s *Session) Begin(inst *workflow.Instance, now time.Time) *workflow.Instance {
	replaced := s.s.inst
	s.s.inst = inst
	s.s.touched = now
	return replaced
}

// Touch refreshes the idle timer after a successful advance.
func (s *Session) Touch(now time.Time) {
	s.s.touched = now
}

// Clear frees the slot on any terminal workflow outcome.
func (s *Session) Clear() {
	s.s.inst = nil
}

// Sweep evicts idle instances and drops empty slots. Correctness does
// not depend on it; it only bounds memory between lazy evictions.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	now := r.now()
	for userID, s := range r.slots {
		if !s.mu.TryLock() {
			continue
		}
		if s.inst != nil && now.Sub(s.touched) > r.ttl {
			s.inst = nil
			evicted++
		}
		if s.inst == nil {
			s.dead = true
			delete(r.slots, userID)
		}
		s.mu.Unlock()
	}
	return evicted
}

// Len reports the number of tracked slots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
