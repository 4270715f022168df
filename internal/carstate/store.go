// Package carstate holds a car's shared state — the fields a real
// installation would place in POSIX shared memory so multiple processes
// (the car's own control loop, the safety monitor, the internal override
// tool) can observe and mutate it. Store plays the role of that shared
// memory segment: an in-process mutex-protected struct, broadcasting
// changes to any goroutine blocked waiting for the next one, plus (see
// server.go) a Unix-socket front end so processes other than the car
// itself can reach it.
package carstate

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time, lock-free copy of a car's shared state.
type Snapshot struct {
	CurrentFloor          string
	DestinationFloor      string
	Status                string
	OpenButton            bool
	CloseButton           bool
	DoorObstruction       bool
	Overload              bool
	EmergencyStop         bool
	IndividualServiceMode bool
	EmergencyMode         bool
}

// Store is the car's shared state plus the condition-variable-like
// broadcast every mutation triggers. Every exported mutator takes the
// store's lock, updates the fields, bumps generation and broadcasts.
type Store struct {
	mu         sync.Mutex
	cond       *sync.Cond
	generation uint64
	state      Snapshot
}

// New returns a Store initialized to the car's starting position: closed
// doors, at rest at lowestFloor.
func New(lowestFloor string) *Store {
	s := &Store{
		state: Snapshot{
			CurrentFloor:     lowestFloor,
			DestinationFloor: lowestFloor,
			Status:           "Closed",
		},
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mutate runs fn with the store locked and broadcasts afterward,
// unconditionally bumping generation — the in-process equivalent of the
// original's "lock, modify fields directly, signal the condition
// variable, unlock".
func (s *Store) Mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.state)
	s.generation++
	s.cond.Broadcast()
	s.mu.Unlock()
}

// MutateIf runs fn with the store locked and broadcasts only if fn
// reports a change occurred, so a no-op update wakes no waiter
// (RunSafetyCheck applies the same rule under its own locking).
func (s *Store) MutateIf(fn func(*Snapshot) bool) (changed bool) {
	s.mu.Lock()
	changed = fn(&s.state)
	if changed {
		s.generation++
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	return changed
}

// Wait blocks until the state changes at least once after the moment
// Wait is called, or until timeout elapses, then returns the resulting
// snapshot. A timeout of 0 waits indefinitely.
//
// sync.Cond has no native timed wait; the deadline is enforced by
// scheduling a forced wakeup that re-broadcasts at the deadline, which
// every blocked waiter also observes (they simply re-check their own
// generation and return as "still unchanged").
func (s *Store) Wait(timeout time.Duration) Snapshot {
	snap, _ := s.WaitChanged(timeout)
	return snap
}

// WaitChanged behaves like Wait but also reports whether the state had
// actually changed (true) or the call returned because the timeout
// elapsed with no change observed (false) — the Go equivalent of
// distinguishing a normal pthread_cond_timedwait wakeup from one that
// returned ETIMEDOUT.
func (s *Store) WaitChanged(timeout time.Duration) (snapshot Snapshot, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.generation
	var timer *time.Timer
	if timeout > 0 {
		timer = time.AfterFunc(timeout, func() {
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		})
		defer timer.Stop()
	}

	deadline := time.Now().Add(timeout)
	for s.generation == start {
		if timeout > 0 && !time.Now().Before(deadline) {
			return s.state, false
		}
		s.cond.Wait()
	}
	return s.state, true
}
