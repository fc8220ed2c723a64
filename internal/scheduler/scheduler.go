// internal/scheduler/scheduler.go
package scheduler

import (
	"log"
	"sync"
	"time"
)

// FireFunc is invoked when a room's turn deadline elapses. It receives the
// deadline the timer was armed with; the engine's auto-skip compares it to
// the room's current deadline and treats a mismatch as a stale fire.
type FireFunc func(roomID string, deadline time.Time)

// TurnScheduler owns at most one pending turn timer per room. Re-arming a
// room cancels its previous timer first. Cancellation is best effort: a timer
// that has already fired runs to completion, and correctness relies on the
// engine's deadline-match check, not on perfect cancellation.
type TurnScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool

	// Fire is the timeout callback, assigned after construction to break the
	// scheduler/engine dependency cycle.
	Fire FireFunc
}

func New() *TurnScheduler {
	return &TurnScheduler{timers: make(map[string]*time.Timer)}
}

// Arm schedules a fire for roomID at the given absolute deadline, replacing
// any pending timer for that room. A deadline already in the past fires
// immediately.
func (s *TurnScheduler) Arm(roomID string, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if prev, ok := s.timers[roomID]; ok {
		prev.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(time.Until(deadline), func() {
		s.mu.Lock()
		// Only forget the entry if it is still ours; a re-arm may have
		// replaced it while we were waiting for the lock.
		if current, ok := s.timers[roomID]; ok && current == timer {
			delete(s.timers, roomID)
		}
		fire := s.Fire
		s.mu.Unlock()

		if fire == nil {
			log.Printf("scheduler: no fire callback set, dropping timeout for room %s", roomID)
			return
		}
		fire(roomID, deadline)
	})
	s.timers[roomID] = timer
}

// Cancel drops any pending timer for the room. Called when a room ends.
func (s *TurnScheduler) Cancel(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[roomID]; ok {
		timer.Stop()
		delete(s.timers, roomID)
	}
}

// Pending reports whether the room currently has a timer armed.
func (s *TurnScheduler) Pending(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[roomID]
	return ok
}

// Shutdown stops every pending timer and rejects further arming.
func (s *TurnScheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
