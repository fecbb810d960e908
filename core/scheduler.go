package core

import (
	"sync"
	"time"
)

// Handle is a single armed timer. Once cancelled it will never fire, even if
// the underlying timer has already expired and its callback is waiting on the
// scheduler lock.
type Handle struct {
	s       *Scheduler
	timer   *time.Timer
	stopped bool
}

// Cancel marks the handle dead and stops the timer if it has not fired yet.
func (h *Handle) Cancel() {
	h.s.mu.Lock()
	h.stopped = true
	h.s.mu.Unlock()
	h.timer.Stop()
}

// Scheduler arms deadline and reminder timers keyed by group so that a phase
// transition can revoke everything the previous phase scheduled in one call.
type Scheduler struct {
	mu      sync.Mutex
	handles map[string][]*Handle
}

func NewScheduler() *Scheduler {
	return &Scheduler{handles: map[string][]*Handle{}}
}

// After runs fn once d elapses, unless the handle or its group is cancelled
// first. fn runs on the timer goroutine.
func (s *Scheduler) After(group string, d time.Duration, fn func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &Handle{s: s}
	h.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		if h.stopped {
			s.mu.Unlock()
			return
		}
		h.stopped = true
		s.mu.Unlock()
		fn()
	})

	// Prune fired and cancelled handles while we hold the lock anyway.
	kept := s.handles[group][:0]
	for _, old := range s.handles[group] {
		if !old.stopped {
			kept = append(kept, old)
		}
	}
	s.handles[group] = append(kept, h)
	return h
}

// CancelGroup revokes every timer armed for the group.
func (s *Scheduler) CancelGroup(group string) {
	s.mu.Lock()
	pending := s.handles[group]
	for _, h := range pending {
		h.stopped = true
	}
	delete(s.handles, group)
	s.mu.Unlock()

	for _, h := range pending {
		h.timer.Stop()
	}
}

// Pending reports how many live timers the group still has armed.
func (s *Scheduler) Pending(group string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.handles[group] {
		if !h.stopped {
			n++
		}
	}
	return n
}
