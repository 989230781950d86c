package kiosk

import (
	"sync"
	"time"
)

// Scope owns scheduled tasks and child scopes. Closing a scope cancels
// everything it owns; a closed scope accepts no new work.
type Scope struct {
	clock Clock

	mu       sync.Mutex
	parent   *Scope
	handles  map[*Handle]struct{}
	children map[*Scope]struct{}
	closed   bool
}

// Handle identifies one scheduled task.
type Handle struct {
	scope    *Scope
	timer    Timer
	interval time.Duration
	fn       func()
	done     bool
}

// NewScope returns a root scope scheduling on clock.
func NewScope(clock Clock) *Scope {
	return &Scope{
		clock:    clock,
		handles:  make(map[*Handle]struct{}),
		children: make(map[*Scope]struct{}),
	}
}

// Child returns a scope closed together with s.
func (s *Scope) Child() *Scope {
	child := NewScope(s.clock)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		child.closed = true
		return child
	}
	child.parent = s
	s.children[child] = struct{}{}
	return child
}

// Clock returns the clock the scope schedules on.
func (s *Scope) Clock() Clock {
	return s.clock
}

// After runs fn once after d.
func (s *Scope) After(d time.Duration, fn func()) *Handle {
	return s.schedule(d, 0, fn)
}

// Every runs fn every d until cancelled.
func (s *Scope) Every(d time.Duration, fn func()) *Handle {
	return s.schedule(d, d, fn)
}

func (s *Scope) schedule(d, interval time.Duration, fn func()) *Handle {
	h := &Handle{scope: s, interval: interval, fn: fn}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		h.done = true
		return h
	}
	s.handles[h] = struct{}{}
	h.timer = s.clock.AfterFunc(d, func() { s.fire(h) })
	return h
}

func (s *Scope) fire(h *Handle) {
	s.mu.Lock()
	if h.done || s.closed {
		s.mu.Unlock()
		return
	}
	if h.interval > 0 {
		h.timer = s.clock.AfterFunc(h.interval, func() { s.fire(h) })
	} else {
		h.done = true
		delete(s.handles, h)
	}
	s.mu.Unlock()

	h.fn()
}

// Cancel stops the task. Cancelling twice, or after a one-shot task fired, is a no-op.
func (h *Handle) Cancel() {
	s := h.scope
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.done {
		return
	}
	h.done = true
	delete(s.handles, h)
	if h.timer != nil {
		h.timer.Stop()
	}
}

// Active reports whether the task is still scheduled.
func (h *Handle) Active() bool {
	h.scope.mu.Lock()
	defer h.scope.mu.Unlock()
	return !h.done
}

// Pending counts the tasks of s and all open child scopes.
func (s *Scope) Pending() int {
	s.mu.Lock()
	n := len(s.handles)
	children := make([]*Scope, 0, len(s.children))
	for c := range s.children {
		children = append(children, c)
	}
	s.mu.Unlock()

	for _, c := range children {
		n += c.Pending()
	}
	return n
}

// Closed reports whether Close was called on s or an ancestor.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels every task and child scope. It is safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	handles := s.handles
	children := s.children
	parent := s.parent
	s.handles = make(map[*Handle]struct{})
	s.children = make(map[*Scope]struct{})
	s.parent = nil
	for h := range handles {
		h.done = true
		if h.timer != nil {
			h.timer.Stop()
		}
	}
	s.mu.Unlock()

	for c := range children {
		c.Close()
	}
	if parent != nil {
		parent.mu.Lock()
		delete(parent.children, s)
		parent.mu.Unlock()
	}
}
