package position

import (
	"sync"
	"time"
)

// Scheduler coalesces rapid updates into one deferred call per key. Each key
// owns its own timer, so pending writes for different nodes never cancel
// each other, and every timer is individually cancelable on teardown.
type Scheduler struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
	fns    map[string]func()
}

func NewScheduler(delay time.Duration) *Scheduler {
	return &Scheduler{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		fns:    make(map[string]func()),
	}
}

// Schedule arranges fn to run after the debounce delay. A pending call for
// the same key is replaced, resetting the window.
func (s *Scheduler) Schedule(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.fns[key] = fn
	s.timers[key] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		delete(s.fns, key)
		s.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call for key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
		delete(s.fns, key)
	}
}

// CancelAll drops every pending call. Used on unmount so no stale write
// fires after teardown.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
		delete(s.fns, key)
	}
}

// Flush runs every pending call immediately.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	var fns []func()
	for key, t := range s.timers {
		t.Stop()
		fns = append(fns, s.fns[key])
		delete(s.timers, key)
		delete(s.fns, key)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Pending reports the number of scheduled calls.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
