package engine

import "sync"

// Scheduler is the only way to reach the loop goroutine from elsewhere.
// Asynchronous work (texture, font and audio loads, CV fetches) completes by
// deferring a callback; callbacks run in submission order at the start of the
// next frame, so all state is mutated from one goroutine.
type Scheduler struct {
	mu      sync.Mutex
	pending []func()
	spare   []func()
	wake    chan struct{}
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{wake: make(chan struct{}, 1)}
}

// Defer queues fn for the loop goroutine. Safe from any goroutine.
func (s *Scheduler) Defer(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wake signals that deferred work is waiting
func (s *Scheduler) Wake() <-chan struct{} { return s.wake }

// Pending returns the number of queued callbacks
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Drain runs every callback queued before the call. Callbacks deferred while
// draining run on the next Drain. Returns the number executed.
func (s *Scheduler) Drain() int {
	s.mu.Lock()
	batch := s.pending
	s.pending = s.spare[:0]
	s.mu.Unlock()

	for i, fn := range batch {
		fn()
		batch[i] = nil
	}

	s.mu.Lock()
	s.spare = batch[:0]
	s.mu.Unlock()
	return len(batch)
}
