package engine

import (
	"sync"
	"time"
)

// PausableClock derives game time from a TimeProvider, excluding paused
// spans. Games tick on it so that losing focus freezes play while the
// display effects keep running on wall time.
type PausableClock struct {
	mu sync.RWMutex

	src         TimeProvider
	start       time.Time
	paused      bool
	pausedAt    time.Time
	totalPaused time.Duration
}

// NewPausableClock starts a running clock at src.Now()
func NewPausableClock(src TimeProvider) *PausableClock {
	return &PausableClock{src: src, start: src.Now()}
}

// Elapsed returns game time since the clock started
func (pc *PausableClock) Elapsed() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	end := pc.src.Now()
	if pc.paused {
		end = pc.pausedAt
	}
	return end.Sub(pc.start) - pc.totalPaused
}

// Pause freezes game time; repeated calls are no-ops
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.paused {
		return
	}
	pc.paused = true
	pc.pausedAt = pc.src.Now()
}

// Resume continues game time from where it stopped
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if !pc.paused {
		return
	}
	pc.totalPaused += pc.src.Now().Sub(pc.pausedAt)
	pc.paused = false
	pc.pausedAt = time.Time{}
}

// IsPaused reports the pause state
func (pc *PausableClock) IsPaused() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.paused
}

// TotalPaused returns the cumulative paused duration, including an ongoing pause
func (pc *PausableClock) TotalPaused() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	total := pc.totalPaused
	if pc.paused {
		total += pc.src.Now().Sub(pc.pausedAt)
	}
	return total
}
