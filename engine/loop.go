package engine

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Loop drives a Pipeline on a fixed interval. Run owns the goroutine for
// terminal frontends; frontends with their own main loop call Step instead.
type Loop struct {
	pipe     *Pipeline
	time     TimeProvider
	interval time.Duration

	lastStart time.Time
	running   atomic.Bool
}

// NewLoop creates a loop targeting fps frames per second
func NewLoop(pipe *Pipeline, tp TimeProvider, fps int) *Loop {
	if fps <= 0 {
		fps = 60
	}
	return &Loop{
		pipe:     pipe,
		time:     tp,
		interval: time.Second / time.Duration(fps),
	}
}

// Interval returns the frame interval
func (l *Loop) Interval() time.Duration { return l.interval }

// Step runs a single frame on the caller's goroutine
func (l *Loop) Step() error {
	now := l.time.Now()
	if !l.lastStart.IsZero() {
		l.pipe.recordInterval(now.Sub(l.lastStart))
	}
	l.lastStart = now
	return l.pipe.Frame()
}

// Run renders frames until ctx is cancelled or a frame fails.
// Deadlines advance by the interval; a loop more than two intervals behind
// resynchronizes instead of bursting.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	defer l.running.Store(false)

	timer := time.NewTimer(0)
	defer timer.Stop()

	next := l.time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if err := l.Step(); err != nil {
			log.Printf("engine: frame failed: %v", err)
			return err
		}

		now := l.time.Now()
		next = next.Add(l.interval)
		if now.Sub(next) > 2*l.interval {
			next = now.Add(l.interval)
		}
		timer.Reset(max(next.Sub(now), 0))
	}
}
