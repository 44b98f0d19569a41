package engine

import (
	"testing"
	"time"
)

func TestMonotonicTimeProvider(t *testing.T) {
	provider := NewMonotonicTimeProvider()

	t1 := provider.Now()
	time.Sleep(10 * time.Millisecond)
	t2 := provider.Now()

	if d := t2.Sub(t1); d < 10*time.Millisecond {
		t.Errorf("expected at least 10ms between readings, got %v", d)
	}
}

func TestMockTimeProvider(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)

	if !mock.Now().Equal(start) {
		t.Errorf("expected %v, got %v", start, mock.Now())
	}

	next := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.SetTime(next)
	mock.Advance(time.Hour)
	mock.Advance(30 * time.Minute)
	if want := next.Add(90 * time.Minute); !mock.Now().Equal(want) {
		t.Errorf("expected %v, got %v", want, mock.Now())
	}
}

func TestPausableClockExcludesPauses(t *testing.T) {
	mock := NewMockTimeProvider(time.Unix(0, 0))
	pc := NewPausableClock(mock)

	mock.Advance(100 * time.Millisecond)
	if got := pc.Elapsed(); got != 100*time.Millisecond {
		t.Fatalf("expected 100ms, got %v", got)
	}

	pc.Pause()
	pc.Pause()
	mock.Advance(time.Second)
	if got := pc.Elapsed(); got != 100*time.Millisecond {
		t.Errorf("paused: expected frozen 100ms, got %v", got)
	}
	if got := pc.TotalPaused(); got != time.Second {
		t.Errorf("expected 1s paused so far, got %v", got)
	}

	pc.Resume()
	pc.Resume()
	mock.Advance(50 * time.Millisecond)
	if got := pc.Elapsed(); got != 150*time.Millisecond {
		t.Errorf("resumed: expected 150ms, got %v", got)
	}
	if pc.IsPaused() {
		t.Error("expected running clock")
	}
}
