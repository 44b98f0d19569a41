package engine

import (
	"sync"
	"time"
)

// MockTimeProvider is a clock that only moves when told to. Tests drive
// pipelines frame by frame with Step.
type MockTimeProvider struct {
	mu sync.Mutex
	at time.Time
}

// NewMockTimeProvider creates a mock clock reading start
func NewMockTimeProvider(start time.Time) *MockTimeProvider {
	return &MockTimeProvider{at: start}
}

func (m *MockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.at
}

// SetTime jumps to t, backwards included
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	m.at = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	m.at = m.at.Add(d)
	m.mu.Unlock()
}

// Step calls frame n times, advancing the clock by interval before each
// call, and stops at the first error
func (m *MockTimeProvider) Step(n int, interval time.Duration, frame func() error) error {
	for range n {
		m.Advance(interval)
		if err := frame(); err != nil {
			return err
		}
	}
	return nil
}
