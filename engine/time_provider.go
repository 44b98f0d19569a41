package engine

import "time"

// TimeProvider is the loop's source of wall time
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider reads the system clock; readings carry the monotonic component
type MonotonicTimeProvider struct{}

// NewMonotonicTimeProvider creates a system clock provider
func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

// Now returns time.Now()
func (MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}
