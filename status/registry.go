// Package status holds lock-free runtime metrics. Producers cache metric
// pointers at wiring time and write atomics from their own goroutine; the
// status builtin reads a sorted snapshot.
package status

import (
	"fmt"
	"sync/atomic"
)

// Registry groups metrics by value type
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// Entry is one formatted metric
type Entry struct {
	Key   string
	Value string
}

// Snapshot formats every metric, sorted by key within each type.
// Order across types: strings, bools, ints, floats.
func (r *Registry) Snapshot() []Entry {
	out := make([]Entry, 0, r.Count())
	r.Strings.Range(func(k string, v *AtomicString) {
		out = append(out, Entry{k, v.Load()})
	})
	r.Bools.Range(func(k string, v *atomic.Bool) {
		out = append(out, Entry{k, fmt.Sprint(v.Load())})
	})
	r.Ints.Range(func(k string, v *atomic.Int64) {
		out = append(out, Entry{k, fmt.Sprint(v.Load())})
	})
	r.Floats.Range(func(k string, v *AtomicFloat) {
		out = append(out, Entry{k, fmt.Sprintf("%.2f", v.Get())})
	})
	return out
}

// Count returns the number of metrics across all types
func (r *Registry) Count() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}
