package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
)

var (
	// ErrDuplicate is returned when a name is registered twice
	ErrDuplicate = errors.New("service already registered")
	// ErrCycle is returned when dependencies form a loop
	ErrCycle = errors.New("circular service dependency")
	// ErrUnknownDependency is returned for a dependency that was never registered
	ErrUnknownDependency = errors.New("unregistered service dependency")
)

// Hub is the runtime container for service instances
type Hub struct {
	mu       sync.Mutex
	services map[string]Service
	sorted   []string // Topological order, computed on StartAll
	started  []string // Services that completed Start, for rollback
}

// NewHub creates an empty service hub
func NewHub() *Hub {
	return &Hub{services: make(map[string]Service)}
}

// Register adds a service instance to the hub
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	h.services[name] = svc
	h.sorted = nil
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet retrieves a service and casts to type T
// Panics if service not found or type mismatch
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// Order returns the start order
func (h *Hub) Order() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.sort(); err != nil {
		return nil, err
	}
	return slices.Clone(h.sorted), nil
}

// StartAll starts every service in dependency order.
// On failure, already-started services are stopped in reverse order.
func (h *Hub) StartAll(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sort(); err != nil {
		return err
	}
	h.started = nil
	for _, name := range h.sorted {
		if err := h.services[name].Start(ctx); err != nil {
			h.stopStarted()
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
	}
	return nil
}

// StopAll stops started services in reverse order. Errors are logged so
// every service gets its Stop call.
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopStarted()
}

func (h *Hub) stopStarted() {
	for i := len(h.started) - 1; i >= 0; i-- {
		name := h.started[i]
		if err := h.services[name].Stop(); err != nil {
			log.Printf("service %s stop: %v", name, err)
		}
	}
	h.started = nil
}

// sort computes the start order with Kahn's algorithm. Ties resolve by name
// so the order is stable across runs.
func (h *Hub) sort() error {
	if h.sorted != nil {
		return nil
	}

	inDegree := make(map[string]int, len(h.services))
	dependents := make(map[string][]string)
	for name := range h.services {
		inDegree[name] = 0
	}
	for name, svc := range h.services {
		for _, dep := range svc.Dependencies() {
			if _, ok := h.services[dep]; !ok {
				return fmt.Errorf("%w: %s needs %s", ErrUnknownDependency, name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, d := range inDegree {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	slices.Sort(ready)

	order := make([]string, 0, len(h.services))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		var next []string
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		slices.Sort(next)
		ready = append(ready, next...)
	}

	if len(order) != len(h.services) {
		return ErrCycle
	}
	h.sorted = order
	return nil
}
