// Package service runs the long-lived infrastructure around the frame loop:
// history store, audio, asset loaders, config watcher and the input
// frontend. Services start in dependency order and stop in reverse.
package service

import "context"

// Service defines the lifecycle of an infrastructure subsystem
//
// Lifecycle:
//  1. Construction by the caller, fully configured
//  2. Start(ctx) - launch background goroutines; ctx ends with the session
//  3. [runtime operation]
//  4. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must start before this one
	Dependencies() []string

	Start(ctx context.Context) error

	// Stop must be idempotent
	Stop() error
}

// Func adapts a pair of closures to Service. Nil closures are no-ops.
type Func struct {
	ID      string
	Deps    []string
	OnStart func(ctx context.Context) error
	OnStop  func() error
}

func (f *Func) Name() string { return f.ID }

func (f *Func) Dependencies() []string { return f.Deps }

func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

func (f *Func) Stop() error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop()
}
