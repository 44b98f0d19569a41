// Package adapter bridges frontend input to the shell and the grid.
// Frontends Post events from any goroutine; the loop goroutine Drains them.
package adapter

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/input"
	"github.com/lixenwraith/phosphor/status"
)

// Target receives routed input; implemented by the shell
type Target interface {
	Key(ev input.Event)
	Resize(cols, rows int)
	SetFocus(on bool)
}

// Pauser is a clock that stops while the window is not focused
type Pauser interface {
	Pause()
	Resume()
}

// Suspender is an audio device that can be paused with the window
type Suspender interface {
	Suspend() error
	Wake() error
}

// Options are optional focus collaborators
type Options struct {
	Clock    Pauser
	Audio    Suspender
	Registry *status.Registry
}

// Adapter queues input events and applies them on Drain
type Adapter struct {
	term   *grid.Terminal
	target Target
	opt    Options

	mu     sync.Mutex
	queue  []input.Event
	spare  []input.Event
	resize *input.Event

	focused bool

	statEvents  *atomic.Int64
	statDropped *atomic.Int64
	statResizes *atomic.Int64
}

// New creates an adapter and subscribes target to grid size changes.
// The grid is the only source of cols and rows.
func New(term *grid.Terminal, target Target, opt Options) *Adapter {
	if opt.Registry == nil {
		opt.Registry = status.NewRegistry()
	}
	a := &Adapter{
		term:        term,
		target:      target,
		opt:         opt,
		focused:     true,
		statEvents:  opt.Registry.Ints.Get("input.events"),
		statDropped: opt.Registry.Ints.Get("input.dropped"),
		statResizes: opt.Registry.Ints.Get("input.resizes"),
	}
	term.OnResize(target.Resize)
	return a
}

// Post queues an event. Safe for concurrent use. Resize events coalesce:
// only the latest one pending at Drain is applied.
func (a *Adapter) Post(ev input.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ev.Type == input.EventResize {
		a.resize = &ev
		return
	}
	a.queue = append(a.queue, ev)
}

// Drain applies queued events in order, the pending resize first.
// Called from the loop goroutine only.
func (a *Adapter) Drain() {
	a.mu.Lock()
	events := a.queue
	a.queue = a.spare[:0]
	resize := a.resize
	a.resize = nil
	a.mu.Unlock()

	if resize != nil {
		a.applyResize(resize.Width, resize.Height)
	}
	for _, ev := range events {
		a.dispatch(ev)
	}

	clear(events)
	a.mu.Lock()
	a.spare = events[:0]
	a.mu.Unlock()
}

func (a *Adapter) dispatch(ev input.Event) {
	a.statEvents.Add(1)
	switch ev.Type {
	case input.EventFocus:
		if ev.Focused {
			a.Focus()
		} else {
			a.Blur()
		}
	case input.EventKey, input.EventPaste:
		if !a.focused {
			a.statDropped.Add(1)
			return
		}
		a.target.Key(ev)
	case input.EventResize:
		a.applyResize(ev.Width, ev.Height)
	}
}

// applyResize hands the viewport to the grid; a zero or negative size is
// ignored so the previous layout stays
func (a *Adapter) applyResize(w, h int) {
	if w <= 0 || h <= 0 {
		log.Printf("adapter: ignoring degenerate viewport %dx%d", w, h)
		return
	}
	a.statResizes.Add(1)
	a.term.Resize(grid.Viewport{Width: w, Height: h})
}

// Focused reports whether key events are delivered
func (a *Adapter) Focused() bool { return a.focused }

// Focus resumes key delivery, the cursor, the game clock and the audio device
func (a *Adapter) Focus() {
	if a.focused {
		return
	}
	a.focused = true
	a.target.SetFocus(true)
	if a.opt.Clock != nil {
		a.opt.Clock.Resume()
	}
	if a.opt.Audio != nil {
		if err := a.opt.Audio.Wake(); err != nil {
			log.Printf("adapter: resume audio: %v", err)
		}
	}
}

// Blur stops key delivery, hides the cursor, pauses the game clock and
// suspends the audio device
func (a *Adapter) Blur() {
	if !a.focused {
		return
	}
	a.focused = false
	a.target.SetFocus(false)
	if a.opt.Clock != nil {
		a.opt.Clock.Pause()
	}
	if a.opt.Audio != nil {
		if err := a.opt.Audio.Suspend(); err != nil {
			log.Printf("adapter: suspend audio: %v", err)
		}
	}
}
