package engine

import (
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/phosphor/effect"
	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/status"
)

// EventSource delivers queued input on the loop goroutine
type EventSource interface {
	Drain()
}

// Ticker advances time-driven state (shell, running game). Tick runs once
// per frame; dt is 0 while the game clock is paused.
type Ticker interface {
	Tick(dt time.Duration)
}

// StaticRenderer produces the text image of a frame
type StaticRenderer interface {
	RenderStaticPass(buf *grid.StaticBuffer) *grid.StaticBuffer
}

// Compositor produces the displayed image from a static buffer
type Compositor interface {
	Composite(static *grid.StaticBuffer, dst *image.RGBA, p effect.Params) error
}

// Presenter shows a finished composite
type Presenter interface {
	Present(img *image.RGBA) error
}

// ParamsSource supplies the effect parameters in force for the next frame
type ParamsSource interface {
	Params() effect.Params
}

// Stages are the collaborators of one frame, in execution order
type Stages struct {
	Events    EventSource
	Shell     Ticker
	Static    StaticRenderer
	Composite Compositor
	Present   Presenter
	Params    ParamsSource
	// Clock drives shell ticks; nil creates one on the pipeline's time source
	Clock *PausableClock
}

// Pipeline runs one frame in a fixed order: deferred callbacks, input,
// shell tick, static pass, composite, present. The composite of a frame
// always reads the static buffer rendered in the same frame.
type Pipeline struct {
	sched  *Scheduler
	st     Stages
	time   TimeProvider
	game   *PausableClock
	start  time.Time
	last   time.Duration
	static grid.StaticBuffer
	frame  *image.RGBA

	statFrames  *atomic.Int64
	statFrameMs *status.AtomicFloat
	statFPS     *status.AtomicFloat
	statPending *atomic.Int64
}

// NewPipeline wires the stages. reg may be nil.
func NewPipeline(sched *Scheduler, st Stages, tp TimeProvider, reg *status.Registry) *Pipeline {
	if reg == nil {
		reg = status.NewRegistry()
	}
	clock := st.Clock
	if clock == nil {
		clock = NewPausableClock(tp)
	}
	return &Pipeline{
		sched:       sched,
		st:          st,
		time:        tp,
		game:        clock,
		start:       tp.Now(),
		statFrames:  reg.Ints.Get("engine.frames"),
		statFrameMs: reg.Floats.Get("engine.frame_ms"),
		statFPS:     reg.Floats.Get("engine.fps"),
		statPending: reg.Ints.Get("engine.deferred"),
	}
}

// GameClock returns the pausable clock that drives shell ticks
func (p *Pipeline) GameClock() *PausableClock { return p.game }

// Frame runs one full frame. Errors from composite or present abort the
// frame; state mutated by earlier stages is kept.
func (p *Pipeline) Frame() error {
	begin := p.time.Now()

	p.statPending.Store(int64(p.sched.Drain()))

	if p.st.Events != nil {
		p.st.Events.Drain()
	}

	// the shell ticks every frame so output deferred while paused still
	// reaches the grid; dt is 0 while the game clock is paused
	now := p.game.Elapsed()
	dt := max(now-p.last, 0)
	p.last = now
	if p.st.Shell != nil {
		p.st.Shell.Tick(dt)
	}

	buf := p.st.Static.RenderStaticPass(&p.static)
	if p.frame == nil || p.frame.Rect != buf.Img.Rect {
		p.frame = image.NewRGBA(buf.Img.Rect)
	}

	params := effect.DefaultParams()
	if p.st.Params != nil {
		params = p.st.Params.Params()
	}
	ms := float64(begin.Sub(p.start)) / float64(time.Millisecond)
	if err := p.st.Composite.Composite(buf, p.frame, params.At(ms)); err != nil {
		return fmt.Errorf("composite frame %d: %w", buf.Seq, err)
	}

	if p.st.Present != nil {
		if err := p.st.Present.Present(p.frame); err != nil {
			return fmt.Errorf("present frame %d: %w", buf.Seq, err)
		}
	}

	elapsed := p.time.Now().Sub(begin)
	p.statFrames.Add(1)
	p.statFrameMs.Smooth(float64(elapsed)/float64(time.Millisecond), 0.1)
	return nil
}

// recordInterval folds the wall time between two frame starts into fps
func (p *Pipeline) recordInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.statFPS.Smooth(float64(time.Second)/float64(d), 0.1)
}
