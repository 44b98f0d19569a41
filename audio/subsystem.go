package audio

import (
	"log"
	"sync/atomic"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/status"
)

// Deferrer runs callbacks on the loop goroutine
type Deferrer interface {
	Defer(fn func())
}

// Subsystem owns the ambient and game tracks. They share a device and
// nothing else: one track's state never gates the other.
type Subsystem struct {
	Ambient *Track
	Game    *Track

	dev   Device
	sched Deferrer
	loads atomic.Int64
	reg   *status.Registry
}

// NewSubsystem creates both tracks on dev. reg may be nil.
func NewSubsystem(dev Device, sched Deferrer, reg *status.Registry) *Subsystem {
	s := &Subsystem{
		Ambient: NewTrack("ambient", dev),
		Game:    NewTrack("game", dev),
		dev:     dev,
		sched:   sched,
		reg:     reg,
	}
	s.Ambient.onChange = s.record
	s.Game.onChange = s.record
	s.record(s.Ambient.name, s.Ambient.state)
	s.record(s.Game.name, s.Game.state)
	return s
}

func (s *Subsystem) record(name string, st TrackState) {
	if s.reg == nil {
		return
	}
	s.reg.Strings.Get("audio." + name).Store(st.String())
}

// Device returns the shared output
func (s *Subsystem) Device() Device { return s.dev }

// LoadAsync decodes path on a background goroutine and hands the result to
// the track through the scheduler. An empty path installs fallback instead.
func (s *Subsystem) LoadAsync(t *Track, path string, fallback Source) {
	t.BeginLoad()
	s.loads.Add(1)

	rate := s.dev.SampleRate()
	core.Go(func() {
		defer s.loads.Add(-1)

		if path == "" {
			s.sched.Defer(func() { t.Loaded(fallback) })
			return
		}
		src, err := DecodeFile(path, rate)
		if err != nil {
			s.sched.Defer(func() { t.LoadFailed(err) })
			return
		}
		log.Printf("audio: %s loaded from %s", t.name, path)
		s.sched.Defer(func() { t.Loaded(src) })
	})
}

// InFlight returns the number of loads not yet handed to the scheduler
func (s *Subsystem) InFlight() int { return int(s.loads.Load()) }

// StopAll stops both tracks and withdraws pending requests
func (s *Subsystem) StopAll() {
	for _, t := range []*Track{s.Ambient, s.Game} {
		t.Stop()
		t.Cancel()
	}
}
