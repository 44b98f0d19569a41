package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// DefaultSampleRate is the output rate of BeepDevice
const DefaultSampleRate = beep.SampleRate(48000)

// BeepDevice plays into the system speaker through a single mixer.
// The speaker is opened lazily on the first Resume, so a machine without an
// audio device only fails when something is actually played.
type BeepDevice struct {
	mu        sync.Mutex
	rate      beep.SampleRate
	mixer     *beep.Mixer
	volume    float64
	open      bool
	suspended bool
}

// NewBeepDevice creates an unopened device; volume is linear in [0,1]
func NewBeepDevice(rate beep.SampleRate, volume float64) *BeepDevice {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &BeepDevice{
		rate:   rate,
		mixer:  &beep.Mixer{},
		volume: math.Max(0, math.Min(volume, 1)),
	}
}

// SampleRate implements Device
func (d *BeepDevice) SampleRate() beep.SampleRate { return d.rate }

// Resume opens the speaker on first use and lifts a suspension
func (d *BeepDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		if err := speaker.Init(d.rate, d.rate.N(100*time.Millisecond)); err != nil {
			return fmt.Errorf("speaker init: %w", err)
		}
		speaker.Play(d.mixer)
		d.open = true
		d.suspended = false
		return nil
	}
	if d.suspended {
		if err := speaker.Resume(); err != nil {
			return fmt.Errorf("speaker resume: %w", err)
		}
		d.suspended = false
	}
	return nil
}

// Suspend pauses the whole output; voices keep their position
func (d *BeepDevice) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || d.suspended {
		return nil
	}
	if err := speaker.Suspend(); err != nil {
		return fmt.Errorf("speaker suspend: %w", err)
	}
	d.suspended = true
	return nil
}

// Wake lifts a suspension; unlike Resume it never opens the speaker
func (d *BeepDevice) Wake() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || !d.suspended {
		return nil
	}
	if err := speaker.Resume(); err != nil {
		return fmt.Errorf("speaker resume: %w", err)
	}
	d.suspended = false
	return nil
}

// Start implements Device
func (d *BeepDevice) Start(s beep.Streamer) Voice {
	ctrl := &beep.Ctrl{Streamer: d.withVolume(s)}

	d.mu.Lock()
	open := d.open
	d.mu.Unlock()

	if open {
		speaker.Lock()
		d.mixer.Add(ctrl)
		speaker.Unlock()
	} else {
		d.mixer.Add(ctrl)
	}
	return &beepVoice{ctrl: ctrl, locked: open}
}

func (d *BeepDevice) withVolume(s beep.Streamer) beep.Streamer {
	v := &effects.Volume{Streamer: s, Base: 2}
	if d.volume <= 0 {
		v.Silent = true
	} else {
		v.Volume = math.Log2(d.volume)
	}
	return v
}

// Close stops every voice and releases the speaker
func (d *BeepDevice) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return
	}
	speaker.Clear()
	speaker.Close()
	d.open = false
}

type beepVoice struct {
	ctrl   *beep.Ctrl
	locked bool
}

// Stop detaches the streamer; the mixer drops the drained control
func (v *beepVoice) Stop() {
	if v.locked {
		speaker.Lock()
		defer speaker.Unlock()
	}
	v.ctrl.Paused = true
	v.ctrl.Streamer = nil
}
