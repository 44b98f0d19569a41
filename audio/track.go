// Package audio plays two independent looping tracks (ambient, game).
// Each track resolves the race between a play request and an asynchronous
// load: a request made before the buffer exists is remembered and honored
// when the load completes.
package audio

import (
	"errors"
	"log"

	"github.com/gopxl/beep"
)

// ErrNotLoaded is returned by Source accessors before a load completed
var ErrNotLoaded = errors.New("track not loaded")

// TrackState is the lifecycle of one track.
// Playing implies Loaded; Pending is a play request waiting for its buffer.
type TrackState uint8

const (
	Unloaded TrackState = iota
	Loading
	Pending
	Loaded
	Playing
	Failed
)

var trackStateNames = [...]string{"unloaded", "loading", "pending", "loaded", "playing", "failed"}

func (s TrackState) String() string {
	if int(s) < len(trackStateNames) {
		return trackStateNames[s]
	}
	return "unknown"
}

// Source produces a fresh streamer from the start of the audio for each playback
type Source func() beep.Streamer

// Voice is one active playback on a device
type Voice interface {
	Stop()
}

// Device is the output the tracks play into
type Device interface {
	// Resume wakes a suspended output; called on every play request
	Resume() error
	// Start begins playing s and returns a handle to stop it
	Start(s beep.Streamer) Voice
	// SampleRate is the rate streams must be delivered at
	SampleRate() beep.SampleRate
}

// Track is a single gated audio track. Methods run on the loop goroutine.
type Track struct {
	name   string
	dev    Device
	state  TrackState
	loadOK bool // a load was started for the Pending state
	src    Source
	voice  Voice
	err    error

	onChange func(name string, s TrackState)
}

// NewTrack creates an unloaded track on dev
func NewTrack(name string, dev Device) *Track {
	return &Track{name: name, dev: dev}
}

// Name returns the track name
func (t *Track) Name() string { return t.name }

// State returns the current lifecycle state
func (t *Track) State() TrackState { return t.state }

// Err returns the load error of a Failed track
func (t *Track) Err() error { return t.err }

func (t *Track) set(s TrackState) {
	if t.state == s {
		return
	}
	t.state = s
	if t.onChange != nil {
		t.onChange(t.name, s)
	}
}

// BeginLoad marks the load as in flight. A pending request is kept.
func (t *Track) BeginLoad() {
	switch t.state {
	case Unloaded, Failed:
		t.err = nil
		t.set(Loading)
	case Pending:
		t.loadOK = true
	}
}

// Loaded installs the decoded source and starts playback if it was requested
func (t *Track) Loaded(src Source) {
	if src == nil {
		t.LoadFailed(ErrNotLoaded)
		return
	}
	t.src = src
	t.loadOK = false
	switch t.state {
	case Pending:
		t.start()
	case Unloaded, Loading, Failed:
		t.set(Loaded)
	}
}

// LoadFailed records a failed load; a pending request is dropped
func (t *Track) LoadFailed(err error) {
	t.err = err
	t.loadOK = false
	if t.state == Playing || t.state == Loaded {
		return
	}
	log.Printf("audio: %s load failed: %v", t.name, err)
	t.set(Failed)
}

// Play requests playback. The device is resumed on every call, then the
// track starts if its buffer is loaded and it is not already playing.
func (t *Track) Play() {
	if err := t.dev.Resume(); err != nil {
		log.Printf("audio: resume device: %v", err)
	}

	switch t.state {
	case Loaded:
		t.start()
	case Unloaded:
		t.loadOK = false
		t.set(Pending)
	case Loading:
		t.loadOK = true
		t.set(Pending)
	}
}

// Stop halts playback. Only meaningful while playing; no-op otherwise.
func (t *Track) Stop() {
	if t.state != Playing {
		return
	}
	if t.voice != nil {
		t.voice.Stop()
		t.voice = nil
	}
	t.set(Loaded)
}

// Cancel withdraws a play request that is still waiting for its buffer
func (t *Track) Cancel() {
	if t.state != Pending {
		return
	}
	if t.loadOK {
		t.set(Loading)
	} else {
		t.set(Unloaded)
	}
	t.loadOK = false
}

func (t *Track) start() {
	t.voice = t.dev.Start(t.src())
	t.set(Playing)
}
