package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

// HumGenerator is the idle sound of a tube monitor: mains hum with a slow
// swell and a faint flyback whine. Infinite.
type HumGenerator struct {
	sr    beep.SampleRate
	pos   int
	cycle int
}

// NewHumGenerator creates a hum generator at rate sr
func NewHumGenerator(sr beep.SampleRate) *HumGenerator {
	return &HumGenerator{sr: sr, cycle: sr.N(4 * time.Second)}
}

func (g *HumGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		swell := 0.5 + 0.5*math.Sin(float64(g.pos%g.cycle)/float64(g.cycle)*2*math.Pi)

		hum := 0.10*math.Sin(2*math.Pi*60*t) + 0.04*math.Sin(2*math.Pi*120*t)
		whine := 0.004 * math.Sin(2*math.Pi*15734*t)
		v := (0.7+0.3*swell)*hum + whine

		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *HumGenerator) Err() error { return nil }

// HumSource is the ambient fallback
func HumSource(sr beep.SampleRate) Source {
	return func() beep.Streamer { return NewHumGenerator(sr) }
}

// chiptuneTheme is a square-wave arpeggio loop: MIDI note, sixteenth-note steps.
// Note 0 is a rest.
var chiptuneTheme = []struct{ note, steps int }{
	{69, 1}, {72, 1}, {76, 1}, {81, 1}, {76, 1}, {72, 1}, {69, 2},
	{65, 1}, {69, 1}, {72, 1}, {77, 1}, {72, 1}, {69, 1}, {65, 2},
	{67, 1}, {71, 1}, {74, 1}, {79, 1}, {74, 1}, {71, 1}, {67, 2},
	{64, 1}, {68, 1}, {71, 1}, {76, 2}, {0, 2}, {76, 1}, {0, 1},
}

const chiptuneBPM = 140

// noteFreq converts a MIDI note to Hz, A4 (69) = 440
func noteFreq(midi int) float64 {
	return 440 * math.Pow(2, float64(midi-69)/12)
}

// ChiptuneSource renders the game theme once into a buffer and loops it
func ChiptuneSource(sr beep.SampleRate) Source {
	step := time.Minute / chiptuneBPM / 4
	parts := make([]beep.Streamer, 0, len(chiptuneTheme))
	for _, n := range chiptuneTheme {
		length := sr.N(step * time.Duration(n.steps))
		if n.note == 0 {
			parts = append(parts, generators.Silence(length))
			continue
		}
		tone, err := generators.SquareTone(sr, noteFreq(n.note))
		if err != nil {
			parts = append(parts, generators.Silence(length))
			continue
		}
		parts = append(parts, envelope(beep.Take(length, tone), length))
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
	buf.Append(beep.Seq(parts...))

	return func() beep.Streamer {
		return beep.Loop(-1, buf.Streamer(0, buf.Len()))
	}
}

// envelope applies a short attack and a linear release, scaled to a quiet level
func envelope(s beep.Streamer, length int) beep.Streamer {
	attack := max(length/20, 1)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			gain := 1.0
			if pos < attack {
				gain = float64(pos) / float64(attack)
			} else {
				gain = 1 - 0.7*float64(pos-attack)/float64(max(length-attack, 1))
			}
			samples[i][0] *= 0.12 * gain
			samples[i][1] *= 0.12 * gain
			pos++
		}
		return n, ok
	})
}
