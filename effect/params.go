package effect

import (
	"fmt"
	"strings"
)

// RasterMode selects the simulated display pattern
type RasterMode uint8

const (
	RasterNone RasterMode = iota
	RasterScanline
	RasterPixel
	RasterSubpixel
)

var rasterNames = [...]string{"none", "scanline", "pixel", "subpixel"}

func (m RasterMode) String() string {
	if int(m) < len(rasterNames) {
		return rasterNames[m]
	}
	return fmt.Sprintf("RasterMode(%d)", m)
}

// ParseRasterMode maps a profile string to a mode
func ParseRasterMode(s string) (RasterMode, error) {
	for i, n := range rasterNames {
		if strings.EqualFold(s, n) {
			return RasterMode(i), nil
		}
	}
	return RasterNone, fmt.Errorf("unknown raster mode %q", s)
}

// UnmarshalText lets config decoders read modes by name
func (m *RasterMode) UnmarshalText(b []byte) error {
	v, err := ParseRasterMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m RasterMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Params is the uniform set for one frame
// Value type: a frame receives a copy, Time is the only field that moves between frames
type Params struct {
	Curvature       float64    `toml:"curvature"`
	RasterMode      RasterMode `toml:"raster_mode"`
	RasterIntensity float64    `toml:"raster_intensity"`
	Jitter          float64    `toml:"jitter"`
	Flicker         float64    `toml:"flicker"`
	StaticNoise     float64    `toml:"static_noise"`
	HorizontalSync  float64    `toml:"horizontal_sync"`
	Bloom           float64    `toml:"bloom"`
	ChromaShift     float64    `toml:"chroma_shift"`
	BurnIn          float64    `toml:"burn_in"`
	NoiseScale      float64    `toml:"noise_scale"`
	FrameMargin     float64    `toml:"frame_margin"`

	// Time in milliseconds since the loop started
	Time float64 `toml:"-"`
}

// DefaultParams approximates an amber-era monitor
func DefaultParams() Params {
	return Params{
		Curvature:       0.3,
		RasterMode:      RasterScanline,
		RasterIntensity: 0.5,
		Jitter:          0.002,
		Flicker:         0.1,
		StaticNoise:     0.06,
		HorizontalSync:  0.08,
		Bloom:           0.35,
		ChromaShift:     0.0015,
		BurnIn:          0.45,
		NoiseScale:      1.0,
		FrameMargin:     0.04,
	}
}

// At returns a copy stamped with frame time t
func (p Params) At(t float64) Params {
	p.Time = t
	return p
}

// Validate rejects values outside the ranges the transforms are defined for
func (p Params) Validate() error {
	checks := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"curvature", p.Curvature, 0, 1},
		{"raster_intensity", p.RasterIntensity, 0, 1},
		{"jitter", p.Jitter, 0, 0.1},
		{"flicker", p.Flicker, 0, 1},
		{"static_noise", p.StaticNoise, 0, 1},
		{"horizontal_sync", p.HorizontalSync, 0, 1},
		{"bloom", p.Bloom, 0, 1},
		{"chroma_shift", p.ChromaShift, 0, 0.05},
		{"burn_in", p.BurnIn, 0, 1},
		{"noise_scale", p.NoiseScale, 0, 16},
		{"frame_margin", p.FrameMargin, 0, 0.5},
	}
	for _, c := range checks {
		if c.v < c.min || c.v > c.max {
			return fmt.Errorf("%s = %g outside [%g, %g]", c.name, c.v, c.min, c.max)
		}
	}
	if int(p.RasterMode) >= len(rasterNames) {
		return fmt.Errorf("invalid raster mode %d", p.RasterMode)
	}
	return nil
}
