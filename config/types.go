package config

import (
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/phosphor/core"
)

// Color is a hex color string in the file, an RGB value in memory
type Color core.RGB

func (c *Color) UnmarshalText(b []byte) error {
	cf, err := colorful.Hex(string(b))
	if err != nil {
		return fmt.Errorf("color %q: %w", b, err)
	}
	r, g, bl := cf.RGB255()
	*c = Color{R: r, G: g, B: bl}
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(core.RGB(c).Hex()), nil
}

// RGB returns the color as a core value
func (c Color) RGB() core.RGB { return core.RGB(c) }

// Duration reads Go duration strings such as "10s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
