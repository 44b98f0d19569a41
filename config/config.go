// Package config loads the TOML configuration: render settings, colors,
// named effect profiles, font, audio, cv, shell and history. A user file is
// decoded over the built-in defaults, so it only needs the keys it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/phosphor/asset"
	"github.com/lixenwraith/phosphor/effect"
)

const defaultSource = "<default>"

// Render controls the frame loop and the window frontend
type Render struct {
	FPS          int     `toml:"fps"`
	PixelScale   int     `toml:"pixel_scale"`
	WindowWidth  int     `toml:"window_width"`
	WindowHeight int     `toml:"window_height"`
	PixelSize    float64 `toml:"pixel_size"`
	Tint         bool    `toml:"tint"`
	// Noise is a PNG noise texture; empty generates one
	Noise string `toml:"noise"`
}

// Colors are the screen, bezel and console colors
type Colors struct {
	Background Color `toml:"background"`
	Frame      Color `toml:"frame"`
	Phosphor   Color `toml:"phosphor"`
	Text       Color `toml:"text"`
	Prompt     Color `toml:"prompt"`
	Error      Color `toml:"error"`
	Accent     Color `toml:"accent"`
}

// Effects holds the named parameter profiles and the one in use
type Effects struct {
	Active   string                   `toml:"active"`
	Profiles map[string]effect.Params `toml:"profiles"`
}

// Font selects the glyph face of the window frontend
type Font struct {
	Size float64 `toml:"size"`
	Path string  `toml:"path"`
}

// Audio lists the track files; empty paths use the synthesized sources
type Audio struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
	Ambient string  `toml:"ambient"`
	Game    string  `toml:"game"`
}

// CV locates the cv command resources
type CV struct {
	URL     string   `toml:"url"`
	PDF     string   `toml:"pdf"`
	Timeout Duration `toml:"timeout"`
}

// Shell configures the prompt and the filesystem
type Shell struct {
	User       string `toml:"user"`
	Host       string `toml:"host"`
	Home       string `toml:"home"`
	Tree       string `toml:"tree"`
	Scrollback int    `toml:"scrollback"`
}

// History locates the command history and score database
type History struct {
	Path string `toml:"path"`
}

// Config is the whole configuration
type Config struct {
	Render  Render  `toml:"render"`
	Colors  Colors  `toml:"colors"`
	Effects Effects `toml:"effects"`
	Font    Font    `toml:"font"`
	Audio   Audio   `toml:"audio"`
	CV      CV      `toml:"cv"`
	Shell   Shell   `toml:"shell"`
	History History `toml:"history"`

	// Source is the file the configuration was read from
	Source string `toml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	c := &Config{}
	if err := decode(c, []byte(asset.DefaultConfig), defaultSource); err != nil {
		panic(fmt.Sprintf("config: built-in configuration: %v", err))
	}
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config: built-in configuration: %v", err))
	}
	c.Source = defaultSource
	return c
}

// Parse decodes data over the defaults and validates the result
func Parse(data []byte, source string) (*Config, error) {
	c := Default()
	// a user profile replaces the built-in one of the same name
	builtin := c.Effects.Profiles
	c.Effects.Profiles = nil
	if err := decode(c, data, source); err != nil {
		return nil, err
	}
	for name, p := range builtin {
		if _, ok := c.Effects.Profiles[name]; !ok {
			if c.Effects.Profiles == nil {
				c.Effects.Profiles = make(map[string]effect.Params)
			}
			c.Effects.Profiles[name] = p
		}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	c.Source = source
	return c, nil
}

// Load reads path, or returns the defaults for an empty path
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(data, path)
}

func decode(c *Config, data []byte, source string) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			pe.Message = serr.String()
		}
		return pe
	}
	return nil
}

// Validate checks ranges and references
func (c *Config) Validate() error {
	r := c.Render
	switch {
	case r.FPS < 1 || r.FPS > 240:
		return fmt.Errorf("%w: render.fps = %d outside [1, 240]", ErrInvalid, r.FPS)
	case r.PixelScale < 1 || r.PixelScale > 8:
		return fmt.Errorf("%w: render.pixel_scale = %d outside [1, 8]", ErrInvalid, r.PixelScale)
	case r.WindowWidth < 1 || r.WindowHeight < 1:
		return fmt.Errorf("%w: render window %dx%d", ErrInvalid, r.WindowWidth, r.WindowHeight)
	case r.PixelSize < 1:
		return fmt.Errorf("%w: render.pixel_size = %g below 1", ErrInvalid, r.PixelSize)
	case c.Font.Size < 4 || c.Font.Size > 96:
		return fmt.Errorf("%w: font.size = %g outside [4, 96]", ErrInvalid, c.Font.Size)
	case c.Audio.Volume < 0 || c.Audio.Volume > 1:
		return fmt.Errorf("%w: audio.volume = %g outside [0, 1]", ErrInvalid, c.Audio.Volume)
	case c.CV.Timeout.Duration < 0:
		return fmt.Errorf("%w: cv.timeout is negative", ErrInvalid)
	case c.Shell.Scrollback < 0:
		return fmt.Errorf("%w: shell.scrollback is negative", ErrInvalid)
	}

	if _, ok := c.Effects.Profiles[c.Effects.Active]; !ok {
		return fmt.Errorf("%w: effects.active = %q is not a profile (have %v)", ErrInvalid, c.Effects.Active, c.ProfileNames())
	}
	for _, name := range c.ProfileNames() {
		if err := c.Effects.Profiles[name].Validate(); err != nil {
			return fmt.Errorf("%w: effects.profiles.%s: %v", ErrInvalid, name, err)
		}
	}
	return nil
}

// ProfileNames lists the effect profiles in order
func (c *Config) ProfileNames() []string {
	return slices.Sorted(maps.Keys(c.Effects.Profiles))
}

// Params returns the active effect profile
func (c *Config) Params() effect.Params {
	return c.Effects.Profiles[c.Effects.Active]
}
