package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/effect"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Effects.Active != "classic" {
		t.Errorf("active = %q", c.Effects.Active)
	}
	if diff := cmp.Diff([]string{"arcade", "classic", "clean", "trinitron"}, c.ProfileNames()); diff != "" {
		t.Errorf("profiles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(effect.DefaultParams(), c.Params()); diff != "" {
		t.Errorf("classic differs from DefaultParams (-want +got):\n%s", diff)
	}
	if got := c.Colors.Phosphor.RGB(); got != (core.RGB{R: 0x33, G: 0xff, B: 0x66}) {
		t.Errorf("phosphor = %v", got)
	}
	if c.CV.Timeout.Duration != 10*time.Second {
		t.Errorf("cv timeout = %v", c.CV.Timeout)
	}
	if c.Params().RasterMode != effect.RasterScanline {
		t.Errorf("raster mode = %v", c.Params().RasterMode)
	}
}

func TestParseOverlay(t *testing.T) {
	c, err := Parse([]byte(`
[render]
fps = 30

[effects]
active = "mine"

[effects.profiles.mine]
curvature = 0.1
raster_mode = "pixel"

[effects.profiles.classic]
bloom = 0.9
`), "user.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Render.FPS != 30 || c.Render.PixelScale != 2 {
		t.Errorf("render = %+v", c.Render)
	}
	if c.Shell.User != "guest" {
		t.Errorf("shell.user lost: %q", c.Shell.User)
	}
	want := effect.Params{Curvature: 0.1, RasterMode: effect.RasterPixel}
	if diff := cmp.Diff(want, c.Params()); diff != "" {
		t.Errorf("mine mismatch (-want +got):\n%s", diff)
	}
	// a user profile replaces the built-in one entirely
	if got := c.Effects.Profiles["classic"]; got.Bloom != 0.9 || got.Curvature != 0 {
		t.Errorf("classic = %+v", got)
	}
	if _, ok := c.Effects.Profiles["arcade"]; !ok {
		t.Error("built-in arcade profile dropped")
	}
	if c.Source != "user.toml" {
		t.Errorf("source = %q", c.Source)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantParse bool
		wantLine  int
	}{
		{"syntax", "[render\nfps = 1", true, 1},
		{"type", "[render]\nfps = \"fast\"", true, 0},
		{"unknown key", "[render]\nfsp = 60", true, 0},
		{"bad color", "[colors]\ntext = \"green\"", true, 0},
		{"bad raster mode", "[effects.profiles.x]\nraster_mode = \"vector\"", true, 0},
		{"fps range", "[render]\nfps = 0", false, 0},
		{"unknown active", "[effects]\nactive = \"nope\"", false, 0},
		{"profile range", "[effects.profiles.classic]\ncurvature = 2.0", false, 0},
		{"volume", "[audio]\nvolume = 1.5", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "bad.toml")
			if err == nil {
				t.Fatal("Parse succeeded")
			}
			var pe *ParseError
			isParse := errors.As(err, &pe)
			if isParse != tt.wantParse {
				t.Fatalf("error %v: ParseError = %v, want %v", err, isParse, tt.wantParse)
			}
			if !tt.wantParse && !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
			if tt.wantLine > 0 && pe.Line != tt.wantLine {
				t.Errorf("line = %d, want %d (%v)", pe.Line, tt.wantLine, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	if err != nil || c.Source != defaultSource {
		t.Errorf("Load(\"\") = %v, %v", c, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestLive(t *testing.T) {
	l := NewLive(Default())
	if l.Params().Curvature != 0.3 {
		t.Errorf("params = %+v", l.Params())
	}
	c, err := Parse([]byte("[effects]\nactive = \"clean\""), "x")
	if err != nil {
		t.Fatal(err)
	}
	l.Set(c)
	if l.Params().Curvature != 0 || l.Get() != c {
		t.Errorf("params after Set = %+v", l.Params())
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phosphor.toml")
	if err := os.WriteFile(path, []byte("[effects]\nactive = \"classic\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	if err := Watch(ctx, path, func(c *Config) { got <- c }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// an invalid edit is skipped, the next valid one is delivered
	if err := os.WriteFile(path, []byte("[effects]\nactive = \"nope\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(3 * reloadDebounce)
	if err := os.WriteFile(path, []byte("[effects]\nactive = \"arcade\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Effects.Active == "arcade" {
				return
			}
			t.Errorf("delivered profile %q", c.Effects.Active)
		case <-deadline:
			t.Fatal("no reload within 5s")
		}
	}
}
