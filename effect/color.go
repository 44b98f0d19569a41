package effect

import (
	"math"

	"github.com/lixenwraith/phosphor/core"
)

// Vec2 is a 2D coordinate, normally in [0,1]²
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Mul(o Vec2) Vec2      { return Vec2{v.X * o.X, v.Y * o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Fract() Vec2          { return Vec2{Fract(v.X), Fract(v.Y)} }
func (v Vec2) Inside() bool         { return v.X >= 0 && v.X <= 1 && v.Y >= 0 && v.Y <= 1 }
func (v Vec2) Eq(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Color is a linear RGB color with channels nominally in [0,1]
type Color struct {
	R, G, B float64
}

// FromRGB converts an 8-bit color
func FromRGB(c core.RGB) Color {
	return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

// RGB converts back to 8-bit, clamping and rounding
func (c Color) RGB() core.RGB {
	return core.RGB{R: to8(c.R), G: to8(c.G), B: to8(c.B)}
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func (c Color) Add(o Color) Color     { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c Color) Sub(o Color) Color     { return Color{c.R - o.R, c.G - o.G, c.B - o.B} }
func (c Color) Mul(o Color) Color     { return Color{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c Color) Scale(s float64) Color { return Color{c.R * s, c.G * s, c.B * s} }
func (c Color) Max(o Color) Color {
	return Color{math.Max(c.R, o.R), math.Max(c.G, o.G), math.Max(c.B, o.B)}
}
func (c Color) Luma() float64 { return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B }

// Mix linearly interpolates: c*(1-t) + o*t
func (c Color) Mix(o Color, t float64) Color {
	return Color{c.R + (o.R-c.R)*t, c.G + (o.G-c.G)*t, c.B + (o.B-c.B)*t}
}

// Clamp limits every channel to [0,1]
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// Fract returns x - floor(x), always in [0,1)
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func smoothstep(e0, e1, x float64) float64 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}
