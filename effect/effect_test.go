package effect

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/lixenwraith/phosphor/core"
)

func TestRasterizePassthrough(t *testing.T) {
	rng := core.NewRand(7)
	modes := []RasterMode{RasterNone, RasterScanline, RasterPixel, RasterSubpixel}

	for i := 0; i < 500; i++ {
		c := Color{rng.Float64(), rng.Float64(), rng.Float64()}
		pos := Vec2{rng.Float64(), rng.Float64()}
		res := Vec2{320, 200}

		// Zero intensity is a no-op for every mode
		for _, m := range modes {
			if got := Rasterize(c, pos, res, m, 0); got != c {
				t.Fatalf("mode %v intensity 0: expected %v, got %v", m, c, got)
			}
		}
		// Mode none is a no-op for every intensity
		if got := Rasterize(c, pos, res, RasterNone, rng.Float64()); got != c {
			t.Fatalf("mode none: expected %v, got %v", c, got)
		}
	}
}

func TestRasterizeScanlineModulates(t *testing.T) {
	c := Color{0.5, 0.5, 0.5}
	res := Vec2{100, 100}

	// Center of a virtual pixel row is the mask peak, its edge the trough
	peak := Rasterize(c, Vec2{0.005, 0.005}, res, RasterScanline, 1)
	trough := Rasterize(c, Vec2{0.005, 0.0}, res, RasterScanline, 1)

	if peak.R <= c.R {
		t.Errorf("Expected peak brighter than input, got %f <= %f", peak.R, c.R)
	}
	if trough.R >= c.R {
		t.Errorf("Expected trough darker than input, got %f >= %f", trough.R, c.R)
	}
}

func TestCurveCenterIsIdentity(t *testing.T) {
	sizes := [][2]float64{{1, 1}, {1920, 1080}, {1080, 1920}, {80, 24}, {3, 1000}, {0, 0}}
	amounts := []float64{0, 0.1, 0.3, 1, -0.5}

	for _, s := range sizes {
		aspect := Aspect(s[0], s[1])
		for _, a := range amounts {
			got := Curve(center, a, aspect)
			if got != center {
				t.Errorf("size %v amount %v: center moved to %v", s, a, got)
			}
			if got := Expand(center, a, aspect); got != center {
				t.Errorf("size %v amount %v: expanded center moved to %v", s, a, got)
			}
		}
	}
}

func TestCurveIsCircularOnWideViewport(t *testing.T) {
	w, h := 1600.0, 800.0
	aspect := Aspect(w, h)

	// Two points 200px from center: one horizontal, one vertical
	px := Vec2{0.5 + 200/w, 0.5}
	py := Vec2{0.5, 0.5 + 200/h}

	dx := (Curve(px, 0.4, aspect).X - px.X) * w
	dy := (Curve(py, 0.4, aspect).Y - py.Y) * h

	if math.Abs(dx-dy) > 1e-9 {
		t.Errorf("Expected equal pixel displacement, got x=%f y=%f", dx, dy)
	}
	if dx <= 0 {
		t.Errorf("Expected outward sampling displacement, got %f", dx)
	}
}

func TestCurveContractsAndExpandOpposes(t *testing.T) {
	aspect := Vec2{1, 1}
	p := Vec2{0.9, 0.8}
	in := Curve(p, 0.3, aspect)
	out := Expand(p, 0.3, aspect)

	if !(in.X > p.X && in.Y > p.Y) {
		t.Errorf("Curve should sample further out, got %v from %v", in, p)
	}
	if !(out.X < p.X && out.Y < p.Y) {
		t.Errorf("Expand should sample further in, got %v from %v", out, p)
	}
}

func TestNoiseSamplingIsPeriodic(t *testing.T) {
	tex := GenerateNoise(64, 99)
	uvs := []Vec2{{0.1, 0.2}, {0.5, 0.5}, {0.93, 0.07}}
	times := []float64{0, 17, 1234, 99999}

	for _, ts := range times {
		a := SampleSlow(tex, ts)
		b := SampleSlow(tex, ts+SlowPeriod)
		if !texelNear(a, b, 1e-9) {
			t.Errorf("SampleSlow(%v) = %v, +period = %v", ts, a, b)
		}
		for _, uv := range uvs {
			a := SampleFast(tex, uv, ts, 1)
			b := SampleFast(tex, uv, ts+FastPeriod, 1)
			if !texelNear(a, b, 1e-9) {
				t.Errorf("SampleFast(%v, %v) = %v, +period = %v", uv, ts, a, b)
			}
		}
	}
}

func TestNoiseSamplingIsDeterministic(t *testing.T) {
	a := GenerateNoise(32, 5)
	b := GenerateNoise(32, 5)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("Texel %d differs between identical seeds", i)
		}
	}
}

func TestPlaceholderIsNeutral(t *testing.T) {
	tex := Placeholder()
	uv := Vec2{0.3, 0.7}
	fast := SampleFast(tex, uv, 500, 1)
	slow := SampleSlow(tex, 500)

	if got := Jitter(uv, fast, 0.05); got != uv {
		t.Errorf("Jitter with placeholder moved %v to %v", uv, got)
	}
	c := Color{0.4, 0.6, 0.2}
	if got := Flicker(c, slow, 0.8); got != c {
		t.Errorf("Flicker with placeholder changed %v to %v", c, got)
	}
}

func TestZeroAmountsAreNoOps(t *testing.T) {
	c := Color{0.1, 0.2, 0.3}
	uv := Vec2{0.25, 0.75}
	tx := Texel{0.1, 0.9, 0.2, 0.8}

	if got := HorizontalSync(uv, tx, 123, 0); got != uv {
		t.Errorf("HorizontalSync: %v", got)
	}
	if got := StaticNoise(c, tx, uv, 0); got != c {
		t.Errorf("StaticNoise: %v", got)
	}
	if got := Bloom(c, Color{1, 1, 1}, 0); got != c {
		t.Errorf("Bloom: %v", got)
	}
	if got := BurnIn(c, Color{1, 1, 1}, 0); got != c {
		t.Errorf("BurnIn: %v", got)
	}
	sample := func(v Vec2) Color { return Color{v.X, v.Y, 0} }
	if got := ChromaShift(sample, uv, 0); got != sample(uv) {
		t.Errorf("ChromaShift: %v", got)
	}
}

func TestBurnInKeepsDecayedHighlight(t *testing.T) {
	prev := Color{1, 1, 1}
	cur := Color{0.1, 0.1, 0.1}
	got := BurnIn(cur, prev, 0.5)
	if got != (Color{0.5, 0.5, 0.5}) {
		t.Errorf("Expected decayed previous frame, got %v", got)
	}
}

func TestFrameShadowAndVignette(t *testing.T) {
	if got := FrameShadow(Vec2{0.5, 0.5}, 0.05); got != 0 {
		t.Errorf("Inside screen expected 0, got %f", got)
	}
	if got := FrameShadow(Vec2{1.2, 0.5}, 0.05); got != 1 {
		t.Errorf("Far outside expected 1, got %f", got)
	}
	mid := FrameShadow(Vec2{1.025, 0.5}, 0.05)
	if mid <= 0 || mid >= 1 {
		t.Errorf("Inside margin expected partial alpha, got %f", mid)
	}
	if got := Vignette(center); math.Abs(got-1) > 1e-12 {
		t.Errorf("Vignette at center expected 1, got %f", got)
	}
	if got := Vignette(Vec2{0, 0.5}); got != 0 {
		t.Errorf("Vignette at border expected 0, got %f", got)
	}
}

func TestParseRasterMode(t *testing.T) {
	for i, name := range rasterNames {
		m, err := ParseRasterMode(name)
		if err != nil || m != RasterMode(i) {
			t.Errorf("ParseRasterMode(%q) = %v, %v", name, m, err)
		}
	}
	if _, err := ParseRasterMode("interlaced"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("Default params invalid: %v", err)
	}
	p := DefaultParams()
	p.Curvature = 2
	if err := p.Validate(); err == nil {
		t.Error("Expected curvature out of range error")
	}
	stamped := DefaultParams().At(42)
	if stamped.Time != 42 {
		t.Errorf("Expected time 42, got %f", stamped.Time)
	}
}

func TestDecodeNoise(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 1, color.NRGBA{0, 0, 255, 0})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	tex, err := DecodeNoise(&buf)
	if err != nil {
		t.Fatalf("DecodeNoise: %v", err)
	}
	if tex.W != 2 || tex.H != 2 {
		t.Fatalf("Expected 2x2, got %dx%d", tex.W, tex.H)
	}
	if got := tex.At(0, 0); got.R != 1 || got.A != 1 {
		t.Errorf("Texel (0,0) = %v", got)
	}
	if got := tex.At(3, 3); got.B != 1 || got.A != 0 {
		t.Errorf("Wrapped texel (1,1) = %v", got)
	}

	if _, err := DecodeNoise(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Expected decode error")
	}
}

func texelNear(a, b Texel, eps float64) bool {
	return math.Abs(a.R-b.R) <= eps && math.Abs(a.G-b.G) <= eps &&
		math.Abs(a.B-b.B) <= eps && math.Abs(a.A-b.A) <= eps
}
