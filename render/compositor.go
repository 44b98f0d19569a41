package render

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/effect"
	"github.com/lixenwraith/phosphor/grid"
)

var (
	// ErrNoFrame is returned for a static buffer that was never rendered
	ErrNoFrame = errors.New("static buffer has no frame")
	// ErrStaleFrame is returned when a static buffer is composited twice
	ErrStaleFrame = errors.New("static buffer already composited")
	// ErrSizeMismatch is returned when destination and static images differ in size
	ErrSizeMismatch = errors.New("composite target size mismatch")
)

const (
	bloomRadius   = 1.5  // source pixels
	glareShare    = 0.25 // screen glow reflected by the bezel
	minRowsPerJob = 16
)

// Compositor runs the dynamic pass. It owns the noise texture and the
// previous composite (burn-in); all other inputs arrive per frame.
// Not safe for concurrent use: the pipeline calls it from the loop goroutine.
type Compositor struct {
	noise *effect.Texture

	bg    core.RGB
	frame core.RGB

	// Monochrome phosphor: when tinted, output luma drives the phosphor color
	tint    core.RGB
	tinted  bool
	pixSize float64

	prev    []effect.Color
	prevW   int
	prevH   int
	lastSeq uint64
}

// NewCompositor creates a compositor with the placeholder noise texture
func NewCompositor(bg, frame core.RGB) *Compositor {
	return &Compositor{
		noise:   effect.Placeholder(),
		bg:      bg,
		frame:   frame,
		pixSize: 1,
	}
}

// SetNoise swaps in a loaded noise texture; nil restores the placeholder
func (c *Compositor) SetNoise(tex *effect.Texture) {
	if tex == nil || tex.W == 0 || tex.H == 0 {
		tex = effect.Placeholder()
	}
	c.noise = tex
}

// Noise returns the texture currently sampled
func (c *Compositor) Noise() *effect.Texture { return c.noise }

// SetColors updates background and frame colors
func (c *Compositor) SetColors(bg, frame core.RGB) {
	c.bg = bg
	c.frame = frame
}

// SetTint enables monochrome phosphor output in the given color
func (c *Compositor) SetTint(phosphor core.RGB, on bool) {
	c.tint = phosphor
	c.tinted = on
}

// SetPixelSize sets the virtual pixel size in image pixels for rasterization
func (c *Compositor) SetPixelSize(px float64) {
	if px < 1 {
		px = 1
	}
	c.pixSize = px
}

// Reset drops burn-in history
func (c *Compositor) Reset() {
	clear(c.prev)
}

// SourceCoord maps a screen coordinate to the static-image coordinate it
// displays under the given parameters; outside [0,1]² is off-screen
func SourceCoord(uv effect.Vec2, p effect.Params, width, height int) effect.Vec2 {
	aspect := effect.Aspect(float64(width), float64(height))
	return effect.Curve(effect.Pad(uv, p.FrameMargin), p.Curvature, aspect)
}

// Composite renders the CRT image of static into dst.
// Each static buffer is accepted once; a repeated sequence number means the
// static pass did not run for this frame.
func (c *Compositor) Composite(static *grid.StaticBuffer, dst *image.RGBA, p effect.Params) error {
	if static == nil || static.Img == nil || static.Seq == 0 {
		return ErrNoFrame
	}
	if static.Seq <= c.lastSeq {
		return fmt.Errorf("%w: seq %d, last %d", ErrStaleFrame, static.Seq, c.lastSeq)
	}
	w, h := static.Img.Rect.Dx(), static.Img.Rect.Dy()
	if dst.Rect.Dx() != w || dst.Rect.Dy() != h {
		return fmt.Errorf("%w: static %dx%d, dst %dx%d", ErrSizeMismatch, w, h, dst.Rect.Dx(), dst.Rect.Dy())
	}
	c.lastSeq = static.Seq

	if w != c.prevW || h != c.prevH {
		c.prev = make([]effect.Color, w*h)
		c.prevW, c.prevH = w, h
	}
	if w == 0 || h == 0 {
		return nil
	}

	f := frameState{
		c:       c,
		src:     newSampler(static.Img, c.bg),
		dst:     dst,
		p:       p,
		w:       w,
		h:       h,
		aspect:  effect.Aspect(float64(w), float64(h)),
		slow:    effect.SampleSlow(c.noise, p.Time),
		virtual: effect.Vec2{X: float64(w) / c.pixSize, Y: float64(h) / c.pixSize},
		frameFx: effect.FromRGB(c.frame),
	}

	jobs := min(runtime.GOMAXPROCS(0), max(h/minRowsPerJob, 1))
	if jobs == 1 {
		f.rows(0, h)
		return nil
	}
	var wg sync.WaitGroup
	step := (h + jobs - 1) / jobs
	for y0 := 0; y0 < h; y0 += step {
		y1 := min(y0+step, h)
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.rows(y0, y1)
		}()
	}
	wg.Wait()
	return nil
}

// frameState holds the per-frame constants shared by row workers.
// Workers write disjoint rows of dst and prev.
type frameState struct {
	c       *Compositor
	src     sampler
	dst     *image.RGBA
	p       effect.Params
	w, h    int
	aspect  effect.Vec2
	slow    effect.Texel
	virtual effect.Vec2
	frameFx effect.Color
}

func (f *frameState) rows(y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < f.w; x++ {
			uv := effect.Vec2{
				X: (float64(x) + 0.5) / float64(f.w),
				Y: (float64(y) + 0.5) / float64(f.h),
			}
			out := f.pixel(uv, y*f.w+x)
			i := f.dst.PixOffset(f.dst.Rect.Min.X+x, f.dst.Rect.Min.Y+y)
			px := f.dst.Pix[i : i+4 : i+4]
			px[0], px[1], px[2], px[3] = out.R, out.G, out.B, 0xff
		}
	}
}

func (f *frameState) pixel(uv effect.Vec2, idx int) core.RGB {
	p := &f.p
	c := f.c

	src := effect.Curve(effect.Pad(uv, p.FrameMargin), p.Curvature, f.aspect)
	frameAlpha := effect.FrameShadow(src, p.FrameMargin)

	fast := effect.SampleFast(c.noise, uv, p.Time, p.NoiseScale)
	coord := effect.HorizontalSync(src, f.slow, p.Time, p.HorizontalSync)
	coord = effect.Jitter(coord, fast, p.Jitter)

	col := effect.ChromaShift(f.src.Sample, coord, p.ChromaShift)
	if p.Bloom != 0 {
		col = effect.Bloom(col, f.src.blur(coord, bloomRadius), p.Bloom)
	}
	col = effect.StaticNoise(col, fast, uv, p.StaticNoise)
	col = effect.Rasterize(col, uv, f.virtual, p.RasterMode, p.RasterIntensity)
	col = effect.Flicker(col, f.slow, p.Flicker)

	col = effect.BurnIn(col, c.prev[idx], p.BurnIn).Clamp()
	c.prev[idx] = col

	col = col.Scale(effect.Vignette(src))
	out := col.RGB()
	if c.tinted {
		out = Tint(out, c.tint)
	}

	if frameAlpha > 0 {
		// bezel picks up a faint reflection of the nearest screen content
		glow := f.src.blur(bezelCoord(src, p.Curvature, f.aspect), bloomRadius*2).RGB()
		bezel := Screen(f.frameFx.RGB(), glow, glareShare*(1-frameAlpha))
		out = Blend(out, bezel, frameAlpha)
	}
	return out
}

// bezelCoord maps a curved source coordinate on the frame back through the
// expanding curve, since the bezel is flat, and clamps it to the screen
func bezelCoord(src effect.Vec2, curvature float64, aspect effect.Vec2) effect.Vec2 {
	flat := effect.Expand(src, curvature, aspect)
	return effect.Vec2{X: clampUnit(flat.X), Y: clampUnit(flat.Y)}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
