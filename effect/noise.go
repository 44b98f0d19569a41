package effect

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"math"

	"github.com/lixenwraith/phosphor/core"
)

// Noise time divisors: slow coordinates repeat every slowPeriodY ms,
// fast coordinates every lcm(fastDivX, fastDivY) ms
const (
	slowDivX = 2048.0
	slowDivY = 1048576.0

	fastDivX = 51.0
	fastDivY = 237.0

	// SlowPeriod is the time period of SampleSlow
	SlowPeriod = slowDivY
	// FastPeriod is lcm(51, 237), the time period of SampleFast
	FastPeriod = 4029.0
)

// Texel is one RGBA sample of the noise texture.
// R: sync threshold, G: flicker/frequency, B: jitter X, A: jitter Y and static
type Texel struct {
	R, G, B, A float64
}

// Texture is a wrap-around noise image with channels in [0,1]
type Texture struct {
	W, H int
	Pix  []Texel
}

// Placeholder is the neutral texture used until the real one loads.
// Every channel is 0.5, which zeroes jitter offsets and flicker deviation.
func Placeholder() *Texture {
	return &Texture{W: 1, H: 1, Pix: []Texel{{0.5, 0.5, 0.5, 0.5}}}
}

// At returns the texel at integer coordinates, wrapping on both axes
func (t *Texture) At(x, y int) Texel {
	x %= t.W
	if x < 0 {
		x += t.W
	}
	y %= t.H
	if y < 0 {
		y += t.H
	}
	return t.Pix[y*t.W+x]
}

// Sample reads the texture with bilinear filtering and repeat addressing
func (t *Texture) Sample(uv Vec2) Texel {
	fx := Fract(uv.X)*float64(t.W) - 0.5
	fy := Fract(uv.Y)*float64(t.H) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	a := t.At(x0, y0)
	b := t.At(x0+1, y0)
	c := t.At(x0, y0+1)
	d := t.At(x0+1, y0+1)

	lerp := func(p, q Texel, s float64) Texel {
		return Texel{
			R: p.R + (q.R-p.R)*s,
			G: p.G + (q.G-p.G)*s,
			B: p.B + (q.B-p.B)*s,
			A: p.A + (q.A-p.A)*s,
		}
	}
	return lerp(lerp(a, b, tx), lerp(c, d, tx), ty)
}

// SampleSlow reads the texture at coordinates that drift with elapsed time.
// Used for per-frame values shared by the whole screen (flicker, sync threshold).
func SampleSlow(tex *Texture, t float64) Texel {
	return tex.Sample(Vec2{Fract(t / slowDivX), Fract(t / slowDivY)})
}

// SampleFast reads the texture at screen coordinates scrolled by a fast
// time-derived offset. Used for per-pixel values (jitter, static).
func SampleFast(tex *Texture, uv Vec2, t, scale float64) Texel {
	off := Vec2{Fract(t / fastDivX), Fract(t / fastDivY)}
	return tex.Sample(uv.Scale(scale).Add(off))
}

// GenerateNoise builds a tileable size×size texture. Each channel is an
// independent field: smooth value noise on an 8-cell lattice plus fine grain.
func GenerateNoise(size int, seed uint64) *Texture {
	if size <= 0 {
		return Placeholder()
	}
	const lattice = 8
	rng := core.NewRand(seed)

	var fields [4][lattice * lattice]float64
	for ch := range fields {
		for i := range fields[ch] {
			fields[ch][i] = rng.Float64()
		}
	}

	tex := &Texture{W: size, H: size, Pix: make([]Texel, size*size)}
	cell := float64(size) / lattice
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			gx := float64(x) / cell
			gy := float64(y) / cell
			ix, iy := int(gx), int(gy)
			sx := smoothstep(0, 1, gx-float64(ix))
			sy := smoothstep(0, 1, gy-float64(iy))

			var v [4]float64
			for ch := range fields {
				f := &fields[ch]
				at := func(i, j int) float64 { return f[(j%lattice)*lattice+(i%lattice)] }
				top := at(ix, iy) + (at(ix+1, iy)-at(ix, iy))*sx
				bot := at(ix, iy+1) + (at(ix+1, iy+1)-at(ix, iy+1))*sx
				smooth := top + (bot-top)*sy
				v[ch] = clamp01(0.75*smooth + 0.25*rng.Float64())
			}
			tex.Pix[y*size+x] = Texel{v[0], v[1], v[2], v[3]}
		}
	}
	return tex
}

// DecodeNoise loads a noise texture from an encoded image (PNG)
func DecodeNoise(r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode noise image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode noise image: empty image")
	}
	tex := &Texture{W: b.Dx(), H: b.Dy(), Pix: make([]Texel, b.Dx()*b.Dy())}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			tex.Pix[y*tex.W+x] = Texel{
				R: float64(c.R) / 255,
				G: float64(c.G) / 255,
				B: float64(c.B) / 255,
				A: float64(c.A) / 255,
			}
		}
	}
	return tex, nil
}
