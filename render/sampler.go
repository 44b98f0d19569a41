package render

import (
	"image"
	"math"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/effect"
)

// sampler reads an RGBA image at normalized coordinates with bilinear
// filtering; coordinates outside [0,1]² read as the background
type sampler struct {
	img  *image.RGBA
	w, h int
	bg   effect.Color
}

func newSampler(img *image.RGBA, bg core.RGB) sampler {
	return sampler{
		img: img,
		w:   img.Rect.Dx(),
		h:   img.Rect.Dy(),
		bg:  effect.FromRGB(bg),
	}
}

func (s sampler) texel(x, y int) effect.Color {
	if x < 0 {
		x = 0
	} else if x >= s.w {
		x = s.w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= s.h {
		y = s.h - 1
	}
	i := s.img.PixOffset(s.img.Rect.Min.X+x, s.img.Rect.Min.Y+y)
	p := s.img.Pix[i : i+3 : i+3]
	return effect.Color{
		R: float64(p[0]) / 255,
		G: float64(p[1]) / 255,
		B: float64(p[2]) / 255,
	}
}

// Sample implements the func(Vec2) Color shape expected by effect.ChromaShift
func (s sampler) Sample(uv effect.Vec2) effect.Color {
	if s.w == 0 || s.h == 0 || !uv.Inside() {
		return s.bg
	}
	fx := uv.X*float64(s.w) - 0.5
	fy := uv.Y*float64(s.h) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	top := s.texel(x0, y0).Mix(s.texel(x0+1, y0), tx)
	bot := s.texel(x0, y0+1).Mix(s.texel(x0+1, y0+1), tx)
	return top.Mix(bot, ty)
}

// blur is a 4-tap box around uv, radius in source pixels
func (s sampler) blur(uv effect.Vec2, radius float64) effect.Color {
	dx := radius / float64(max(s.w, 1))
	dy := radius / float64(max(s.h, 1))
	sum := s.Sample(effect.Vec2{X: uv.X - dx, Y: uv.Y - dy}).
		Add(s.Sample(effect.Vec2{X: uv.X + dx, Y: uv.Y - dy})).
		Add(s.Sample(effect.Vec2{X: uv.X - dx, Y: uv.Y + dy})).
		Add(s.Sample(effect.Vec2{X: uv.X + dx, Y: uv.Y + dy}))
	return sum.Scale(0.25)
}
