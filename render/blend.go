package render

import "github.com/lixenwraith/phosphor/core"

// RGB is an alias to core.RGB so overlay code reads like the rest of the package
type RGB = core.RGB

// Blend optimizes alpha blending
// If alpha is 1.0 or 0.0, we return early to save math
func Blend(c, src RGB, alpha float64) RGB {
	if alpha >= 1.0 {
		return src
	}
	if alpha <= 0.0 {
		return c
	}

	inv := 1.0 - alpha

	return RGB{
		R: uint8(float64(src.R)*alpha + float64(c.R)*inv + 0.5),
		G: uint8(float64(src.G)*alpha + float64(c.G)*inv + 0.5),
		B: uint8(float64(src.B)*alpha + float64(c.B)*inv + 0.5),
	}
}

// fastDiv255 approximates x / 255 using integer math
// Formula: (x + (x >> 8) + 1) >> 8
func fastDiv255(x int) int {
	return (x + (x >> 8) + 1) >> 8
}

// Screen blend: 1 - (1-Dst)*(1-Src) with alpha blending
func Screen(c, src RGB, alpha float64) RGB {
	if alpha <= 0.0 {
		return c
	}

	screened := RGB{
		R: uint8(255 - fastDiv255((255-int(c.R))*(255-int(src.R)))),
		G: uint8(255 - fastDiv255((255-int(c.G))*(255-int(src.G)))),
		B: uint8(255 - fastDiv255((255-int(c.B))*(255-int(src.B)))),
	}

	if alpha >= 1.0 {
		return screened
	}

	return Blend(c, screened, alpha)
}

// Luma returns Rec. 601 luma in [0,255]
func Luma(c RGB) uint8 {
	return uint8((int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000)
}

// Tint maps the luma of c onto a single phosphor color
func Tint(c, phosphor RGB) RGB {
	return Lerp(core.RGBBlack, phosphor, float64(Luma(c))/255)
}

// Lerp linearly interpolates between two colors
// t=0 returns a, t=1 returns b
func Lerp(a, b RGB, t float64) RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return RGB{
		R: uint8(float64(a.R) + t*float64(int(b.R)-int(a.R))),
		G: uint8(float64(a.G) + t*float64(int(b.G)-int(a.G))),
		B: uint8(float64(a.B) + t*float64(int(b.B)-int(a.B))),
	}
}
