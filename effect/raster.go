package effect

import "math"

const (
	rasterDim   = 0.30 // darkening of the mask trough
	rasterBoost = 0.30 // brightening of the mask peak
)

// Rasterize simulates the phosphor pattern of a virtual pixel grid.
// pos is the screen coordinate, virtualRes the number of virtual pixels per
// axis. Mode none or zero intensity returns c unchanged.
func Rasterize(c Color, pos, virtualRes Vec2, mode RasterMode, intensity float64) Color {
	if mode == RasterNone || intensity == 0 {
		return c
	}

	high := Color{bright(c.R), bright(c.G), bright(c.B)}
	low := Color{dim(c.R), dim(c.G), dim(c.B)}

	p := pos.Mul(virtualRes)
	cell := p.Fract().Scale(2).Sub(Vec2{1, 1})

	var mask Color
	switch mode {
	case RasterScanline:
		m := 1 - math.Abs(cell.Y)
		mask = Color{m, m, m}
	case RasterPixel:
		m := (1 - math.Abs(cell.X)) * (1 - math.Abs(cell.Y))
		m = math.Sqrt(m)
		mask = Color{m, m, m}
	case RasterSubpixel:
		row := 1 - math.Abs(cell.Y)
		mask = Color{
			R: stripe(p.X, 0) * row,
			G: stripe(p.X, 1.0/3) * row,
			B: stripe(p.X, 2.0/3) * row,
		}
	default:
		return c
	}

	raster := Color{
		R: low.R + (high.R-low.R)*mask.R,
		G: low.G + (high.G-low.G)*mask.G,
		B: low.B + (high.B-low.B)*mask.B,
	}
	return c.Mix(raster, intensity)
}

func bright(x float64) float64 { return ((1 + rasterBoost) - 0.2*x) * x }
func dim(x float64) float64    { return ((1 - rasterDim) + 0.1*x) * x }

// stripe is a triangle wave peaking once per virtual pixel, phase-shifted per channel
func stripe(x, phase float64) float64 {
	return 1 - math.Abs(Fract(x-phase)*2-1)
}
