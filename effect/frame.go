package effect

import "math"

// Vignette is the brightness multiplier of a tube's darker edges.
// 1 at the center, 0 on and outside the border; independent of time.
func Vignette(uv Vec2) float64 {
	if !uv.Inside() {
		return 0
	}
	v := 16 * uv.X * uv.Y * (1 - uv.X) * (1 - uv.Y)
	if v <= 0 {
		return 0
	}
	return math.Pow(v, 0.15)
}

// FrameShadow is the alpha of the frame overlay at a frame coordinate:
// 0 inside the nominal screen, rising to 1 within margin outside it
func FrameShadow(frameUV Vec2, margin float64) float64 {
	dx := math.Max(-frameUV.X, frameUV.X-1)
	dy := math.Max(-frameUV.Y, frameUV.Y-1)
	d := math.Max(math.Max(dx, dy), 0)
	if d == 0 {
		return 0
	}
	if margin <= 0 {
		return 1
	}
	return smoothstep(0, margin, d)
}
