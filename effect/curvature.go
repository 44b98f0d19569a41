package effect

var center = Vec2{0.5, 0.5}

// Aspect returns the per-axis weights that make curvature circular on a
// non-square viewport: each offset axis is scaled by its ratio to the larger
// dimension, so distances are measured in pixel-proportional units
func Aspect(width, height float64) Vec2 {
	if width <= 0 || height <= 0 {
		return Vec2{1, 1}
	}
	m := max(width, height)
	return Vec2{width / m, height / m}
}

// Curve maps an output coordinate to the distorted source coordinate.
// Positive amount pushes samples outward, which contracts the image toward
// the center (text sampling); the center is a fixed point for every amount.
func Curve(uv Vec2, amount float64, aspect Vec2) Vec2 {
	if amount == 0 {
		return uv
	}
	cc := uv.Sub(center)
	w := cc.Mul(aspect)
	dist := w.Dot(w) * amount
	return uv.Add(cc.Scale((1 + dist) * dist))
}

// Expand is the frame-overlay counterpart of Curve: it bulges the frame
// outward by the same amount the text is pulled in
func Expand(uv Vec2, amount float64, aspect Vec2) Vec2 {
	return Curve(uv, -amount, aspect)
}

// Pad maps screen coordinates into the area inside a frame margin:
// margin m leaves [0,1] at [m, 1-m] on screen
func Pad(uv Vec2, margin float64) Vec2 {
	if margin == 0 {
		return uv
	}
	s := 1 + 2*margin
	return Vec2{uv.X*s - margin, uv.Y*s - margin}
}
