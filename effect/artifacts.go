package effect

import "math"

// Jitter displaces the sampling coordinate by the fast noise B/A channels
func Jitter(uv Vec2, fast Texel, amount float64) Vec2 {
	if amount == 0 {
		return uv
	}
	return uv.Add(Vec2{fast.B - 0.5, fast.A - 0.5}.Scale(amount))
}

// HorizontalSync bends rows sideways when the slow noise R channel drops
// below the sync strength; G picks the wobble frequency
func HorizontalSync(uv Vec2, slow Texel, t, strength float64) Vec2 {
	if strength == 0 {
		return uv
	}
	randval := strength - slow.R
	if randval <= 0 {
		return uv
	}
	scale := randval * strength
	freq := 4 + 36*slow.G
	uv.X += math.Sin((uv.Y+t*0.001)*freq) * scale
	return uv
}

// Flicker modulates overall brightness by the slow noise G channel
func Flicker(c Color, slow Texel, amount float64) Color {
	if amount == 0 {
		return c
	}
	return c.Scale(1 + (slow.G-0.5)*amount)
}

// StaticNoise adds grain, strongest at the screen center like a real tube
func StaticNoise(c Color, fast Texel, uv Vec2, amount float64) Color {
	if amount == 0 {
		return c
	}
	d := uv.Sub(center)
	falloff := 1 - math.Sqrt(d.Dot(d))
	n := fast.A * amount * falloff
	return c.Add(Color{n, n, n})
}

// Bloom adds a share of the blurred neighborhood on top of the sample
func Bloom(c, blurred Color, amount float64) Color {
	if amount == 0 {
		return c
	}
	return c.Add(blurred.Scale(amount * 0.5))
}

// ChromaShift samples red and blue at horizontally offset positions
func ChromaShift(sample func(Vec2) Color, uv Vec2, amount float64) Color {
	if amount == 0 {
		return sample(uv)
	}
	g := sample(uv)
	r := sample(Vec2{uv.X + amount, uv.Y})
	b := sample(Vec2{uv.X - amount, uv.Y})
	return Color{r.R, g.G, b.B}
}

// BurnIn blends the previous composite into the current one: the brighter of
// the current color and the previous color decayed by persistence
func BurnIn(cur, prev Color, persistence float64) Color {
	if persistence == 0 {
		return cur
	}
	return cur.Max(prev.Scale(persistence))
}
