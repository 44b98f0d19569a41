package core

// Rand is a xorshift64 generator; games seed it explicitly for reproducible runs
type Rand struct {
	state uint64
}

func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = 1
	}
	return &Rand{state: seed}
}

func (r *Rand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Float64 returns a value in [0,1)
func (r *Rand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}
