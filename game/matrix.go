package game

import (
	"time"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/input"
)

const (
	rainMinSpeed = 8.0  // rows per second
	rainMaxSpeed = 24.0 // rows per second
	rainMinTrail = 6
	rainMaxTrail = 24
	rainMutate   = 0.04 // chance per trail cell per tick to change glyph
)

var rainGlyphs = []rune("ｱｲｳｴｵｶｷｸｹｺｻｼｽｾｿﾀﾁﾂﾃﾄﾅﾆﾇﾈﾉﾊﾋﾌﾍﾎﾏﾐﾑﾒﾓﾔﾕﾖﾗﾘﾙﾚﾛﾜﾝ0123456789:.=*+-<>")

type drop struct {
	y     float64 // head row, may be above the screen
	speed float64
	trail int
	delay float64 // seconds before the drop reappears
}

// Matrix is the falling-glyph screensaver; any key ends it
type Matrix struct {
	opt Options
	rng *core.Rand

	cols, rows int
	drops      []drop
	glyphs     []rune // cols*rows
	elapsed    time.Duration
	outcome    Outcome
}

// NewMatrix creates the rain effect
func NewMatrix(opt Options) *Matrix {
	return &Matrix{opt: opt, rng: core.NewRand(opt.Seed)}
}

func (m *Matrix) Name() string { return "matrix" }

func (m *Matrix) Start(cols, rows int) {
	m.cols, m.rows = max(cols, 0), max(rows, 0)
	m.drops = make([]drop, m.cols)
	m.glyphs = make([]rune, m.cols*m.rows)
	for i := range m.glyphs {
		m.glyphs[i] = m.glyph()
	}
	for i := range m.drops {
		m.drops[i] = m.newDrop()
		m.drops[i].y = -m.rng.Float64() * float64(m.rows)
	}
	m.elapsed = 0
	m.outcome = Running
}

func (m *Matrix) glyph() rune { return rainGlyphs[m.rng.Intn(len(rainGlyphs))] }

func (m *Matrix) newDrop() drop {
	return drop{
		speed: rainMinSpeed + m.rng.Float64()*(rainMaxSpeed-rainMinSpeed),
		trail: rainMinTrail + m.rng.Intn(rainMaxTrail-rainMinTrail+1),
		delay: m.rng.Float64() * 1.5,
	}
}

func (m *Matrix) Key(ev input.Event) {
	if m.outcome == Running && (ev.Type == input.EventKey || ev.Type == input.EventPaste) {
		m.outcome = Quit
	}
}

func (m *Matrix) Tick(dt time.Duration) {
	if m.outcome != Running {
		return
	}
	m.elapsed += dt
	sec := dt.Seconds()
	for i := range m.drops {
		d := &m.drops[i]
		if d.delay > 0 {
			d.delay -= sec
			continue
		}
		d.y += d.speed * sec
		if int(d.y)-d.trail > m.rows {
			*d = m.newDrop()
		}
	}
	for i := range m.glyphs {
		if m.rng.Float64() < rainMutate {
			m.glyphs[i] = m.glyph()
		}
	}
}

func (m *Matrix) Draw(c Canvas) {
	c.Clear()
	cols, rows := c.Size()
	th := m.opt.Theme
	for x := 0; x < min(cols, m.cols); x++ {
		d := m.drops[x]
		if d.delay > 0 {
			continue
		}
		head := int(d.y)
		for k := 0; k <= d.trail; k++ {
			y := head - k
			if y < 0 || y >= min(rows, m.rows) {
				continue
			}
			fg := th.Fg
			switch {
			case k == 0:
				fg = core.RGBWhite
			case k > d.trail/2:
				fg = th.Dim
			}
			c.Write(y, x, m.glyphs[y*m.cols+x], fg)
		}
	}
}

func (m *Matrix) Outcome() Outcome { return m.outcome }

// Score is the number of whole seconds watched
func (m *Matrix) Score() int { return int(m.elapsed / time.Second) }
