package game

import (
	"fmt"
	"math"
	"time"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/input"
)

const (
	pongWinScore   = 5
	pongWidth      = 60
	pongHeight     = 20
	pongPaddle     = 4
	pongBallSpeed  = 22.0 // cells per second
	pongMaxSpeed   = 50.0
	pongSpeedup    = 1.06
	pongAISpeed    = 9.0 // cells per second
	pongPlayerStep = 1.0
	pongServeDelay = 700 * time.Millisecond
)

// Pong is the player (left) against a paddle that tracks the ball
type Pong struct {
	opt Options
	rng *core.Rand
	b   board

	player, ai float64 // paddle top rows
	bx, by     float64
	vx, vy     float64
	playerPts  int
	aiPts      int
	serve      time.Duration
	outcome    Outcome
}

// NewPong creates a pong game
func NewPong(opt Options) *Pong {
	return &Pong{opt: opt, rng: core.NewRand(opt.Seed)}
}

func (p *Pong) Name() string { return "pong" }

func (p *Pong) Start(cols, rows int) {
	p.b = board{w: min(pongWidth, max(cols-2, 10)), h: min(pongHeight, max(rows-3, pongPaddle+2))}
	p.playerPts, p.aiPts = 0, 0
	p.outcome = Running
	p.player = float64(p.b.h-pongPaddle) / 2
	p.ai = p.player
	p.resetBall(p.rng.Intn(2) == 0)
}

func (p *Pong) resetBall(towardPlayer bool) {
	p.bx = float64(p.b.w) / 2
	p.by = float64(p.b.h) / 2
	angle := (p.rng.Float64() - 0.5) * math.Pi / 3
	p.vx = pongBallSpeed * math.Cos(angle)
	p.vy = pongBallSpeed * math.Sin(angle)
	if towardPlayer {
		p.vx = -p.vx
	}
	p.serve = pongServeDelay
}

func (p *Pong) Key(ev input.Event) {
	if p.outcome != Running {
		return
	}
	if ev.IsQuit() {
		p.outcome = Quit
		return
	}
	if _, dy, ok := direction(ev); ok && dy != 0 {
		p.player = p.clampPaddle(p.player + float64(dy)*pongPlayerStep)
	}
}

func (p *Pong) clampPaddle(top float64) float64 {
	return math.Max(0, math.Min(top, float64(p.b.h-pongPaddle)))
}

func (p *Pong) Tick(dt time.Duration) {
	if p.outcome != Running {
		return
	}
	sec := dt.Seconds()

	// ai follows the ball center with a capped speed
	target := p.by - pongPaddle/2.0
	delta := math.Max(-pongAISpeed*sec, math.Min(target-p.ai, pongAISpeed*sec))
	p.ai = p.clampPaddle(p.ai + delta)

	if p.serve > 0 {
		p.serve -= dt
		return
	}

	p.bx += p.vx * sec
	p.by += p.vy * sec

	h := float64(p.b.h)
	if p.by < 0 {
		p.by = -p.by
		p.vy = -p.vy
	} else if p.by >= h {
		p.by = 2*h - p.by - 0.001
		p.vy = -p.vy
	}

	w := float64(p.b.w)
	switch {
	case p.bx < 1 && p.vx < 0:
		if p.hits(p.player) {
			p.bounce(p.player)
		} else if p.bx < 0 {
			p.aiPts++
			p.point(true)
		}
	case p.bx >= w-1 && p.vx > 0:
		if p.hits(p.ai) {
			p.bounce(p.ai)
		} else if p.bx >= w {
			p.playerPts++
			p.point(false)
		}
	}
}

func (p *Pong) hits(top float64) bool {
	return p.by >= top-0.5 && p.by <= top+pongPaddle+0.5
}

// bounce reflects the ball; the hit offset from the paddle center steers it
func (p *Pong) bounce(top float64) {
	speed := math.Min(math.Hypot(p.vx, p.vy)*pongSpeedup, pongMaxSpeed)
	offset := (p.by - (top + pongPaddle/2.0)) / (pongPaddle / 2.0)
	offset = math.Max(-1, math.Min(offset, 1))
	angle := offset * math.Pi / 3
	dir := 1.0
	if p.vx > 0 {
		dir = -1
	}
	p.vx = dir * speed * math.Cos(angle)
	p.vy = speed * math.Sin(angle)
	if dir > 0 {
		p.bx = 1
	} else {
		p.bx = float64(p.b.w) - 1.001
	}
}

func (p *Pong) point(towardPlayer bool) {
	switch {
	case p.playerPts >= pongWinScore:
		p.outcome = Won
	case p.aiPts >= pongWinScore:
		p.outcome = Lost
	default:
		p.resetBall(towardPlayer)
	}
}

func (p *Pong) Draw(c Canvas) {
	th := p.opt.Theme
	x, y, ok := p.b.frame(c, fmt.Sprintf("PONG  you %d : %d cpu   first to %d, q quits", p.playerPts, p.aiPts, pongWinScore), th)
	if !ok {
		return
	}
	for j := 0; j < p.b.h; j += 2 {
		c.Write(y+j, x+p.b.w/2, ':', th.Dim)
	}
	for i := 0; i < pongPaddle; i++ {
		c.Write(y+int(math.Round(p.player))+i, x, '█', th.Fg)
		c.Write(y+int(math.Round(p.ai))+i, x+p.b.w-1, '█', th.Fg)
	}
	bx := min(max(int(p.bx), 0), p.b.w-1)
	by := min(max(int(p.by), 0), p.b.h-1)
	c.Write(y+by, x+bx, '●', th.Accent)
}

func (p *Pong) Outcome() Outcome { return p.outcome }

// Score rewards the winning margin and every point scored
func (p *Pong) Score() int { return max(p.playerPts-p.aiPts, 0)*100 + p.playerPts*10 }
