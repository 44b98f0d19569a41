package game

import (
	"fmt"
	"time"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/input"
)

const (
	snakeWidth     = 40
	snakeHeight    = 20
	snakeStartLen  = 4
	snakeStep      = 140 * time.Millisecond
	snakeMinStep   = 50 * time.Millisecond
	snakeSpeedup   = 5 * time.Millisecond // per food eaten
	snakeFoodScore = 10
)

// Snake grows by eating food; hitting a wall or itself loses
type Snake struct {
	opt Options
	rng *core.Rand
	b   board

	body    []core.Point // head first
	dir     core.Point
	queued  []core.Point
	food    core.Point
	acc     time.Duration
	step    time.Duration
	score   int
	outcome Outcome
}

// NewSnake creates a snake game
func NewSnake(opt Options) *Snake {
	return &Snake{opt: opt, rng: core.NewRand(opt.Seed)}
}

func (s *Snake) Name() string { return "snake" }

func (s *Snake) Start(cols, rows int) {
	s.b = board{w: min(snakeWidth, max(cols-2, snakeStartLen+2)), h: min(snakeHeight, max(rows-3, 3))}
	s.body = s.body[:0]
	cx, cy := s.b.w/2, s.b.h/2
	for i := 0; i < snakeStartLen; i++ {
		s.body = append(s.body, core.Point{X: cx - i, Y: cy})
	}
	s.dir = core.Point{X: 1}
	s.queued = s.queued[:0]
	s.acc = 0
	s.step = snakeStep
	s.score = 0
	s.outcome = Running
	s.placeFood()
}

func (s *Snake) Key(ev input.Event) {
	if s.outcome != Running {
		return
	}
	if ev.IsQuit() {
		s.outcome = Quit
		return
	}
	dx, dy, ok := direction(ev)
	if !ok {
		return
	}
	// two turns within one step are both honored
	last := s.dir
	if n := len(s.queued); n > 0 {
		last = s.queued[n-1]
	}
	next := core.Point{X: dx, Y: dy}
	if next == last || (next.X == -last.X && next.Y == -last.Y) || len(s.queued) >= 2 {
		return
	}
	s.queued = append(s.queued, next)
}

func (s *Snake) Tick(dt time.Duration) {
	if s.outcome != Running {
		return
	}
	s.acc += dt
	for s.acc >= s.step && s.outcome == Running {
		s.acc -= s.step
		s.advance()
	}
}

func (s *Snake) advance() {
	if len(s.queued) > 0 {
		s.dir = s.queued[0]
		s.queued = s.queued[1:]
	}
	head := core.Point{X: s.body[0].X + s.dir.X, Y: s.body[0].Y + s.dir.Y}
	if head.X < 0 || head.Y < 0 || head.X >= s.b.w || head.Y >= s.b.h {
		s.outcome = Lost
		return
	}
	grow := head == s.food
	// the tail cell frees up this step unless the snake grows
	tail := len(s.body)
	if !grow {
		tail--
	}
	for _, p := range s.body[:tail] {
		if p == head {
			s.outcome = Lost
			return
		}
	}
	if grow {
		s.body = append(s.body, core.Point{})
	}
	copy(s.body[1:], s.body[:len(s.body)-1])
	s.body[0] = head

	if grow {
		s.score += snakeFoodScore
		s.step = max(s.step-snakeSpeedup, snakeMinStep)
		if len(s.body) == s.b.w*s.b.h {
			s.outcome = Won
			return
		}
		s.placeFood()
	}
}

func (s *Snake) occupied(p core.Point) bool {
	for _, b := range s.body {
		if b == p {
			return true
		}
	}
	return false
}

// placeFood picks a uniformly random free cell
func (s *Snake) placeFood() {
	free := s.b.w*s.b.h - len(s.body)
	if free <= 0 {
		return
	}
	n := s.rng.Intn(free)
	for y := 0; y < s.b.h; y++ {
		for x := 0; x < s.b.w; x++ {
			p := core.Point{X: x, Y: y}
			if s.occupied(p) {
				continue
			}
			if n == 0 {
				s.food = p
				return
			}
			n--
		}
	}
}

func (s *Snake) Draw(c Canvas) {
	th := s.opt.Theme
	x, y, ok := s.b.frame(c, fmt.Sprintf("SNAKE  score %d  length %d   q quits", s.score, len(s.body)), th)
	if !ok {
		return
	}
	c.Write(y+s.food.Y, x+s.food.X, '◆', th.Accent)
	for i := len(s.body) - 1; i >= 0; i-- {
		p := s.body[i]
		g, fg := '■', th.Fg
		if i == 0 {
			g = '@'
			if s.outcome == Lost {
				fg = th.Alert
			}
		}
		c.Write(y+p.Y, x+p.X, g, fg)
	}
}

func (s *Snake) Outcome() Outcome { return s.outcome }

func (s *Snake) Score() int { return s.score }
