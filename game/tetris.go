package game

import (
	"fmt"
	"time"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/input"
)

const (
	tetrisWidth    = 10
	tetrisHeight   = 20
	tetrisSide     = 10 // side panel columns
	linesPerLevel  = 10
	baseGravity    = 800 * time.Millisecond
	gravityStep    = 70 * time.Millisecond
	minGravity     = 80 * time.Millisecond
	softDropPoints = 1
	hardDropPoints = 2
)

// lineScores are awarded for 1-4 cleared lines, times the level
var lineScores = [5]int{0, 100, 300, 500, 800}

// tetromino shapes in their spawn rotation, as cells in a 4x4 box
var tetrominoes = [7]struct {
	name  byte
	size  int
	cells [4]core.Point
}{
	{'I', 4, [4]core.Point{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}}},
	{'O', 2, [4]core.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}},
	{'T', 3, [4]core.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}},
	{'S', 3, [4]core.Point{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}},
	{'Z', 3, [4]core.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}}},
	{'J', 3, [4]core.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}},
	{'L', 3, [4]core.Point{{X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}},
}

// kicks are tried in order when a rotation collides
var kicks = [...]core.Point{{X: 0, Y: 0}, {X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: -2, Y: 0}, {X: 2, Y: 0}}

type piece struct {
	kind  int
	rot   int
	x, y  int
	cells [4]core.Point
}

// rotated returns the piece cells after rot clockwise quarter turns
func rotated(kind, rot int) [4]core.Point {
	t := tetrominoes[kind]
	out := t.cells
	for r := 0; r < rot%4; r++ {
		for i, c := range out {
			out[i] = core.Point{X: t.size - 1 - c.Y, Y: c.X}
		}
	}
	return out
}

// Tetris is the classic falling-blocks game on a 10x20 well
type Tetris struct {
	opt Options
	rng *core.Rand
	b   board

	well    [tetrisHeight][tetrisWidth]int8 // 0 empty, kind+1 filled
	cur     piece
	bag     []int
	next    int
	fall    time.Duration
	lines   int
	score   int
	outcome Outcome
}

// NewTetris creates a tetris game
func NewTetris(opt Options) *Tetris {
	return &Tetris{opt: opt, rng: core.NewRand(opt.Seed)}
}

func (t *Tetris) Name() string { return "tetris" }

func (t *Tetris) Start(cols, rows int) {
	t.b = board{w: tetrisWidth*2 + tetrisSide, h: tetrisHeight}
	t.well = [tetrisHeight][tetrisWidth]int8{}
	t.bag = t.bag[:0]
	t.lines, t.score = 0, 0
	t.fall = 0
	t.outcome = Running
	t.next = t.draw()
	t.spawn()
}

// draw takes the next kind from a shuffled bag of all seven
func (t *Tetris) draw() int {
	if len(t.bag) == 0 {
		t.bag = []int{0, 1, 2, 3, 4, 5, 6}
		for i := len(t.bag) - 1; i > 0; i-- {
			j := t.rng.Intn(i + 1)
			t.bag[i], t.bag[j] = t.bag[j], t.bag[i]
		}
	}
	k := t.bag[0]
	t.bag = t.bag[1:]
	return k
}

func (t *Tetris) spawn() {
	kind := t.next
	t.next = t.draw()
	t.cur = piece{kind: kind, x: (tetrisWidth - tetrominoes[kind].size) / 2, cells: rotated(kind, 0)}
	if !t.fits(t.cur) {
		t.outcome = Lost
	}
}

func (t *Tetris) fits(p piece) bool {
	for _, c := range p.cells {
		x, y := p.x+c.X, p.y+c.Y
		if x < 0 || x >= tetrisWidth || y >= tetrisHeight {
			return false
		}
		if y >= 0 && t.well[y][x] != 0 {
			return false
		}
	}
	return true
}

func (t *Tetris) move(dx, dy int) bool {
	p := t.cur
	p.x += dx
	p.y += dy
	if !t.fits(p) {
		return false
	}
	t.cur = p
	return true
}

func (t *Tetris) rotate() {
	p := t.cur
	p.rot = (p.rot + 1) % 4
	p.cells = rotated(p.kind, p.rot)
	for _, k := range kicks {
		q := p
		q.x += k.X
		q.y += k.Y
		if t.fits(q) {
			t.cur = q
			return
		}
	}
}

// lock merges the current piece into the well, clears lines, and spawns
func (t *Tetris) lock() {
	for _, c := range t.cur.cells {
		x, y := t.cur.x+c.X, t.cur.y+c.Y
		if y < 0 {
			t.outcome = Lost
			return
		}
		t.well[y][x] = int8(t.cur.kind + 1)
	}
	cleared := 0
	for y := tetrisHeight - 1; y >= 0; {
		full := true
		for x := 0; x < tetrisWidth; x++ {
			if t.well[y][x] == 0 {
				full = false
				break
			}
		}
		if !full {
			y--
			continue
		}
		cleared++
		copy(t.well[1:y+1], t.well[:y])
		t.well[0] = [tetrisWidth]int8{}
	}
	if cleared > 0 {
		t.score += lineScores[cleared] * t.Level()
		t.lines += cleared
	}
	t.fall = 0
	t.spawn()
}

// Level starts at 1 and rises every ten lines
func (t *Tetris) Level() int { return 1 + t.lines/linesPerLevel }

// Lines returns the number of cleared lines
func (t *Tetris) Lines() int { return t.lines }

func (t *Tetris) gravity() time.Duration {
	return max(baseGravity-time.Duration(t.Level()-1)*gravityStep, minGravity)
}

func (t *Tetris) Key(ev input.Event) {
	if t.outcome != Running {
		return
	}
	if ev.IsQuit() {
		t.outcome = Quit
		return
	}
	if ev.Type != input.EventKey {
		return
	}
	switch {
	case ev.Key == input.KeyLeft || ev.IsRune('a') || ev.IsRune('h'):
		t.move(-1, 0)
	case ev.Key == input.KeyRight || ev.IsRune('d') || ev.IsRune('l'):
		t.move(1, 0)
	case ev.Key == input.KeyUp || ev.IsRune('w') || ev.IsRune('k') || ev.IsRune('x'):
		t.rotate()
	case ev.Key == input.KeyDown || ev.IsRune('s') || ev.IsRune('j'):
		if t.move(0, 1) {
			t.score += softDropPoints
			t.fall = 0
		} else {
			t.lock()
		}
	case ev.IsRune(' ') || ev.Key == input.KeyEnter:
		n := 0
		for t.move(0, 1) {
			n++
		}
		t.score += n * hardDropPoints
		t.lock()
	}
}

func (t *Tetris) Tick(dt time.Duration) {
	if t.outcome != Running {
		return
	}
	t.fall += dt
	for g := t.gravity(); t.fall >= g && t.outcome == Running; g = t.gravity() {
		t.fall -= g
		if !t.move(0, 1) {
			t.lock()
		}
	}
}

func (t *Tetris) ghostY() int {
	p := t.cur
	for {
		p.y++
		if !t.fits(p) {
			return p.y - 1
		}
	}
}

func (t *Tetris) Draw(c Canvas) {
	th := t.opt.Theme
	x, y, ok := t.b.frame(c, fmt.Sprintf("TETRIS  score %d  lines %d  level %d   q quits", t.score, t.lines, t.Level()), th)
	if !ok {
		return
	}
	cell := func(row, col int, g rune, fg core.RGB) {
		c.Write(y+row, x+col*2, g, fg)
		c.Write(y+row, x+col*2+1, g, fg)
	}
	for row := 0; row < tetrisHeight; row++ {
		for col := 0; col < tetrisWidth; col++ {
			if t.well[row][col] != 0 {
				cell(row, col, '█', th.Fg)
			} else {
				c.Write(y+row, x+col*2, '.', th.Dim)
			}
		}
		c.Write(y+row, x+tetrisWidth*2, '|', th.Dim)
	}
	if t.outcome == Running {
		gy := t.ghostY()
		for _, p := range t.cur.cells {
			if row := gy + p.Y; row >= 0 {
				cell(row, t.cur.x+p.X, '░', th.Dim)
			}
		}
		for _, p := range t.cur.cells {
			if row := t.cur.y + p.Y; row >= 0 {
				cell(row, t.cur.x+p.X, '█', th.Accent)
			}
		}
	}

	side := x + tetrisWidth*2 + 2
	c.WriteString(y, side, "NEXT", th.Fg)
	for _, p := range rotated(t.next, 0) {
		c.Write(y+2+p.Y, side+p.X*2, '█', th.Accent)
		c.Write(y+2+p.Y, side+p.X*2+1, '█', th.Accent)
	}
}

func (t *Tetris) Outcome() Outcome { return t.outcome }

func (t *Tetris) Score() int { return t.score }
