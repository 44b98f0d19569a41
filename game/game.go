// Package game holds the full-screen games the shell can launch. A game owns
// the terminal while its outcome is Running; it receives keys and ticks on
// the loop goroutine and draws into a Canvas every frame.
package game

import (
	"slices"
	"strings"
	"time"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/input"
)

// Outcome is the state of a session
type Outcome uint8

const (
	Running Outcome = iota
	Won
	Lost
	Quit
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Quit:
		return "quit"
	}
	return "unknown"
}

// Canvas is the drawing surface; grid.Terminal implements it
type Canvas interface {
	Size() (cols, rows int)
	Write(row, col int, glyph rune, fg core.RGB)
	WriteString(row, col int, s string, fg core.RGB) int
	Clear()
}

// Game is one interactive session
type Game interface {
	Name() string
	// Start resets the session for a terminal of the given size
	Start(cols, rows int)
	Key(ev input.Event)
	Tick(dt time.Duration)
	Draw(c Canvas)
	Outcome() Outcome
	Score() int
}

// Theme colors shared by all games
type Theme struct {
	Fg     core.RGB
	Accent core.RGB
	Dim    core.RGB
	Alert  core.RGB
}

// DefaultTheme is green phosphor
var DefaultTheme = Theme{
	Fg:     core.RGB{R: 51, G: 255, B: 102},
	Accent: core.RGB{R: 255, G: 200, B: 60},
	Dim:    core.RGB{R: 20, G: 110, B: 45},
	Alert:  core.RGB{R: 255, G: 80, B: 60},
}

// Options configure a new game
type Options struct {
	Seed  uint64
	Theme Theme
}

// Factory creates a game
type Factory func(opt Options) Game

// Registry maps command names to games
type Registry struct {
	factories map[string]Factory
	help      map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		help:      make(map[string]string),
	}
}

// DefaultRegistry contains every built-in game
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("pong", "first to 5 against the machine (w/s or arrows)", func(o Options) Game { return NewPong(o) })
	r.Register("snake", "eat, grow, avoid walls and yourself (arrows or wasd)", func(o Options) Game { return NewSnake(o) })
	r.Register("tetris", "clear lines (arrows, up rotates, space drops)", func(o Options) Game { return NewTetris(o) })
	r.Register("matrix", "digital rain, any key exits", func(o Options) Game { return NewMatrix(o) })
	return r
}

// Register adds or replaces a game
func (r *Registry) Register(name, help string, f Factory) {
	r.factories[name] = f
	r.help[name] = help
}

// New creates the named game
func (r *Registry) New(name string, opt Options) (Game, bool) {
	f, ok := r.factories[name]
	if !ok {
		return nil, false
	}
	return f(opt), true
}

// Names returns registered names in order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Help returns the one-line description of a game
func (r *Registry) Help(name string) string { return r.help[name] }

// board is a rectangle centered on the canvas
type board struct {
	w, h int
}

// origin returns the top-left cell of the board interior, leaving room for
// a border and a status row above it
func (b board) origin(cols, rows int) (x, y int) {
	return (cols-b.w-2)/2 + 1, (rows-b.h-3)/2 + 2
}

// bounds is the outer rectangle: interior, border and status row
func (b board) bounds(cols, rows int) core.Area {
	x, y := b.origin(cols, rows)
	return core.Area{X: x - 1, Y: y - 2, Width: b.w + 2, Height: b.h + 3}
}

func (b board) fits(cols, rows int) bool {
	screen := core.Area{Width: cols, Height: rows}
	a := b.bounds(cols, rows)
	return screen.Contains(core.Point{X: a.X, Y: a.Y}) &&
		screen.Contains(core.Point{X: a.X + a.Width - 1, Y: a.Y + a.Height - 1})
}

// frame draws the border and the status line; returns false when the board
// does not fit, after printing a notice
func (b board) frame(c Canvas, status string, th Theme) (x, y int, ok bool) {
	cols, rows := c.Size()
	c.Clear()
	if !b.fits(cols, rows) {
		msg := "terminal too small"
		c.WriteString(rows/2, max((cols-len(msg))/2, 0), msg, th.Alert)
		return 0, 0, false
	}
	x, y = b.origin(cols, rows)
	for i := -1; i <= b.w; i++ {
		c.Write(y-1, x+i, '-', th.Dim)
		c.Write(y+b.h, x+i, '-', th.Dim)
	}
	for j := 0; j < b.h; j++ {
		c.Write(y+j, x-1, '|', th.Dim)
		c.Write(y+j, x+b.w, '|', th.Dim)
	}
	c.Write(y-1, x-1, '+', th.Dim)
	c.Write(y-1, x+b.w, '+', th.Dim)
	c.Write(y+b.h, x-1, '+', th.Dim)
	c.Write(y+b.h, x+b.w, '+', th.Dim)
	c.WriteString(y-2, x-1, status, th.Accent)
	return x, y, true
}

// banner writes centered text inside the board
func (b board) banner(c Canvas, x, y int, text string, fg core.RGB) {
	lines := strings.Split(text, "\n")
	top := y + (b.h-len(lines))/2
	for i, l := range lines {
		c.WriteString(top+i, x+max((b.w-len(l))/2, 0), l, fg)
	}
}

// direction from arrows, wasd, or vi keys
func direction(ev input.Event) (dx, dy int, ok bool) {
	if ev.Type != input.EventKey {
		return 0, 0, false
	}
	switch ev.Key {
	case input.KeyUp:
		return 0, -1, true
	case input.KeyDown:
		return 0, 1, true
	case input.KeyLeft:
		return -1, 0, true
	case input.KeyRight:
		return 1, 0, true
	case input.KeyRune:
		switch ev.Rune {
		case 'w', 'k':
			return 0, -1, true
		case 's', 'j':
			return 0, 1, true
		case 'a', 'h':
			return -1, 0, true
		case 'd', 'l':
			return 1, 0, true
		}
	}
	return 0, 0, false
}
