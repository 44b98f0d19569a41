package grid

import (
	"image"
	"image/draw"

	"github.com/lixenwraith/phosphor/core"
)

// Cell is one character position
type Cell struct {
	Col, Row int
	Glyph    rune
	Fg       core.RGB
}

// Terminal owns the cell grid. Not safe for concurrent use: it is touched
// only from the loop goroutine.
type Terminal struct {
	face     Face
	viewport Viewport
	grid     Grid
	cells    []Cell

	bg      core.RGB
	cursor  core.Point
	showCur bool
	curFg   core.RGB

	listeners []func(cols, rows int)
	seq       uint64
}

// NewTerminal creates an empty terminal; the grid appears on the first Resize
func NewTerminal(face Face, bg core.RGB) *Terminal {
	return &Terminal{
		face:  face,
		bg:    bg,
		curFg: core.RGBWhite,
	}
}

// OnResize registers a grid-size listener
func (t *Terminal) OnResize(fn func(cols, rows int)) {
	t.listeners = append(t.listeners, fn)
}

// Resize recomputes the grid for a new viewport
// Returns true when the cell dimensions changed
func (t *Terminal) Resize(v Viewport) bool {
	t.viewport = v
	return t.recompute()
}

// SetFace swaps the glyph rasterizer (font load completion) and recomputes
func (t *Terminal) SetFace(f Face) bool {
	t.face = f
	return t.recompute()
}

func (t *Terminal) recompute() bool {
	g := ComputeGrid(t.viewport, t.face.Metrics())
	if g.Empty() {
		// Degenerate layout: keep the previous grid and stay silent
		return false
	}

	changed := g.Cols != t.grid.Cols || g.Rows != t.grid.Rows
	t.grid = g
	if !changed {
		return false
	}

	t.cells = make([]Cell, g.Cols*g.Rows)
	t.Clear()
	for _, fn := range t.listeners {
		fn(g.Cols, g.Rows)
	}
	return true
}

// Grid returns the current layout
func (t *Terminal) Grid() Grid { return t.grid }

// Size returns columns and rows
func (t *Terminal) Size() (cols, rows int) { return t.grid.Cols, t.grid.Rows }

// Viewport returns the last viewport
func (t *Terminal) Viewport() Viewport { return t.viewport }

// Background returns the clear color
func (t *Terminal) Background() core.RGB { return t.bg }

func (t *Terminal) inBounds(row, col int) bool {
	return row >= 0 && row < t.grid.Rows && col >= 0 && col < t.grid.Cols
}

// Write sets one cell; out-of-bounds writes are dropped silently
func (t *Terminal) Write(row, col int, glyph rune, fg core.RGB) {
	if !t.inBounds(row, col) {
		return
	}
	c := &t.cells[row*t.grid.Cols+col]
	c.Glyph = glyph
	c.Fg = fg
}

// WriteString writes runes left to right from (row, col), clipped at the edge
func (t *Terminal) WriteString(row, col int, s string, fg core.RGB) int {
	n := 0
	for _, r := range s {
		t.Write(row, col+n, r, fg)
		n++
	}
	return n
}

// Cell returns the cell at (row, col); out of bounds yields a blank cell
func (t *Terminal) Cell(row, col int) Cell {
	if !t.inBounds(row, col) {
		return Cell{Row: row, Col: col, Glyph: ' '}
	}
	return t.cells[row*t.grid.Cols+col]
}

// Clear resets every cell to a blank
func (t *Terminal) Clear() {
	cols := t.grid.Cols
	for i := range t.cells {
		t.cells[i] = Cell{Col: i % cols, Row: i / cols, Glyph: ' ', Fg: core.RGBWhite}
	}
}

// SetCursor positions the block cursor; it is drawn inverted in the static pass
func (t *Terminal) SetCursor(row, col int, visible bool) {
	t.cursor = core.Point{X: col, Y: row}
	t.showCur = visible
}

// Cursor returns the cursor cell and visibility
func (t *Terminal) Cursor() (row, col int, visible bool) {
	return t.cursor.Y, t.cursor.X, t.showCur
}

// SetCursorColor sets the cursor block color
func (t *Terminal) SetCursorColor(c core.RGB) { t.curFg = c }

// StaticBuffer is the offscreen image of one frame's text
type StaticBuffer struct {
	Img  *image.RGBA
	Seq  uint64 // frame sequence; the compositor consumes each value once
	Grid Grid
}

// Origin returns the pixel offset of the grid inside the viewport (centered)
func (t *Terminal) Origin() image.Point {
	return image.Point{
		X: (t.viewport.Width - t.grid.Cols*t.grid.CellWidth) / 2,
		Y: (t.viewport.Height - t.grid.Rows*t.grid.CellHeight) / 2,
	}
}

// RenderStaticPass rasterizes all cells into buf for the current frame.
// The buffer is reallocated when the viewport changed. Returns buf.
func (t *Terminal) RenderStaticPass(buf *StaticBuffer) *StaticBuffer {
	w, h := t.viewport.Width, t.viewport.Height
	if buf.Img == nil || buf.Img.Rect.Dx() != w || buf.Img.Rect.Dy() != h {
		buf.Img = image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	draw.Draw(buf.Img, buf.Img.Rect, image.NewUniform(t.bg), image.Point{}, draw.Src)

	t.seq++
	buf.Seq = t.seq
	buf.Grid = t.grid

	o := t.Origin()
	cw, ch := t.grid.CellWidth, t.grid.CellHeight
	for i := range t.cells {
		c := &t.cells[i]
		x := o.X + c.Col*cw
		y := o.Y + c.Row*ch

		if t.showCur && c.Row == t.cursor.Y && c.Col == t.cursor.X {
			r := image.Rect(x, y, x+cw, y+ch)
			draw.Draw(buf.Img, r, image.NewUniform(t.curFg), image.Point{}, draw.Src)
			t.face.DrawGlyph(buf.Img, x, y, c.Glyph, t.bg)
			continue
		}
		t.face.DrawGlyph(buf.Img, x, y, c.Glyph, c.Fg)
	}
	return buf
}
