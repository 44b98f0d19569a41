package terminal

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/effect"
	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/input"
	"github.com/lixenwraith/phosphor/render"
)

// glyphGlow is how much of a lit cell's color bleeds into its background
const glyphGlow = 0.18

// ParamsSource supplies the effect parameters of the frame being presented
type ParamsSource interface {
	Params() effect.Params
}

// Screen owns the tcell screen
type Screen struct {
	mu     sync.Mutex
	screen tcell.Screen
	term   *grid.Terminal
	params ParamsSource
	closed bool
}

// New initializes the terminal. Failure is fatal to the frontend.
func New(term *grid.Terminal, params ParamsSource) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	return NewWithScreen(s, term, params)
}

// NewWithScreen wraps an existing screen, such as a simulation screen
func NewWithScreen(s tcell.Screen, term *grid.Terminal, params ParamsSource) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	s.EnablePaste()
	s.EnableFocus()
	s.HideCursor()
	s.Clear()
	core.RegisterCrashTerminal(s)
	return &Screen{screen: s, term: term, params: params}, nil
}

// Viewport is the terminal size in cells, one pixel each
func (s *Screen) Viewport() grid.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := s.screen.Size()
	return grid.Viewport{Width: w, Height: h}
}

// Run polls terminal events and posts them until ctx is done or the screen
// is closed. The initial size is posted first.
func (s *Screen) Run(ctx context.Context, post func(input.Event)) {
	vp := s.Viewport()
	post(input.ResizeEvent(vp.Width, vp.Height))

	core.Go(func() {
		<-ctx.Done()
		s.Close()
	})

	var dec decoder
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		if out, ok := dec.convert(ev); ok {
			post(out)
		}
	}
}

// Present draws a composite. Each cell takes its pixel as color and the
// glyph of the source cell the pixel shows, so text bends with the glass.
func (s *Screen) Present(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	cols, rows := s.term.Size()
	if w == 0 || h == 0 {
		return nil
	}
	p := s.params.Params()
	bg := s.term.Background()
	curRow, curCol, curOn := s.term.Cursor()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
			px := core.RGB{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}

			uv := effect.Vec2{X: (float64(x) + 0.5) / float64(w), Y: (float64(y) + 0.5) / float64(h)}
			src := render.SourceCoord(uv, p, w, h)

			glyph := ' '
			var cursor bool
			if src.Inside() {
				col := min(int(src.X*float64(cols)), cols-1)
				row := min(int(src.Y*float64(rows)), rows-1)
				glyph = s.term.Cell(row, col).Glyph
				cursor = curOn && row == curRow && col == curCol
			}

			var style tcell.Style
			switch {
			case cursor:
				style = tcell.StyleDefault.Foreground(tcellColor(bg)).Background(tcellColor(px))
			case glyph == ' ' || glyph == 0:
				glyph = ' '
				style = tcell.StyleDefault.Background(tcellColor(px))
			default:
				style = tcell.StyleDefault.Foreground(tcellColor(px)).
					Background(tcellColor(bg.Blend(px, glyphGlow)))
			}
			s.screen.SetContent(x, y, glyph, nil, style)
		}
	}
	s.screen.Show()
	return nil
}

// Close restores the terminal; safe to call more than once
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	core.RegisterCrashTerminal(nil)
	s.screen.Fini()
}

func tcellColor(c core.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
