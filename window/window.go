// Package window is the desktop frontend: an ebiten window showing the
// composite scaled up by the pixel scale, with keyboard input posted to the
// adapter. The frame loop runs inside ebiten's Update.
package window

import (
	"context"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/input"
)

// Stepper renders one frame
type Stepper interface {
	Step() error
}

// Options configure the window
type Options struct {
	Title  string
	Width  int
	Height int
	// Scale is the number of window pixels per composite pixel
	Scale int
	FPS   int
}

// Window is the ebiten frontend. Present, Update, Draw and Layout all run on
// ebiten's game goroutine.
type Window struct {
	opt Options

	ctx  context.Context
	step Stepper
	post func(input.Event)

	frame   *image.RGBA
	img     *ebiten.Image
	vp      grid.Viewport
	focused bool
	keys    keyReader
	events  []input.Event
	err     error
}

// New creates a window; nothing is shown until Run
func New(opt Options) *Window {
	if opt.Scale <= 0 {
		opt.Scale = 1
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		opt.Width, opt.Height = 1280, 800
	}
	if opt.FPS <= 0 {
		opt.FPS = 60
	}
	return &Window{opt: opt, focused: true}
}

// Viewport is the composite size for the current window size
func (w *Window) Viewport() grid.Viewport {
	if w.vp.Width == 0 {
		return viewport(w.opt.Width, w.opt.Height, w.opt.Scale)
	}
	return w.vp
}

func viewport(outsideW, outsideH, scale int) grid.Viewport {
	return grid.Viewport{
		Width:  max(outsideW/scale, 1),
		Height: max(outsideH/scale, 1),
	}
}

// Present keeps the composite for the next Draw. The image is owned by the
// pipeline and stays valid until the next Step.
func (w *Window) Present(img *image.RGBA) error {
	w.frame = img
	return nil
}

// Run opens the window and blocks until it is closed or ctx is done.
// Failure to create the window is fatal to the frontend.
func (w *Window) Run(ctx context.Context, step Stepper, post func(input.Event)) error {
	w.ctx = ctx
	w.step = step
	w.post = post

	ebiten.SetWindowTitle(w.opt.Title)
	ebiten.SetWindowSize(w.opt.Width, w.opt.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(w.opt.FPS)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return w.err
}

// Update posts input and runs one frame
func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}

	if f := ebiten.IsFocused(); f != w.focused {
		w.focused = f
		w.post(input.FocusEvent(f))
	}
	w.events = w.keys.read(w.events[:0])
	for _, ev := range w.events {
		w.post(ev)
	}

	if err := w.step.Step(); err != nil {
		w.err = err
		return ebiten.Termination
	}
	return nil
}

// Draw uploads the latest composite and lets ebiten scale it to the window
func (w *Window) Draw(screen *ebiten.Image) {
	if w.frame == nil {
		return
	}
	b := w.frame.Rect
	if w.img == nil || w.img.Bounds().Dx() != b.Dx() || w.img.Bounds().Dy() != b.Dy() {
		if w.img != nil {
			w.img.Deallocate()
		}
		w.img = ebiten.NewImage(b.Dx(), b.Dy())
	}
	w.img.WritePixels(w.frame.Pix)
	screen.DrawImage(w.img, nil)
}

// Layout maps the window to the composite size. A change is posted as a
// resize; the adapter coalesces repeats within a frame.
func (w *Window) Layout(outsideW, outsideH int) (int, int) {
	vp := viewport(outsideW, outsideH, w.opt.Scale)
	if vp != w.vp {
		w.vp = vp
		if w.post != nil {
			w.post(input.ResizeEvent(vp.Width, vp.Height))
		}
	}
	return vp.Width, vp.Height
}
