package terminal

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/effect"
	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/input"
)

type flatParams struct{}

func (flatParams) Params() effect.Params { return effect.Params{} }

func TestConvertKey(t *testing.T) {
	tests := []struct {
		in   tcell.Key
		want input.Key
	}{
		{tcell.KeyRune, input.KeyRune},
		{tcell.KeyEnter, input.KeyEnter},
		{tcell.KeyTab, input.KeyTab},
		{tcell.KeyBackspace, input.KeyBackspace},
		{tcell.KeyBackspace2, input.KeyBackspace},
		{tcell.KeyEscape, input.KeyEscape},
		{tcell.KeyPgDn, input.KeyPageDown},
		{tcell.KeyCtrlA, input.KeyCtrlA},
		{tcell.KeyCtrlC, input.KeyCtrlC},
		{tcell.KeyCtrlU, input.KeyCtrlU},
		{tcell.KeyF5, input.KeyNone},
	}
	for _, tt := range tests {
		if got := convertKey(tt.in); got != tt.want {
			t.Errorf("convertKey(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecoder(t *testing.T) {
	var d decoder
	events := []tcell.Event{
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
		tcell.NewEventPaste(true),
		tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, 'i', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEnter, '\r', tcell.ModNone),
		tcell.NewEventPaste(false),
		tcell.NewEventResize(100, 40),
		tcell.NewEventFocus(false),
		tcell.NewEventKey(tcell.KeyF12, 0, tcell.ModNone),
	}
	var got []input.Event
	for _, ev := range events {
		if out, ok := d.convert(ev); ok {
			got = append(got, out)
		}
	}
	want := []input.Event{
		input.RuneEvent('q'),
		{Type: input.EventKey, Key: input.KeyCtrlC, Mod: input.ModCtrl},
		input.PasteEvent("hi\n"),
		input.ResizeEvent(100, 40),
		input.FocusEvent(false),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func newSim(t *testing.T, cols, rows int) (*Screen, tcell.SimulationScreen, *grid.Terminal) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term := grid.NewTerminal(grid.BlockFace{}, core.RGBBlack)
	s, err := NewWithScreen(sim, term, flatParams{})
	if err != nil {
		t.Fatalf("NewWithScreen: %v", err)
	}
	t.Cleanup(s.Close)
	sim.SetSize(cols, rows)
	term.Resize(s.Viewport())
	return s, sim, term
}

func TestPresent(t *testing.T) {
	s, sim, term := newSim(t, 4, 2)
	if cols, rows := term.Size(); cols != 4 || rows != 2 {
		t.Fatalf("grid %dx%d, want 4x2", cols, rows)
	}
	term.Write(0, 0, 'A', core.RGBWhite)

	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 10, 200, 30, 255
	}
	if err := s.Present(img); err != nil {
		t.Fatalf("Present: %v", err)
	}

	r, _, style, _ := sim.GetContent(0, 0)
	if r != 'A' {
		t.Errorf("cell 0,0 = %q, want A", r)
	}
	fg, _, _ := style.Decompose()
	if fr, fg2, fb := fg.RGB(); fr != 10 || fg2 != 200 || fb != 30 {
		t.Errorf("glyph color = %d,%d,%d", fr, fg2, fb)
	}

	r, _, style, _ = sim.GetContent(3, 1)
	if r != ' ' {
		t.Errorf("cell 3,1 = %q, want blank", r)
	}
	_, bg, _ := style.Decompose()
	if br, bgg, bb := bg.RGB(); br != 10 || bgg != 200 || bb != 30 {
		t.Errorf("blank background = %d,%d,%d", br, bgg, bb)
	}
}

func TestPresentCursor(t *testing.T) {
	s, sim, term := newSim(t, 3, 1)
	term.SetCursor(0, 1, true)
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	if err := s.Present(img); err != nil {
		t.Fatal(err)
	}
	_, _, style, _ := sim.GetContent(1, 0)
	_, bg, _ := style.Decompose()
	if r, g, b := bg.RGB(); r != 255 || g != 255 || b != 255 {
		t.Errorf("cursor background = %d,%d,%d, want white", r, g, b)
	}
}

func TestRunPostsSizeAndStops(t *testing.T) {
	s, sim, _ := newSim(t, 20, 5)
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan input.Event, 16)
	done := make(chan struct{})
	go func() {
		s.Run(ctx, func(ev input.Event) { got <- ev })
		close(done)
	}()

	if ev := <-got; ev != input.ResizeEvent(20, 5) {
		t.Errorf("first event = %+v", ev)
	}
	sim.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	select {
	case ev := <-got:
		if !ev.IsRune('x') {
			t.Errorf("key event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("injected key not posted")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
