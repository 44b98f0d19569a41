package window

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lixenwraith/phosphor/input"
)

// Held keys repeat after repeatDelay ticks, every repeatInterval ticks
const (
	repeatDelay    = 24
	repeatInterval = 3
)

var specialKeys = []struct {
	key ebiten.Key
	out input.Key
}{
	{ebiten.KeyEnter, input.KeyEnter},
	{ebiten.KeyNumpadEnter, input.KeyEnter},
	{ebiten.KeyEscape, input.KeyEscape},
	{ebiten.KeyTab, input.KeyTab},
	{ebiten.KeyBackspace, input.KeyBackspace},
	{ebiten.KeyDelete, input.KeyDelete},
	{ebiten.KeyArrowUp, input.KeyUp},
	{ebiten.KeyArrowDown, input.KeyDown},
	{ebiten.KeyArrowLeft, input.KeyLeft},
	{ebiten.KeyArrowRight, input.KeyRight},
	{ebiten.KeyHome, input.KeyHome},
	{ebiten.KeyEnd, input.KeyEnd},
	{ebiten.KeyPageUp, input.KeyPageUp},
	{ebiten.KeyPageDown, input.KeyPageDown},
}

var letterKeys = [26]ebiten.Key{
	ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
	ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL,
	ebiten.KeyM, ebiten.KeyN, ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR,
	ebiten.KeyS, ebiten.KeyT, ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX,
	ebiten.KeyY, ebiten.KeyZ,
}

// repeats reports whether a key held for ticks fires on this tick
func repeats(ticks int) bool {
	if ticks == 1 {
		return true
	}
	return ticks >= repeatDelay && (ticks-repeatDelay)%repeatInterval == 0
}

func modifiers() input.Modifier {
	var m input.Modifier
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= input.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= input.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= input.ModCtrl
	}
	return m
}

// keyReader polls ebiten's keyboard state once per tick
type keyReader struct {
	chars []rune
}

// read appends the events of the current tick. Text arrives through the
// input character queue; Ctrl+letter and named keys through key state.
func (r *keyReader) read(out []input.Event) []input.Event {
	mod := modifiers()

	for _, k := range specialKeys {
		if repeats(inpututil.KeyPressDuration(k.key)) {
			ev := input.KeyEvent(k.out)
			ev.Mod = mod
			out = append(out, ev)
		}
	}

	if mod&input.ModCtrl != 0 {
		for i, k := range letterKeys {
			if repeats(inpututil.KeyPressDuration(k)) {
				ev := input.KeyEvent(input.CtrlKey(rune('a' + i)))
				ev.Mod = mod
				out = append(out, ev)
			}
		}
		// drop the characters a Ctrl chord may still produce
		r.chars = ebiten.AppendInputChars(r.chars[:0])
		return out
	}

	r.chars = ebiten.AppendInputChars(r.chars[:0])
	for _, c := range r.chars {
		ev := input.RuneEvent(c)
		ev.Mod = mod &^ input.ModShift
		out = append(out, ev)
	}
	return out
}
