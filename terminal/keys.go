package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/phosphor/input"
)

// convertKey maps tcell keys; Ctrl+letter aliases (Tab, Enter, Backspace)
// resolve to the named key
func convertKey(k tcell.Key) input.Key {
	switch k {
	case tcell.KeyRune:
		return input.KeyRune
	case tcell.KeyEscape:
		return input.KeyEscape
	case tcell.KeyEnter:
		return input.KeyEnter
	case tcell.KeyTab:
		return input.KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return input.KeyBackspace
	case tcell.KeyDelete:
		return input.KeyDelete
	case tcell.KeyUp:
		return input.KeyUp
	case tcell.KeyDown:
		return input.KeyDown
	case tcell.KeyLeft:
		return input.KeyLeft
	case tcell.KeyRight:
		return input.KeyRight
	case tcell.KeyHome:
		return input.KeyHome
	case tcell.KeyEnd:
		return input.KeyEnd
	case tcell.KeyPgUp:
		return input.KeyPageUp
	case tcell.KeyPgDn:
		return input.KeyPageDown
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return input.KeyCtrlA + input.Key(k-tcell.KeyCtrlA)
	}
	return input.KeyNone
}

func convertMod(m tcell.ModMask) input.Modifier {
	var out input.Modifier
	if m&tcell.ModShift != 0 {
		out |= input.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= input.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= input.ModAlt
	}
	return out
}

// decoder turns tcell events into input events. Bracketed paste arrives as
// key events between a start and an end marker and is collected into one
// paste event.
type decoder struct {
	pasting bool
	paste   []rune
}

func (d *decoder) convert(ev tcell.Event) (input.Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		if d.pasting {
			switch e.Key() {
			case tcell.KeyRune:
				d.paste = append(d.paste, e.Rune())
			case tcell.KeyEnter:
				d.paste = append(d.paste, '\n')
			case tcell.KeyTab:
				d.paste = append(d.paste, '\t')
			}
			return input.Event{}, false
		}
		k := convertKey(e.Key())
		if k == input.KeyNone {
			return input.Event{}, false
		}
		out := input.Event{Type: input.EventKey, Key: k, Mod: convertMod(e.Modifiers())}
		if k == input.KeyRune {
			out.Rune = e.Rune()
		}
		return out, true

	case *tcell.EventPaste:
		if e.Start() {
			d.pasting = true
			d.paste = d.paste[:0]
			return input.Event{}, false
		}
		d.pasting = false
		return input.PasteEvent(string(d.paste)), true

	case *tcell.EventResize:
		w, h := e.Size()
		return input.ResizeEvent(w, h), true

	case *tcell.EventFocus:
		return input.FocusEvent(e.Focused), true
	}
	return input.Event{}, false
}
