// Package input is the event model shared by the frontends, the adapter and
// the shell. Frontends translate their native events into Event values.
package input

// Key identifies a non-printable key; printable input is KeyRune with Event.Rune set
type Key uint16

const (
	KeyNone Key = iota
	KeyRune

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete

	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Ctrl+letter, contiguous so KeyCtrlA+n is Ctrl+('a'+n)
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH
	KeyCtrlI
	KeyCtrlJ
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ
)

// Modifier flags
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
)

var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyRune:      "rune",
	KeyEscape:    "escape",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "page_up",
	KeyPageDown:  "page_down",
}

func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	if k >= KeyCtrlA && k <= KeyCtrlZ {
		return "ctrl_" + string(rune('a'+int(k-KeyCtrlA)))
	}
	return "unknown"
}

// CtrlKey returns the Ctrl+letter key for r, or KeyNone
func CtrlKey(r rune) Key {
	switch {
	case r >= 'a' && r <= 'z':
		return KeyCtrlA + Key(r-'a')
	case r >= 'A' && r <= 'Z':
		return KeyCtrlA + Key(r-'A')
	}
	return KeyNone
}
