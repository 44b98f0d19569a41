package input

// EventType distinguishes event categories
type EventType uint8

const (
	EventKey EventType = iota
	EventResize
	EventFocus
	EventPaste
)

// Event is one input occurrence
type Event struct {
	Type EventType
	Key  Key
	Rune rune
	Mod  Modifier

	// EventResize: viewport in frontend pixels
	Width  int
	Height int

	// EventFocus: true when gained
	Focused bool

	// EventPaste
	Text string
}

// KeyEvent builds a key event for a special key
func KeyEvent(k Key) Event { return Event{Type: EventKey, Key: k} }

// RuneEvent builds a key event for a printable rune
func RuneEvent(r rune) Event { return Event{Type: EventKey, Key: KeyRune, Rune: r} }

// ResizeEvent builds a resize event
func ResizeEvent(w, h int) Event { return Event{Type: EventResize, Width: w, Height: h} }

// FocusEvent builds a focus change event
func FocusEvent(focused bool) Event { return Event{Type: EventFocus, Focused: focused} }

// PasteEvent builds a paste event
func PasteEvent(text string) Event { return Event{Type: EventPaste, Text: text} }

// IsRune reports whether ev is the printable rune r
func (ev Event) IsRune(r rune) bool {
	return ev.Type == EventKey && ev.Key == KeyRune && ev.Rune == r
}

// IsQuit reports the keys that leave any full-screen session: q, Q, Esc, Ctrl+C
func (ev Event) IsQuit() bool {
	if ev.Type != EventKey {
		return false
	}
	return ev.Key == KeyEscape || ev.Key == KeyCtrlC || ev.IsRune('q') || ev.IsRune('Q')
}
