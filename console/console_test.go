package console

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/history"
	"github.com/lixenwraith/phosphor/input"
)

var testPalette = Palette{
	Text:   core.RGB{R: 200, G: 200, B: 200},
	Prompt: core.RGB{G: 255},
	Error:  core.RGB{R: 255},
	Accent: core.RGB{B: 255},
}

func newTestConsole(t *testing.T, cols, rows int) (*Console, *grid.Terminal) {
	t.Helper()
	term := grid.NewTerminal(grid.BlockFace{}, core.RGBBlack)
	term.Resize(grid.Viewport{Width: cols, Height: rows})
	return New(term, history.NewMemStore(), testPalette), term
}

func typeString(c *Console, s string) {
	for _, r := range s {
		c.Key(input.RuneEvent(r))
	}
}

// rowText reads a grid row with trailing blanks trimmed
func rowText(term *grid.Terminal, row int) string {
	cols, _ := term.Size()
	var b strings.Builder
	for col := 0; col < cols; col++ {
		b.WriteRune(term.Cell(row, col).Glyph)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestLineEditing(t *testing.T) {
	tests := []struct {
		name string
		keys []input.Event
		want string
	}{
		{"Insert", []input.Event{input.RuneEvent('a'), input.RuneEvent('b')}, "ab"},
		{"Backspace", []input.Event{input.RuneEvent('a'), input.RuneEvent('b'), input.KeyEvent(input.KeyBackspace)}, "a"},
		{"Insert mid-line", []input.Event{
			input.RuneEvent('a'), input.RuneEvent('c'), input.KeyEvent(input.KeyLeft), input.RuneEvent('b'),
		}, "abc"},
		{"Delete at cursor", []input.Event{
			input.RuneEvent('a'), input.RuneEvent('b'), input.KeyEvent(input.KeyHome), input.KeyEvent(input.KeyDelete),
		}, "b"},
		{"Ctrl+U kills to start", []input.Event{
			input.RuneEvent('a'), input.RuneEvent('b'), input.KeyEvent(input.KeyLeft), input.KeyEvent(input.KeyCtrlU),
		}, "b"},
		{"Ctrl+W deletes word", []input.Event{
			input.RuneEvent('l'), input.RuneEvent('s'), input.RuneEvent(' '), input.RuneEvent('x'), input.KeyEvent(input.KeyCtrlW),
		}, "ls "},
		{"Backspace at start", []input.Event{input.KeyEvent(input.KeyBackspace)}, ""},
		{"Paste flattens newlines", []input.Event{input.PasteEvent("cd\n/etc")}, "cd /etc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConsole(t, 40, 10)
			for _, ev := range tt.keys {
				c.Key(ev)
			}
			if got := c.Input(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSubmitEchoesAndRecords(t *testing.T) {
	store := history.NewMemStore()
	term := grid.NewTerminal(grid.BlockFace{}, core.RGBBlack)
	term.Resize(grid.Viewport{Width: 40, Height: 10})
	c := New(term, store, testPalette)
	c.SetPrompt("$ ")

	typeString(c, "ls")
	line, ok := c.Key(input.KeyEvent(input.KeyEnter))
	if !ok || line != "ls" {
		t.Fatalf("expected submitted ls, got %q %v", line, ok)
	}
	if c.Input() != "" {
		t.Error("input not cleared")
	}

	// Repeats and blanks are not recorded
	typeString(c, "ls")
	c.Key(input.KeyEvent(input.KeyEnter))
	c.Key(input.KeyEvent(input.KeyEnter))

	cmds, _ := store.Cmds(0)
	if len(cmds) != 1 {
		t.Errorf("expected 1 stored command, got %v", cmds)
	}
	if got := c.Lines(); len(got) != 3 || got[0].Text != "$ ls" {
		t.Errorf("unexpected echo %v", got)
	}
}

func TestHistoryNavigationKeepsDraft(t *testing.T) {
	c, _ := newTestConsole(t, 40, 10)
	for _, cmd := range []string{"pwd", "whoami"} {
		typeString(c, cmd)
		c.Key(input.KeyEvent(input.KeyEnter))
	}

	typeString(c, "dra")
	c.Key(input.KeyEvent(input.KeyUp))
	if c.Input() != "whoami" {
		t.Fatalf("up: got %q", c.Input())
	}
	c.Key(input.KeyEvent(input.KeyUp))
	c.Key(input.KeyEvent(input.KeyUp))
	if c.Input() != "pwd" {
		t.Fatalf("up past oldest: got %q", c.Input())
	}
	c.Key(input.KeyEvent(input.KeyDown))
	c.Key(input.KeyEvent(input.KeyDown))
	if c.Input() != "dra" {
		t.Errorf("expected draft restored, got %q", c.Input())
	}
}

func TestHistoryLoadedFromStore(t *testing.T) {
	store := history.NewMemStore()
	_, _ = store.AddCmd("snake")
	term := grid.NewTerminal(grid.BlockFace{}, core.RGBBlack)
	c := New(term, store, testPalette)

	c.Key(input.KeyEvent(input.KeyUp))
	if c.Input() != "snake" {
		t.Errorf("expected stored history, got %q", c.Input())
	}
}

func TestRedrawShowsTailAndPrompt(t *testing.T) {
	c, term := newTestConsole(t, 20, 3)
	c.SetPrompt("> ")
	for i := 0; i < 5; i++ {
		c.Println(strings.Repeat(string(rune('a'+i)), 3))
	}
	typeString(c, "hi")
	c.Redraw()

	got := []string{rowText(term, 0), rowText(term, 1), rowText(term, 2)}
	want := []string{"ddd", "eee", "> hi"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("screen mismatch (-want +got):\n%s", diff)
	}

	row, col, visible := term.Cursor()
	if row != 2 || col != 4 || !visible {
		t.Errorf("cursor at %d,%d visible=%v", row, col, visible)
	}
	if fg := term.Cell(2, 0).Fg; fg != testPalette.Prompt {
		t.Errorf("prompt color %v", fg)
	}
	if fg := term.Cell(2, 2).Fg; fg != testPalette.Text {
		t.Errorf("input color %v", fg)
	}
}

func TestRedrawReflowsOnResize(t *testing.T) {
	c, term := newTestConsole(t, 10, 5)
	c.ShowInput(false)
	c.Println("0123456789abcde")
	c.Redraw()
	if rowText(term, 0) != "0123456789" || rowText(term, 1) != "abcde" {
		t.Fatalf("wrap at 10: %q %q", rowText(term, 0), rowText(term, 1))
	}

	term.Resize(grid.Viewport{Width: 5, Height: 5})
	c.Invalidate()
	c.Redraw()
	want := []string{"01234", "56789", "abcde"}
	for i, w := range want {
		if got := rowText(term, i); got != w {
			t.Errorf("row %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestWideGlyphsWrapWhole(t *testing.T) {
	rows := wrap(shape("ab漢字", 0), 4)
	if len(rows) != 2 || len(rows[0]) != 3 || rows[1][0].r != '字' {
		t.Errorf("unexpected wrap %v", rows)
	}
	if Width("漢字") != 4 {
		t.Errorf("expected width 4, got %d", Width("漢字"))
	}
	// Combining mark joins its base: one cell
	if Width("é") != 1 {
		t.Errorf("expected combined width 1, got %d", Width("é"))
	}
}

func TestCursorBlinks(t *testing.T) {
	c, term := newTestConsole(t, 10, 2)
	c.Redraw()
	if _, _, v := term.Cursor(); !v {
		t.Fatal("cursor hidden at start")
	}
	c.Tick(blinkPeriod)
	c.Redraw()
	if _, _, v := term.Cursor(); v {
		t.Error("cursor should blink off")
	}
	c.Key(input.RuneEvent('x'))
	c.Redraw()
	if _, _, v := term.Cursor(); !v {
		t.Error("typing should show the cursor")
	}

	c.SetActive(false)
	c.Tick(time.Millisecond)
	c.Redraw()
	if _, _, v := term.Cursor(); v {
		t.Error("inactive console must hide the cursor")
	}
}

func TestScrollbackBounded(t *testing.T) {
	c, _ := newTestConsole(t, 10, 2)
	c.SetScrollback(3)
	for i := 0; i < 10; i++ {
		c.Println("x")
	}
	if n := len(c.Lines()); n != 3 {
		t.Errorf("expected 3 lines, got %d", n)
	}
	c.Key(input.KeyEvent(input.KeyCtrlL))
	if n := len(c.Lines()); n != 0 {
		t.Errorf("Ctrl+L should clear, got %d", n)
	}
}

func TestTabCompletion(t *testing.T) {
	c, _ := newTestConsole(t, 40, 5)
	c.SetCompleter(func(line string) []string {
		switch line {
		case "sn":
			return []string{"snake"}
		case "cat r":
			return []string{"readme.txt", "resume.txt"}
		}
		return nil
	})

	typeString(c, "sn")
	c.Key(input.KeyEvent(input.KeyTab))
	if c.Input() != "snake" {
		t.Errorf("single candidate: got %q", c.Input())
	}

	c.Key(input.KeyEvent(input.KeyCtrlU))
	typeString(c, "cat r")
	c.Key(input.KeyEvent(input.KeyTab))
	lines := c.Lines()
	if c.Input() != "cat r" || len(lines) == 0 || lines[len(lines)-1].Text != "readme.txt  resume.txt" {
		t.Errorf("multiple candidates: input %q lines %v", c.Input(), lines)
	}
}
