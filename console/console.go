// Package console is the line discipline between the shell and the grid:
// scrollback, prompt, line editing, command history and the blinking cursor.
// All methods run on the loop goroutine.
package console

import (
	"log"
	"slices"
	"strings"
	"time"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/history"
	"github.com/lixenwraith/phosphor/input"
)

const (
	defaultScrollback = 1000
	historyLoad       = 500
	blinkPeriod       = 530 * time.Millisecond
)

// Line is one output line of the scrollback
type Line struct {
	Text string
	Fg   core.RGB
}

// Palette holds the console colors
type Palette struct {
	Text   core.RGB
	Prompt core.RGB
	Error  core.RGB
	Accent core.RGB
}

// Completer proposes completions for the word ending at the cursor
type Completer func(line string) []string

// Console renders shell output and edits the input line
type Console struct {
	term  *grid.Terminal
	store history.Store
	pal   Palette

	lines []Line
	limit int

	prompt   string
	input    []rune
	cursor   int
	showLine bool

	hist    []string
	histIdx int
	draft   []rune

	complete Completer

	blink  time.Duration
	dirty  bool
	active bool
}

// New creates a console drawing into term. store may be nil.
func New(term *grid.Terminal, store history.Store, pal Palette) *Console {
	c := &Console{
		term:     term,
		store:    store,
		pal:      pal,
		limit:    defaultScrollback,
		showLine: true,
		active:   true,
		dirty:    true,
	}
	if store != nil {
		cmds, err := store.Cmds(historyLoad)
		if err != nil {
			log.Printf("console: load history: %v", err)
		}
		for _, cmd := range cmds {
			c.hist = append(c.hist, cmd.Text)
		}
	}
	c.histIdx = len(c.hist)
	return c
}

// SetScrollback bounds the number of retained output lines
func (c *Console) SetScrollback(n int) {
	if n <= 0 {
		n = defaultScrollback
	}
	c.limit = n
	c.trim()
}

// SetPalette replaces the colors of subsequent output and the prompt
func (c *Console) SetPalette(p Palette) {
	c.pal = p
	c.dirty = true
}

// Palette returns the current colors
func (c *Console) Palette() Palette { return c.pal }

// SetCompleter installs the Tab completion source
func (c *Console) SetCompleter(fn Completer) { c.complete = fn }

// SetPrompt sets the prompt string shown before the input line
func (c *Console) SetPrompt(p string) {
	c.prompt = p
	c.dirty = true
}

// ShowInput toggles the prompt line; hidden while a command runs
func (c *Console) ShowInput(on bool) {
	c.showLine = on
	c.dirty = true
}

// SetActive toggles cursor drawing when focus changes
func (c *Console) SetActive(on bool) {
	c.active = on
	c.blink = 0
	c.dirty = true
}

// Print appends text in color fg; embedded newlines start new lines
func (c *Console) Print(text string, fg core.RGB) {
	for _, l := range strings.Split(text, "\n") {
		c.lines = append(c.lines, Line{Text: l, Fg: fg})
	}
	c.trim()
	c.dirty = true
}

// Println prints in the text color
func (c *Console) Println(text string) { c.Print(text, c.pal.Text) }

// Errorln prints in the error color
func (c *Console) Errorln(text string) { c.Print(text, c.pal.Error) }

// Lines returns a copy of the scrollback
func (c *Console) Lines() []Line { return slices.Clone(c.lines) }

// ClearScreen drops the scrollback
func (c *Console) ClearScreen() {
	c.lines = c.lines[:0]
	c.dirty = true
}

func (c *Console) trim() {
	if over := len(c.lines) - c.limit; over > 0 {
		c.lines = slices.Delete(c.lines, 0, over)
	}
}

// Input returns the current input line
func (c *Console) Input() string { return string(c.input) }

// History returns the known commands, oldest first
func (c *Console) History() []string { return slices.Clone(c.hist) }

// Key edits the input line. It returns the submitted line and true on Enter.
func (c *Console) Key(ev input.Event) (string, bool) {
	c.blink = 0
	c.dirty = true

	switch ev.Type {
	case input.EventPaste:
		c.insert(strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' || r == '\t' {
				return ' '
			}
			return r
		}, ev.Text))
		return "", false
	case input.EventKey:
	default:
		return "", false
	}

	switch ev.Key {
	case input.KeyRune:
		c.insert(string(ev.Rune))
	case input.KeyEnter:
		return c.submit(), true
	case input.KeyBackspace, input.KeyCtrlH:
		if c.cursor > 0 {
			c.input = slices.Delete(c.input, c.cursor-1, c.cursor)
			c.cursor--
		}
	case input.KeyDelete, input.KeyCtrlD:
		if c.cursor < len(c.input) {
			c.input = slices.Delete(c.input, c.cursor, c.cursor+1)
		}
	case input.KeyLeft, input.KeyCtrlB:
		c.cursor = max(c.cursor-1, 0)
	case input.KeyRight, input.KeyCtrlF:
		c.cursor = min(c.cursor+1, len(c.input))
	case input.KeyHome, input.KeyCtrlA:
		c.cursor = 0
	case input.KeyEnd, input.KeyCtrlE:
		c.cursor = len(c.input)
	case input.KeyCtrlU:
		c.input = slices.Delete(c.input, 0, c.cursor)
		c.cursor = 0
	case input.KeyCtrlK:
		c.input = c.input[:c.cursor]
	case input.KeyCtrlW:
		c.deleteWord()
	case input.KeyCtrlL:
		c.ClearScreen()
	case input.KeyCtrlC:
		c.lines = append(c.lines, Line{Text: c.prompt + string(c.input) + "^C", Fg: c.pal.Text})
		c.trim()
		c.reset()
	case input.KeyUp, input.KeyCtrlP:
		c.historyMove(-1)
	case input.KeyDown, input.KeyCtrlN:
		c.historyMove(1)
	case input.KeyTab:
		c.tab()
	}
	return "", false
}

func (c *Console) insert(s string) {
	rs := []rune(s)
	c.input = slices.Insert(c.input, c.cursor, rs...)
	c.cursor += len(rs)
}

func (c *Console) deleteWord() {
	i := c.cursor
	for i > 0 && c.input[i-1] == ' ' {
		i--
	}
	for i > 0 && c.input[i-1] != ' ' {
		i--
	}
	c.input = slices.Delete(c.input, i, c.cursor)
	c.cursor = i
}

func (c *Console) reset() {
	c.input = c.input[:0]
	c.cursor = 0
	c.draft = nil
	c.histIdx = len(c.hist)
}

// submit echoes the line into the scrollback and records it in history
func (c *Console) submit() string {
	line := string(c.input)
	c.lines = append(c.lines, Line{Text: c.prompt + line, Fg: c.pal.Text})
	c.trim()

	if cmd := strings.TrimSpace(line); cmd != "" && (len(c.hist) == 0 || c.hist[len(c.hist)-1] != cmd) {
		c.hist = append(c.hist, cmd)
		if c.store != nil {
			if _, err := c.store.AddCmd(cmd); err != nil {
				log.Printf("console: save history: %v", err)
			}
		}
	}
	c.reset()
	return line
}

func (c *Console) historyMove(delta int) {
	next := c.histIdx + delta
	if next < 0 || next > len(c.hist) {
		return
	}
	if c.histIdx == len(c.hist) {
		c.draft = slices.Clone(c.input)
	}
	c.histIdx = next
	if next == len(c.hist) {
		c.input = slices.Clone(c.draft)
	} else {
		c.input = []rune(c.hist[next])
	}
	c.cursor = len(c.input)
}

func (c *Console) tab() {
	if c.complete == nil {
		return
	}
	head := string(c.input[:c.cursor])
	cands := c.complete(head)
	switch len(cands) {
	case 0:
		return
	case 1:
		start := strings.LastIndexByte(head, ' ') + 1
		c.input = slices.Concat([]rune(head[:start]), []rune(cands[0]), c.input[c.cursor:])
		c.cursor = len([]rune(head[:start])) + len([]rune(cands[0]))
	default:
		c.lines = append(c.lines, Line{Text: c.prompt + string(c.input), Fg: c.pal.Text})
		c.lines = append(c.lines, Line{Text: strings.Join(cands, "  "), Fg: c.pal.Accent})
		c.trim()
	}
}

// Tick advances the cursor blink
func (c *Console) Tick(dt time.Duration) {
	before := c.blinkOn()
	c.blink += dt
	if c.blinkOn() != before {
		c.dirty = true
	}
}

func (c *Console) blinkOn() bool {
	return c.active && (c.blink/blinkPeriod)%2 == 0
}

// Invalidate forces the next Redraw, e.g. after a resize or a game
func (c *Console) Invalidate() { c.dirty = true }

// Redraw lays out the visible tail of the scrollback and the input line.
// Lines are wrapped at the current grid width, so a resize reflows them.
func (c *Console) Redraw() {
	if !c.dirty {
		return
	}
	c.dirty = false

	cols, rows := c.term.Size()
	c.term.Clear()
	if cols == 0 || rows == 0 {
		return
	}

	// glyphs before split are drawn in the prompt color
	type row struct {
		gs    []glyph
		fg    core.RGB
		split int
	}
	var out []row

	for _, l := range c.lines {
		for _, r := range wrap(shape(l.Text, 0), cols) {
			out = append(out, row{gs: r, fg: l.Fg})
		}
	}

	curRow, curCol := -1, 0
	if c.showLine {
		promptGs := shape(c.prompt, 0)
		before := shape(string(c.input[:c.cursor]), 0)
		after := shape(string(c.input[c.cursor:]), 0)
		wrapped := wrap(slices.Concat(promptGs, before, after), cols)

		// cursor sits after prompt+before
		n := len(promptGs) + len(before)
		for i, r := range wrapped {
			if n <= len(r) {
				curRow = len(out) + i
				for _, g := range r[:n] {
					curCol += g.w
				}
				if curCol >= cols {
					curRow++
					curCol = 0
				}
				break
			}
			n -= len(r)
		}

		promptLeft := len(promptGs)
		for _, r := range wrapped {
			split := min(promptLeft, len(r))
			promptLeft -= split
			out = append(out, row{gs: r, fg: c.pal.Text, split: split})
		}
		if curRow >= len(out) {
			out = append(out, row{})
		}
	}

	skip := max(len(out)-rows, 0)
	for i, r := range out[skip:] {
		col := 0
		for j, g := range r.gs {
			fg := r.fg
			if j < r.split {
				fg = c.pal.Prompt
			}
			c.term.Write(i, col, g.r, fg)
			col += g.w
		}
	}

	c.term.SetCursor(curRow-skip, curCol, curRow >= skip && c.blinkOn())
}
