package console

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// glyph is one grapheme cluster placed on the grid: the base rune and the
// number of columns it covers (1 or 2)
type glyph struct {
	r rune
	w int
}

// shape splits s into grapheme clusters; tabs expand to the next multiple of 4
// columns, zero-width clusters and control characters are dropped
func shape(s string, startCol int) []glyph {
	out := make([]glyph, 0, len(s))
	col := startCol
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		r := []rune(cluster)[0]
		if r == '\t' {
			n := 4 - col%4
			for range n {
				out = append(out, glyph{' ', 1})
			}
			col += n
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		w := runewidth.StringWidth(cluster)
		if w <= 0 {
			continue
		}
		w = min(w, 2)
		out = append(out, glyph{r, w})
		col += w
	}
	return out
}

// wrap breaks glyphs into rows of at most cols columns; a wide glyph that
// does not fit moves to the next row. An empty input is one empty row.
func wrap(gs []glyph, cols int) [][]glyph {
	if cols <= 0 {
		return nil
	}
	rows := [][]glyph{nil}
	width := 0
	for _, g := range gs {
		if width+g.w > cols {
			rows = append(rows, nil)
			width = 0
		}
		last := len(rows) - 1
		rows[last] = append(rows[last], g)
		width += g.w
	}
	return rows
}

// Width returns the display width of s in columns
func Width(s string) int {
	w := 0
	for _, g := range shape(s, 0) {
		w += g.w
	}
	return w
}
