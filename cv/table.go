package cv

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	minColumn = 3
	ellipsis  = "…"
)

// Table renders header and rows as a bordered text table no wider than
// width cells. Wide columns are shrunk first and their cells truncated.
func Table(header []string, rows [][]string, width int) []string {
	if len(header) == 0 {
		return nil
	}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i := range widths {
			if i < len(r) {
				widths[i] = max(widths[i], runewidth.StringWidth(r[i]))
			}
		}
	}
	fit(widths, width)

	sep := separator(widths)
	out := []string{sep, line(header, widths), sep}
	for _, r := range rows {
		out = append(out, line(r, widths))
	}
	if len(rows) > 0 {
		out = append(out, sep)
	}
	return out
}

// total table width: "| " + cells joined by " | " + " |"
func tableWidth(widths []int) int {
	w := 1
	for _, c := range widths {
		w += c + 3
	}
	return w
}

// fit shrinks the widest column until the table fits or nothing can shrink
func fit(widths []int, limit int) {
	if limit <= 0 {
		return
	}
	for tableWidth(widths) > limit {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumn {
			return
		}
		widths[widest]--
	}
}

func separator(widths []int) string {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteByte('+')
	}
	return sb.String()
}

func line(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteByte('|')
	for i, w := range widths {
		var c string
		if i < len(cells) {
			c = cells[i]
		}
		if runewidth.StringWidth(c) > w {
			c = runewidth.Truncate(c, w, ellipsis)
		}
		sb.WriteByte(' ')
		sb.WriteString(runewidth.FillRight(c, w))
		sb.WriteString(" |")
	}
	return sb.String()
}
