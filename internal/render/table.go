package render

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sgrPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// visibleWidth counts runes, skipping color escapes.
func visibleWidth(s string) int {
	return utf8.RuneCountInString(sgrPattern.ReplaceAllString(s, ""))
}

// table lays out rows in columns one space apart. Widths ignore color
// escapes, which tabwriter would count. The last column is never padded.
type table struct {
	rows [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	var widths []int
	for _, cells := range t.rows {
		for i, cell := range cells {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}
	return widths
}

// lines returns the formatted rows.
func (t *table) lines() []string {
	widths := t.widths()
	out := make([]string, 0, len(t.rows))
	for _, cells := range t.rows {
		var b strings.Builder
		for i, cell := range cells {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-visibleWidth(cell)))
			}
		}
		out = append(out, b.String())
	}
	return out
}

// width is the widest formatted row.
func (t *table) width() int {
	w := 0
	for _, line := range t.lines() {
		w = max(w, visibleWidth(line))
	}
	return w
}

// rule returns "── title " followed by rule characters up to width, with at
// least two of them.
func rule(title string, width int) string {
	head := ruleChar + ruleChar + " " + title + " "
	fill := max(width-visibleWidth(head), 2)
	return head + strings.Repeat(ruleChar, fill)
}
