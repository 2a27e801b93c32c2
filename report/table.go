package report

import (
	"io"
	"strings"

	"github.com/bjaus/stdio"
	"github.com/mattn/go-runewidth"
)

// maxBackendWidth caps the backend column; longer names are truncated.
const maxBackendWidth = 12

// Rule positions within a frame.
const (
	ruleTop = iota
	ruleMid
	ruleBottom
)

// frame holds the glyphs of a bordered table. corners is indexed by rule
// position, then by left edge, column join and right edge.
type frame struct {
	fill, bar string
	corners   [3][3]string
}

var frames = map[BorderStyle]frame{
	BorderRounded: {fill: "─", bar: "│", corners: [3][3]string{
		{"╭", "┬", "╮"},
		{"├", "┼", "┤"},
		{"╰", "┴", "╯"},
	}},
	BorderASCII: {fill: "-", bar: "|", corners: [3][3]string{
		{"+", "+", "+"},
		{"+", "+", "+"},
		{"+", "+", "+"},
	}},
}

// grid writes table lines to w and keeps the first write error.
type grid struct {
	w      io.Writer
	widths []int
	err    error
}

func writeTable(w io.Writer, infos []stdio.StreamInfo, o options) error {
	if len(infos) == 0 {
		return nil
	}
	body := rows(infos)
	g := &grid{w: w, widths: columnWidths(header, body)}
	g.widths[1] = min(g.widths[1], maxBackendWidth)

	if o.border == BorderNone {
		g.plain(body)
		return g.err
	}
	f, ok := frames[o.border]
	if !ok {
		f = frames[BorderRounded]
	}
	g.framed(f, o.title, body)
	return g.err
}

// plain lays the table out with two-space gutters and a dashed rule under
// the header.
func (g *grid) plain(body [][]string) {
	dashes := make([]string, len(g.widths))
	for i, n := range g.widths {
		dashes[i] = strings.Repeat("-", n)
	}
	g.line(strings.TrimRight(g.cells(header, "  "), " "))
	g.line(strings.Join(dashes, "  "))
	for _, r := range body {
		g.line(strings.TrimRight(g.cells(r, "  "), " "))
	}
}

func (g *grid) framed(f frame, title string, body [][]string) {
	if title != "" {
		c := f.corners[ruleTop]
		g.rule(f.fill, c[0], f.fill, c[2])
		g.line(f.bar + " " + pad(title, innerWidth(g.widths)-2, AlignCenter) + " " + f.bar)
		c = f.corners[ruleMid]
		g.rule(f.fill, c[0], f.corners[ruleTop][1], c[2])
	} else {
		c := f.corners[ruleTop]
		g.rule(f.fill, c[0], c[1], c[2])
	}

	row := func(cells []string) {
		g.line(f.bar + " " + g.cells(cells, " "+f.bar+" ") + " " + f.bar)
	}
	row(header)
	c := f.corners[ruleMid]
	g.rule(f.fill, c[0], c[1], c[2])
	for _, r := range body {
		row(r)
	}
	c = f.corners[ruleBottom]
	g.rule(f.fill, c[0], c[1], c[2])
}

// cells fits each cell to its column and joins them with sep.
func (g *grid) cells(cells []string, sep string) string {
	out := make([]string, len(g.widths))
	for i, n := range g.widths {
		out[i] = fit(cells[i], n, aligns[i])
	}
	return strings.Join(out, sep)
}

// rule draws a horizontal line spanning each cell and its padding.
func (g *grid) rule(fill, left, join, right string) {
	segs := make([]string, len(g.widths))
	for i, n := range g.widths {
		segs[i] = strings.Repeat(fill, n+2)
	}
	g.line(left + strings.Join(segs, join) + right)
}

func (g *grid) line(s string) {
	if g.err != nil {
		return
	}
	_, g.err = io.WriteString(g.w, s+"\n")
}

// columnWidths returns the display width of the widest cell per column.
func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(r[i]))
		}
	}
	return widths
}

// innerWidth is the span between the outer bars: every cell with one space
// either side, plus one bar between neighbours.
func innerWidth(widths []int) int {
	if len(widths) == 0 {
		return 0
	}
	n := len(widths) - 1
	for _, w := range widths {
		n += w + 2
	}
	return n
}

// fit truncates s to width, marking the cut with an ellipsis when there is
// room for one, then pads it.
func fit(s string, width int, align Alignment) string {
	if width > 0 && runewidth.StringWidth(s) > width {
		tail := "..."
		if width <= len(tail) {
			tail = ""
		}
		s = runewidth.Truncate(s, width, tail)
	}
	return pad(s, width, align)
}

// pad aligns s within width display columns. Wider strings are returned as is.
func pad(s string, width int, align Alignment) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
