package view

import (
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/sperling/internal/grid"
)

// Layout holds the cell metrics used to place a grid on the canvas.
type Layout struct {
	ColGap int
	RowGap int
}

// DefaultLayout spaces columns by one cell and rows by one blank line.
var DefaultLayout = Layout{ColGap: 1, RowGap: 1}

// CellWidth returns the display width of the widest character in g.
func (l Layout) CellWidth(g *grid.Grid) int {
	w := 1
	for _, r := range g.Cells() {
		if rw := runewidth.RuneWidth(r); rw > w {
			w = rw
		}
	}
	return w
}

// Size returns the width and height g occupies.
func (l Layout) Size(g *grid.Grid) (int, int) {
	cw := l.CellWidth(g)
	w := g.Columns()*cw + (g.Columns()-1)*l.ColGap
	h := g.Rows() + (g.Rows()-1)*l.RowGap
	return w, h
}

// CellPos returns the canvas offset of row, col relative to the grid origin.
func (l Layout) CellPos(g *grid.Grid, row, col int) (int, int) {
	cw := l.CellWidth(g)
	return col * (cw + l.ColGap), row * (1 + l.RowGap)
}

// Centered returns the top-left position that centers a w×h box on c,
// shifted down by yOffset rows.
func Centered(c *Canvas, w, h, yOffset int) (int, int) {
	cw, ch := c.Size()
	return (cw - w) / 2, (ch-h)/2 + yOffset
}
