package view

import (
	"github.com/verte-zerg/sperling/internal/grid"
)

// GridView draws a grid with per-cell colors. Draw uses the cache built by
// the last Refresh, so edits become visible only after Refresh.
type GridView struct {
	grid    *grid.Grid
	layout  Layout
	yOffset int
	colors  []Color
	cache   []Cell
}

// NewGridView returns a view of g in the default color, centered and shifted
// down by yOffset rows.
func NewGridView(g *grid.Grid, layout Layout, yOffset int) *GridView {
	v := &GridView{
		grid:    g,
		layout:  layout,
		yOffset: yOffset,
		colors:  make([]Color, g.Len()),
	}
	for i := range v.colors {
		v.colors[i] = ColorWhite
	}
	v.Refresh()
	return v
}

// Grid returns the viewed grid.
func (v *GridView) Grid() *grid.Grid { return v.grid }

// SetColor sets the color of one cell.
func (v *GridView) SetColor(row, col int, c Color) {
	v.colors[row*v.grid.Columns()+col] = c
}

// ColorAt returns the color of one cell.
func (v *GridView) ColorAt(row, col int) Color {
	return v.colors[row*v.grid.Columns()+col]
}

// SetActive marks or unmarks the active response cell.
func (v *GridView) SetActive(row, col int, active bool) {
	if active {
		v.SetColor(row, col, ColorYellow)
		return
	}
	v.SetColor(row, col, ColorWhite)
}

// Refresh rebuilds the visual cache from the grid and colors.
func (v *GridView) Refresh() {
	chars := v.grid.Cells()
	if len(v.cache) != len(chars) {
		v.cache = make([]Cell, len(chars))
	}
	for i, ch := range chars {
		v.cache[i] = Cell{Ch: ch, Fg: v.colors[i]}
	}
}

// Origin returns the top-left canvas position of the grid.
func (v *GridView) Origin(c *Canvas) (int, int) {
	w, h := v.layout.Size(v.grid)
	return Centered(c, w, h, v.yOffset)
}

// Draw paints the cached cells onto c.
func (v *GridView) Draw(c *Canvas) {
	ox, oy := v.Origin(c)
	cols := v.grid.Columns()
	for i, cell := range v.cache {
		dx, dy := v.layout.CellPos(v.grid, i/cols, i%cols)
		c.Text(ox+dx, oy+dy, string(cell.Ch), cell.Fg)
	}
}

// MaskRenderer fills the canvas with a solid color.
type MaskRenderer struct {
	Canvas *Canvas
	Color  Color
}

// Render fills the canvas.
func (r MaskRenderer) Render() {
	r.Canvas.Fill(r.Color)
}

// CrosshairRenderer draws a centered fixation cross without clearing the canvas.
type CrosshairRenderer struct {
	Canvas *Canvas
	Size   int
	Color  Color
}

// Render draws the cross.
func (r CrosshairRenderer) Render() {
	size := r.Size
	if size < 1 {
		size = 1
	}
	half := size / 2
	w, h := r.Canvas.Size()
	cx, cy := w/2, h/2
	for dx := -size; dx <= size; dx++ {
		r.Canvas.Put(cx+dx, cy, '─', r.Color)
	}
	for dy := -half; dy <= half; dy++ {
		r.Canvas.Put(cx, cy+dy, '│', r.Color)
	}
	r.Canvas.Put(cx, cy, '┼', r.Color)
}

// GridRenderer clears the canvas and draws a grid view.
type GridRenderer struct {
	Canvas *Canvas
	View   *GridView
}

// Render draws the grid.
func (r GridRenderer) Render() {
	r.Canvas.Fill(ColorBlack)
	r.View.Draw(r.Canvas)
}

// FeedbackRenderer colors each response cell green when it matches the correct
// grid and red otherwise.
type FeedbackRenderer struct {
	Canvas  *Canvas
	View    *GridView
	Correct *grid.Grid
}

// Render recolors and draws the response grid.
func (r FeedbackRenderer) Render() {
	actual := r.View.Grid()
	for i := 0; i < r.Correct.Rows() && i < actual.Rows(); i++ {
		for j := 0; j < r.Correct.Columns() && j < actual.Columns(); j++ {
			c := ColorRed
			if actual.At(i, j) == r.Correct.At(i, j) {
				c = ColorGreen
			}
			r.View.SetColor(i, j, c)
		}
	}
	r.View.Refresh()
	r.Canvas.Fill(ColorBlack)
	r.View.Draw(r.Canvas)
}

// CueArrow is drawn to the left of each stimulus row during the cue phase.
const CueArrow = "──▶"

// CueRenderer draws one arrow per stimulus row, the cued row highlighted.
// The stimulus itself stays hidden.
type CueRenderer struct {
	Canvas   *Canvas
	Stimulus *GridView
	CueRow   int
}

// Render draws the arrows at the stimulus rows' positions.
func (r CueRenderer) Render() {
	r.Canvas.Fill(ColorBlack)
	g := r.Stimulus.Grid()
	ox, oy := r.Stimulus.Origin(r.Canvas)
	x := ox - len([]rune(CueArrow)) - 1
	for row := 0; row < g.Rows(); row++ {
		_, dy := r.Stimulus.layout.CellPos(g, row, 0)
		c := ColorGray
		if row == r.CueRow {
			c = ColorGreen
		}
		r.Canvas.Text(x, oy+dy, CueArrow, c)
	}
}
