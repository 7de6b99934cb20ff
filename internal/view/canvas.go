// Package view draws phases onto a character canvas. Turning a canvas frame
// into terminal output is the job of the tui package.
package view

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Color is a logical cell color.
type Color uint8

const (
	ColorBlack Color = iota
	ColorWhite
	ColorGray
	ColorGreen
	ColorRed
	ColorYellow
)

// Cell is one character cell of the canvas.
type Cell struct {
	Ch rune
	Fg Color
	Bg Color
}

// Frame is an immutable snapshot of the canvas taken at flip time.
type Frame struct {
	Width  int
	Height int
	Cells  []Cell
	Status string
	Seq    int
}

// Line returns the characters of row y.
func (f Frame) Line(y int) string {
	var b strings.Builder
	for _, c := range f.Cells[y*f.Width : (y+1)*f.Width] {
		if c.Ch != 0 {
			b.WriteRune(c.Ch)
		}
	}
	return b.String()
}

// Sink receives flipped frames.
type Sink interface {
	Present(Frame)
}

// Canvas is the drawing surface shared by a trial's renderers.
type Canvas struct {
	width  int
	height int
	cells  []Cell
	status string
	sink   Sink
	flips  int
}

// NewCanvas returns a black canvas. sink may be nil.
func NewCanvas(width, height int, sink Sink) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &Canvas{width: width, height: height, cells: make([]Cell, width*height), sink: sink}
	c.Fill(ColorBlack)
	return c
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (int, int) { return c.width, c.height }

// Fill clears every cell to bg.
func (c *Canvas) Fill(bg Color) {
	for i := range c.cells {
		c.cells[i] = Cell{Ch: ' ', Fg: ColorWhite, Bg: bg}
	}
}

// Put writes ch at x, y. Writes outside the canvas are dropped.
func (c *Canvas) Put(x, y int, ch rune, fg Color) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	i := y*c.width + x
	c.cells[i] = Cell{Ch: ch, Fg: fg, Bg: c.cells[i].Bg}
}

// Text writes s starting at x, y and returns the x after the last character.
// Wide characters occupy two cells; the second is left empty.
func (c *Canvas) Text(x, y int, s string, fg Color) int {
	for _, r := range s {
		c.Put(x, y, r, fg)
		w := runewidth.RuneWidth(r)
		if w == 2 && x+1 >= 0 && x+1 < c.width && y >= 0 && y < c.height {
			c.cells[y*c.width+x+1].Ch = 0
		}
		if w < 1 {
			w = 1
		}
		x += w
	}
	return x
}

// SetStatus sets the status line shown under the canvas.
func (c *Canvas) SetStatus(s string) { c.status = s }

// Flip publishes the current contents to the sink.
func (c *Canvas) Flip() {
	c.flips++
	if c.sink != nil {
		c.sink.Present(c.Snapshot())
	}
}

// Flips returns how many frames have been flipped.
func (c *Canvas) Flips() int { return c.flips }

// Snapshot copies the current contents.
func (c *Canvas) Snapshot() Frame {
	cells := make([]Cell, len(c.cells))
	copy(cells, c.cells)
	return Frame{Width: c.width, Height: c.height, Cells: cells, Status: c.status, Seq: c.flips}
}
