// Package grid provides the rows×columns character buffer shared by stimulus and response.
package grid

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/sperling/internal/model"
)

// Placeholder marks an unanswered response cell.
const Placeholder = '?'

// RowSeparator separates rows in the string form of a grid.
const RowSeparator = "/"

// Grid is a row-major rows×columns buffer of single characters.
type Grid struct {
	rows  int
	cols  int
	cells []rune
}

// New returns a grid filled with fill.
func New(rows, cols int, fill rune) (*Grid, error) {
	if rows <= 0 {
		return nil, model.Invalid("rows", "must be > 0, got %d", rows)
	}
	if cols <= 0 {
		return nil, model.Invalid("columns", "must be > 0, got %d", cols)
	}
	cells := make([]rune, rows*cols)
	for i := range cells {
		cells[i] = fill
	}
	return &Grid{rows: rows, cols: cols, cells: cells}, nil
}

// FromRunes builds a grid from row-major cells.
func FromRunes(rows, cols int, cells []rune) (*Grid, error) {
	g, err := New(rows, cols, ' ')
	if err != nil {
		return nil, err
	}
	if len(cells) != rows*cols {
		return nil, model.Invalid("cells", "expected %d cells, got %d", rows*cols, len(cells))
	}
	copy(g.cells, cells)
	return g, nil
}

// Parse builds a grid from one string per row, e.g. Parse("AB", "CD").
func Parse(rows ...string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, model.Invalid("rows", "must be > 0, got 0")
	}
	width := len([]rune(rows[0]))
	cells := make([]rune, 0, width*len(rows))
	for i, row := range rows {
		r := []rune(row)
		if len(r) != width {
			return nil, model.Invalid("rows", "row %d has %d columns, want %d", i, len(r), width)
		}
		cells = append(cells, r...)
	}
	return FromRunes(len(rows), width, cells)
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Columns returns the number of columns.
func (g *Grid) Columns() int { return g.cols }

// Len returns rows*columns.
func (g *Grid) Len() int { return len(g.cells) }

// At returns the character at row, col.
func (g *Grid) At(row, col int) rune {
	return g.cells[g.index(row, col)]
}

// Set writes ch at row, col.
func (g *Grid) Set(row, col int, ch rune) {
	g.cells[g.index(row, col)] = ch
}

// Fill overwrites every cell with ch.
func (g *Grid) Fill(ch rune) {
	for i := range g.cells {
		g.cells[i] = ch
	}
}

// Row returns a copy of row i.
func (g *Grid) Row(i int) []rune {
	out := make([]rune, g.cols)
	copy(out, g.cells[i*g.cols:(i+1)*g.cols])
	return out
}

// RowGrid returns a new 1×columns grid holding a copy of row i.
func (g *Grid) RowGrid(i int) *Grid {
	return &Grid{rows: 1, cols: g.cols, cells: g.Row(i)}
}

// Cells returns a copy of the row-major cells.
func (g *Grid) Cells() []rune {
	out := make([]rune, len(g.cells))
	copy(out, g.cells)
	return out
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	return &Grid{rows: g.rows, cols: g.cols, cells: g.Cells()}
}

// SameShape reports whether both grids have equal dimensions.
func (g *Grid) SameShape(other *Grid) bool {
	return other != nil && g.rows == other.rows && g.cols == other.cols
}

// String renders rows joined by RowSeparator.
func (g *Grid) String() string {
	rows := make([]string, g.rows)
	for i := range rows {
		rows[i] = string(g.Row(i))
	}
	return strings.Join(rows, RowSeparator)
}

func (g *Grid) index(row, col int) int {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		panic(fmt.Sprintf("grid: cell (%d,%d) out of range %dx%d", row, col, g.rows, g.cols))
	}
	return row*g.cols + col
}
