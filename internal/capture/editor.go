// Package capture turns key presses into edits of a response grid.
package capture

import (
	"github.com/verte-zerg/sperling/internal/grid"
	"github.com/verte-zerg/sperling/internal/input"
)

// View shows the response grid and marks the active cell.
type View interface {
	SetActive(row, col int, active bool)
	Refresh()
}

// Cursor is a position in the response grid.
type Cursor struct {
	Row int
	Col int
}

// Editor is the grid-edit event processor used by the response phase.
type Editor struct {
	grid     *grid.Grid
	view     View
	keymap   input.Keymap
	terminal input.Key
	cursor   Cursor
}

// NewEditor returns an editor with the cursor at (0,0) marked active.
func NewEditor(g *grid.Grid, view View, keymap input.Keymap, terminal input.Key) *Editor {
	e := &Editor{
		grid:     g,
		view:     view,
		keymap:   keymap,
		terminal: terminal,
	}
	if e.view != nil {
		e.view.SetActive(0, 0, true)
		e.view.Refresh()
	}
	return e
}

// Cursor returns the cursor position.
func (e *Editor) Cursor() Cursor { return e.cursor }

// Process applies ev to the grid and reports whether it is the terminal key.
func (e *Editor) Process(ev input.Event) bool {
	if ev.Type != input.KeyPress {
		return false
	}
	prev := e.cursor
	rows, cols := e.grid.Rows(), e.grid.Columns()

	if ch, ok := e.keymap.Lookup(ev); ok {
		e.grid.Set(e.cursor.Row, e.cursor.Col, ch)
		e.cursor.Col = wrap(e.cursor.Col+1, cols)
	} else if input.IsPlaceholder(ev) {
		e.grid.Set(e.cursor.Row, e.cursor.Col, grid.Placeholder)
		e.cursor.Col = wrap(e.cursor.Col+1, cols)
	} else {
		switch ev.Key {
		case input.KeyBackspace, input.KeyDelete:
			e.cursor.Col = wrap(e.cursor.Col-1, cols)
			e.grid.Set(e.cursor.Row, e.cursor.Col, grid.Placeholder)
		case input.KeyUp:
			e.cursor.Row = wrap(e.cursor.Row-1, rows)
		case input.KeyDown:
			e.cursor.Row = wrap(e.cursor.Row+1, rows)
		case input.KeyLeft:
			e.cursor.Col = wrap(e.cursor.Col-1, cols)
		case input.KeyRight:
			e.cursor.Col = wrap(e.cursor.Col+1, cols)
		}
	}

	if e.view != nil {
		e.view.SetActive(prev.Row, prev.Col, false)
		e.view.SetActive(e.cursor.Row, e.cursor.Col, true)
		e.view.Refresh()
	}
	return ev.Key == e.terminal
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
