package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// column is one field of a plain-text report table. Numeric columns are
// right-aligned so decimal points line up across experiments.
type column struct {
	title   string
	numeric bool
}

var experimentColumns = []column{
	{title: "Experiment"},
	{title: "Trials", numeric: true},
	{title: "Avg Correct", numeric: true},
	{title: "Accuracy", numeric: true},
	{title: "Avg RT (ms)", numeric: true},
}

var seriesColumns = []column{
	{title: "Series"},
	{title: "Curve"},
	{title: "Min", numeric: true},
	{title: "Max", numeric: true},
	{title: "Last", numeric: true},
}

// writeTable prints the header and rows, one line each, with cells sized to
// the widest terminal rendering in their column. Missing cells print blank
// and cells beyond the last column are dropped.
func writeTable(w io.Writer, cols []column, rows [][]string) error {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	if err := writeTableLine(w, cols, widths, titles); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeTableLine(w, cols, widths, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTableLine(w io.Writer, cols []column, widths []int, cells []string) error {
	var b strings.Builder
	for i, c := range cols {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		gap := strings.Repeat(" ", max(0, widths[i]-runewidth.StringWidth(cell)))
		if c.numeric {
			b.WriteString(gap + cell)
		} else {
			b.WriteString(cell + gap)
		}
	}
	_, err := fmt.Fprintln(w, b.String())
	return err
}
