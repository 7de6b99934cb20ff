package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/sperling/internal/view"
)

var (
	whiteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	grayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	blackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

func styleFor(c view.Color) lipgloss.Style {
	switch c {
	case view.ColorWhite:
		return whiteStyle
	case view.ColorGray:
		return grayStyle
	case view.ColorGreen:
		return greenStyle
	case view.ColorRed:
		return redStyle
	case view.ColorYellow:
		return yellowStyle
	default:
		return blackStyle
	}
}

// styledRun is a stretch of same-colored cells rendered in one pass.
type styledRun struct {
	text  string
	fg    view.Color
	width int
}

func buildRuns(cells []view.Cell) []styledRun {
	var runs []styledRun
	for _, c := range cells {
		if c.Ch == 0 {
			// Trailing half of a wide character.
			continue
		}
		ch := c.Ch
		fg := c.Fg
		if ch == ' ' {
			fg = view.ColorBlack
		}
		if n := len(runs); n > 0 && runs[n-1].fg == fg {
			runs[n-1].text += string(ch)
			runs[n-1].width += runewidth.RuneWidth(ch)
			continue
		}
		runs = append(runs, styledRun{text: string(ch), fg: fg, width: runewidth.RuneWidth(ch)})
	}
	return runs
}

func renderRuns(runs []styledRun) string {
	var b strings.Builder
	for _, r := range runs {
		if r.fg == view.ColorBlack {
			b.WriteString(strings.Repeat(" ", r.width))
			continue
		}
		b.WriteString(styleFor(r.fg).Render(r.text))
	}
	return b.String()
}

func renderFrame(f view.Frame) string {
	if f.Width == 0 || f.Height == 0 {
		return ""
	}
	lines := make([]string, f.Height)
	for y := 0; y < f.Height; y++ {
		lines[y] = renderRuns(buildRuns(f.Cells[y*f.Width : (y+1)*f.Width]))
	}
	return strings.Join(lines, "\n")
}
