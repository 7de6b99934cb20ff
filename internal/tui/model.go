// Package tui presents trial frames in the terminal with Bubble Tea and feeds
// key presses back to the trial engine.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/sperling/internal/input"
	"github.com/verte-zerg/sperling/internal/view"
)

type frameMsg view.Frame

type doneMsg struct{}

// Model implements the Bubble Tea trial display.
type Model struct {
	queue *input.Queue
	keys  keyMap
	help  help.Model

	frame    view.Frame
	hasFrame bool

	width  int
	height int
}

// NewModel constructs a display model that pushes events to queue.
func NewModel(queue *input.Queue) *Model {
	h := help.New()
	h.Styles.ShortKey = footerStyle
	h.Styles.ShortDesc = footerStyle
	h.Styles.ShortSeparator = footerStyle
	return &Model{queue: queue, keys: defaultKeyMap(), help: h}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.queue.Push(input.Event{Type: input.Resize})
		return m, nil
	case tea.KeyMsg:
		for _, ev := range m.keys.translate(msg) {
			m.queue.Push(ev)
		}
		return m, nil
	case frameMsg:
		m.frame = view.Frame(msg)
		m.hasFrame = true
		return m, nil
	case doneMsg:
		return m, tea.Quit
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.hasFrame {
		return ""
	}
	content := renderFrame(m.frame)
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if status := strings.TrimSpace(m.frame.Status); status != "" {
		segments = append(segments, footerStyle.Render(status))
	}
	segments = append(segments, m.help.View(m.keys))
	return strings.Join(segments, "   ")
}
