package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/sperling/internal/input"
)

type keyMap struct {
	Quit   key.Binding
	Abort  key.Binding
	Submit key.Binding
	Erase  key.Binding
	Delete key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Unsure key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Abort:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "abort")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		Erase:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("bksp", "erase")),
		Delete: key.NewBinding(key.WithKeys("delete")),
		Up:     key.NewBinding(key.WithKeys("up")),
		Down:   key.NewBinding(key.WithKeys("down")),
		Left:   key.NewBinding(key.WithKeys("left")),
		Right:  key.NewBinding(key.WithKeys("right"), key.WithHelp("←↑↓→", "move")),
		Unsure: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "unsure")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Right, k.Unsure, k.Erase, k.Submit, k.Abort}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Quit}}
}

// translate turns a terminal key message into engine events.
func (k keyMap) translate(msg tea.KeyMsg) []input.Event {
	switch {
	case key.Matches(msg, k.Quit):
		return []input.Event{input.QuitEvent()}
	case key.Matches(msg, k.Abort):
		return []input.Event{input.Press(input.KeyEscape)}
	case key.Matches(msg, k.Submit):
		return []input.Event{input.Press(input.KeyReturn)}
	case key.Matches(msg, k.Erase):
		return []input.Event{input.Press(input.KeyBackspace)}
	case key.Matches(msg, k.Delete):
		return []input.Event{input.Press(input.KeyDelete)}
	case key.Matches(msg, k.Up):
		return []input.Event{input.Press(input.KeyUp)}
	case key.Matches(msg, k.Down):
		return []input.Event{input.Press(input.KeyDown)}
	case key.Matches(msg, k.Left):
		return []input.Event{input.Press(input.KeyLeft)}
	case key.Matches(msg, k.Right):
		return []input.Event{input.Press(input.KeyRight)}
	}
	switch msg.Type {
	case tea.KeySpace:
		return []input.Event{input.Press(input.KeySpace)}
	case tea.KeyTab:
		return []input.Event{input.Press(input.KeyTab)}
	case tea.KeyRunes:
		out := make([]input.Event, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			ev := input.Char(r)
			if msg.Alt {
				ev.Mods |= input.ModAlt
			}
			out = append(out, ev)
		}
		return out
	}
	return nil
}
