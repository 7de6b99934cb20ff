package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/sperling/internal/input"
	"github.com/verte-zerg/sperling/internal/view"
)

func TestRenderFooterShowsStatusAndHelp(t *testing.T) {
	m := NewModel(input.NewQueue())
	m.frame = view.Frame{Status: "whole-3x4 · trial 2/10 · response"}
	out := m.renderFooter()
	if !containsAll(out, []string{"trial 2/10", "response", "enter", "unsure"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestUpdatePushesTranslatedKeys(t *testing.T) {
	q := input.NewQueue()
	m := NewModel(q)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b?")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	got := q.Poll()
	want := []input.Event{input.Char('b'), input.Char('?'), input.Press(input.KeyReturn), input.QuitEvent()}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestUpdateStoresFrameAndQuitsWhenDone(t *testing.T) {
	m := NewModel(input.NewQueue())
	c := view.NewCanvas(3, 1, nil)
	c.Text(0, 0, "ABC", view.ColorWhite)
	m.Update(frameMsg(c.Snapshot()))
	if !m.hasFrame || m.frame.Line(0) != "ABC" {
		t.Fatalf("expected frame to be stored, got %+v", m.frame)
	}
	if out := m.View(); !strings.Contains(out, "A") {
		t.Fatalf("expected view to render frame, got %q", out)
	}
	if _, cmd := m.Update(doneMsg{}); cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestTranslateArrowsAndEditing(t *testing.T) {
	k := defaultKeyMap()
	cases := []struct {
		msg  tea.KeyMsg
		want input.Key
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, input.KeyLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, input.KeyRight},
		{tea.KeyMsg{Type: tea.KeyUp}, input.KeyUp},
		{tea.KeyMsg{Type: tea.KeyDown}, input.KeyDown},
		{tea.KeyMsg{Type: tea.KeyBackspace}, input.KeyBackspace},
		{tea.KeyMsg{Type: tea.KeyDelete}, input.KeyDelete},
		{tea.KeyMsg{Type: tea.KeyEsc}, input.KeyEscape},
	}
	for _, tc := range cases {
		got := k.translate(tc.msg)
		if len(got) != 1 || !got[0].IsKey(tc.want) {
			t.Fatalf("%s: expected key %d, got %+v", tc.msg.String(), tc.want, got)
		}
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
