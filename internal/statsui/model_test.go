package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/sperling/internal/model"
	"github.com/verte-zerg/sperling/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "sperling.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	now := time.Now().UTC()
	rec := model.SessionRecord{ID: "s1", Subject: "alice", StartedAt: now.Add(-time.Minute), EndedAt: now}
	trials := []model.TrialRecord{
		{Experiment: "whole-3x4", Trial: 1, ResponseTime: 900 * time.Millisecond, Correct: "ABCD/EFGH/JKLM", Actual: "AB??/????/????", NCorrect: 2, Cells: 12},
		{Experiment: "partial-3x4", Trial: 1, ResponseTime: 600 * time.Millisecond, Correct: "QRST", Actual: "QRS?", NCorrect: 3, Cells: 4},
	}
	if err := st.InsertSession(context.Background(), rec, trials); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return st
}

func TestModelRendersTabs(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if out := m.View(); !strings.Contains(out, "Sessions") || !strings.Contains(out, "Avg correct") {
		t.Fatalf("overview missing cards: %s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if out := m.View(); !strings.Contains(out, "whole-3x4") || !strings.Contains(out, "partial-3x4") {
		t.Fatalf("experiment table missing rows: %s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if out := m.View(); !strings.Contains(out, "QRST") {
		t.Fatalf("last session tab missing responses: %s", out)
	}
}

func TestExperimentTableWeakestFirst(t *testing.T) {
	tbl := buildExperimentTable([]model.ExperimentAggregate{
		{Experiment: "easy", Trials: 1, Correct: 4, Cells: 4},
		{Experiment: "hard", Trials: 1, Correct: 1, Cells: 4},
	}, 80, 10)
	rows := tbl.Rows()
	if len(rows) != 2 || rows[0][0] != "hard" {
		t.Fatalf("expected weakest first, got %v", rows)
	}
}

func TestParseFilter(t *testing.T) {
	inputs := make([]textinput.Model, 4)
	for i := range inputs {
		inputs[i] = textinput.New()
	}
	inputs[0].SetValue(" bob ")
	inputs[1].SetValue("2026-01-02")
	inputs[2].SetValue("3")
	inputs[3].SetValue("4")
	cfg, err := parseFilter(inputs)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Subject != "bob" || cfg.Since == nil || cfg.Last != 3 || cfg.CurveWindow != 4 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	inputs[3].SetValue("0")
	if _, err := parseFilter(inputs); err == nil {
		t.Fatalf("expected curve window error")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if got := nextCurveWindow(1); got != 5 {
		t.Fatalf("next(1) = %d", got)
	}
	if got := nextCurveWindow(7); got != 10 {
		t.Fatalf("next(7) = %d", got)
	}
	if got := prevCurveWindow(10); got != 5 {
		t.Fatalf("prev(10) = %d", got)
	}
	if got := prevCurveWindow(5); got != 1 {
		t.Fatalf("prev(5) = %d", got)
	}
}
