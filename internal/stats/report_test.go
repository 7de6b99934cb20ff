package stats

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/sperling/internal/model"
	"github.com/verte-zerg/sperling/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "sperling.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Minute)
		id := fmt.Sprintf("session-%d", i)
		rec := model.SessionRecord{ID: id, Subject: "alice", StartedAt: start, EndedAt: start.Add(30 * time.Second)}
		trials := []model.TrialRecord{
			{Experiment: "whole", Trial: 1, ResponseTime: time.Second, Correct: "ABC", Actual: "AB?", NCorrect: 2, Cells: 3},
			{Experiment: "partial", Trial: 1, ResponseTime: time.Second, Correct: "DEF", Actual: "D??", NCorrect: 1, Cells: 3},
		}
		if err := st.InsertSession(ctx, rec, trials); err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Subject:     "alice",
		Last:        2,
		CurveWindow: 2,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 2 {
		t.Fatalf("expected 2 window session ids, got %d", len(report.WindowSessionIDs))
	}
	if len(report.ExperimentsAll) != 2 || report.ExperimentsAll[1].Trials != 2 {
		t.Fatalf("unexpected experiment aggregates %+v", report.ExperimentsAll)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Learning Curves", "Per-Experiment (Last 2 Sessions)", "Weakest recent experiment: partial"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}
