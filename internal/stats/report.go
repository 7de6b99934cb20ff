package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/sperling/internal/model"
	"github.com/verte-zerg/sperling/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions          []model.SessionAggregate
	WindowSessionIDs  []string
	ExperimentsAll    []model.ExperimentAggregate
	ExperimentsWindow []model.ExperimentAggregate
	CurveWindow       int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	expAll, err := st.ListExperimentAggregates(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	expWindow, err := st.ListExperimentAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:          sessions,
		WindowSessionIDs:  windowIDs,
		ExperimentsAll:    expAll,
		ExperimentsWindow: expWindow,
		CurveWindow:       cfg.CurveWindow,
	}, nil
}

// Render writes the full text report.
func (r Report) Render(w io.Writer) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Sessions, r.CurveWindow); err != nil {
		return err
	}
	if err := RenderExperimentTable(w, "Per-Experiment (All)", r.ExperimentsAll); err != nil {
		return err
	}
	if err := RenderExperimentTable(w, fmt.Sprintf("Per-Experiment (Last %d Sessions)", len(r.WindowSessionIDs)), r.ExperimentsWindow); err != nil {
		return err
	}
	if weak := WeakestExperiments(r.ExperimentsWindow, 1); len(weak) > 0 {
		if _, err := fmt.Fprintf(w, "Weakest recent experiment: %s\n", weak[0]); err != nil {
			return err
		}
	}
	return nil
}

func sessionIDs(sessions []model.SessionAggregate) []string {
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []string {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
