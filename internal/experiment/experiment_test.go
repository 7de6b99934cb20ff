package experiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/sperling/internal/charset"
	"github.com/verte-zerg/sperling/internal/frame"
	"github.com/verte-zerg/sperling/internal/generator"
	"github.com/verte-zerg/sperling/internal/grid"
	"github.com/verte-zerg/sperling/internal/input"
	"github.com/verte-zerg/sperling/internal/model"
	"github.com/verte-zerg/sperling/internal/scoring"
	"github.com/verte-zerg/sperling/internal/trial"
	"github.com/verte-zerg/sperling/internal/view"
)

const step = 10 * time.Millisecond

type sourceFunc func() []input.Event

func (f sourceFunc) Poll() []input.Event { return f() }

type phaseLog struct {
	started  []string
	finished map[string]time.Duration
}

func (p *phaseLog) PhaseStarted(name string) { p.started = append(p.started, name) }

func (p *phaseLog) PhaseFinished(name string, elapsed time.Duration) {
	if p.finished == nil {
		p.finished = map[string]time.Duration{}
	}
	p.finished[name] = elapsed
}

func (p *phaseLog) asObservers() []trial.Observer { return []trial.Observer{p} }

func (p *phaseLog) count(name string) int {
	n := 0
	for _, s := range p.started {
		if s == name {
			n++
		}
	}
	return n
}

func newExperiment(t *testing.T, kind string, rows, cols, trials int, overrides map[string]time.Duration) *Experiment {
	t.Helper()
	spec, err := generator.NewSpec(rows, cols, charset.Consonants(), true)
	require.NoError(t, err)
	e, err := New(Options{
		Kind:      kind,
		Spec:      spec,
		Trials:    trials,
		Overrides: overrides,
		Generator: generator.NewSeeded(7),
	})
	require.NoError(t, err)
	return e
}

func names(t *testing.T, tc TrialContext) []string {
	t.Helper()
	phases, err := BuildPhases(tc)
	require.NoError(t, err)
	out := make([]string, len(phases))
	for i, p := range phases {
		out[i] = p.Name()
	}
	return out
}

func TestDurationsMerge(t *testing.T) {
	defaults := DefaultDurations()
	merged := defaults.Merge(map[string]time.Duration{PhaseStimulus: 80 * time.Millisecond})

	assert.Equal(t, 80*time.Millisecond, merged.Get(PhaseStimulus))
	assert.Equal(t, 50*time.Millisecond, defaults.Get(PhaseStimulus))
	assert.Equal(t, 500*time.Millisecond, merged.Get(PhasePreMask))
	assert.Zero(t, merged.Get("UNKNOWN"))
}

func TestBuildPhasesOrder(t *testing.T) {
	whole := newExperiment(t, model.KindWhole, 2, 3, 1, nil)
	tc, err := whole.NextTrialContext(view.NewCanvas(40, 12, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{PhaseFixation, PhasePreMask, PhaseStimulus, PhaseResponse, PhaseFeedback}, names(t, tc))

	partial := newExperiment(t, model.KindPartial, 3, 3, 1, nil)
	tc, err = partial.NextTrialContext(view.NewCanvas(40, 12, nil))
	require.NoError(t, err)
	assert.Equal(t, PhaseNames, names(t, tc))
}

func TestBuildPhasesIsFreshPerCall(t *testing.T) {
	e := newExperiment(t, model.KindWhole, 1, 3, 1, nil)
	tc, err := e.NextTrialContext(view.NewCanvas(40, 12, nil))
	require.NoError(t, err)

	first, err := BuildPhases(tc)
	require.NoError(t, err)
	second, err := BuildPhases(tc)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.NotSame(t, first[i], second[i])
	}
}

func TestBuildPhasesValidation(t *testing.T) {
	g, err := grid.Parse("ABC")
	require.NoError(t, err)
	other, err := grid.Parse("AB")
	require.NoError(t, err)
	c := view.NewCanvas(10, 5, nil)

	_, err = BuildPhases(TrialContext{Stimulus: g, Correct: g, Response: g, Log: &scoring.Log{}})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = BuildPhases(TrialContext{Canvas: c, Stimulus: g, Correct: g, Response: other, Log: &scoring.Log{}})
	require.ErrorIs(t, err, scoring.ErrShapeMismatch)

	_, err = BuildPhases(TrialContext{
		Canvas: c, Stimulus: g, Correct: g, Response: g, Log: &scoring.Log{},
		Pipeline: Pipeline{Cue: true}, CueRow: 1,
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cue row", verr.Field)
}

func TestPartialReportScoresCuedRow(t *testing.T) {
	e := newExperiment(t, model.KindPartial, 3, 4, 1, nil)
	tc, err := e.NextTrialContext(view.NewCanvas(40, 12, nil))
	require.NoError(t, err)

	require.GreaterOrEqual(t, tc.CueRow, 0)
	require.Less(t, tc.CueRow, 3)
	assert.Equal(t, string(tc.Stimulus.Row(tc.CueRow)), tc.Correct.String())
	assert.Equal(t, 1, tc.Response.Rows())
	assert.Equal(t, 4, tc.Response.Columns())
	assert.Equal(t, "????", tc.Response.String())
}

func TestMasksBlankTheCanvas(t *testing.T) {
	e := newExperiment(t, model.KindPartial, 2, 3, 1, nil)
	canvas := view.NewCanvas(40, 12, nil)
	tc, err := e.NextTrialContext(canvas)
	require.NoError(t, err)
	phases, err := BuildPhases(tc)
	require.NoError(t, err)

	byName := map[string]*trial.Phase{}
	for _, p := range phases {
		byName[p.Name()] = p
	}
	for _, name := range []string{PhasePreMask, PhasePostMask} {
		byName[PhaseStimulus].Render()
		byName[name].Render()
		for i, cell := range canvas.Snapshot().Cells {
			require.Equal(t, view.ColorBlack, cell.Bg, "%s cell %d", name, i)
			require.Equal(t, ' ', cell.Ch, "%s cell %d", name, i)
		}
	}
}

func TestRunTrialEndToEnd(t *testing.T) {
	e := newExperiment(t, model.KindWhole, 2, 3, 1, map[string]time.Duration{PhaseStimulus: 50 * time.Millisecond})
	phases := &phaseLog{}
	canvas := view.NewCanvas(40, 12, nil)
	env := Env{
		Clock:     frame.NewStepClock(step),
		Source:    input.Repeat{input.Press(input.KeyReturn)},
		Canvas:    canvas,
		FPS:       100,
		Observers: phases.asObservers(),
	}

	_, err := e.Run(context.Background(), env)
	require.NoError(t, err)

	entries := e.Results().Entries()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, 2, entry.Correct.Rows())
	assert.Equal(t, 3, entry.Correct.Columns())
	assert.Equal(t, 2, entry.Actual.Rows())
	assert.Equal(t, 3, entry.Actual.Columns())
	assert.Equal(t, step, entry.ResponseTime)
	assert.Equal(t, 50*time.Millisecond, entry.Durations[PhaseStimulus])

	assert.Equal(t, step, phases.finished[PhaseFixation])
	assert.Equal(t, 60*time.Millisecond, phases.finished[PhaseStimulus])
	assert.Contains(t, canvas.Snapshot().Status, "trial 1/1")

	records := e.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "???/???", records[0].Actual)
	assert.Equal(t, 6, records[0].Cells)
}

func TestResponseKeysAreScored(t *testing.T) {
	e := newExperiment(t, model.KindWhole, 1, 3, 1, map[string]time.Duration{PhasePreMask: 0, PhaseStimulus: 0})
	phases := &phaseLog{}
	var typed bool
	source := sourceFunc(func() []input.Event {
		if len(phases.started) > 0 && phases.started[len(phases.started)-1] == PhaseResponse && !typed {
			typed = true
			return []input.Event{input.Char('b'), input.Char('c'), input.Char('d'), input.Press(input.KeyReturn)}
		}
		return []input.Event{input.Press(input.KeyReturn)}
	})
	env := Env{
		Clock:     frame.NewStepClock(step),
		Source:    source,
		Canvas:    view.NewCanvas(40, 12, nil),
		Observers: phases.asObservers(),
	}

	_, err := e.RunTrial(context.Background(), env)
	require.NoError(t, err)
	entries := e.Results().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "BCD", entries[0].Actual.String())
	n, err := scoring.Count(entries[0].Correct, entries[0].Actual)
	require.NoError(t, err)
	assert.Equal(t, n, entries[0].NCorrect())
}

func TestSessionAbortKeepsCompletedEntries(t *testing.T) {
	quick := map[string]time.Duration{PhasePreMask: 0, PhaseStimulus: 0}
	first := newExperiment(t, model.KindWhole, 1, 3, 3, quick)
	second := newExperiment(t, model.KindWhole, 1, 3, 3, quick)
	s, err := NewSession("alice", first, second)
	require.NoError(t, err)

	phases := &phaseLog{}
	source := sourceFunc(func() []input.Event {
		if phases.count(PhaseResponse) == 2 {
			return []input.Event{input.QuitEvent()}
		}
		return []input.Event{input.Press(input.KeyReturn)}
	})
	env := Env{
		Clock:     frame.NewStepClock(step),
		Source:    source,
		Canvas:    view.NewCanvas(40, 12, nil),
		Observers: phases.asObservers(),
	}

	_, err = s.Run(context.Background(), env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrSessionAborted))

	assert.Equal(t, 1, first.Results().Len())
	assert.Zero(t, second.Results().Len())
	assert.Len(t, s.Records(), 1)
	assert.Equal(t, 1, phases.count(PhaseFeedback))
}

func TestContextCancelAbortsSession(t *testing.T) {
	e := newExperiment(t, model.KindWhole, 1, 3, 2, nil)
	s, err := NewSession("bob", e)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx, Env{
		Clock:  frame.NewStepClock(step),
		Source: input.Repeat{},
		Canvas: view.NewCanvas(40, 12, nil),
	})
	require.ErrorIs(t, err, model.ErrSessionAborted)
	assert.Zero(t, e.Results().Len())
}

func TestNewSessionValidation(t *testing.T) {
	e := newExperiment(t, model.KindWhole, 1, 3, 1, nil)

	_, err := NewSession("  ", e)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "subject", verr.Field)

	_, err = NewSession("carol")
	require.ErrorAs(t, err, &verr)

	s, err := NewSession("carol", e)
	require.NoError(t, err)
	_, err = uuid.Parse(s.ID())
	require.NoError(t, err)

	other, err := NewSession("carol", e)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID(), other.ID())
}

func TestNewValidation(t *testing.T) {
	spec, err := generator.NewSpec(1, 3, charset.Consonants(), false)
	require.NoError(t, err)

	var verr *model.ValidationError
	_, err = New(Options{Kind: "both", Spec: spec, Trials: 1})
	require.ErrorAs(t, err, &verr)
	_, err = New(Options{Kind: model.KindWhole, Spec: spec})
	require.ErrorAs(t, err, &verr)
	_, err = New(Options{Kind: model.KindWhole, Spec: spec, Trials: 1, Overrides: map[string]time.Duration{PhaseCue: -time.Second}})
	require.ErrorAs(t, err, &verr)
}

func TestFromConfig(t *testing.T) {
	gen := generator.NewSeeded(3)
	e, err := FromConfig(model.ExperimentConfig{
		Name:        "ranged",
		RowRange:    [2]int{2, 3},
		ColumnRange: [2]int{3, 4},
		Charset:     "alpha",
		Durations:   map[string]time.Duration{"stimulus": 80 * time.Millisecond},
	}, gen)
	require.NoError(t, err)

	assert.Equal(t, model.KindWhole, e.Kind())
	assert.Equal(t, DefaultTrials, e.Trials())
	assert.GreaterOrEqual(t, e.Spec().Rows, 2)
	assert.LessOrEqual(t, e.Spec().Rows, 3)
	assert.GreaterOrEqual(t, e.Spec().Columns, 3)
	assert.LessOrEqual(t, e.Spec().Columns, 4)
	assert.Equal(t, 26, e.Spec().Charset.Len())
	assert.Equal(t, 80*time.Millisecond, e.Durations().Get(PhaseStimulus))

	_, err = FromConfig(model.ExperimentConfig{Kind: model.KindWhole, Columns: 3}, gen)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}
