// Package experiment builds trial pipelines and runs them as experiments and
// sessions.
package experiment

import (
	"maps"
	"time"

	"github.com/verte-zerg/sperling/internal/capture"
	"github.com/verte-zerg/sperling/internal/grid"
	"github.com/verte-zerg/sperling/internal/input"
	"github.com/verte-zerg/sperling/internal/model"
	"github.com/verte-zerg/sperling/internal/scoring"
	"github.com/verte-zerg/sperling/internal/trial"
	"github.com/verte-zerg/sperling/internal/view"
)

// Phase names, also the keys of a Durations map.
const (
	PhaseFixation = "FIXATION"
	PhasePreMask  = "POST_FIXATION_MASK"
	PhaseStimulus = "STIMULUS"
	PhasePostMask = "POST_STIMULUS_MASK"
	PhaseCue      = "CUE"
	PhaseResponse = "RESPONSE"
	PhaseFeedback = "FEEDBACK"
)

// PhaseNames lists every phase in pipeline order.
var PhaseNames = []string{
	PhaseFixation, PhasePreMask, PhaseStimulus, PhasePostMask, PhaseCue, PhaseResponse, PhaseFeedback,
}

// Durations maps phase names to duration budgets. Missing names read as 0.
type Durations map[string]time.Duration

// DefaultDurations returns a fresh copy of the built-in budgets.
func DefaultDurations() Durations {
	return Durations{
		PhaseFixation: trial.Unlimited,
		PhasePreMask:  500 * time.Millisecond,
		PhaseStimulus: 50 * time.Millisecond,
		PhasePostMask: 1 * time.Millisecond,
		PhaseCue:      500 * time.Millisecond,
		PhaseResponse: trial.Unlimited,
		PhaseFeedback: 1000 * time.Millisecond,
	}
}

// Get returns the budget for name, or 0 when unset.
func (d Durations) Get(name string) time.Duration {
	return d[name]
}

// Merge returns d with overrides applied on top. Neither input is modified.
func (d Durations) Merge(overrides map[string]time.Duration) Durations {
	out := maps.Clone(d)
	if out == nil {
		out = Durations{}
	}
	maps.Copy(out, overrides)
	return out
}

// Pipeline selects the optional phases of a trial.
type Pipeline struct {
	PreMask  bool
	PostMask bool
	Cue      bool
}

// PipelineFor returns the optional phases used by an experiment kind.
func PipelineFor(kind string) (Pipeline, error) {
	switch kind {
	case model.KindWhole:
		return Pipeline{PreMask: true}, nil
	case model.KindPartial:
		return Pipeline{PreMask: true, PostMask: true, Cue: true}, nil
	default:
		return Pipeline{}, model.Invalid("kind", "unknown experiment kind %q", kind)
	}
}

// TrialContext is everything needed to build one trial's phases.
type TrialContext struct {
	Canvas    *view.Canvas
	Pipeline  Pipeline
	Durations Durations
	Keymap    input.Keymap
	Log       *scoring.Log

	// Stimulus is flashed; Correct is what the response is scored against.
	Stimulus *grid.Grid
	Correct  *grid.Grid
	Response *grid.Grid
	CueRow   int
}

// BuildPhases returns the ordered phases of one trial:
// fixation, [pre-mask], stimulus, [post-mask], [cue], response, feedback.
// Every call returns new phases bound to tc.
func BuildPhases(tc TrialContext) ([]*trial.Phase, error) {
	if tc.Canvas == nil {
		return nil, model.Invalid("canvas", "must not be nil")
	}
	if tc.Stimulus == nil || tc.Correct == nil || tc.Response == nil {
		return nil, model.Invalid("grid", "stimulus, correct and response must be set")
	}
	if tc.Log == nil {
		return nil, model.Invalid("results log", "must not be nil")
	}
	if tc.Pipeline.Cue && (tc.CueRow < 0 || tc.CueRow >= tc.Stimulus.Rows()) {
		return nil, model.Invalid("cue row", "%d outside stimulus rows [0,%d)", tc.CueRow, tc.Stimulus.Rows())
	}

	recorder, err := scoring.NewRecorder(tc.Correct, tc.Response, tc.Durations, tc.Log)
	if err != nil {
		return nil, err
	}

	c := tc.Canvas
	stimView := view.NewGridView(tc.Stimulus, view.DefaultLayout, 0)
	respView := view.NewGridView(tc.Response, view.DefaultLayout, 0)
	wait := trial.WaitForKey{Key: input.KeyReturn}

	var b builder
	b.add(PhaseFixation, view.CrosshairRenderer{Canvas: c, Size: 2, Color: view.ColorWhite},
		trial.WithProcessor(wait), trial.WithDuration(tc.Durations.Get(PhaseFixation)))
	if tc.Pipeline.PreMask {
		b.add(PhasePreMask, view.MaskRenderer{Canvas: c, Color: view.ColorBlack},
			trial.WithDuration(tc.Durations.Get(PhasePreMask)))
	}
	b.add(PhaseStimulus, view.GridRenderer{Canvas: c, View: stimView},
		trial.WithDuration(tc.Durations.Get(PhaseStimulus)))
	if tc.Pipeline.PostMask {
		b.add(PhasePostMask, view.MaskRenderer{Canvas: c, Color: view.ColorBlack},
			trial.WithDuration(tc.Durations.Get(PhasePostMask)))
	}
	if tc.Pipeline.Cue {
		b.add(PhaseCue, view.CueRenderer{Canvas: c, Stimulus: stimView, CueRow: tc.CueRow},
			trial.WithProcessor(wait), trial.WithDuration(tc.Durations.Get(PhaseCue)))
	}
	editor := capture.NewEditor(tc.Response, respView, tc.Keymap, input.KeyReturn)
	b.add(PhaseResponse, view.GridRenderer{Canvas: c, View: respView},
		trial.WithProcessor(editor),
		trial.WithPost(recorder.Record),
		trial.WithDuration(tc.Durations.Get(PhaseResponse)))
	b.add(PhaseFeedback, view.FeedbackRenderer{Canvas: c, View: respView, Correct: tc.Correct},
		trial.WithProcessor(wait), trial.WithDuration(tc.Durations.Get(PhaseFeedback)))

	if b.err != nil {
		return nil, b.err
	}
	return b.phases, nil
}

type builder struct {
	phases []*trial.Phase
	err    error
}

func (b *builder) add(name string, r trial.Renderer, opts ...trial.Option) {
	if b.err != nil {
		return
	}
	p, err := trial.NewPhase(name, r, opts...)
	if err != nil {
		b.err = err
		return
	}
	b.phases = append(b.phases, p)
}
