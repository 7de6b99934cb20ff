package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/verte-zerg/sperling/internal/charset"
	"github.com/verte-zerg/sperling/internal/frame"
	"github.com/verte-zerg/sperling/internal/generator"
	"github.com/verte-zerg/sperling/internal/grid"
	"github.com/verte-zerg/sperling/internal/input"
	"github.com/verte-zerg/sperling/internal/logging"
	"github.com/verte-zerg/sperling/internal/model"
	"github.com/verte-zerg/sperling/internal/scoring"
	"github.com/verte-zerg/sperling/internal/trial"
	"github.com/verte-zerg/sperling/internal/view"
)

// DefaultTrials is the number of trials used when none is configured.
const DefaultTrials = 10

// Env holds the collaborators shared by every trial of a run.
type Env struct {
	Clock     frame.Clock
	Source    input.Source
	Canvas    *view.Canvas
	FPS       int
	Logger    *slog.Logger
	Observers []trial.Observer
}

func (e Env) validate() error {
	if e.Clock == nil {
		return model.Invalid("clock", "must not be nil")
	}
	if e.Source == nil {
		return model.Invalid("event source", "must not be nil")
	}
	if e.Canvas == nil {
		return model.Invalid("canvas", "must not be nil")
	}
	return nil
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}

// Experiment repeats trials of one kind and collects their results.
type Experiment struct {
	name      string
	kind      string
	pipeline  Pipeline
	spec      generator.Spec
	durations Durations
	nTrials   int
	gen       *generator.Generator
	keymap    input.Keymap
	results   *scoring.Log
	trial     int
}

// Options configures New.
type Options struct {
	Name      string
	Kind      string
	Spec      generator.Spec
	Trials    int
	Overrides map[string]time.Duration
	Generator *generator.Generator
}

// New validates opts and returns an experiment. Overrides are merged over
// DefaultDurations.
func New(opts Options) (*Experiment, error) {
	pipeline, err := PipelineFor(opts.Kind)
	if err != nil {
		return nil, err
	}
	if opts.Trials < 1 {
		return nil, model.Invalid("trials", "must be positive, got %d", opts.Trials)
	}
	spec, err := generator.NewSpec(opts.Spec.Rows, opts.Spec.Columns, opts.Spec.Charset, opts.Spec.AllowRepeats)
	if err != nil {
		return nil, err
	}
	for name, d := range opts.Overrides {
		if d < 0 {
			return nil, model.Invalid("duration", "%s must be non-negative, got %v", name, d)
		}
	}
	gen := opts.Generator
	if gen == nil {
		gen = generator.New()
	}
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("%s-%dx%d", opts.Kind, spec.Rows, spec.Columns)
	}
	return &Experiment{
		name:      name,
		kind:      opts.Kind,
		pipeline:  pipeline,
		spec:      spec,
		durations: DefaultDurations().Merge(opts.Overrides),
		nTrials:   opts.Trials,
		gen:       gen,
		keymap:    input.NewKeymap(spec.Charset),
		results:   &scoring.Log{},
	}, nil
}

// FromConfig builds an experiment from its configuration. When row or column
// ranges are set the grid shape is drawn from them once, here.
func FromConfig(cfg model.ExperimentConfig, gen *generator.Generator) (*Experiment, error) {
	if gen == nil {
		gen = generator.New()
	}
	cs, err := resolveCharset(cfg.Charset)
	if err != nil {
		return nil, err
	}
	rows := generator.Range{Lo: cfg.Rows, Hi: cfg.Rows}
	if cfg.RowRange != [2]int{} {
		rows = generator.Range{Lo: cfg.RowRange[0], Hi: cfg.RowRange[1]}
	}
	cols := generator.Range{Lo: cfg.Columns, Hi: cfg.Columns}
	if cfg.ColumnRange != [2]int{} {
		cols = generator.Range{Lo: cfg.ColumnRange[0], Hi: cfg.ColumnRange[1]}
	}
	spec, err := gen.RandomSpec(rows, cols, cs, cfg.AllowRepeats)
	if err != nil {
		return nil, fmt.Errorf("experiment %q: %w", cfg.Name, err)
	}
	trials := cfg.Trials
	if trials == 0 {
		trials = DefaultTrials
	}
	kind := cfg.Kind
	if kind == "" {
		kind = model.KindWhole
	}
	return New(Options{
		Name:      cfg.Name,
		Kind:      kind,
		Spec:      spec,
		Trials:    trials,
		Overrides: normalizeDurations(cfg.Durations),
		Generator: gen,
	})
}

func resolveCharset(value string) (charset.Charset, error) {
	if value == "" {
		return charset.Consonants(), nil
	}
	if cs, err := charset.Lookup(value); err == nil {
		return cs, nil
	}
	return charset.New(value)
}

func normalizeDurations(in map[string]time.Duration) map[string]time.Duration {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]time.Duration, len(in))
	for name, d := range in {
		out[strings.ToUpper(strings.TrimSpace(name))] = d
	}
	return out
}

// Name returns the experiment name.
func (e *Experiment) Name() string { return e.name }

// Kind returns the report kind.
func (e *Experiment) Kind() string { return e.kind }

// Spec returns the stimulus spec.
func (e *Experiment) Spec() generator.Spec { return e.spec }

// Trials returns the configured number of trials.
func (e *Experiment) Trials() int { return e.nTrials }

// Durations returns a copy of the effective phase budgets.
func (e *Experiment) Durations() Durations { return e.durations.Merge(nil) }

// Results returns the results log.
func (e *Experiment) Results() *scoring.Log { return e.results }

// NextTrialContext generates a fresh stimulus and response buffer for the
// next trial.
func (e *Experiment) NextTrialContext(c *view.Canvas) (TrialContext, error) {
	stim, err := e.gen.Generate(e.spec)
	if err != nil {
		return TrialContext{}, err
	}
	tc := TrialContext{
		Canvas:    c,
		Pipeline:  e.pipeline,
		Durations: e.durations,
		Keymap:    e.keymap,
		Log:       e.results,
		Stimulus:  stim,
		Correct:   stim,
	}
	if e.pipeline.Cue {
		tc.CueRow = e.gen.Intn(stim.Rows())
		tc.Correct = stim.RowGrid(tc.CueRow)
	}
	tc.Response, err = grid.New(tc.Correct.Rows(), tc.Correct.Columns(), grid.Placeholder)
	if err != nil {
		return TrialContext{}, err
	}
	return tc, nil
}

// RunTrial runs one trial on a fresh sequencer and returns its elapsed time.
func (e *Experiment) RunTrial(ctx context.Context, env Env) (time.Duration, error) {
	if err := env.validate(); err != nil {
		return 0, err
	}
	log := env.logger()

	env.Canvas.Fill(view.ColorBlack)
	tc, err := e.NextTrialContext(env.Canvas)
	if err != nil {
		return 0, fmt.Errorf("generate stimulus: %w", err)
	}
	phases, err := BuildPhases(tc)
	if err != nil {
		return 0, fmt.Errorf("build phases: %w", err)
	}

	e.trial++
	status := &statusLine{canvas: env.Canvas, prefix: fmt.Sprintf("%s · trial %d/%d", e.name, e.trial, e.nTrials)}
	opts := []trial.SequencerOption{trial.WithLogger(log), trial.WithObserver(status)}
	for _, o := range env.Observers {
		opts = append(opts, trial.WithObserver(o))
	}
	seq := trial.NewSequencer(env.Clock, env.Source, env.Canvas, env.FPS, opts...)

	before := e.results.Len()
	res, err := seq.Run(ctx, phases)
	if err != nil {
		return res.Elapsed, err
	}
	if e.results.Len() > before {
		entry := e.results.Entries()[e.results.Len()-1]
		log.Debug("trial finished",
			"experiment", e.name,
			"trial", e.trial,
			"correct", entry.NCorrect(),
			"cells", entry.Correct.Len(),
			"response_time", entry.ResponseTime,
		)
	}
	return res.Elapsed, nil
}

// Run runs all trials and returns their summed elapsed time. Cancellation is
// returned immediately; remaining trials are not started.
func (e *Experiment) Run(ctx context.Context, env Env) (time.Duration, error) {
	var total time.Duration
	for i := 0; i < e.nTrials; i++ {
		elapsed, err := e.RunTrial(ctx, env)
		total += elapsed
		if err != nil {
			return total, fmt.Errorf("experiment %s: %w", e.name, err)
		}
	}
	return total, nil
}

// Records converts the results log into storable trial records.
func (e *Experiment) Records() []model.TrialRecord {
	entries := e.results.Entries()
	out := make([]model.TrialRecord, 0, len(entries))
	for i, entry := range entries {
		out = append(out, model.TrialRecord{
			Experiment:   e.name,
			Trial:        i + 1,
			ResponseTime: entry.ResponseTime,
			Correct:      entry.Correct.String(),
			Actual:       entry.Actual.String(),
			NCorrect:     entry.NCorrect(),
			Cells:        entry.Correct.Len(),
		})
	}
	return out
}

type statusLine struct {
	canvas *view.Canvas
	prefix string
}

func (s *statusLine) PhaseStarted(name string) {
	s.canvas.SetStatus(s.prefix + " · " + strings.ToLower(name))
}

func (s *statusLine) PhaseFinished(string, time.Duration) {}
