package trial

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/verte-zerg/sperling/internal/frame"
	"github.com/verte-zerg/sperling/internal/input"
	"github.com/verte-zerg/sperling/internal/logging"
	"github.com/verte-zerg/sperling/internal/model"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 20

// State is the sequencer lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Aborted
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Aborted:
		return "aborted"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Display presents the frame that renderers drew.
type Display interface {
	Flip()
}

// Observer is notified at phase boundaries.
type Observer interface {
	PhaseStarted(name string)
	PhaseFinished(name string, elapsed time.Duration)
}

// PhaseTiming is the recorded elapsed time of one completed phase.
type PhaseTiming struct {
	Name    string
	Elapsed time.Duration
}

// Result is the outcome of a sequencer run.
type Result struct {
	Elapsed time.Duration
	Phases  []PhaseTiming
}

// PhaseElapsed returns the recorded time of the named phase.
func (r Result) PhaseElapsed(name string) (time.Duration, bool) {
	for _, p := range r.Phases {
		if p.Name == name {
			return p.Elapsed, true
		}
	}
	return 0, false
}

// Sequencer executes phases in order. A Sequencer runs once; build a fresh one
// per trial.
type Sequencer struct {
	clock     frame.Clock
	source    input.Source
	display   Display
	fps       int
	observers []Observer
	logger    *slog.Logger

	state   State
	current string
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithObserver registers an observer of phase boundaries.
func WithObserver(o Observer) SequencerOption {
	return func(s *Sequencer) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SequencerOption {
	return func(s *Sequencer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSequencer returns an idle sequencer. The sequencer owns clock, source and
// display for the duration of a run.
func NewSequencer(clock frame.Clock, source input.Source, display Display, fps int, opts ...SequencerOption) *Sequencer {
	if fps <= 0 {
		fps = DefaultFPS
	}
	s := &Sequencer{
		clock:   clock,
		source:  source,
		display: display,
		fps:     fps,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the lifecycle state.
func (s *Sequencer) State() State { return s.state }

// Current returns the name of the running (or last run) phase.
func (s *Sequencer) Current() string { return s.current }

// Run executes phases in order and returns the total elapsed time. When the
// subject aborts, the error wraps model.ErrSessionAborted and the result holds
// only the phases that completed.
func (s *Sequencer) Run(ctx context.Context, phases []*Phase) (Result, error) {
	if s.state != Idle {
		return Result{}, fmt.Errorf("sequencer already %s", s.state)
	}
	if err := validatePhases(phases); err != nil {
		return Result{}, err
	}
	s.state = Running

	var res Result
	for _, p := range phases {
		s.current = p.name
		for _, o := range s.observers {
			o.PhaseStarted(p.name)
		}
		s.logger.Debug("phase started", "phase", p.name, "budget", budgetString(p.duration))

		preOut := p.pre()
		elapsed, events, err := s.execute(ctx, p)
		// The post-hook runs on abort too, with whatever time had accumulated.
		p.post(PostInfo{
			Phase:       p.name,
			Time:        elapsed,
			ElapsedTime: res.Elapsed + elapsed,
			PreOut:      preOut,
			Events:      events,
			Aborted:     err != nil,
		})
		if err != nil {
			s.state = Aborted
			s.logger.Info("trial aborted", "phase", p.name, "elapsed", elapsed)
			return res, err
		}

		res.Elapsed += elapsed
		res.Phases = append(res.Phases, PhaseTiming{Name: p.name, Elapsed: elapsed})
		for _, o := range s.observers {
			o.PhaseFinished(p.name, elapsed)
		}
		s.logger.Debug("phase finished", "phase", p.name, "elapsed", elapsed)
	}
	s.state = Complete
	return res, nil
}

func (s *Sequencer) execute(ctx context.Context, p *Phase) (time.Duration, []input.Event, error) {
	var (
		elapsed  time.Duration
		events   []input.Event
		terminal bool
	)
	for !terminal && elapsed <= p.duration {
		if err := ctx.Err(); err != nil {
			return elapsed, events, fmt.Errorf("%w: %v", model.ErrSessionAborted, err)
		}
		for _, ev := range s.source.Poll() {
			events = append(events, ev)
			s.logger.Log(ctx, logging.LevelTrace, "event", "phase", p.name, "type", ev.Type, "key", ev.Key, "rune", string(ev.Rune))
			if input.IsGlobalAbort(ev) {
				return elapsed, events, fmt.Errorf("%w: user terminated experiment", model.ErrSessionAborted)
			}
			if p.ProcessEvent(ev) {
				terminal = true
			}
		}

		p.Render()
		if s.display != nil {
			s.display.Flip()
		}

		elapsed += s.clock.Elapsed()
		s.clock.Tick(s.fps)
	}
	return elapsed, events, nil
}

func validatePhases(phases []*Phase) error {
	seen := make(map[string]struct{}, len(phases))
	for i, p := range phases {
		if p == nil {
			return model.Invalid("phase", "phase %d is nil", i)
		}
		if _, ok := seen[p.name]; ok {
			return model.Invalid("phase", "duplicate name %q", p.name)
		}
		seen[p.name] = struct{}{}
	}
	return nil
}

func budgetString(d time.Duration) string {
	if d == Unlimited {
		return "unlimited"
	}
	return d.String()
}
