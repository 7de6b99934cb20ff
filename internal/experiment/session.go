package experiment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/sperling/internal/model"
)

// Session runs a subject's experiments in order under one identifier.
type Session struct {
	id          string
	subject     string
	experiments []*Experiment
}

// NewSession returns a session with a fresh identifier.
func NewSession(subject string, experiments ...*Experiment) (*Session, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, model.Invalid("subject", "must not be empty")
	}
	if len(experiments) == 0 {
		return nil, model.Invalid("experiments", "at least one is required")
	}
	for i, e := range experiments {
		if e == nil {
			return nil, model.Invalid("experiments", "experiment %d is nil", i)
		}
	}
	return &Session{
		id:          uuid.NewString(),
		subject:     subject,
		experiments: experiments,
	}, nil
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// Subject returns the subject name.
func (s *Session) Subject() string { return s.subject }

// Experiments returns the experiments in run order.
func (s *Session) Experiments() []*Experiment {
	out := make([]*Experiment, len(s.experiments))
	copy(out, s.experiments)
	return out
}

// Run runs every experiment in order and returns the summed elapsed time.
// Cancellation stops the session; results collected so far are kept.
func (s *Session) Run(ctx context.Context, env Env) (time.Duration, error) {
	log := env.logger().With("session", s.id, "subject", s.subject)
	env.Logger = log
	log.Info("session started", "experiments", len(s.experiments))

	var total time.Duration
	for _, e := range s.experiments {
		elapsed, err := e.Run(ctx, env)
		total += elapsed
		if err != nil {
			log.Info("session stopped", "experiment", e.Name(), "error", err)
			return total, fmt.Errorf("session %s: %w", s.id, err)
		}
	}
	log.Info("session finished", "elapsed", total)
	return total, nil
}

// Records returns the stored form of every collected response.
func (s *Session) Records() []model.TrialRecord {
	var out []model.TrialRecord
	for _, e := range s.experiments {
		out = append(out, e.Records()...)
	}
	return out
}
