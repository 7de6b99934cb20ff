// Package trial runs an ordered list of timed phases against a frame clock and
// an input source.
package trial

import (
	"math"
	"reflect"
	"time"

	"github.com/verte-zerg/sperling/internal/input"
	"github.com/verte-zerg/sperling/internal/model"
)

// Unlimited is a duration budget that never expires.
const Unlimited = time.Duration(math.MaxInt64)

// Renderer draws a phase's visual state.
type Renderer interface {
	Render()
}

// Processor handles one event and reports whether it ends the phase.
type Processor interface {
	Process(ev input.Event) bool
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func()

// Render calls f.
func (f RendererFunc) Render() { f() }

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ev input.Event) bool

// Process calls f.
func (f ProcessorFunc) Process(ev input.Event) bool { return f(ev) }

// PreHook runs before a phase's first tick. Its result is handed to the post-hook.
type PreHook func() any

// PostHook runs once a phase has finished, including when it was aborted.
type PostHook func(PostInfo)

// PostInfo is passed to a phase's post-hook.
type PostInfo struct {
	Phase       string
	Time        time.Duration
	ElapsedTime time.Duration
	PreOut      any
	Events      []input.Event
	Aborted     bool
}

// Phase is one named, timed step of a trial.
type Phase struct {
	name      string
	renderer  Renderer
	processor Processor
	pre       PreHook
	post      PostHook
	duration  time.Duration
}

// Option configures a Phase.
type Option func(*Phase) error

// WithProcessor sets the event processor.
func WithProcessor(p Processor) Option {
	return func(ph *Phase) error {
		if isNil(p) {
			return model.Invalid("event processor", "if defined, must not be nil")
		}
		ph.processor = p
		return nil
	}
}

// WithPre sets the pre-hook.
func WithPre(h PreHook) Option {
	return func(ph *Phase) error {
		if h == nil {
			return model.Invalid("pre", "if defined, must not be nil")
		}
		ph.pre = h
		return nil
	}
}

// WithPost sets the post-hook.
func WithPost(h PostHook) Option {
	return func(ph *Phase) error {
		if h == nil {
			return model.Invalid("post", "if defined, must not be nil")
		}
		ph.post = h
		return nil
	}
}

// WithDuration sets the duration budget. Use Unlimited for no budget.
func WithDuration(d time.Duration) Option {
	return func(ph *Phase) error {
		if d < 0 {
			return model.Invalid("duration", "must be non-negative, got %v", d)
		}
		ph.duration = d
		return nil
	}
}

// NewPhase validates and builds a phase. Without WithDuration the budget is Unlimited.
func NewPhase(name string, r Renderer, opts ...Option) (*Phase, error) {
	if name == "" {
		return nil, model.Invalid("name", "must not be empty")
	}
	if isNil(r) {
		return nil, model.Invalid("renderer", "must not be nil")
	}
	ph := &Phase{
		name:      name,
		renderer:  r,
		processor: NoOp{},
		pre:       func() any { return nil },
		post:      func(PostInfo) {},
		duration:  Unlimited,
	}
	for _, opt := range opts {
		if err := opt(ph); err != nil {
			return nil, err
		}
	}
	return ph, nil
}

// Name returns the phase name.
func (p *Phase) Name() string { return p.name }

// Duration returns the duration budget.
func (p *Phase) Duration() time.Duration { return p.duration }

// Render draws the phase.
func (p *Phase) Render() { p.renderer.Render() }

// ProcessEvent forwards ev to the processor and returns its verdict.
func (p *Phase) ProcessEvent(ev input.Event) bool { return p.processor.Process(ev) }

// NoOp never ends a phase.
type NoOp struct{}

// Process returns false.
func (NoOp) Process(input.Event) bool { return false }

// WaitForKey ends a phase when its key is pressed.
type WaitForKey struct {
	Key input.Key
}

// Process reports whether ev is a key-down of the awaited key.
func (w WaitForKey) Process(ev input.Event) bool {
	return ev.IsKey(w.Key)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
