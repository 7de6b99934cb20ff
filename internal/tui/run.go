package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/sperling/internal/input"
	"github.com/verte-zerg/sperling/internal/view"
)

// Engine drives trials on the canvas, reading events from source.
type Engine func(ctx context.Context, canvas *view.Canvas, source input.Source) error

type programSink struct {
	program *tea.Program
}

// Present implements view.Sink.
func (s programSink) Present(f view.Frame) {
	s.program.Send(frameMsg(f))
}

// Run shows the engine's frames in a full-screen program until the engine
// returns, and returns the engine's error. Closing the program early sends a
// quit event to the engine.
func Run(ctx context.Context, width, height int, engine Engine, opts ...tea.ProgramOption) error {
	queue := input.NewQueue()
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(NewModel(queue), opts...)
	canvas := view.NewCanvas(width, height, programSink{program: program})

	var engineErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		engineErr = engine(gctx, canvas, queue)
		program.Send(doneMsg{})
		return nil
	})
	g.Go(func() error {
		_, err := program.Run()
		queue.Push(input.QuitEvent())
		if errors.Is(err, tea.ErrInterrupted) || (errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return engineErr
}
