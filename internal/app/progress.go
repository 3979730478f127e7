package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/permc/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/adapters/tui"       //nolint:depguard // Wired in app layer
	"golang.org/x/sync/errgroup"
)

// compileWithProgress runs the compile next to the terminal view. Quitting the view cancels
// the compile.
func (a *App) compileWithProgress(ctx context.Context, in *inputs) (*Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	optsTea := append([]tea.ProgramOption{tea.WithContext(gctx)}, a.teaOptions...)
	program := tea.NewProgram(tui.NewModel(), optsTea...)

	// Step spans reach the view through a provider private to this compile.
	tp := telemetry.NewProvider(telemetry.NewTUIBridge(program))
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()
	tracer := telemetry.NewOTelTracerFrom(tp, telemetry.InstrumentationName)

	a.scheduler.Observe(tui.NewObserver(program))
	defer a.scheduler.Observe(nil)

	// Renderer Routine
	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})

	// Compile Routine
	var summary *Summary
	g.Go(func() error {
		s, err := a.compile(gctx, in, tracer)
		program.Send(tui.MsgFinished{Err: err})
		summary = s
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}
