package app

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"outreach/internal/logging"
	"outreach/internal/panel"
)

// RunManager runs the manager view until the user quits or ctx ends.
func RunManager(ctx context.Context, store EntityStore, webview WebviewNavigator, opts ...ManagerOption) error {
	model := NewManager(store, webview, opts...)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// RunPanel follows the automation with engine while the panel view is
// open. The engine is closed on return.
func RunPanel(ctx context.Context, engine *panel.Engine, logger logging.Logger, opts ...PanelOption) error {
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer engine.Close()

	go func() {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, panel.ErrClosed) {
			logger.Warn("panel engine stopped", logging.Err(err))
		}
	}()

	p := tea.NewProgram(NewPanel(engine, opts...), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
