package client

import (
	"context"
	"errors"

	"github.com/narahq/nara-chat/internal/config"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/service"
	"github.com/narahq/nara-chat/internal/state"
	"github.com/narahq/nara-chat/internal/tui"
	"github.com/narahq/nara-chat/internal/workers"
)

type App struct {
	services *service.ClientServices
	state    *state.Store
	workers  *workers.Workers
	tui      *tui.TUI
	logger   *logger.Logger
}

func NewApp(services *service.ClientServices, st *state.Store, ui *tui.TUI, cfg config.ClientWorkers, log *logger.Logger) (*App, error) {
	return &App{
		services: services,
		state:    st,
		workers:  workers.NewWorkers(cfg, services.ChatService, log),
		tui:      ui,
		logger:   log,
	}, nil
}

// Run starts the background workers and hands control to the terminal UI.
// It blocks until the user quits or the UI fails.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer a.state.Close()

	a.workers.Run()

	if err := a.tui.Run(ctx); err != nil && !errors.Is(err, tui.ErrUserQuit) {
		return err
	}

	a.logger.Info().Msg("client exited")
	return nil
}
