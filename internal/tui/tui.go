// Package tui implements the terminal user interface of the client.
//
// It is built on Bubble Tea: a single appModel owns the current screen
// (welcome, sign-in, sign-up, chat) plus the confirm and error overlays, and
// every remote call runs as an asynchronous [tea.Cmd] that reports back with
// a typed message. Conversation data is never held by the models themselves;
// they read it from the shared state store, which pushes change
// notifications into the message loop.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/service"
	"github.com/narahq/nara-chat/internal/state"
)

var ErrUserQuit = errors.New("user quit")

type TUI struct {
	services *service.ClientServices
	state    *state.Store
	logger   *logger.Logger
}

func New(services *service.ClientServices, st *state.Store, logger *logger.Logger) (*TUI, error) {
	return &TUI{services: services, state: st, logger: logger}, nil
}

// Run drives the whole interactive session: welcome screen, authentication,
// then the chat screen until the user quits. It returns [ErrUserQuit] when
// the user left deliberately.
func (t *TUI) Run(ctx context.Context) error {
	model, err := newAppModel(ctx, t.services, t.state, t.logger)
	if err != nil {
		return err
	}

	finalModel, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if runErr != nil {
		return runErr
	}

	result, ok := finalModel.(appModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	return result.err
}
