package workers

import (
	"context"
	"errors"
	"time"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/service"
	"github.com/narahq/nara-chat/internal/session"
)

// conversationRefresher periodically refetches the conversation list so that
// changes made from other devices show up without user interaction. Refresh
// failures are logged and ignored; the next tick tries again.
type conversationRefresher struct {
	interval time.Duration
	chat     service.ChatService
	logger   *logger.Logger
}

func newConversationRefresher(interval time.Duration, chat service.ChatService, logger *logger.Logger) *conversationRefresher {
	return &conversationRefresher{
		interval: interval,
		chat:     chat,
		logger:   logger,
	}
}

func (w *conversationRefresher) Run() {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for range ticker.C {
			w.refresh()
		}
	}()
}

func (w *conversationRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	if err := w.chat.RefreshConversations(ctx); err != nil {
		// Not being signed in yet is the normal idle state.
		if errors.Is(err, session.ErrNoSession) {
			return
		}
		w.logger.Warn().Err(err).Str("func", "*conversationRefresher.refresh").Msg("background conversation refresh failed")
	}
}
