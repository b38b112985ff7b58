package workers

import (
	"github.com/narahq/nara-chat/internal/config"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/service"
)

type Workers struct {
	workers []Worker
}

// NewWorkers assembles the client's background workers from configuration.
// A zero refresh interval disables the conversation-list refresher.
func NewWorkers(cfg config.ClientWorkers, chat service.ChatService, log *logger.Logger) *Workers {
	var ws []Worker
	if cfg.RefreshInterval > 0 {
		ws = append(ws, newConversationRefresher(cfg.RefreshInterval, chat, log.GetChildLogger()))
	}

	return &Workers{workers: ws}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
