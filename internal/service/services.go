package service

import (
	"github.com/narahq/nara-chat/internal/config"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/store"
)

type Services struct {
	Users         store.UserRepository
	Conversations ConversationService
	Ask           AskService
}

func NewServices(cfg config.ServerApp, repos *store.Repositories, log *logger.Logger) *Services {
	return &Services{
		Users:         repos.Users,
		Conversations: NewConversationService(repos.Conversations, repos.Messages, log.GetChildLogger()),
		Ask:           NewAskService(cfg, repos.Conversations, repos.Messages, log.GetChildLogger()),
	}
}
