package service

import (
	"github.com/narahq/nara-chat/internal/adapter"
	"github.com/narahq/nara-chat/internal/identity"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/state"
)

type ClientServices struct {
	AuthService ClientAuthService
	ChatService ChatService
}

func NewClientServices(provider identity.Provider, backend adapter.BackendAdapter, st *state.Store, log *logger.Logger) *ClientServices {
	chatSvc := NewClientChatService(backend, st, log.GetChildLogger())

	return &ClientServices{
		AuthService: NewClientAuthService(provider, chatSvc, st, log.GetChildLogger()),
		ChatService: chatSvc,
	}
}
