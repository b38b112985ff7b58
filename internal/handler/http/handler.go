package http

import (
	"github.com/narahq/nara-chat/internal/config"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/service"
)

type Handler struct {
	services *service.Services
	authCfg  config.ServerAuth

	logger *logger.Logger
}

func NewHandler(services *service.Services, auth config.ServerAuth, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		authCfg:  auth,
		logger:   logger,
	}
}
