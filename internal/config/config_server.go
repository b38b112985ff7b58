package config

import (
	"fmt"
	"time"
)

// ServerAuth holds the token verification settings for the backend.
type ServerAuth struct {
	// JWTSecret is the shared HMAC secret used to verify bearer tokens.
	JWTSecret string
	// JWTIssuer is the expected "iss" claim; empty disables issuer checks.
	JWTIssuer string
}

// ServerApp holds answering-service settings.
type ServerApp struct {
	// OpenAIKey is the API key for the chat-completion backend.
	OpenAIKey string
	// OpenAIModel is the model used to answer questions.
	OpenAIModel string
}

// ServerStorage groups server storage backend settings.
type ServerStorage struct {
	// DB holds database settings.
	DB DB
}

// ServerConfig is the top-level server configuration assembled from
// [StructuredConfig].
type ServerConfig struct {
	// App contains answering-service settings.
	App ServerApp
	// Auth contains token verification settings.
	Auth ServerAuth
	// Server contains HTTP listener settings.
	Server Server
	// Storage contains persistence settings.
	Storage ServerStorage
}

// GetServerConfig builds and validates a server-specific config view from the
// merged structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		App: ServerApp{
			OpenAIKey:   cfg.App.OpenAIKey,
			OpenAIModel: cfg.App.OpenAIModel,
		},
		Auth: ServerAuth{
			JWTSecret: cfg.Identity.JWTSecret,
			JWTIssuer: cfg.Identity.JWTIssuer,
		},
		Server:  cfg.Server,
		Storage: ServerStorage{DB: cfg.Storage.DB},
	}

	serverCfg.applyDefaults()

	return serverCfg, serverCfg.validate()
}

func (cfg *ServerConfig) applyDefaults() {
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = "localhost:8000"
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 90 * time.Second
	}
	if cfg.App.OpenAIModel == "" {
		cfg.App.OpenAIModel = "gpt-4o"
	}
}

func (cfg *ServerConfig) validate() error {
	if cfg.Auth.JWTSecret == "" {
		return ErrInvalidIdentityConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	return nil
}
