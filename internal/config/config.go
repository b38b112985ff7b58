package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for nara-chat.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the answering model.
	App App `envPrefix:"APP_"`

	// Identity holds settings for the external identity provider: the
	// client-facing endpoint and the server-side token verification keys.
	Identity Identity `envPrefix:"IDENTITY_"`

	// Storage holds configuration for the server persistence backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds network settings used by the client transport layer.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds configuration for client background jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration for the answering service.
type App struct {
	// OpenAIKey is the API key used by the server answering service.
	// Env: APP_OPENAI_API_KEY
	OpenAIKey string `env:"OPENAI_API_KEY"`

	// OpenAIModel is the chat-completion model used to answer questions.
	// Env: APP_OPENAI_MODEL
	OpenAIModel string `env:"OPENAI_MODEL"`
}

// Identity groups settings related to the external identity provider.
// The client needs the endpoint and API key; the server needs the shared
// secret and issuer to verify provider-issued tokens.
type Identity struct {
	// URL is the base URL of the identity provider's auth endpoint
	// (e.g. https://<project>.supabase.co/auth/v1).
	// Env: IDENTITY_URL
	URL string `env:"URL"`

	// APIKey is the public API key sent with every identity request.
	// Env: IDENTITY_API_KEY
	APIKey string `env:"API_KEY"`

	// JWTSecret is the shared HMAC secret the provider signs access tokens
	// with. Used by the server to verify inbound bearer tokens.
	// Env: IDENTITY_JWT_SECRET
	JWTSecret string `env:"JWT_SECRET"`

	// JWTIssuer is the expected "iss" claim of provider-issued tokens.
	// Env: IDENTITY_JWT_ISSUER
	JWTIssuer string `env:"JWT_ISSUER"`
}

// Storage groups the configuration for the server persistence backend.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB contains database connection settings.
type DB struct {
	// DSN is the connection string. A "postgres://" scheme selects the
	// pgx driver; anything else is treated as a SQLite file path.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Server holds network settings for the backend HTTP server.
type Server struct {
	// HTTPAddress is the host:port the HTTP server listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds request handling, including the answering call.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds network settings used by the client transport layer.
type Adapter struct {
	// HTTPAddress is the backend API endpoint address used by the client.
	// Env: ADAPTER_HTTP_ADDRESS
	HTTPAddress string `env:"HTTP_ADDRESS"`

	// RequestTimeout is the default timeout for outbound client requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers contains client background job settings.
type Workers struct {
	// RefreshInterval defines how often the background conversation-list
	// refresher runs. Zero disables the worker.
	// Env: WORKERS_REFRESH_INTERVAL
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`
}

// GetStructuredConfig builds the merged configuration from environment
// variables, command-line flags, and the optional JSON file, in that order.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
