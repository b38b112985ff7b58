package config

import "errors"

// Validation errors returned by the config views when required configuration
// groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, missing backend address).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidIdentityConfigs indicates invalid identity-provider settings
	// (for example, missing provider URL or verification secret).
	ErrInvalidIdentityConfigs = errors.New("invalid identity configuration")
	// ErrInvalidStorageConfigs indicates invalid server storage settings
	// (for example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidServerConfigs indicates invalid server network settings.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
)
