package identity

import "errors"

var (
	// ErrNoSession indicates that an operation requiring a held session was
	// called while signed out.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidCredentials indicates the provider rejected the supplied
	// email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken indicates a sign-up attempt for an already registered
	// address.
	ErrEmailTaken = errors.New("email already registered")
)
