// Package identity implements the client-side boundary with the external
// identity provider.
//
// The provider is treated as an opaque collaborator exposing session
// issuance, refresh, and sign-out. The HTTP implementation targets a
// GoTrue-compatible REST surface ([NewHTTPProvider]); nothing outside this
// package depends on the wire protocol.
//
// The provider owns the current [models.Session]: it is held in memory for
// the lifetime of the process and is never written to disk.
package identity

import (
	"context"

	"github.com/narahq/nara-chat/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/identity_provider_mock.go -package=mock

// Provider defines session issuance and renewal against the external
// identity provider. Implementations own the current session; all methods
// are safe for concurrent use.
type Provider interface {
	// CurrentSession returns the session currently held by the provider.
	// The second return value is false when no session exists (signed out
	// or never signed in).
	CurrentSession() (models.Session, bool)

	// SignIn exchanges email/password credentials for a new session and
	// adopts it as the current one. Returns [ErrInvalidCredentials]
	// (wrapped) when the provider rejects the credentials.
	SignIn(ctx context.Context, email, password string) (models.Session, error)

	// SignUp registers a new account and, when the provider confirms it
	// immediately, adopts the returned session. Returns [ErrEmailTaken]
	// (wrapped) when the address is already registered.
	SignUp(ctx context.Context, email, password string) (models.Session, error)

	// Refresh exchanges the held refresh token for a fresh session and
	// adopts it. Returns [ErrNoSession] when nothing is held, or a wrapped
	// provider error when the exchange fails. On failure the previously
	// held session is left in place.
	Refresh(ctx context.Context) (models.Session, error)

	// SignOut revokes the held session at the provider and drops it
	// locally. The local session is dropped even when revocation fails.
	SignOut(ctx context.Context) error
}
