package models

import "time"

// Session is the authentication credential issued by the identity provider.
// It is owned exclusively by the identity layer and is never persisted
// beyond the lifetime of the process.
type Session struct {
	// AccessToken is the opaque bearer token attached to every backend call.
	AccessToken string `json:"access_token"`

	// RefreshToken is the single-use token exchanged for a fresh session
	// when AccessToken approaches expiry.
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the absolute instant at which AccessToken stops being
	// accepted by the backend. Callers must never assume freshness without
	// checking it against the current clock.
	ExpiresAt time.Time `json:"-"`

	// User describes the authenticated account the session belongs to.
	User SessionUser `json:"user"`
}

// SessionUser is the subset of the identity provider's user record that the
// client needs: a stable subject identifier and the sign-in email.
type SessionUser struct {
	// ID is the provider-assigned subject identifier ("sub" claim).
	ID string `json:"id"`

	// Email is the address the user signed in with. Shown in the UI only.
	Email string `json:"email"`
}

// ExpiresWithin reports whether the session expires within margin of now.
// An already-expired session also reports true.
func (s Session) ExpiresWithin(now time.Time, margin time.Duration) bool {
	return !s.ExpiresAt.After(now.Add(margin))
}
