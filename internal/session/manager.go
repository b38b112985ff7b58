// Package session keeps the held authentication token usable across an
// arbitrary sequence of backend calls.
//
// The [Manager] decides, for any outgoing call, whether the current session
// can be used as-is or must be renewed first. Renewal is coalesced: any
// number of concurrent callers observing a near-expiry session share one
// in-flight refresh against the identity provider. Duplicate refreshes in
// rapid succession are the most likely source of spurious authentication
// failures, so the single-flight guarantee is a correctness requirement, not
// an optimization.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/narahq/nara-chat/internal/identity"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/models"
)

// ExpiryMargin is how close to expiry a session may get before the manager
// refreshes it proactively instead of handing it out.
const ExpiryMargin = 5 * time.Minute

var (
	// ErrNoSession indicates there is no session to validate; the user must
	// sign in.
	ErrNoSession = errors.New("no active session")
	// ErrRefreshFailed indicates the identity provider refused to renew the
	// session. Treated as fatal: the user must re-authenticate.
	ErrRefreshFailed = errors.New("session refresh failed")
)

// Manager implements the token lifecycle policy on top of an
// [identity.Provider].
type Manager struct {
	provider identity.Provider
	logger   *logger.Logger
	group    singleflight.Group

	// now is swappable for tests.
	now func() time.Time
}

// NewManager constructs a Manager around the given provider.
func NewManager(provider identity.Provider, log *logger.Logger) *Manager {
	return &Manager{
		provider: provider,
		logger:   log,
		now:      time.Now,
	}
}

// EnsureValid returns a session that is safe to attach to an outgoing call.
//
// If no session is held it fails with [ErrNoSession]. If the held session
// expires within [ExpiryMargin] it is refreshed first; a failed refresh
// surfaces [ErrRefreshFailed] (wrapped). Otherwise the held session is
// returned unchanged. Calling EnsureValid twice in succession with a fresh
// session returns the identical session with no provider traffic.
func (m *Manager) EnsureValid(ctx context.Context) (models.Session, error) {
	current, held := m.provider.CurrentSession()
	if !held {
		return models.Session{}, ErrNoSession
	}

	if !current.ExpiresWithin(m.now(), ExpiryMargin) {
		return current, nil
	}

	m.logger.Debug().Time("expires_at", current.ExpiresAt).Msg("session near expiry, refreshing")
	return m.refresh(ctx)
}

// ForceRefresh renews the session regardless of how much lifetime remains.
// It is used by the request executor after an unauthorized response, when
// the backend has already rejected a token the margin check considered fine.
// Concurrent forced refreshes coalesce with each other and with proactive
// ones: all callers receive the result of the single underlying exchange,
// and the provider's held session is updated for every subsequent caller.
func (m *Manager) ForceRefresh(ctx context.Context) (models.Session, error) {
	return m.refresh(ctx)
}

func (m *Manager) refresh(ctx context.Context) (models.Session, error) {
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		refreshed, refreshErr := m.provider.Refresh(ctx)
		if refreshErr != nil {
			if errors.Is(refreshErr, identity.ErrNoSession) {
				return nil, ErrNoSession
			}
			return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, refreshErr)
		}
		return refreshed, nil
	})
	if err != nil {
		return models.Session{}, err
	}

	return v.(models.Session), nil
}
