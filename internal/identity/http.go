package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/narahq/nara-chat/internal/config"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/models"
)

type httpProvider struct {
	client *resty.Client
	logger *logger.Logger

	mu      sync.RWMutex
	session models.Session
	held    bool
}

// sessionPayload is the provider's wire representation of an issued session.
type sessionPayload struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	ExpiresIn    int64              `json:"expires_in"`
	ExpiresAt    int64              `json:"expires_at"`
	User         models.SessionUser `json:"user"`
}

// NewHTTPProvider constructs a [Provider] backed by a GoTrue-compatible REST
// endpoint. The public API key is attached to every request via the "apikey"
// header, matching the provider's convention.
//
// Returns an error if identityCfg.URL is empty or cannot be parsed.
func NewHTTPProvider(identityCfg config.ClientIdentity, log *logger.Logger) (Provider, error) {
	baseURL, err := normalizeBaseURL(identityCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid identity provider address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("apikey", identityCfg.APIKey)

	return &httpProvider{client: client, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// CurrentSession implements [Provider].
func (p *httpProvider) CurrentSession() (models.Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session, p.held
}

// SignIn implements [Provider]. It POSTs the credentials to
// POST /token?grant_type=password and adopts the issued session.
func (p *httpProvider) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	var payload sessionPayload

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&payload).
		Post("/token")
	if err != nil {
		return models.Session{}, fmt.Errorf("sign in request: %w", err)
	}

	if resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnauthorized {
		return models.Session{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, strings.TrimSpace(string(resp.Body())))
	}
	if resp.IsError() {
		return models.Session{}, providerError(resp)
	}

	session := payload.toSession()
	p.adopt(session)
	p.logger.Debug().Str("email", session.User.Email).Msg("signed in")

	return session, nil
}

// SignUp implements [Provider]. It POSTs the credentials to POST /signup.
// Providers with email confirmation enabled return no usable token; in that
// case the returned session is empty and not adopted.
func (p *httpProvider) SignUp(ctx context.Context, email, password string) (models.Session, error) {
	var payload sessionPayload

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&payload).
		Post("/signup")
	if err != nil {
		return models.Session{}, fmt.Errorf("sign up request: %w", err)
	}

	if resp.StatusCode() == http.StatusUnprocessableEntity || resp.StatusCode() == http.StatusConflict {
		return models.Session{}, fmt.Errorf("%w: %s", ErrEmailTaken, strings.TrimSpace(string(resp.Body())))
	}
	if resp.IsError() {
		return models.Session{}, providerError(resp)
	}

	session := payload.toSession()
	if session.AccessToken != "" {
		p.adopt(session)
	}

	return session, nil
}

// Refresh implements [Provider]. It exchanges the held refresh token via
// POST /token?grant_type=refresh_token. The held session is replaced only on
// success, so a failed refresh leaves the previous (possibly still valid)
// session usable.
func (p *httpProvider) Refresh(ctx context.Context) (models.Session, error) {
	current, held := p.CurrentSession()
	if !held {
		return models.Session{}, ErrNoSession
	}

	var payload sessionPayload

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": current.RefreshToken}).
		SetResult(&payload).
		Post("/token")
	if err != nil {
		return models.Session{}, fmt.Errorf("refresh request: %w", err)
	}
	if resp.IsError() {
		return models.Session{}, providerError(resp)
	}

	session := payload.toSession()
	p.adopt(session)
	p.logger.Debug().Time("expires_at", session.ExpiresAt).Msg("session refreshed")

	return session, nil
}

// SignOut implements [Provider]. The held session is dropped unconditionally;
// revocation failure at the provider is reported but does not resurrect it.
func (p *httpProvider) SignOut(ctx context.Context) error {
	current, held := p.CurrentSession()

	p.mu.Lock()
	p.session = models.Session{}
	p.held = false
	p.mu.Unlock()

	if !held {
		return nil
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+current.AccessToken).
		Post("/logout")
	if err != nil {
		return fmt.Errorf("sign out request: %w", err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusUnauthorized {
		return providerError(resp)
	}

	return nil
}

func (p *httpProvider) adopt(session models.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = session
	p.held = true
}

func (s sessionPayload) toSession() models.Session {
	expiresAt := time.Unix(s.ExpiresAt, 0)
	if s.ExpiresAt == 0 {
		expiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}

	return models.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         s.User,
	}
}

func providerError(resp *resty.Response) error {
	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("identity provider %d: %s", resp.StatusCode(), body)
}
