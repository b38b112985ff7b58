package service

import (
	"context"
	"fmt"

	"github.com/narahq/nara-chat/internal/identity"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/state"
)

type clientAuthService struct {
	provider identity.Provider
	chats    ChatService
	state    *state.Store
	logger   *logger.Logger
}

// NewClientAuthService wires account access to the identity provider and the
// local conversation state.
func NewClientAuthService(provider identity.Provider, chats ChatService, st *state.Store, log *logger.Logger) ClientAuthService {
	return &clientAuthService{provider: provider, chats: chats, state: st, logger: log}
}

func (s *clientAuthService) SignIn(ctx context.Context, email, password string) error {
	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	s.logger.Info().Str("user_id", session.User.ID).Msg("signed in")

	if err := s.chats.RefreshConversations(ctx); err != nil {
		// The session is valid; the list will load on the next refresh.
		s.logger.Warn().Err(err).Msg("initial conversation list fetch failed")
	}
	return nil
}

func (s *clientAuthService) SignUp(ctx context.Context, email, password string) error {
	session, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign up: %w", err)
	}

	if session.AccessToken == "" {
		// Email confirmation required; no session until the user confirms
		// and signs in.
		s.logger.Info().Str("email", email).Msg("registration pending email confirmation")
		return nil
	}

	s.logger.Info().Str("user_id", session.User.ID).Msg("registered and signed in")

	if err := s.chats.RefreshConversations(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial conversation list fetch failed")
	}
	return nil
}

func (s *clientAuthService) SignOut(ctx context.Context) error {
	err := s.provider.SignOut(ctx)
	// Local state is cleared even when remote revocation fails; the
	// provider has already dropped the session on its side of the call.
	s.state.Reset()
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
