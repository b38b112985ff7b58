package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/mock"
	"github.com/narahq/nara-chat/internal/state"
	"github.com/narahq/nara-chat/models"
)

func newTestAuthSvc(t *testing.T, ctrl *gomock.Controller) (ClientAuthService, *mock.MockProvider, *mock.MockBackendAdapter, *state.Store) {
	t.Helper()

	provider := mock.NewMockProvider(ctrl)
	backend := mock.NewMockBackendAdapter(ctrl)
	st := state.NewStore(logger.Nop())
	t.Cleanup(func() { _ = st.Close() })

	chats := NewClientChatService(backend, st, logger.Nop())
	return NewClientAuthService(provider, chats, st, logger.Nop()), provider, backend, st
}

func testSession() models.Session {
	return models.Session{
		AccessToken:  "token",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         models.SessionUser{ID: "u-1", Email: "arjuna@example.com"},
	}
}

func TestAuthService_SignIn_LoadsConversations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, provider, backend, st := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	provider.EXPECT().SignIn(ctx, "arjuna@example.com", "secret").Return(testSession(), nil)
	backend.EXPECT().Conversations(ctx).
		Return([]models.Conversation{{ID: "c-1", Title: models.DefaultConversationTitle}}, nil)

	require.NoError(t, svc.SignIn(ctx, "arjuna@example.com", "secret"))
	assert.Len(t, st.Conversations(), 1)
}

func TestAuthService_SignIn_BadCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, provider, _, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	provider.EXPECT().SignIn(ctx, "arjuna@example.com", "wrong").
		Return(models.Session{}, errors.New("invalid login credentials"))

	assert.Error(t, svc.SignIn(ctx, "arjuna@example.com", "wrong"))
}

func TestAuthService_SignIn_ListFetchFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, provider, backend, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	provider.EXPECT().SignIn(ctx, "arjuna@example.com", "secret").Return(testSession(), nil)
	backend.EXPECT().Conversations(ctx).Return(nil, errors.New("server unavailable"))

	assert.NoError(t, svc.SignIn(ctx, "arjuna@example.com", "secret"))
}

func TestAuthService_SignUp_PendingConfirmationSkipsListFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, provider, _, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	provider.EXPECT().SignUp(ctx, "arjuna@example.com", "secret").Return(models.Session{}, nil)

	assert.NoError(t, svc.SignUp(ctx, "arjuna@example.com", "secret"))
}

func TestAuthService_SignUp_ImmediateSessionLoadsConversations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, provider, backend, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	provider.EXPECT().SignUp(ctx, "arjuna@example.com", "secret").Return(testSession(), nil)
	backend.EXPECT().Conversations(ctx).Return(nil, nil)

	assert.NoError(t, svc.SignUp(ctx, "arjuna@example.com", "secret"))
}

func TestAuthService_SignOut_ResetsStateEvenOnRemoteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, provider, _, st := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	st.SetConversations([]models.Conversation{{ID: "c-1", Title: "Karma and rebirth"}})
	st.SetDraft("unsent")

	provider.EXPECT().SignOut(ctx).Return(errors.New("revocation failed"))

	require.Error(t, svc.SignOut(ctx))
	assert.Empty(t, st.Conversations())
	assert.Empty(t, st.Draft())
}
