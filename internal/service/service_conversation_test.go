package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/store"
	"github.com/narahq/nara-chat/models"
)

func newTestConversationSvc(t *testing.T) (ConversationService, *memConversationRepo, *memMessageRepo) {
	t.Helper()

	conversations := newMemConversationRepo()
	messages := newMemMessageRepo()
	return NewConversationService(conversations, messages, logger.Nop()), conversations, messages
}

func TestConversationService_CreateAndList(t *testing.T) {
	svc, _, _ := newTestConversationSvc(t)
	ctx := testContext()

	created, err := svc.Create(ctx, 7, "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConversationTitle, created.Title)

	listed, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// Another user sees nothing.
	other, err := svc.List(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestConversationService_Rename(t *testing.T) {
	svc, conversations, _ := newTestConversationSvc(t)
	ctx := testContext()

	c, err := conversations.Create(ctx, 7, "")
	require.NoError(t, err)

	require.NoError(t, svc.Rename(ctx, 7, c.ID, "What is dharma?"))
	renamed, err := conversations.Get(ctx, 7, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "What is dharma?", renamed.Title)
}

func TestConversationService_Rename_EmptyTitle(t *testing.T) {
	svc, _, _ := newTestConversationSvc(t)

	assert.ErrorIs(t, svc.Rename(testContext(), 7, "c-1", ""), ErrTitleRequired)
}

func TestConversationService_Messages_ChecksOwnership(t *testing.T) {
	svc, conversations, messages := newTestConversationSvc(t)
	ctx := testContext()

	c, err := conversations.Create(ctx, 7, "Karma and rebirth")
	require.NoError(t, err)
	_, err = messages.Append(ctx, c.ID, "What is karma?", "Karma is action.")
	require.NoError(t, err)

	got, err := svc.Messages(ctx, 7, c.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Same conversation, different user: invisible.
	_, err = svc.Messages(ctx, 8, c.ID)
	assert.ErrorIs(t, err, store.ErrConversationNotFound)
}

func TestConversationService_Delete(t *testing.T) {
	svc, conversations, _ := newTestConversationSvc(t)
	ctx := testContext()

	c, err := conversations.Create(ctx, 7, "Karma and rebirth")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 7, c.ID))
	_, err = conversations.Get(ctx, 7, c.ID)
	assert.ErrorIs(t, err, store.ErrConversationNotFound)
}

func TestConversationService_SetFeedback(t *testing.T) {
	svc, conversations, messages := newTestConversationSvc(t)
	ctx := testContext()

	c, err := conversations.Create(ctx, 7, "Karma and rebirth")
	require.NoError(t, err)
	m, err := messages.Append(ctx, c.ID, "q", "a")
	require.NoError(t, err)

	require.NoError(t, svc.SetFeedback(ctx, 7, m.ID, true))

	stored := messages.messages[c.ID]
	require.NotNil(t, stored[0].ResponseLiked)
	assert.True(t, *stored[0].ResponseLiked)

	assert.ErrorIs(t, svc.SetFeedback(ctx, 7, "m-404", true), store.ErrMessageNotFound)
}
