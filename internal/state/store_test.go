package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(logger.Nop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedConversations(s *Store) {
	s.SetConversations([]models.Conversation{
		{ID: "c-2", Title: "Karma and rebirth"},
		{ID: "c-1", Title: models.DefaultConversationTitle},
	})
}

// ── Conversations and selection ──

func TestStore_SetConversations_PreservesServerOrder(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)

	conversations := s.Conversations()
	require.Len(t, conversations, 2)
	assert.Equal(t, "c-2", conversations[0].ID)
	assert.Equal(t, "c-1", conversations[1].ID)
}

func TestStore_SetConversations_DropsVanishedState(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)

	require.True(t, s.Select("c-1"))
	require.True(t, s.SetMessages("c-1", []models.Message{{ID: "m-1"}}))
	require.True(t, s.RequestDelete("c-1"))

	// Server no longer knows c-1.
	s.SetConversations([]models.Conversation{{ID: "c-2", Title: "Karma and rebirth"}})

	_, active := s.Active()
	assert.False(t, active)
	_, cached := s.Messages("c-1")
	assert.False(t, cached)
	_, pending := s.PendingDelete()
	assert.False(t, pending)
}

func TestStore_Select_RefusesUnknownID(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)

	assert.False(t, s.Select("c-404"))
	_, active := s.Active()
	assert.False(t, active)
}

func TestStore_ConversationTitle(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)

	title, ok := s.ConversationTitle("c-1")
	require.True(t, ok)
	assert.Equal(t, models.DefaultConversationTitle, title)

	_, ok = s.ConversationTitle("c-404")
	assert.False(t, ok)
}

// ── Messages and the stale-response rule ──

func TestStore_SetMessages_KeepsResultForLiveConversation(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)

	require.True(t, s.SetMessages("c-1", []models.Message{
		{ID: "m-1", UserText: "What is dharma?", AssistantText: "Dharma is..."},
	}))

	msgs, ok := s.Messages("c-1")
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "What is dharma?", msgs[0].UserText)
}

func TestStore_SetMessages_DropsResultForDeletedConversation(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)

	// The fetch for c-1 completes after c-1 was deleted.
	s.CompleteDelete("c-1")

	assert.False(t, s.SetMessages("c-1", []models.Message{{ID: "m-1"}}))
	_, ok := s.Messages("c-1")
	assert.False(t, ok)
}

func TestStore_SetMessages_NonActiveConversationIsAllowed(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	require.True(t, s.Select("c-2"))

	require.True(t, s.SetMessages("c-1", []models.Message{{ID: "m-1"}}))

	msgs, ok := s.Messages("c-1")
	require.True(t, ok)
	assert.Len(t, msgs, 1)
}

// ── Optimistic feedback ──

func TestStore_ApplyFeedback_SetsVerdictAndRevertRestoresIt(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	require.True(t, s.SetMessages("c-1", []models.Message{
		{ID: "m-1", AssistantText: "Dharma is..."},
	}))

	revert, ok := s.ApplyFeedback("m-1", true)
	require.True(t, ok)

	msgs, _ := s.Messages("c-1")
	require.NotNil(t, msgs[0].ResponseLiked)
	assert.True(t, *msgs[0].ResponseLiked)

	revert()

	msgs, _ = s.Messages("c-1")
	assert.Nil(t, msgs[0].ResponseLiked)
}

func TestStore_ApplyFeedback_RevertRestoresPriorVerdict(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	liked := true
	require.True(t, s.SetMessages("c-1", []models.Message{
		{ID: "m-1", ResponseLiked: &liked},
	}))

	revert, ok := s.ApplyFeedback("m-1", false)
	require.True(t, ok)

	msgs, _ := s.Messages("c-1")
	assert.False(t, *msgs[0].ResponseLiked)

	revert()

	msgs, _ = s.Messages("c-1")
	assert.True(t, *msgs[0].ResponseLiked)
}

func TestStore_ApplyFeedback_UnknownMessage(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)

	_, ok := s.ApplyFeedback("m-404", true)
	assert.False(t, ok)
}

// ── Two-step delete ──

func TestStore_RequestDelete_LeavesStateUntouched(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	require.True(t, s.Select("c-1"))
	require.True(t, s.SetMessages("c-1", []models.Message{{ID: "m-1"}}))

	require.True(t, s.RequestDelete("c-1"))

	id, pending := s.PendingDelete()
	require.True(t, pending)
	assert.Equal(t, "c-1", id)

	// Nothing deleted yet.
	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "c-1", active)
	_, cached := s.Messages("c-1")
	assert.True(t, cached)
	assert.Len(t, s.Conversations(), 2)
}

func TestStore_CancelDelete(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	require.True(t, s.RequestDelete("c-1"))

	s.CancelDelete()

	_, pending := s.PendingDelete()
	assert.False(t, pending)
	assert.Len(t, s.Conversations(), 2)
}

func TestStore_CompleteDelete_ClearsSelectionOnlyWhenItMatched(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	require.True(t, s.Select("c-2"))

	s.CompleteDelete("c-1")

	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "c-2", active)

	conversations := s.Conversations()
	require.Len(t, conversations, 1)
	assert.Equal(t, "c-2", conversations[0].ID)
}

func TestStore_CompleteDelete_ActiveConversation(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	require.True(t, s.Select("c-1"))
	require.True(t, s.SetMessages("c-1", []models.Message{{ID: "m-1"}}))
	require.True(t, s.RequestDelete("c-1"))

	s.CompleteDelete("c-1")

	_, active := s.Active()
	assert.False(t, active)
	_, cached := s.Messages("c-1")
	assert.False(t, cached)
	_, pending := s.PendingDelete()
	assert.False(t, pending)
}

// ── Creation ──

func TestStore_BeginCreate_RefusesConcurrentCreate(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.BeginCreate())
	assert.False(t, s.BeginCreate())
	assert.True(t, s.CreatePending())
}

func TestStore_FinishCreate_ActivatesNewConversation(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	require.True(t, s.BeginCreate())

	s.FinishCreate(models.Conversation{ID: "c-9", Title: models.DefaultConversationTitle})

	assert.False(t, s.CreatePending())
	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "c-9", active)
	assert.Equal(t, "c-9", s.Conversations()[0].ID)
}

func TestStore_SetConversations_KeepsJustCreatedConversation(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	require.True(t, s.BeginCreate())
	s.FinishCreate(models.Conversation{ID: "c-9", Title: models.DefaultConversationTitle})

	// A list fetched before the create committed arrives without c-9: the
	// fresh conversation and its selection survive.
	s.SetConversations([]models.Conversation{{ID: "c-2", Title: "Karma and rebirth"}})

	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "c-9", active)
	assert.Equal(t, "c-9", s.Conversations()[0].ID)

	// Once the server's list carries c-9 it is plain state again and a
	// later list without it drops it.
	s.SetConversations([]models.Conversation{
		{ID: "c-9", Title: models.DefaultConversationTitle},
		{ID: "c-2", Title: "Karma and rebirth"},
	})
	s.SetConversations([]models.Conversation{{ID: "c-2", Title: "Karma and rebirth"}})

	_, ok = s.Active()
	assert.False(t, ok)
	assert.Len(t, s.Conversations(), 1)
}

func TestStore_AbortCreate(t *testing.T) {
	s := newTestStore(t)
	require.True(t, s.BeginCreate())

	s.AbortCreate()

	assert.False(t, s.CreatePending())
	require.True(t, s.BeginCreate())
}

// ── Draft and reset ──

func TestStore_Draft(t *testing.T) {
	s := newTestStore(t)

	s.SetDraft("What is dharma?")
	assert.Equal(t, "What is dharma?", s.Draft())

	s.ClearDraft()
	assert.Empty(t, s.Draft())
}

func TestStore_Reset(t *testing.T) {
	s := newTestStore(t)
	seedConversations(s)
	require.True(t, s.Select("c-1"))
	require.True(t, s.SetMessages("c-1", []models.Message{{ID: "m-1"}}))
	s.SetDraft("unsent")

	s.Reset()

	assert.Empty(t, s.Conversations())
	_, active := s.Active()
	assert.False(t, active)
	_, cached := s.Messages("c-1")
	assert.False(t, cached)
	assert.Empty(t, s.Draft())
}

// ── Change events ──

func TestStore_Changes_PublishesMutations(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := s.Changes(ctx)
	require.NoError(t, err)

	seedConversations(s)

	select {
	case ch := <-changes:
		assert.Equal(t, KindConversations, ch.Kind)
	case <-time.After(time.Second):
		t.Fatal("no change event received")
	}

	require.True(t, s.Select("c-1"))

	select {
	case ch := <-changes:
		require.Equal(t, KindSelection, ch.Kind)
		assert.Equal(t, "c-1", ch.ConversationID)
	case <-time.After(time.Second):
		t.Fatal("no selection event received")
	}
}
