package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/store"
	"github.com/narahq/nara-chat/models"
)

func testContext() context.Context {
	return context.Background()
}

// ── In-memory repositories ──

type memConversationRepo struct {
	nextID        int
	conversations map[string]models.Conversation
	owners        map[string]int64
	touched       []string
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		conversations: make(map[string]models.Conversation),
		owners:        make(map[string]int64),
	}
}

func (r *memConversationRepo) ListByUser(_ context.Context, userID int64) ([]models.Conversation, error) {
	var out []models.Conversation
	for id, c := range r.conversations {
		if r.owners[id] == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memConversationRepo) Get(_ context.Context, userID int64, id string) (models.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok || r.owners[id] != userID {
		return models.Conversation{}, store.ErrConversationNotFound
	}
	return c, nil
}

func (r *memConversationRepo) Create(_ context.Context, userID int64, title string) (models.Conversation, error) {
	if title == "" {
		title = models.DefaultConversationTitle
	}
	r.nextID++
	c := models.Conversation{ID: fmt.Sprintf("c-%d", r.nextID), Title: title, CreatedAt: time.Now().UTC()}
	r.conversations[c.ID] = c
	r.owners[c.ID] = userID
	return c, nil
}

func (r *memConversationRepo) Rename(_ context.Context, userID int64, id, title string) error {
	c, ok := r.conversations[id]
	if !ok || r.owners[id] != userID {
		return store.ErrConversationNotFound
	}
	c.Title = title
	r.conversations[id] = c
	return nil
}

func (r *memConversationRepo) Delete(_ context.Context, userID int64, id string) error {
	if _, ok := r.conversations[id]; !ok || r.owners[id] != userID {
		return store.ErrConversationNotFound
	}
	delete(r.conversations, id)
	delete(r.owners, id)
	return nil
}

func (r *memConversationRepo) Touch(_ context.Context, _ int64, id string) error {
	r.touched = append(r.touched, id)
	return nil
}

type memMessageRepo struct {
	nextID   int
	messages map[string][]models.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[string][]models.Message)}
}

func (r *memMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]models.Message, error) {
	return append([]models.Message(nil), r.messages[conversationID]...), nil
}

func (r *memMessageRepo) Append(_ context.Context, conversationID, userText, assistantText string) (models.Message, error) {
	r.nextID++
	m := models.Message{
		ID:            fmt.Sprintf("m-%d", r.nextID),
		UserText:      userText,
		AssistantText: assistantText,
		CreatedAt:     time.Now().UTC(),
	}
	r.messages[conversationID] = append(r.messages[conversationID], m)
	return m, nil
}

func (r *memMessageRepo) SetFeedback(_ context.Context, _ int64, messageID string, liked bool) error {
	for convID, msgs := range r.messages {
		for i := range msgs {
			if msgs[i].ID == messageID {
				r.messages[convID][i].ResponseLiked = &liked
				return nil
			}
		}
	}
	return store.ErrMessageNotFound
}

// ── Fake completion backend ──

type fakeCompleter struct {
	lastRequest openai.ChatCompletionRequest
	answer      string
	err         error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.answer}},
		},
	}, nil
}

func newTestAskSvc(t *testing.T) (AskService, *fakeCompleter, *memConversationRepo, *memMessageRepo) {
	t.Helper()

	completer := &fakeCompleter{answer: "Dharma is the cosmic order."}
	conversations := newMemConversationRepo()
	messages := newMemMessageRepo()
	svc := NewAskServiceWithCompleter(completer, openai.GPT4o, conversations, messages, logger.Nop())

	return svc, completer, conversations, messages
}

// ── Ask ──

func TestAskService_Ask_EmptyQuestion(t *testing.T) {
	svc, _, _, _ := newTestAskSvc(t)

	_, err := svc.Ask(testContext(), 7, "  ", "")
	assert.ErrorIs(t, err, ErrQuestionRequired)
}

func TestAskService_Ask_CreatesConversationTitledWithQuestion(t *testing.T) {
	svc, _, conversations, messages := newTestAskSvc(t)

	answer, err := svc.Ask(testContext(), 7, "What is dharma?", "")
	require.NoError(t, err)
	assert.Equal(t, "Dharma is the cosmic order.", answer.Response)
	assert.Empty(t, answer.History)

	require.Len(t, conversations.conversations, 1)
	for _, c := range conversations.conversations {
		assert.Equal(t, "What is dharma?", c.Title)
		stored := messages.messages[c.ID]
		require.Len(t, stored, 1)
		assert.Equal(t, "What is dharma?", stored[0].UserText)
		assert.Equal(t, "Dharma is the cosmic order.", stored[0].AssistantText)
	}
}

func TestAskService_Ask_ReplaysHistoryAsTurns(t *testing.T) {
	svc, completer, conversations, messages := newTestAskSvc(t)
	ctx := testContext()

	c, err := conversations.Create(ctx, 7, "Karma and rebirth")
	require.NoError(t, err)
	_, err = messages.Append(ctx, c.ID, "What is karma?", "Karma is action.")
	require.NoError(t, err)

	answer, err := svc.Ask(ctx, 7, "And its fruits?", c.ID)
	require.NoError(t, err)

	// Returned history holds the exchanges that preceded this one.
	require.Len(t, answer.History, 1)
	assert.Equal(t, "What is karma?", answer.History[0].UserText)

	chat := completer.lastRequest.Messages
	require.Len(t, chat, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, chat[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, chat[1].Role)
	assert.Equal(t, "What is karma?", chat[1].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, chat[2].Role)
	assert.Equal(t, "Karma is action.", chat[2].Content)
	assert.Equal(t, "And its fruits?", chat[3].Content)

	// Conversation moved to the top of the ordering.
	assert.Equal(t, []string{c.ID}, conversations.touched)
}

func TestAskService_Ask_CompletionFailureIsNotPersisted(t *testing.T) {
	svc, completer, conversations, messages := newTestAskSvc(t)
	ctx := testContext()

	c, err := conversations.Create(ctx, 7, "Karma and rebirth")
	require.NoError(t, err)
	completer.err = errors.New("rate limited")

	_, err = svc.Ask(ctx, 7, "What is karma?", c.ID)
	assert.ErrorIs(t, err, ErrAnswerFailed)
	assert.Empty(t, messages.messages[c.ID])
}

func TestAskService_Ask_StaleConversationIDCreatesFreshOne(t *testing.T) {
	svc, _, conversations, _ := newTestAskSvc(t)

	_, err := svc.Ask(testContext(), 7, "What is dharma?", "c-404")
	require.NoError(t, err)
	assert.Len(t, conversations.conversations, 1)
}

// ── Response cleaning ──

func TestCleanResponse(t *testing.T) {
	raw := "Dharma ***matters***.\n\n\n\nIt orders the cosmos.   \n"
	assert.Equal(t, "Dharma **matters**.\n\nIt orders the cosmos.", cleanResponse(raw))
}
