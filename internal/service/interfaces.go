package service

import (
	"context"

	"github.com/narahq/nara-chat/models"
)

// ConversationService is the server-side contract for conversation and
// message management. All operations are scoped to the authenticated user;
// resources owned by other users surface as not-found.
type ConversationService interface {
	// List returns the user's conversations, most recently updated first.
	List(ctx context.Context, userID int64) ([]models.Conversation, error)

	// Create starts a new conversation. An empty title yields the default
	// placeholder.
	Create(ctx context.Context, userID int64, title string) (models.Conversation, error)

	// Rename updates a conversation's title.
	Rename(ctx context.Context, userID int64, id, title string) error

	// Delete removes a conversation and its messages.
	Delete(ctx context.Context, userID int64, id string) error

	// Messages returns a conversation's exchanges oldest first.
	Messages(ctx context.Context, userID int64, id string) ([]models.Message, error)

	// SetFeedback records a like/dislike verdict on a message.
	SetFeedback(ctx context.Context, userID int64, messageID string, liked bool) error
}

// AskService is the server-side contract for answering a question inside a
// conversation.
type AskService interface {
	// Ask answers the question in the given conversation and persists the
	// exchange. An empty conversation id creates a conversation titled
	// with the question. The returned history holds the exchanges that
	// preceded this one.
	Ask(ctx context.Context, userID int64, question, conversationID string) (models.AskResponse, error)
}
