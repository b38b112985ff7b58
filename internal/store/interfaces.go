package store

import (
	"context"

	"github.com/narahq/nara-chat/models"
)

// UserRepository manages the users table. Accounts mirror identities issued
// by the external provider and are provisioned lazily on first request.
type UserRepository interface {
	// GetOrCreateUser returns the user for the given provider subject,
	// creating the row if this is the first request from that identity.
	GetOrCreateUser(ctx context.Context, subjectID, email string) (models.User, error)
}

// ConversationRepository manages the conversations table. Every method takes
// the owning user's id; rows belonging to other users are invisible and
// produce [ErrConversationNotFound].
type ConversationRepository interface {
	// ListByUser returns the user's conversations, most recently updated
	// first.
	ListByUser(ctx context.Context, userID int64) ([]models.Conversation, error)

	// Get returns a single conversation owned by the user.
	Get(ctx context.Context, userID int64, id string) (models.Conversation, error)

	// Create inserts a conversation with a fresh identifier and the given
	// title.
	Create(ctx context.Context, userID int64, title string) (models.Conversation, error)

	// Rename updates the title and bumps updated_at.
	Rename(ctx context.Context, userID int64, id, title string) error

	// Delete removes the conversation and all of its messages.
	Delete(ctx context.Context, userID int64, id string) error

	// Touch bumps updated_at, moving the conversation to the top of the
	// list ordering.
	Touch(ctx context.Context, userID int64, id string) error
}

// MessageRepository manages the messages table.
type MessageRepository interface {
	// ListByConversation returns the conversation's exchanges oldest first.
	// Ownership must have been checked by the caller.
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)

	// Append inserts a question/answer pair and returns the stored message.
	Append(ctx context.Context, conversationID, userText, assistantText string) (models.Message, error)

	// SetFeedback records a like/dislike verdict on a message, scoped to
	// conversations owned by userID.
	SetFeedback(ctx context.Context, userID int64, messageID string, liked bool) error
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
