// Package adapter provides the transport layer for communicating with the
// nara-chat backend.
//
// The primary abstraction is [BackendAdapter], which decouples the client
// services from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPBackendAdapter]) that attaches a bearer token
// obtained from the session manager to every call and implements the
// one-retry-on-unauthorized policy.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrNotFound] for 404, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/narahq/nara-chat/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/backend_adapter_mock.go -package=mock

// BackendAdapter defines transport-agnostic communication with the nara-chat
// backend. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel
// values defined in this package.
//
// Every method may fail with [ErrUnauthorized], which callers must treat as
// "the user has to re-authenticate", never as retryable: the implementation
// has already spent its single forced-refresh-and-retry before surfacing it.
type BackendAdapter interface {
	// Conversations fetches the caller's conversations ordered by
	// server-assigned recency, most recent first.
	Conversations(ctx context.Context) ([]models.Conversation, error)

	// CreateConversation creates a new conversation. question may be empty
	// (explicit "new chat"); when present it seeds the title.
	CreateConversation(ctx context.Context, question string) (models.CreateConversationResponse, error)

	// RenameConversation replaces the title of the conversation with id.
	RenameConversation(ctx context.Context, id, title string) error

	// DeleteConversation permanently deletes the conversation with id and
	// all of its messages.
	DeleteConversation(ctx context.Context, id string) error

	// Messages fetches the full, server-ordered exchange history of the
	// conversation with id.
	Messages(ctx context.Context, id string) ([]models.Message, error)

	// Ask submits question to the conversation with conversationID and
	// returns the assistant's answer.
	Ask(ctx context.Context, question, conversationID string) (models.AskResponse, error)

	// SendFeedback records a like (true) or dislike (false) for the
	// assistant answer of the message with messageID.
	SendFeedback(ctx context.Context, messageID string, liked bool) error
}
