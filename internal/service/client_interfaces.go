package service

import (
	"context"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_services_mock.go -package=mock

// ClientAuthService defines the client-side contract for account access.
// Implementations delegate credential handling entirely to the external
// identity provider; no password material is stored or derived locally.
type ClientAuthService interface {
	// SignIn exchanges credentials for a session and loads the user's
	// conversation list into the state store.
	SignIn(ctx context.Context, email, password string) error

	// SignUp registers a new account. When the provider requires email
	// confirmation no session exists afterwards; the caller falls back to
	// the sign-in screen.
	SignUp(ctx context.Context, email, password string) error

	// SignOut revokes the session and resets all local conversation state.
	SignOut(ctx context.Context) error
}

// ChatService defines the client-side contract for conversation and message
// operations. Every method keeps the state store consistent with the server:
// mutations go remote first, then apply locally, then refetch what the
// server may have reordered. The lone exception is feedback, which is
// applied optimistically and reverted on failure.
//
// Mutations targeting the same conversation are serialized; operations on
// different conversations proceed independently.
type ChatService interface {
	// RefreshConversations refetches the conversation list. The server's
	// ordering is adopted as-is.
	RefreshConversations(ctx context.Context) error

	// Ask submits a question in the active conversation. With no active
	// conversation one is created first, seeded with the question, and
	// activated. A blank question is refused with ErrEmptyQuestion. On
	// success the draft is cleared and both the conversation list and the
	// target's messages are refetched; on failure all local state is left
	// untouched.
	Ask(ctx context.Context, question string) error

	// NewChat creates an empty conversation, activates it, and clears the
	// draft. Refused with ErrCreateInFlight while another create is
	// pending.
	NewChat(ctx context.Context) error

	// SelectConversation activates id and fetches its message history.
	SelectConversation(ctx context.Context, id string) error

	// RequestDelete marks id for deletion pending confirmation. Nothing is
	// deleted yet.
	RequestDelete(id string) error

	// ConfirmDelete deletes the conversation marked by RequestDelete:
	// remote delete, then local removal, then a list refetch. With no
	// pending delete it fails with ErrNoPendingDelete.
	ConfirmDelete(ctx context.Context) error

	// CancelDelete abandons the pending delete.
	CancelDelete()

	// SubmitFeedback records a like/dislike verdict on an assistant
	// response. The verdict is applied locally first; if the remote write
	// fails the previous verdict is restored and the error returned.
	SubmitFeedback(ctx context.Context, messageID string, liked bool) error

	// AutoRename names the active conversation after the user's first
	// typed input, while the conversation still wears its placeholder
	// title. Blank input and already-renamed conversations are no-ops.
	AutoRename(ctx context.Context, input string) error
}
