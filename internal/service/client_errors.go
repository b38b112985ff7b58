package service

import "errors"

var (
	// ErrEmptyQuestion indicates a blank or whitespace-only question.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrCreateInFlight indicates a conversation create is already pending;
	// the unborn conversation has no id yet, so nothing can target it.
	ErrCreateInFlight = errors.New("conversation create already in flight")

	// ErrUnknownConversation indicates the id is not in the conversation set.
	ErrUnknownConversation = errors.New("unknown conversation")

	// ErrUnknownMessage indicates the message id is not in any cached history.
	ErrUnknownMessage = errors.New("unknown message")

	// ErrNoPendingDelete indicates ConfirmDelete was called without a prior
	// RequestDelete.
	ErrNoPendingDelete = errors.New("no delete pending confirmation")
)
