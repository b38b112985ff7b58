package service

import "errors"

var (
	// ErrQuestionRequired indicates an ask request with no question text.
	ErrQuestionRequired = errors.New("question is required")

	// ErrTitleRequired indicates a rename request with no title.
	ErrTitleRequired = errors.New("title is required")

	// ErrAnswerFailed indicates the upstream completion call failed; the
	// exchange was not persisted.
	ErrAnswerFailed = errors.New("failed to generate answer")
)
