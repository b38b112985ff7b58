package models

import "time"

// Message is a single question/answer exchange inside a conversation.
// Ordering within a conversation is server-assigned and preserved by the
// client exactly as returned.
type Message struct {
	// ID is the opaque server-assigned identifier.
	ID string `json:"id"`

	// UserText is the question the user submitted.
	UserText string `json:"user"`

	// AssistantText is the assistant's rendered answer.
	AssistantText string `json:"assistant"`

	// ResponseLiked is the feedback tri-state: nil means no feedback was
	// given, true means liked, false means disliked.
	ResponseLiked *bool `json:"response_liked"`

	// CreatedAt is the server-side creation timestamp.
	CreatedAt time.Time `json:"-"`
}

// Liked reports whether the user explicitly liked the assistant's answer.
func (m Message) Liked() bool {
	return m.ResponseLiked != nil && *m.ResponseLiked
}

// Disliked reports whether the user explicitly disliked the assistant's answer.
func (m Message) Disliked() bool {
	return m.ResponseLiked != nil && !*m.ResponseLiked
}

// TableName returns the name of the database table
// associated with the Message model.
func (m Message) TableName() string {
	return "messages"
}
