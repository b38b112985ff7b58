package models

import "time"

// DefaultConversationTitle is the sentinel title assigned by the server to a
// conversation created without a seed question. The client's auto-rename rule
// fires only while the locally cached title still equals this value.
const DefaultConversationTitle = "New Chat"

// Conversation is one chat thread between the user and the assistant.
// The identifier is assigned server-side on creation and is immutable.
type Conversation struct {
	// ID is the opaque server-assigned identifier.
	ID string `json:"id"`

	// Title is the display title. Starts at [DefaultConversationTitle] and
	// is renamed at most once automatically from the user's first input.
	Title string `json:"title"`

	// CreatedAt is the server-side creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// HasDefaultTitle reports whether the conversation still carries the sentinel
// title and is therefore eligible for the one-shot automatic rename.
func (c Conversation) HasDefaultTitle() bool {
	return c.Title == "" || c.Title == DefaultConversationTitle
}

// TableName returns the name of the database table
// associated with the Conversation model.
func (c Conversation) TableName() string {
	return "conversations"
}
