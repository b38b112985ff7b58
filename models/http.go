package models

// CreateConversationRequest is the body of POST /api/createnewconversation.
// Question is optional: when present it seeds the new conversation's title.
type CreateConversationRequest struct {
	Question string `json:"question,omitempty"`
}

// CreateConversationResponse carries the server-assigned identifier of a
// freshly created conversation.
type CreateConversationResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// RenameConversationRequest is the body of PUT /api/conversations/{id}/title.
type RenameConversationRequest struct {
	Title string `json:"title"`
}

// AskRequest is the body of POST /api/ask. ConversationID must reference an
// existing conversation owned by the caller.
type AskRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id"`
}

// AskResponse is the assistant's answer plus the exchanges the conversation
// held before this question; the current question/answer pair is not part of
// History. Clients wanting the full transcript refetch the messages.
type AskResponse struct {
	Response string    `json:"response"`
	History  []Message `json:"history"`
}

// FeedbackRequest is the body of POST /api/messages/{id}/feedback.
type FeedbackRequest struct {
	ResponseLiked bool `json:"response_liked"`
}

// StatusResponse is the generic success envelope returned by mutating
// endpoints that have no richer payload.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
