package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/utils"
	"github.com/narahq/nara-chat/models"
)

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, models.StatusResponse{Status: "success", Message: "pong"}, http.StatusOK)
}

// authTest echoes the authenticated user resolved by the auth middleware.
// It exists so clients can verify a stored token without side effects.
func (h *Handler) authTest(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, user, http.StatusOK)
}

func (h *Handler) listConversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	conversations, err := h.services.Conversations.List(ctx, user.UserID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listConversations").Msg("error listing conversations")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	utils.WriteJSON(w, conversations, http.StatusOK)
}

func (h *Handler) createConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	// The body is optional: a bare POST creates a conversation with the
	// default placeholder title.
	var req models.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Err(err).Str("func", "*Handler.createConversation").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	conversation, err := h.services.Conversations.Create(ctx, user.UserID, req.Question)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createConversation").Msg("error creating conversation")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	utils.WriteJSON(w, models.CreateConversationResponse{
		ID:    conversation.ID,
		Title: conversation.Title,
	}, http.StatusCreated)
}

func (h *Handler) renameConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.RenameConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.renameConversation").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.services.Conversations.Rename(ctx, user.UserID, id, req.Title); err != nil {
		log.Err(err).Str("func", "*Handler.renameConversation").Str("conversation_id", id).Msg("error renaming conversation")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	utils.WriteJSON(w, models.StatusResponse{Status: "success"}, http.StatusOK)
}

func (h *Handler) deleteConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.services.Conversations.Delete(ctx, user.UserID, id); err != nil {
		log.Err(err).Str("func", "*Handler.deleteConversation").Str("conversation_id", id).Msg("error deleting conversation")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	utils.WriteJSON(w, models.StatusResponse{Status: "success", Message: "conversation deleted"}, http.StatusOK)
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	messages, err := h.services.Conversations.Messages(ctx, user.UserID, id)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listMessages").Str("conversation_id", id).Msg("error listing messages")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	utils.WriteJSON(w, messages, http.StatusOK)
}
