package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/utils"
	"github.com/narahq/nara-chat/models"
)

func (h *Handler) feedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.feedback").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	messageID := chi.URLParam(r, "id")
	if err := h.services.Conversations.SetFeedback(ctx, user.UserID, messageID, req.ResponseLiked); err != nil {
		log.Err(err).Str("func", "*Handler.feedback").Str("message_id", messageID).Msg("error recording feedback")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	utils.WriteJSON(w, models.StatusResponse{Status: "success", Message: "feedback recorded"}, http.StatusOK)
}
