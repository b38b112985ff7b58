package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/service"
	"github.com/narahq/nara-chat/internal/utils"
	"github.com/narahq/nara-chat/models"
)

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.ask").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	answer, err := h.services.Ask.Ask(ctx, user.UserID, req.Question, req.ConversationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestionRequired):
			log.Err(err).Msg("empty question")
			http.Error(w, service.ErrQuestionRequired.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, service.ErrAnswerFailed):
			log.Err(err).Msg("upstream completion failed")
			http.Error(w, service.ErrAnswerFailed.Error(), http.StatusBadGateway)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during answering question")
			status := statusFromError(err)
			http.Error(w, http.StatusText(status), status)
			return
		}
	}

	utils.WriteJSON(w, answer, http.StatusOK)
}
