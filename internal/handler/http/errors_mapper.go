package http

import (
	"errors"
	"net/http"

	"github.com/narahq/nara-chat/internal/service"
	"github.com/narahq/nara-chat/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrQuestionRequired: http.StatusBadRequest,
	service.ErrTitleRequired:    http.StatusBadRequest,
	service.ErrAnswerFailed:     http.StatusBadGateway,

	store.ErrUserNotFound:         http.StatusNotFound,
	store.ErrConversationNotFound: http.StatusNotFound,
	store.ErrMessageNotFound:      http.StatusNotFound,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
