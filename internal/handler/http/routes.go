package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/ping", h.ping)
	})

	// routes requiring a valid provider access token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/auth-test", h.authTest)

		r.Get("/api/conversations", h.listConversations)
		r.Post("/api/createnewconversation", h.createConversation)
		r.Put("/api/conversations/{id}/title", h.renameConversation)
		r.Delete("/api/conversations/{id}", h.deleteConversation)
		r.Get("/api/conversations/{id}/messages", h.listMessages)

		r.Post("/api/ask", h.ask)
		r.Post("/api/messages/{id}/feedback", h.feedback)
	})

	return router
}
