package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers account routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.HandleListAccounts)
		r.Post("/", h.HandleCreateAccount)
	})
}
