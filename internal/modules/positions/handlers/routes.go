package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers transaction and position routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.HandleAddTransaction)
		r.Get("/", h.HandleListTransactions)
		r.Get("/{id}/washsale", func(w http.ResponseWriter, r *http.Request) {
			h.HandleWashSale(w, r, chi.URLParam(r, "id"))
		})
	})

	r.Route("/positions", func(r chi.Router) {
		r.Get("/stocks", h.HandleStockPositions)
		r.Get("/options", h.HandleOptionPositions)
	})
}
