// Package handlers provides HTTP handlers for stored position snapshots.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/reckoner/internal/modules/snapshots"
)

// SnapshotStore is the read side of the snapshot repository.
type SnapshotStore interface {
	Latest() (snapshots.Snapshot, error)
	ListDates() ([]string, error)
}

// Handler handles snapshot HTTP requests.
type Handler struct {
	store SnapshotStore
	log   zerolog.Logger
}

// NewHandler creates a snapshot handler.
func NewHandler(store SnapshotStore, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("handler", "snapshots").Logger(),
	}
}

// RegisterRoutes registers snapshot routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", h.HandleListDates)
		r.Get("/latest", h.HandleLatest)
	})
}

// HandleListDates handles GET /api/snapshots.
func (h *Handler) HandleListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.store.ListDates()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list snapshots")
		h.respondError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	h.respondJSON(w, http.StatusOK, dates)
}

// HandleLatest handles GET /api/snapshots/latest.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Latest()
	if err != nil {
		if errors.Is(err, snapshots.ErrNoSnapshots) {
			h.respondError(w, http.StatusNotFound, "no snapshots stored")
			return
		}
		h.log.Error().Err(err).Msg("Failed to load latest snapshot")
		h.respondError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	h.respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
