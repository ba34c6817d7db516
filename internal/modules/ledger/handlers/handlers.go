// Package handlers provides HTTP handlers for account operations.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/reckoner/internal/domain"
	"github.com/aristath/reckoner/internal/modules/sanitize"
)

// AccountStore is the subset of the account repository the handlers need.
type AccountStore interface {
	Create(account domain.Account) error
	List() ([]domain.Account, error)
}

// Handler handles account HTTP requests.
type Handler struct {
	accounts AccountStore
	log      zerolog.Logger
}

// NewHandler creates an account handler.
func NewHandler(accounts AccountStore, log zerolog.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		log:      log.With().Str("handler", "accounts").Logger(),
	}
}

// HandleListAccounts handles GET /api/accounts.
func (h *Handler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		h.respondError(w, http.StatusInternalServerError, "failed to load accounts")
		return
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	h.respondJSON(w, http.StatusOK, accounts)
}

// HandleCreateAccount handles POST /api/accounts.
func (h *Handler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := sanitize.AccountName(body.Name)
	if name == "" {
		h.respondError(w, http.StatusBadRequest, "account name is required")
		return
	}

	account := domain.Account{ID: uuid.New().String(), Name: name}
	if err := h.accounts.Create(account); err != nil {
		h.log.Error().Err(err).Msg("Failed to create account")
		h.respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	h.respondJSON(w, http.StatusCreated, account)
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
