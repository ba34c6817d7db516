// Package handlers provides HTTP handlers for transactions and derived
// positions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aristath/reckoner/internal/domain"
	"github.com/aristath/reckoner/internal/modules/positions"
	"github.com/aristath/reckoner/internal/modules/sanitize"
	"github.com/aristath/reckoner/internal/modules/washsale"
)

// Handler handles transaction and position HTTP requests.
type Handler struct {
	svc *positions.Service
	log zerolog.Logger
}

// NewHandler creates a positions handler.
func NewHandler(svc *positions.Service, log zerolog.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log.With().Str("handler", "positions").Logger(),
	}
}

// HandleAddTransaction handles POST /api/transactions.
func (h *Handler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var raw domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.svc.AddTransaction(raw)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add transaction")
		h.respondError(w, http.StatusInternalServerError, "failed to record transaction")
		return
	}

	if !result.Recorded {
		h.respondJSON(w, http.StatusBadRequest, result)
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

// HandleListTransactions handles GET /api/transactions with optional
// ticker and accountId query filters.
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.svc.Transactions()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		h.respondError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	ticker := sanitize.Ticker(r.URL.Query().Get("ticker"))
	accountID := r.URL.Query().Get("accountId")

	filtered := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if ticker != "" && tx.Ticker != ticker {
			continue
		}
		if accountID != "" && tx.AccountID != accountID {
			continue
		}
		filtered = append(filtered, tx)
	}
	h.respondJSON(w, http.StatusOK, filtered)
}

// HandleStockPositions handles GET /api/positions/stocks?adjusted=true|false.
func (h *Handler) HandleStockPositions(w http.ResponseWriter, r *http.Request) {
	adjusted := false
	if v := r.URL.Query().Get("adjusted"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "adjusted must be true or false")
			return
		}
		adjusted = parsed
	}

	stocks, err := h.svc.StockPositions(adjusted)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to derive stock positions")
		h.respondError(w, http.StatusInternalServerError, "failed to derive stock positions")
		return
	}
	if stocks == nil {
		stocks = []domain.StockPosition{}
	}
	h.respondJSON(w, http.StatusOK, stocks)
}

// HandleOptionPositions handles GET /api/positions/options?status=open|closed.
func (h *Handler) HandleOptionPositions(w http.ResponseWriter, r *http.Request) {
	var status domain.PositionStatus
	switch r.URL.Query().Get("status") {
	case "":
	case "open":
		status = domain.StatusOpen
	case "closed":
		status = domain.StatusClosed
	default:
		h.respondError(w, http.StatusBadRequest, "status must be open or closed")
		return
	}

	options, err := h.svc.OptionPositions(status)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to derive option positions")
		h.respondError(w, http.StatusInternalServerError, "failed to derive option positions")
		return
	}
	if options == nil {
		options = []domain.OptionPosition{}
	}
	h.respondJSON(w, http.StatusOK, options)
}

// HandleWashSale handles GET /api/transactions/{id}/washsale.
func (h *Handler) HandleWashSale(w http.ResponseWriter, r *http.Request, id string) {
	info, err := h.svc.WashSale(id)
	if err != nil {
		if errors.Is(err, washsale.ErrTransactionNotFound) {
			h.respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Wash-sale detection failed")
		h.respondError(w, http.StatusInternalServerError, "wash-sale detection failed")
		return
	}

	// Not applicable is a valid outcome, not an error.
	if info == nil {
		h.respondJSON(w, http.StatusOK, map[string]interface{}{"applicable": false})
		return
	}
	h.respondJSON(w, http.StatusOK, info)
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
