package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/reckoner/internal/config"
	"github.com/aristath/reckoner/internal/domain"
	ledgerhandlers "github.com/aristath/reckoner/internal/modules/ledger/handlers"
	"github.com/aristath/reckoner/internal/modules/positions"
	positionshandlers "github.com/aristath/reckoner/internal/modules/positions/handlers"
)

type stubTransactionStore struct{}

func (stubTransactionStore) Create(tx domain.Transaction, fingerprint string) error { return nil }
func (stubTransactionStore) List() ([]domain.Transaction, error)                    { return nil, nil }

type stubAccountStore struct{}

func (stubAccountStore) Create(account domain.Account) error { return nil }
func (stubAccountStore) List() ([]domain.Account, error)     { return nil, nil }

func testServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	svc := positions.NewService(stubTransactionStore{}, stubAccountStore{}, log)

	return New(Config{
		Log:       log,
		Cfg:       cfg,
		Positions: positionshandlers.NewHandler(svc, log),
		Accounts:  ledgerhandlers.NewHandler(stubAccountStore{}, log),
	})
}

func defaultTestConfig() *config.Config {
	return &config.Config{
		Port:            8080,
		LogLevel:        "info",
		DevMode:         true,
		CORSOrigins:     "*",
		RateLimitPerSec: 50,
		RateLimitBurst:  100,
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, defaultTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRateLimitExceeded(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.RateLimitPerSec = 1
	cfg.RateLimitBurst = 2
	srv := testServer(t, cfg)

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	assert.Contains(t, statuses, http.StatusTooManyRequests)
}

func TestUnknownRouteIs404(t *testing.T) {
	srv := testServer(t, defaultTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
