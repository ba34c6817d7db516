// Package server provides the HTTP server and routing.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aristath/reckoner/internal/config"
	"github.com/aristath/reckoner/internal/database"
	ledgerhandlers "github.com/aristath/reckoner/internal/modules/ledger/handlers"
	positionshandlers "github.com/aristath/reckoner/internal/modules/positions/handlers"
	snapshothandlers "github.com/aristath/reckoner/internal/modules/snapshots/handlers"
)

// Config holds server configuration.
type Config struct {
	Log         zerolog.Logger
	Cfg         *config.Config
	LedgerDB    *database.DB
	PortfolioDB *database.DB
	Positions   *positionshandlers.Handler
	Accounts    *ledgerhandlers.Handler
	Snapshots   *snapshothandlers.Handler
}

// Server is the HTTP server.
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	cfg         *config.Config
	ledgerDB    *database.DB
	portfolioDB *database.DB
	limiter     *rate.Limiter
}

// New creates the HTTP server with all middleware and routes configured.
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		cfg:         cfg.Cfg,
		ledgerDB:    cfg.LedgerDB,
		portfolioDB: cfg.PortfolioDB,
		limiter:     rate.NewLimiter(rate.Limit(cfg.Cfg.RateLimitPerSec), cfg.Cfg.RateLimitBurst),
	}

	s.setupMiddleware()
	s.setupRoutes(cfg)
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(s.rateLimitMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(s.cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes(cfg Config) {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		cfg.Positions.RegisterRoutes(r)
		cfg.Accounts.RegisterRoutes(r)
		if cfg.Snapshots != nil {
			cfg.Snapshots.RegisterRoutes(r)
		}
	})
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	for _, db := range []*database.DB{s.ledgerDB, s.portfolioDB} {
		if db == nil {
			continue
		}
		if err := db.Conn().Ping(); err != nil {
			s.log.Error().Err(err).Str("database", db.Name()).Msg("Health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":%q}`, status)
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.log.Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Msg("Rate limit exceeded")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
