// Package main is the entry point for the Reckoner transaction tracker.
// It records brokerage transactions in an append-only ledger and derives
// positions, realized P/L, premium-adjusted cost basis and wash-sale flags
// from the full log on every query.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/reckoner/internal/config"
	"github.com/aristath/reckoner/internal/database"
	"github.com/aristath/reckoner/internal/modules/ledger"
	ledgerhandlers "github.com/aristath/reckoner/internal/modules/ledger/handlers"
	"github.com/aristath/reckoner/internal/modules/positions"
	positionshandlers "github.com/aristath/reckoner/internal/modules/positions/handlers"
	"github.com/aristath/reckoner/internal/modules/snapshots"
	snapshothandlers "github.com/aristath/reckoner/internal/modules/snapshots/handlers"
	"github.com/aristath/reckoner/internal/scheduler"
	"github.com/aristath/reckoner/internal/server"
	"github.com/aristath/reckoner/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	log.Info().Str("data_dir", cfg.DataDir).Int("port", cfg.Port).Msg("Starting reckoner")

	// ledger.db holds the append-only transaction log; portfolio.db holds
	// derived snapshots and may be rebuilt from the ledger at any time.
	ledgerDB, err := database.New(database.Config{
		Path:    cfg.LedgerDBPath(),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	portfolioDB, err := database.New(database.Config{
		Path:    cfg.PortfolioDBPath(),
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolio database")
	}
	defer portfolioDB.Close()

	for _, db := range []*database.DB{ledgerDB, portfolioDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Migration failed")
		}
	}

	transactionRepo := ledger.NewTransactionRepository(ledgerDB.Conn(), log)
	accountRepo := ledger.NewAccountRepository(ledgerDB.Conn(), log)
	snapshotRepo := snapshots.NewRepository(portfolioDB.Conn(), log)

	positionService := positions.NewService(transactionRepo, accountRepo, log)

	sched := scheduler.New(log)
	snapshotJob := scheduler.NewPositionSnapshotJob(positionService, snapshotRepo, log)
	if err := sched.AddJob(cfg.SnapshotCron, snapshotJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register snapshot job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:         log,
		Cfg:         cfg,
		LedgerDB:    ledgerDB,
		PortfolioDB: portfolioDB,
		Positions:   positionshandlers.NewHandler(positionService, log),
		Accounts:    ledgerhandlers.NewHandler(accountRepo, log),
		Snapshots:   snapshothandlers.NewHandler(snapshotRepo, log),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
