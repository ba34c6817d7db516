package snapshots

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/reckoner/internal/domain"
	"github.com/aristath/reckoner/internal/modules/positions"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE position_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_date TEXT NOT NULL,
			book BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	require.NoError(t, err)

	return NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestStoreAndLatest(t *testing.T) {
	repo := testRepo(t)

	book := positions.Book{
		Stocks: []domain.StockPosition{{
			AccountID: "acc-1", Ticker: "AAPL", Shares: 100,
			AverageCostBasis: 150, TotalCostBasis: 15000,
		}},
		Options: []domain.OptionPosition{{
			ID: "pos-1", AccountID: "acc-1", Ticker: "AAPL",
			OptionType: domain.Call, StrikePrice: 160, ExpirationDate: "2025-06-20",
			Contracts: 1, TotalPremium: 250, OpenDate: "2025-02-01",
			OpeningSide: domain.SideSoldToOpen, Status: domain.StatusOpen,
		}},
	}

	require.NoError(t, repo.Store("2025-03-01", book))
	require.NoError(t, repo.Store("2025-03-02", positions.Book{}))

	latest, err := repo.Latest()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", latest.SnapshotDate)
	assert.Empty(t, latest.Book.Stocks)

	dates, err := repo.ListDates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-02", "2025-03-01"}, dates)
}

func TestLatest_EmptyTable(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.Latest()
	assert.ErrorIs(t, err, ErrNoSnapshots)
}

func TestStore_RoundTripPreservesBook(t *testing.T) {
	repo := testRepo(t)

	book := positions.Book{
		Stocks: []domain.StockPosition{{
			AccountID: "acc-1", Ticker: "MSFT", Shares: 50,
			AverageCostBasis: 400, TotalCostBasis: 20000, RealizedPL: 123.45,
			TransactionIDs: []string{"tx-1", "tx-2"},
		}},
	}

	require.NoError(t, repo.Store("2025-03-01", book))

	latest, err := repo.Latest()
	require.NoError(t, err)
	assert.Equal(t, book.Stocks, latest.Book.Stocks)
}
