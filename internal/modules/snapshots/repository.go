// Package snapshots stores dated, msgpack-encoded copies of the recomputed
// position book. Snapshots are a history of derived state, never the ground
// truth; the transaction log remains authoritative.
package snapshots

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/reckoner/internal/modules/positions"
)

// ErrNoSnapshots is returned when no snapshot has been stored yet.
var ErrNoSnapshots = errors.New("no snapshots stored")

// Snapshot is one stored book with its metadata.
type Snapshot struct {
	ID           int64          `json:"id"`
	SnapshotDate string         `json:"snapshotDate"`
	Book         positions.Book `json:"book"`
}

// Repository handles snapshot database operations against portfolio.db.
type Repository struct {
	portfolioDB *sql.DB
	log         zerolog.Logger
}

// NewRepository creates a snapshot repository.
func NewRepository(portfolioDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		portfolioDB: portfolioDB,
		log:         log.With().Str("repo", "snapshots").Logger(),
	}
}

// Store encodes the book and inserts one snapshot row for the given date.
func (r *Repository) Store(snapshotDate string, book positions.Book) error {
	blob, err := msgpack.Marshal(book)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = r.portfolioDB.Exec(
		`INSERT INTO position_snapshots (snapshot_date, book, created_at) VALUES (?, ?, ?)`,
		snapshotDate, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	r.log.Info().
		Str("snapshot_date", snapshotDate).
		Int("bytes", len(blob)).
		Int("stocks", len(book.Stocks)).
		Int("options", len(book.Options)).
		Msg("Position snapshot stored")
	return nil
}

// Latest returns the most recently stored snapshot.
func (r *Repository) Latest() (Snapshot, error) {
	var snap Snapshot
	var blob []byte

	err := r.portfolioDB.QueryRow(
		`SELECT id, snapshot_date, book FROM position_snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.SnapshotDate, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshots
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	if err := msgpack.Unmarshal(blob, &snap.Book); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot %d: %w", snap.ID, err)
	}
	return snap, nil
}

// ListDates returns the stored snapshot dates, newest first.
func (r *Repository) ListDates() ([]string, error) {
	rows, err := r.portfolioDB.Query(
		`SELECT snapshot_date FROM position_snapshots ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot dates: %w", err)
	}
	return dates, nil
}
