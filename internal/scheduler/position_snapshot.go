package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/reckoner/internal/domain"
	"github.com/aristath/reckoner/internal/modules/positions"
)

// BookProvider recomputes the position book from the stored log.
type BookProvider interface {
	Recompute() (positions.Book, error)
}

// SnapshotStore persists one dated book.
type SnapshotStore interface {
	Store(snapshotDate string, book positions.Book) error
}

// PositionSnapshotJob recomputes the book from the full transaction log and
// stores a dated snapshot.
type PositionSnapshotJob struct {
	books SnapshotStore
	svc   BookProvider
	log   zerolog.Logger
}

// NewPositionSnapshotJob creates a PositionSnapshotJob.
func NewPositionSnapshotJob(svc BookProvider, books SnapshotStore, log zerolog.Logger) *PositionSnapshotJob {
	return &PositionSnapshotJob{
		books: books,
		svc:   svc,
		log:   log.With().Str("job", "position_snapshot").Logger(),
	}
}

// Name returns the job name.
func (j *PositionSnapshotJob) Name() string {
	return "position_snapshot"
}

// Run recomputes and stores today's snapshot.
func (j *PositionSnapshotJob) Run() error {
	book, err := j.svc.Recompute()
	if err != nil {
		return fmt.Errorf("failed to recompute book for snapshot: %w", err)
	}

	date := domain.FormatDate(time.Now())
	if err := j.books.Store(date, book); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	j.log.Info().
		Str("snapshot_date", date).
		Int("transactions", len(book.Transactions)).
		Msg("Snapshot complete")
	return nil
}
