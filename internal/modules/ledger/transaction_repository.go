// Package ledger is the persistence collaborator for the append-only
// transaction log and the account registry. The engine itself never touches
// the database; these repositories load and save plain records verbatim.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/reckoner/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// transactionColumns is the column list for the transactions table. Column
// order must match scanTransaction.
const transactionColumns = `id, account_id, ticker, kind,
	action, shares, price_per_share, total_amount, date, split_ratio,
	strategy, option_type, option_action, contracts, strike_price,
	premium_per_share, total_premium, expiration_date, transaction_date,
	assignment_date, realized_pl, fees, notes, fingerprint`

// TransactionRepository handles transaction log database operations. Rows are
// append-only: there is no update or delete.
type TransactionRepository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(ledgerDB *sql.DB, log zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "transaction").Logger(),
	}
}

// Create appends one transaction to the log.
func (r *TransactionRepository) Create(tx domain.Transaction, fingerprint string) error {
	query := `
		INSERT INTO transactions
		(id, account_id, ticker, kind,
		 action, shares, price_per_share, total_amount, date, split_ratio,
		 strategy, option_type, option_action, contracts, strike_price,
		 premium_per_share, total_premium, expiration_date, transaction_date,
		 assignment_date, realized_pl, fees, notes, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ledgerDB.Exec(query,
		tx.ID, tx.AccountID, tx.Ticker, string(tx.Kind),
		nullString(string(tx.Action)), nullFloat64(tx.Shares), nullFloat64(tx.PricePerShare),
		nullFloat64(tx.TotalAmount), nullString(tx.Date), nullString(tx.SplitRatio),
		nullString(string(tx.Strategy)), nullString(string(tx.OptionType)),
		nullString(string(tx.OptionAction)), nullInt(tx.Contracts), nullFloat64(tx.StrikePrice),
		nullFloat64(tx.PremiumPerShare), nullFloat64(tx.TotalPremium),
		nullString(tx.ExpirationDate), nullString(tx.TransactionDate),
		nullString(tx.AssignmentDate), nullFloat64Ptr(tx.RealizedPL),
		tx.Fees, nullString(tx.Notes), fingerprint,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	r.log.Info().
		Str("transaction_id", tx.ID).
		Str("ticker", tx.Ticker).
		Str("kind", string(tx.Kind)).
		Msg("Transaction recorded")
	return nil
}

// GetByID loads one transaction. Returns ErrNotFound when absent.
func (r *TransactionRepository) GetByID(id string) (domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	tx, _, err := scanTransaction(r.ledgerDB.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return tx, nil
}

// List returns the full log in insertion order.
func (r *TransactionRepository) List() ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at ASC, id ASC`

	rows, err := r.ledgerDB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		tx, _, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// Fingerprints returns the fingerprint of every recorded transaction keyed by
// transaction ID, for duplicate scans without loading full records.
func (r *TransactionRepository) Fingerprints() (map[string]string, error) {
	rows, err := r.ledgerDB.Query(`SELECT id, fingerprint FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fingerprints: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var id, fp string
		if err := rows.Scan(&id, &fp); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		out[id] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fingerprints: %w", err)
	}
	return out, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (domain.Transaction, string, error) {
	var tx domain.Transaction
	var kind string
	var action, date, splitRatio sql.NullString
	var strategy, optionType, optionAction sql.NullString
	var expirationDate, transactionDate, assignmentDate, notes sql.NullString
	var shares, pricePerShare, totalAmount sql.NullFloat64
	var strikePrice, premiumPerShare, totalPremium, realizedPL sql.NullFloat64
	var contracts sql.NullInt64
	var fingerprint string

	err := row.Scan(
		&tx.ID, &tx.AccountID, &tx.Ticker, &kind,
		&action, &shares, &pricePerShare, &totalAmount, &date, &splitRatio,
		&strategy, &optionType, &optionAction, &contracts, &strikePrice,
		&premiumPerShare, &totalPremium, &expirationDate, &transactionDate,
		&assignmentDate, &realizedPL, &tx.Fees, &notes, &fingerprint,
	)
	if err != nil {
		return domain.Transaction{}, "", err
	}

	tx.Kind = domain.TransactionKind(kind)
	tx.Action = domain.StockAction(action.String)
	tx.Shares = shares.Float64
	tx.PricePerShare = pricePerShare.Float64
	tx.TotalAmount = totalAmount.Float64
	tx.Date = date.String
	tx.SplitRatio = splitRatio.String
	tx.Strategy = domain.Strategy(strategy.String)
	tx.OptionType = domain.OptionType(optionType.String)
	tx.OptionAction = domain.OptionAction(optionAction.String)
	tx.Contracts = int(contracts.Int64)
	tx.StrikePrice = strikePrice.Float64
	tx.PremiumPerShare = premiumPerShare.Float64
	tx.TotalPremium = totalPremium.Float64
	tx.ExpirationDate = expirationDate.String
	tx.TransactionDate = transactionDate.String
	tx.AssignmentDate = assignmentDate.String
	tx.Notes = notes.String
	if realizedPL.Valid {
		pl := realizedPL.Float64
		tx.RealizedPL = &pl
	}

	return tx, fingerprint, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat64(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}

func nullInt(i int) interface{} {
	if i == 0 {
		return nil
	}
	return i
}

func nullFloat64Ptr(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
