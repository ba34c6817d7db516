package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/reckoner/internal/domain"
)

// AccountRepository handles account database operations.
type AccountRepository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(ledgerDB *sql.DB, log zerolog.Logger) *AccountRepository {
	return &AccountRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "account").Logger(),
	}
}

// Create inserts a new account.
func (r *AccountRepository) Create(account domain.Account) error {
	_, err := r.ledgerDB.Exec(
		`INSERT INTO accounts (id, name, created_at) VALUES (?, ?, ?)`,
		account.ID, account.Name, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	r.log.Info().Str("account_id", account.ID).Str("name", account.Name).Msg("Account created")
	return nil
}

// GetByID loads one account. Returns ErrNotFound when absent.
func (r *AccountRepository) GetByID(id string) (domain.Account, error) {
	var account domain.Account
	err := r.ledgerDB.QueryRow(`SELECT id, name FROM accounts WHERE id = ?`, id).
		Scan(&account.ID, &account.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return account, nil
}

// List returns all accounts ordered by name.
func (r *AccountRepository) List() ([]domain.Account, error) {
	rows, err := r.ledgerDB.Query(`SELECT id, name FROM accounts ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.Name); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}
