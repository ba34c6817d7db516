package positions

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/reckoner/internal/domain"
	"github.com/aristath/reckoner/internal/modules/costbasis"
	"github.com/aristath/reckoner/internal/modules/fingerprint"
	"github.com/aristath/reckoner/internal/modules/sanitize"
	"github.com/aristath/reckoner/internal/modules/validation"
	"github.com/aristath/reckoner/internal/modules/washsale"
)

// TransactionStore is the subset of the transaction repository the service
// needs. Defined here to avoid a dependency on the persistence module.
type TransactionStore interface {
	Create(tx domain.Transaction, fingerprint string) error
	List() ([]domain.Transaction, error)
}

// AccountStore provides the account records used for existence checks.
type AccountStore interface {
	List() ([]domain.Account, error)
}

// AddResult is the outcome of recording one transaction. Warnings (including
// duplicate-fingerprint hits) never block; Recorded is false only when the
// validation result carries hard errors.
type AddResult struct {
	Transaction domain.Transaction      `json:"transaction"`
	Validation  domain.ValidationResult `json:"validation"`
	Recorded    bool                    `json:"recorded"`
}

// Service orchestrates the add-transaction pipeline and position queries. The
// caller (HTTP layer) serializes writes; the service itself holds no state
// beyond its collaborators.
type Service struct {
	transactions TransactionStore
	accounts     AccountStore
	validator    *validation.Validator
	engine       *Engine
	adjuster     *costbasis.Adjuster
	detector     *washsale.Detector
	log          zerolog.Logger
}

// NewService creates a position service.
func NewService(transactions TransactionStore, accounts AccountStore, log zerolog.Logger) *Service {
	return &Service{
		transactions: transactions,
		accounts:     accounts,
		validator:    validation.New(),
		engine:       NewEngine(log),
		adjuster:     costbasis.New(),
		detector:     washsale.New(),
		log:          log.With().Str("service", "positions").Logger(),
	}
}

// AddTransaction runs the full gate: sanitize, validate, duplicate scan,
// closing-quantity pre-check, then append. Hard errors block the append and
// are reported in the returned validation result; warnings are recorded
// alongside the created transaction.
func (s *Service) AddTransaction(raw domain.Transaction) (AddResult, error) {
	tx := sanitizeTransaction(raw)

	accounts, err := s.accounts.List()
	if err != nil {
		return AddResult{}, fmt.Errorf("failed to load accounts: %w", err)
	}
	log, err := s.transactions.List()
	if err != nil {
		return AddResult{}, fmt.Errorf("failed to load transaction log: %w", err)
	}

	result := s.validator.Validate(tx, accounts)

	if dupes := fingerprint.FindDuplicates(tx, log); len(dupes) > 0 {
		result.AddWarning("fingerprint",
			fmt.Sprintf("identical transaction already recorded (%s)", dupes[0].ID))
	}

	if tx.IsOption() && tx.OptionAction.IsClosing() {
		book := s.engine.Recompute(log)
		if check := s.validator.ValidateClosingTransaction(tx, book.Options); !check.Valid {
			result.AddError("contracts", check.Error)
		}
	}

	if !result.IsValid {
		return AddResult{Transaction: tx, Validation: result}, nil
	}

	tx.ID = uuid.New().String()
	if err := s.transactions.Create(tx, fingerprint.Compute(tx)); err != nil {
		return AddResult{}, fmt.Errorf("failed to record transaction: %w", err)
	}

	s.log.Info().
		Str("transaction_id", tx.ID).
		Str("ticker", tx.Ticker).
		Int("warnings", len(result.Warnings())).
		Msg("Transaction accepted")

	return AddResult{Transaction: tx, Validation: result, Recorded: true}, nil
}

// Transactions returns the full log with realized P/L populated on closes.
func (s *Service) Transactions() ([]domain.Transaction, error) {
	book, err := s.book()
	if err != nil {
		return nil, err
	}
	return book.Transactions, nil
}

// StockPositions returns the derived stock positions, optionally with the
// premium-adjusted cost-basis fields populated.
func (s *Service) StockPositions(adjusted bool) ([]domain.StockPosition, error) {
	book, err := s.book()
	if err != nil {
		return nil, err
	}
	if !adjusted {
		return book.Stocks, nil
	}

	var optionTxs []domain.Transaction
	for _, tx := range book.Transactions {
		if tx.IsOption() {
			optionTxs = append(optionTxs, tx)
		}
	}
	return s.adjuster.Adjust(book.Stocks, optionTxs), nil
}

// OptionPositions returns derived option positions, filtered by status when
// one is given.
func (s *Service) OptionPositions(status domain.PositionStatus) ([]domain.OptionPosition, error) {
	book, err := s.book()
	if err != nil {
		return nil, err
	}
	if status == "" {
		return book.Options, nil
	}

	var filtered []domain.OptionPosition
	for _, pos := range book.Options {
		if pos.Status == status {
			filtered = append(filtered, pos)
		}
	}
	return filtered, nil
}

// WashSale evaluates one transaction for wash-sale candidates. Returns nil
// when the transaction did not realize a loss.
func (s *Service) WashSale(transactionID string) (*domain.WashSaleInfo, error) {
	book, err := s.book()
	if err != nil {
		return nil, err
	}
	// Detection runs over the recomputed log so option closes carry their
	// realized P/L.
	return s.detector.Detect(transactionID, book.Transactions)
}

// Recompute derives the full book from the stored log.
func (s *Service) Recompute() (Book, error) {
	return s.book()
}

func (s *Service) book() (Book, error) {
	log, err := s.transactions.List()
	if err != nil {
		return Book{}, fmt.Errorf("failed to load transaction log: %w", err)
	}
	return s.engine.Recompute(log), nil
}

// sanitizeTransaction normalizes every untrusted field before validation.
// Numeric fields arrive typed from the decoder and pass through unchanged.
func sanitizeTransaction(raw domain.Transaction) domain.Transaction {
	tx := raw
	tx.Ticker = sanitize.Ticker(raw.Ticker)
	tx.Notes = sanitize.Notes(raw.Notes)
	tx.Date = sanitize.Date(raw.Date)
	tx.ExpirationDate = sanitize.Date(raw.ExpirationDate)
	tx.TransactionDate = sanitize.Date(raw.TransactionDate)
	tx.AssignmentDate = sanitize.Date(raw.AssignmentDate)
	if raw.IsOption() {
		tx.OptionAction = sanitize.OptionAction(string(raw.OptionAction))
		tx.OptionType = sanitize.OptionType(string(raw.OptionType))
	} else {
		tx.Action = sanitize.StockAction(string(raw.Action))
	}
	return tx
}
