// Package validation enforces per-field business rules on transactions before
// they are appended to the ledger. Validation is stateless, side-effect-free
// and never mutates its inputs.
package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/aristath/reckoner/internal/domain"
)

// today is swappable in tests to pin the future-date warning.
var today = func() time.Time { return time.Now() }

const (
	// PriceWarningThreshold flags outlier prices and strikes. Plausible but
	// unusual values warn without blocking.
	PriceWarningThreshold = 10000.0
)

var (
	tickerPattern     = regexp.MustCompile(`^[A-Z]{1,5}$`)
	splitRatioPattern = regexp.MustCompile(`^\d+:\d+$`)
)

// Validator checks transactions against the account list and field rules.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// Validate runs all field rules for the transaction. Hard errors block
// persistence; warnings are surfaced for user acknowledgment only.
func (v *Validator) Validate(tx domain.Transaction, accounts []domain.Account) domain.ValidationResult {
	result := domain.NewValidationResult()

	v.checkAccount(tx, accounts, &result)
	v.checkTicker(tx, &result)

	if tx.IsOption() {
		v.checkOptionFields(tx, &result)
	} else {
		v.checkStockFields(tx, &result)
	}

	return result
}

func (v *Validator) checkAccount(tx domain.Transaction, accounts []domain.Account, result *domain.ValidationResult) {
	for _, account := range accounts {
		if account.ID == tx.AccountID {
			return
		}
	}
	result.AddError("accountId", fmt.Sprintf("unknown account %q", tx.AccountID))
}

func (v *Validator) checkTicker(tx domain.Transaction, result *domain.ValidationResult) {
	if !tickerPattern.MatchString(tx.Ticker) {
		result.AddError("ticker", fmt.Sprintf("ticker %q must be 1-5 uppercase letters", tx.Ticker))
	}
}

func (v *Validator) checkStockFields(tx domain.Transaction, result *domain.ValidationResult) {
	if !domain.ValidStockActions[tx.Action] {
		result.AddError("action", fmt.Sprintf("unrecognized stock action %q", tx.Action))
	}
	if tx.Shares <= 0 {
		result.AddError("shares", "shares must be positive")
	}
	if tx.PricePerShare < 0 {
		result.AddError("pricePerShare", "price per share cannot be negative")
	}
	if tx.TotalAmount < 0 {
		result.AddError("totalAmount", "total amount cannot be negative")
	}
	if tx.Fees < 0 {
		result.AddError("fees", "fees cannot be negative")
	}

	date, err := domain.ParseDate(tx.Date)
	if err != nil {
		result.AddError("date", fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", tx.Date))
	} else if date.After(today()) {
		result.AddWarning("date", "transaction date is in the future")
	}

	if tx.Action == domain.StockActionSplit && !splitRatioPattern.MatchString(tx.SplitRatio) {
		result.AddError("splitRatio", fmt.Sprintf("split ratio %q must match new:old (e.g. 2:1)", tx.SplitRatio))
	}

	if tx.PricePerShare > PriceWarningThreshold {
		result.AddWarning("pricePerShare", fmt.Sprintf("price per share exceeds $%.0f", PriceWarningThreshold))
	}
}

func (v *Validator) checkOptionFields(tx domain.Transaction, result *domain.ValidationResult) {
	if !tx.OptionAction.IsOpening() && !tx.OptionAction.IsClosing() {
		result.AddError("optionAction", fmt.Sprintf("unrecognized option action %q", tx.OptionAction))
	}
	if tx.OptionType != domain.Call && tx.OptionType != domain.Put {
		result.AddError("optionType", fmt.Sprintf("unrecognized option type %q", tx.OptionType))
	}
	if tx.Contracts <= 0 {
		result.AddError("contracts", "contracts must be a positive integer")
	}
	if tx.StrikePrice <= 0 {
		result.AddError("strikePrice", "strike price must be positive")
	}
	if tx.PremiumPerShare < 0 {
		result.AddError("premiumPerShare", "premium per share cannot be negative")
	}
	if tx.Fees < 0 {
		result.AddError("fees", "fees cannot be negative")
	}

	transactionDate, txDateErr := domain.ParseDate(tx.TransactionDate)
	if txDateErr != nil {
		result.AddError("transactionDate", fmt.Sprintf("transaction date %q is not a valid YYYY-MM-DD date", tx.TransactionDate))
	} else if transactionDate.After(today()) {
		result.AddWarning("transactionDate", "transaction date is in the future")
	}

	expirationDate, expDateErr := domain.ParseDate(tx.ExpirationDate)
	if expDateErr != nil {
		result.AddError("expirationDate", fmt.Sprintf("expiration date %q is not a valid YYYY-MM-DD date", tx.ExpirationDate))
	}

	if txDateErr == nil && expDateErr == nil && expirationDate.Before(transactionDate) {
		result.AddError("expirationDate", "expiration date cannot be before transaction date")
	}

	if tx.StrikePrice > PriceWarningThreshold {
		result.AddWarning("strikePrice", fmt.Sprintf("strike price exceeds $%.0f", PriceWarningThreshold))
	}
	if tx.StrikePrice > 0 && tx.PremiumPerShare > tx.StrikePrice {
		result.AddWarning("premiumPerShare", "premium per share exceeds strike price")
	}
}

// ClosingCheck is the result of the structural pre-check on a closing option
// transaction. The Lot Matcher assumes this check has already passed and does
// not re-validate quantity sufficiency.
type ClosingCheck struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateClosingTransaction verifies that the closing transaction does not
// attempt to close more contracts than are open across matching lots.
func (v *Validator) ValidateClosingTransaction(closing domain.Transaction, openPositions []domain.OptionPosition) ClosingCheck {
	if !closing.IsOption() || !closing.OptionAction.IsClosing() {
		return ClosingCheck{Valid: false, Error: "transaction is not a closing option transaction"}
	}

	openContracts := 0
	for _, pos := range openPositions {
		if pos.Status != domain.StatusOpen {
			continue
		}
		if pos.AccountID != closing.AccountID || pos.Ticker != closing.Ticker {
			continue
		}
		if pos.OptionType != closing.OptionType || pos.StrikePrice != closing.StrikePrice || pos.ExpirationDate != closing.ExpirationDate {
			continue
		}
		openContracts += pos.Contracts
	}

	if closing.Contracts > openContracts {
		return ClosingCheck{
			Valid: false,
			Error: fmt.Sprintf("cannot close %d contracts: only %d open", closing.Contracts, openContracts),
		}
	}

	return ClosingCheck{Valid: true}
}
