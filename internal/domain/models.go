// Package domain contains the plain value records exchanged between the
// reconciliation engine and its collaborators. Everything here is passed by
// value and carries no infrastructure dependencies.
package domain

import "fmt"

// TransactionKind discriminates the two transaction variants.
type TransactionKind string

const (
	KindStock  TransactionKind = "stock"
	KindOption TransactionKind = "option"
)

// StockAction is the action taken on a stock transaction.
type StockAction string

const (
	StockActionBuy      StockAction = "buy"
	StockActionSell     StockAction = "sell"
	StockActionInitial  StockAction = "initial"
	StockActionSplit    StockAction = "split"
	StockActionDividend StockAction = "dividend"
)

// ValidStockActions is the closed set accepted after sanitization.
var ValidStockActions = map[StockAction]bool{
	StockActionBuy:      true,
	StockActionSell:     true,
	StockActionInitial:  true,
	StockActionSplit:    true,
	StockActionDividend: true,
}

// OptionAction is one of the four option order actions.
type OptionAction string

const (
	BuyToOpen   OptionAction = "buy-to-open"
	SellToOpen  OptionAction = "sell-to-open"
	BuyToClose  OptionAction = "buy-to-close"
	SellToClose OptionAction = "sell-to-close"
)

// IsOpening reports whether the action establishes a position.
func (a OptionAction) IsOpening() bool {
	return a == BuyToOpen || a == SellToOpen
}

// IsClosing reports whether the action reduces or closes a position.
func (a OptionAction) IsClosing() bool {
	return a == BuyToClose || a == SellToClose
}

// OptionType is call or put.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Strategy labels the intent of an option trade. Only CoveredCall and
// CashSecuredPut qualify for premium-based cost-basis adjustment.
type Strategy string

const (
	StrategyCoveredCall    Strategy = "covered-call"
	StrategyCashSecuredPut Strategy = "cash-secured-put"
	StrategyLongCall       Strategy = "long-call"
	StrategyLongPut        Strategy = "long-put"
	StrategyOther          Strategy = "other"
)

// OpeningSide records how a lot was established. It is set once at position
// creation so downstream P/L math never has to re-derive the side from the
// sign of the aggregate premium.
type OpeningSide string

const (
	SideSoldToOpen   OpeningSide = "sold-to-open"
	SideBoughtToOpen OpeningSide = "bought-to-open"
)

// PositionStatus is the lifecycle state of a derived position.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "open"
	StatusClosed PositionStatus = "closed"
)

// Account is the minimal account record the engine needs for existence checks.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Transaction is one immutable entry of the append-only log. Stock and option
// variants share the struct; Kind selects which field group is meaningful.
type Transaction struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Ticker    string          `json:"ticker"`
	Kind      TransactionKind `json:"kind"`

	// Stock fields
	Action        StockAction `json:"action,omitempty"`
	Shares        float64     `json:"shares,omitempty"`
	PricePerShare float64     `json:"pricePerShare,omitempty"`
	TotalAmount   float64     `json:"totalAmount,omitempty"`
	Date          string      `json:"date,omitempty"` // YYYY-MM-DD
	SplitRatio    string      `json:"splitRatio,omitempty"`

	// Option fields
	Strategy        Strategy     `json:"strategy,omitempty"`
	OptionType      OptionType   `json:"optionType,omitempty"`
	OptionAction    OptionAction `json:"optionAction,omitempty"`
	Contracts       int          `json:"contracts,omitempty"`
	StrikePrice     float64      `json:"strikePrice,omitempty"`
	PremiumPerShare float64      `json:"premiumPerShare,omitempty"`
	TotalPremium    float64      `json:"totalPremium,omitempty"`
	ExpirationDate  string       `json:"expirationDate,omitempty"`  // YYYY-MM-DD
	TransactionDate string       `json:"transactionDate,omitempty"` // YYYY-MM-DD
	AssignmentDate  string       `json:"assignmentDate,omitempty"`
	RealizedPL      *float64     `json:"realizedPL,omitempty"`

	Fees  float64 `json:"fees"`
	Notes string  `json:"notes,omitempty"`
}

// IsOption reports whether the transaction is the option variant.
func (t Transaction) IsOption() bool {
	return t.Kind == KindOption
}

// EffectiveDate returns the calendar date that orders the transaction in the
// log: Date for stocks, TransactionDate for options.
func (t Transaction) EffectiveDate() string {
	if t.IsOption() {
		return t.TransactionDate
	}
	return t.Date
}

// OptionPosition is the derived aggregate of one or more opening option
// transactions sharing the identity key and opening side. Positions are never
// deleted; a fully consumed position is marked closed with zero remaining
// contracts.
type OptionPosition struct {
	ID             string         `json:"id"`
	AccountID      string         `json:"accountId"`
	Ticker         string         `json:"ticker"`
	OptionType     OptionType     `json:"optionType"`
	StrikePrice    float64        `json:"strikePrice"`
	ExpirationDate string         `json:"expirationDate"`
	Contracts      int            `json:"contracts"`    // remaining open quantity
	TotalPremium   float64        `json:"totalPremium"` // signed: positive when sold to open
	OpenDate       string         `json:"openDate"`     // oldest contributing transaction
	OpeningSide    OpeningSide    `json:"openingSide"`
	Status         PositionStatus `json:"status"`
	RealizedPL     float64        `json:"realizedPL"`
	TransactionIDs []string       `json:"transactionIds"`
}

// Key is the identity key shared by all lots of the same contract.
func (p OptionPosition) Key() string {
	return fmt.Sprintf("%s|%s|%s|%.4f|%s", p.AccountID, p.Ticker, p.OptionType, p.StrikePrice, p.ExpirationDate)
}

// SoldToOpen reports whether this lot collects premium. The explicit
// OpeningSide tag wins; the premium-sign heuristic remains only as a fallback
// for positions supplied without one.
func (p OptionPosition) SoldToOpen() bool {
	switch p.OpeningSide {
	case SideSoldToOpen:
		return true
	case SideBoughtToOpen:
		return false
	}
	return p.TotalPremium > 0
}

// StockPosition is the derived aggregate per account and ticker. The
// premium-adjusted fields are advisory, recomputed on every query, and never
// overwrite the raw cost basis.
type StockPosition struct {
	AccountID           string   `json:"accountId"`
	Ticker              string   `json:"ticker"`
	Shares              float64  `json:"shares"`
	AverageCostBasis    float64  `json:"averageCostBasis"`
	TotalCostBasis      float64  `json:"totalCostBasis"`
	RealizedPL          float64  `json:"realizedPL"`
	FirstPurchaseDate   string   `json:"firstPurchaseDate"`
	LastTransactionDate string   `json:"lastTransactionDate"`
	TransactionIDs      []string `json:"transactionIds"`

	PremiumAdjustedCostBasis float64 `json:"premiumAdjustedCostBasis"`
	PremiumAdjustedTotalCost float64 `json:"premiumAdjustedTotalCost"`
	AppliedPremiums          float64 `json:"appliedPremiums"`
}

// PositionUpdate is one per-lot result of matching a closing transaction.
type PositionUpdate struct {
	PositionID         string  `json:"positionId"`
	RemainingContracts int     `json:"remainingContracts"`
	RealizedPL         float64 `json:"realizedPL"`
	IsClosed           bool    `json:"isClosed"`
}

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is one field-level finding.
type ValidationIssue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult collects issues in the order they were found. IsValid means
// no hard errors; warnings never block persistence.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Issues  []ValidationIssue `json:"issues"`
}

// NewValidationResult returns a result that is valid until an error is added.
func NewValidationResult() ValidationResult {
	return ValidationResult{IsValid: true}
}

// AddError appends a hard error and marks the result invalid.
func (r *ValidationResult) AddError(field, message string) {
	r.IsValid = false
	r.Issues = append(r.Issues, ValidationIssue{Field: field, Message: message, Severity: SeverityError})
}

// AddWarning appends a non-blocking warning.
func (r *ValidationResult) AddWarning(field, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Field: field, Message: message, Severity: SeverityWarning})
}

// Errors returns only the hard errors.
func (r ValidationResult) Errors() []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// Warnings returns only the warnings.
func (r ValidationResult) Warnings() []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			out = append(out, issue)
		}
	}
	return out
}

// WashSaleInfo reports wash-sale candidates for a loss-realizing close. The
// engine flags candidates only; disallowed-loss arithmetic stays a manual,
// user-reviewed step.
type WashSaleInfo struct {
	TransactionID         string   `json:"transactionId"`
	Ticker                string   `json:"ticker"`
	LossAmount            float64  `json:"lossAmount"`
	WashSalePeriodStart   string   `json:"washSalePeriodStart"`
	WashSalePeriodEnd     string   `json:"washSalePeriodEnd"`
	HasWashSale           bool     `json:"hasWashSale"`
	RelatedTransactionIDs []string `json:"relatedTransactionIds"`
}
