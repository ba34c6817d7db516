// Package washsale scans the transaction log for offsetting re-entries around
// a loss-realizing close and reports wash-sale candidates.
//
// The detector flags candidates only. Disallowed-loss arithmetic and cost
// basis adjustments stay a manual, user-reviewed step. Accounts are
// deliberately not filtered: the wash-sale rule applies across accounts held
// by the same taxpayer.
package washsale

import (
	"errors"
	"fmt"

	"github.com/aristath/reckoner/internal/domain"
)

// ErrTransactionNotFound is returned when the requested transaction ID is not
// in the log.
var ErrTransactionNotFound = errors.New("transaction not found in log")

// WindowDays is the number of calendar days scanned on each side of the
// loss-realizing transaction (61-day window total).
const WindowDays = 30

// Detector evaluates closing transactions for wash-sale candidates.
type Detector struct{}

// New creates a Detector.
func New() *Detector {
	return &Detector{}
}

// Detect returns wash-sale information for the given transaction, or nil when
// the transaction is not a loss-realizing close — "not applicable" is a valid
// outcome, not an error. An unknown transaction ID is an error.
func (d *Detector) Detect(transactionID string, log []domain.Transaction) (*domain.WashSaleInfo, error) {
	tx, ok := findTransaction(transactionID, log)
	if !ok {
		return nil, fmt.Errorf("transaction %q: %w", transactionID, ErrTransactionNotFound)
	}

	loss, ok := d.realizedLoss(tx, log)
	if !ok {
		return nil, nil
	}

	date := tx.EffectiveDate()
	start, err := domain.AddDays(date, -WindowDays)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction date: %w", err)
	}
	end, err := domain.AddDays(date, WindowDays)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction date: %w", err)
	}

	related := d.relatedOpenings(tx, log, start, end)

	return &domain.WashSaleInfo{
		TransactionID:         tx.ID,
		Ticker:                tx.Ticker,
		LossAmount:            loss,
		WashSalePeriodStart:   start,
		WashSalePeriodEnd:     end,
		HasWashSale:           len(related) > 0,
		RelatedTransactionIDs: related,
	}, nil
}

// realizedLoss reports the loss amount (positive) realized by the
// transaction, or false when the transaction realized a gain or is not a
// close at all.
func (d *Detector) realizedLoss(tx domain.Transaction, log []domain.Transaction) (float64, bool) {
	if tx.IsOption() {
		if !tx.OptionAction.IsClosing() || tx.RealizedPL == nil || *tx.RealizedPL >= 0 {
			return 0, false
		}
		return -*tx.RealizedPL, true
	}

	if tx.Action != domain.StockActionSell {
		return 0, false
	}

	// Cost reference is the single most recent prior buy — a deliberate
	// simplification, not a per-lot stock ledger.
	refBuy, ok := d.mostRecentPriorBuy(tx, log)
	if !ok {
		return 0, false
	}

	loss := (refBuy.PricePerShare - tx.PricePerShare) * tx.Shares
	if loss <= 0 {
		return 0, false
	}
	return loss, true
}

func (d *Detector) mostRecentPriorBuy(sell domain.Transaction, log []domain.Transaction) (domain.Transaction, bool) {
	var best domain.Transaction
	found := false
	for _, tx := range log {
		if tx.IsOption() || tx.Action != domain.StockActionBuy {
			continue
		}
		if tx.Ticker != sell.Ticker || tx.AccountID != sell.AccountID {
			continue
		}
		if tx.Date > sell.Date {
			continue
		}
		if !found || tx.Date > best.Date {
			best = tx
			found = true
		}
	}
	return best, found
}

// relatedOpenings collects every other transaction for the same ticker (and,
// for options, the same option type) whose date falls inside the inclusive
// window and whose action establishes a position.
func (d *Detector) relatedOpenings(loss domain.Transaction, log []domain.Transaction, start, end string) []string {
	var related []string
	for _, tx := range log {
		if tx.ID == loss.ID || tx.Ticker != loss.Ticker {
			continue
		}

		date := tx.EffectiveDate()
		if date < start || date > end {
			continue
		}

		if loss.IsOption() {
			if !tx.IsOption() || tx.OptionType != loss.OptionType || !tx.OptionAction.IsOpening() {
				continue
			}
		} else {
			if tx.IsOption() || tx.Action != domain.StockActionBuy {
				continue
			}
		}

		related = append(related, tx.ID)
	}
	return related
}

func findTransaction(id string, log []domain.Transaction) (domain.Transaction, bool) {
	for _, tx := range log {
		if tx.ID == id {
			return tx, true
		}
	}
	return domain.Transaction{}, false
}
