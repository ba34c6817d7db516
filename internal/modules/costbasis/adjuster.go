// Package costbasis recomputes display-only premium-adjusted cost basis for
// stock positions from qualifying option premiums.
package costbasis

import (
	"math"

	"github.com/aristath/reckoner/internal/domain"
)

// Adjuster derives premium-adjusted cost-basis figures. It is a pure,
// non-mutating map: the raw averageCostBasis and totalCostBasis on a position
// are never overwritten, so callers can toggle between raw and adjusted views
// without recomputation drift.
type Adjuster struct{}

// New creates an Adjuster.
func New() *Adjuster {
	return &Adjuster{}
}

// Adjust returns a copy of the stock positions with the advisory
// premium-adjusted fields populated from the option transaction log.
//
// Only sell-to-open premiums from covered-call and cash-secured-put trades on
// the same (ticker, account) contribute; other strategies and closing or
// buying actions never do.
func (a *Adjuster) Adjust(stockPositions []domain.StockPosition, optionTransactions []domain.Transaction) []domain.StockPosition {
	adjusted := make([]domain.StockPosition, len(stockPositions))
	for i, pos := range stockPositions {
		premiums := a.appliedPremiums(pos, optionTransactions)

		pos.AppliedPremiums = premiums
		pos.PremiumAdjustedTotalCost = math.Max(0, pos.TotalCostBasis-premiums)
		if pos.Shares > 0 {
			pos.PremiumAdjustedCostBasis = pos.PremiumAdjustedTotalCost / pos.Shares
		} else {
			pos.PremiumAdjustedCostBasis = 0
		}

		adjusted[i] = pos
	}
	return adjusted
}

func (a *Adjuster) appliedPremiums(pos domain.StockPosition, optionTransactions []domain.Transaction) float64 {
	total := 0.0
	for _, tx := range optionTransactions {
		if !tx.IsOption() || tx.OptionAction != domain.SellToOpen {
			continue
		}
		if tx.Ticker != pos.Ticker || tx.AccountID != pos.AccountID {
			continue
		}
		if tx.Strategy != domain.StrategyCoveredCall && tx.Strategy != domain.StrategyCashSecuredPut {
			continue
		}
		total += tx.TotalPremium
	}
	return total
}

// GetEffectiveCostBasis selects the per-share and total cost figures for P/L
// display. The raw and premium-adjusted modes must never be silently mixed,
// so consumers go through this selector rather than reading fields directly.
func GetEffectiveCostBasis(pos domain.StockPosition, usePremiumAdjusted bool) (perShare, total float64) {
	if usePremiumAdjusted {
		return pos.PremiumAdjustedCostBasis, pos.PremiumAdjustedTotalCost
	}
	return pos.AverageCostBasis, pos.TotalCostBasis
}
