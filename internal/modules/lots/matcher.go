// Package lots matches closing option transactions against open positions in
// strict FIFO order, splitting and consuming lots and emitting per-lot
// realized P/L.
package lots

import (
	"math"
	"sort"

	"github.com/aristath/reckoner/internal/domain"
)

// Matcher is the FIFO lot-matching engine. It is stateless; every call
// operates on the position snapshot passed by the caller.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// MatchClose consumes open lots for the closing transaction, oldest first,
// and returns one PositionUpdate per consumed lot.
//
// The matcher assumes ValidateClosingTransaction has already passed: if the
// closing quantity exceeds the total open contracts, the excess is silently
// dropped by the loop bound rather than treated as an error here.
func (m *Matcher) MatchClose(closing domain.Transaction, openPositions []domain.OptionPosition) []domain.PositionUpdate {
	matches := m.matchingLots(closing, openPositions)

	// Strict FIFO: oldest open lot first, regardless of input order. Ties on
	// open date fall back to position ID so repeated recomputes stay stable.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].OpenDate == matches[j].OpenDate {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].OpenDate < matches[j].OpenDate
	})

	var updates []domain.PositionUpdate
	remainingToClose := closing.Contracts

	for _, pos := range matches {
		if remainingToClose <= 0 {
			break
		}

		consumed := min(remainingToClose, pos.Contracts)
		remainingToClose -= consumed

		updates = append(updates, m.consume(pos, closing, consumed))
	}

	return updates
}

// matchingLots filters to open lots with the exact identity key of the
// closing transaction. No fuzzy matching across adjusted or rolled contracts.
func (m *Matcher) matchingLots(closing domain.Transaction, openPositions []domain.OptionPosition) []domain.OptionPosition {
	var matches []domain.OptionPosition
	for _, pos := range openPositions {
		if pos.Status != domain.StatusOpen || pos.Contracts <= 0 {
			continue
		}
		if pos.AccountID != closing.AccountID || pos.Ticker != closing.Ticker {
			continue
		}
		if pos.OptionType != closing.OptionType || pos.StrikePrice != closing.StrikePrice || pos.ExpirationDate != closing.ExpirationDate {
			continue
		}
		matches = append(matches, pos)
	}
	return matches
}

// consume realizes P/L for one slice of one lot. Both the opening premium and
// the closing premium/fees are prorated linearly by the fraction of contracts
// taken, which keeps per-lot P/L proportional even when a single closing
// order clears several lots opened at different premiums.
func (m *Matcher) consume(pos domain.OptionPosition, closing domain.Transaction, consumed int) domain.PositionUpdate {
	lotFraction := float64(consumed) / float64(pos.Contracts)
	closeFraction := float64(consumed) / float64(closing.Contracts)

	// Position premiums are signed (positive when sold to open); the P/L
	// formulas below work on magnitudes so both storage conventions for
	// bought-to-open lots (negative signed or positive with a side tag)
	// produce the same result.
	openPremium := math.Abs(pos.TotalPremium) * lotFraction
	closePremium := closing.TotalPremium * closeFraction
	fees := closing.Fees * closeFraction

	var realizedPL float64
	if pos.SoldToOpen() {
		realizedPL = openPremium - closePremium - fees
	} else {
		realizedPL = closePremium - openPremium - fees
	}

	remaining := pos.Contracts - consumed
	return domain.PositionUpdate{
		PositionID:         pos.ID,
		RemainingContracts: remaining,
		RealizedPL:         realizedPL,
		IsClosed:           remaining == 0,
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
