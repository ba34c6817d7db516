package lots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/reckoner/internal/domain"
)

func openLot(id, openDate string, contracts int, totalPremium float64) domain.OptionPosition {
	side := domain.SideSoldToOpen
	if totalPremium < 0 {
		side = domain.SideBoughtToOpen
	}
	return domain.OptionPosition{
		ID:             id,
		AccountID:      "acc-1",
		Ticker:         "AAPL",
		OptionType:     domain.Call,
		StrikePrice:    160,
		ExpirationDate: "2025-03-21",
		Contracts:      contracts,
		TotalPremium:   totalPremium,
		OpenDate:       openDate,
		OpeningSide:    side,
		Status:         domain.StatusOpen,
	}
}

func closeTx(contracts int, totalPremium, fees float64) domain.Transaction {
	return domain.Transaction{
		ID:              "close-1",
		AccountID:       "acc-1",
		Ticker:          "AAPL",
		Kind:            domain.KindOption,
		OptionType:      domain.Call,
		OptionAction:    domain.BuyToClose,
		Contracts:       contracts,
		StrikePrice:     160,
		PremiumPerShare: totalPremium / float64(contracts) / 100,
		TotalPremium:    totalPremium,
		Fees:            fees,
		TransactionDate: "2025-03-01",
		ExpirationDate:  "2025-03-21",
	}
}

func TestMatchClose_SingleLotFullClose(t *testing.T) {
	// Sold-to-open 1 contract at $2.50 ($250), bought back at $1.00 ($100).
	positions := []domain.OptionPosition{openLot("pos-1", "2025-02-01", 1, 250)}

	updates := NewMatcher().MatchClose(closeTx(1, 100, 0), positions)

	require.Len(t, updates, 1)
	assert.Equal(t, "pos-1", updates[0].PositionID)
	assert.Equal(t, 0, updates[0].RemainingContracts)
	assert.True(t, updates[0].IsClosed)
	assert.InDelta(t, 150.0, updates[0].RealizedPL, 1e-9)
}

func TestMatchClose_FIFOOrderIndependentOfInputOrder(t *testing.T) {
	newest := openLot("pos-new", "2025-02-20", 1, 300)
	oldest := openLot("pos-old", "2025-02-01", 1, 250)
	middle := openLot("pos-mid", "2025-02-10", 1, 275)

	// Shuffled input: matcher must still consume oldest first.
	updates := NewMatcher().MatchClose(closeTx(2, 200, 0), []domain.OptionPosition{newest, oldest, middle})

	require.Len(t, updates, 2)
	assert.Equal(t, "pos-old", updates[0].PositionID)
	assert.Equal(t, "pos-mid", updates[1].PositionID)
	assert.True(t, updates[0].IsClosed)
	assert.True(t, updates[1].IsClosed)
}

func TestMatchClose_PartialConsumesAndSplitsLot(t *testing.T) {
	positions := []domain.OptionPosition{openLot("pos-1", "2025-02-01", 4, 1000)}

	updates := NewMatcher().MatchClose(closeTx(1, 150, 4), positions)

	require.Len(t, updates, 1)
	assert.Equal(t, 3, updates[0].RemainingContracts)
	assert.False(t, updates[0].IsClosed)
	// Opening premium prorated 1/4 of 1000 = 250; close = 150; fees = 4.
	assert.InDelta(t, 250-150-4, updates[0].RealizedPL, 1e-9)
}

func TestMatchClose_Conservation(t *testing.T) {
	positions := []domain.OptionPosition{
		openLot("pos-1", "2025-02-01", 3, 750),
		openLot("pos-2", "2025-02-05", 2, 450),
		openLot("pos-3", "2025-02-09", 5, 1100),
	}
	totalOpen := 10
	closed := 6

	updates := NewMatcher().MatchClose(closeTx(closed, 600, 0), positions)

	remaining := 0
	consumed := 0
	for i, u := range updates {
		remaining += u.RemainingContracts
		consumed += positions[i].Contracts - u.RemainingContracts
	}
	unconsumed := 0
	for i := len(updates); i < len(positions); i++ {
		unconsumed += positions[i].Contracts
	}

	assert.Equal(t, closed, consumed, "no contracts created or destroyed")
	assert.Equal(t, totalOpen-closed, remaining+unconsumed)
}

func TestMatchClose_ProrationAssociativity(t *testing.T) {
	// Closing a 5-contract lot in slices of 2 and 3 must realize the same
	// total P/L as closing it in one transaction.
	lot := openLot("pos-1", "2025-02-01", 5, 1250)

	full := NewMatcher().MatchClose(closeTx(5, 500, 10), []domain.OptionPosition{lot})
	require.Len(t, full, 1)

	first := NewMatcher().MatchClose(closeTx(2, 200, 4), []domain.OptionPosition{lot})
	require.Len(t, first, 1)

	reduced := lot
	reduced.Contracts = first[0].RemainingContracts
	reduced.TotalPremium = lot.TotalPremium * float64(reduced.Contracts) / float64(lot.Contracts)
	second := NewMatcher().MatchClose(closeTx(3, 300, 6), []domain.OptionPosition{reduced})
	require.Len(t, second, 1)

	assert.InDelta(t, full[0].RealizedPL, first[0].RealizedPL+second[0].RealizedPL, 1e-9)
}

func TestMatchClose_BoughtToOpenSignConvention(t *testing.T) {
	// Long call bought for $250, sold to close for $400: gain of $150.
	lot := openLot("pos-1", "2025-02-01", 1, -250)

	closing := closeTx(1, 400, 0)
	closing.OptionAction = domain.SellToClose

	updates := NewMatcher().MatchClose(closing, []domain.OptionPosition{lot})

	require.Len(t, updates, 1)
	assert.InDelta(t, 150.0, updates[0].RealizedPL, 1e-9)
}

func TestMatchClose_ExcessQuantitySilentlyDropped(t *testing.T) {
	// Quantity sufficiency is the pre-check's job; the matcher just stops
	// when open lots run out.
	positions := []domain.OptionPosition{openLot("pos-1", "2025-02-01", 2, 500)}

	updates := NewMatcher().MatchClose(closeTx(5, 1000, 0), positions)

	require.Len(t, updates, 1)
	assert.Equal(t, 0, updates[0].RemainingContracts)
}

func TestMatchClose_ExactKeyMatchOnly(t *testing.T) {
	base := openLot("pos-1", "2025-02-01", 1, 250)

	otherStrike := base
	otherStrike.ID = "pos-2"
	otherStrike.StrikePrice = 165

	otherExpiry := base
	otherExpiry.ID = "pos-3"
	otherExpiry.ExpirationDate = "2025-04-18"

	otherType := base
	otherType.ID = "pos-4"
	otherType.OptionType = domain.Put

	otherAccount := base
	otherAccount.ID = "pos-5"
	otherAccount.AccountID = "acc-2"

	closedLot := base
	closedLot.ID = "pos-6"
	closedLot.Status = domain.StatusClosed

	updates := NewMatcher().MatchClose(closeTx(10, 1000, 0), []domain.OptionPosition{
		base, otherStrike, otherExpiry, otherType, otherAccount, closedLot,
	})

	require.Len(t, updates, 1)
	assert.Equal(t, "pos-1", updates[0].PositionID)
}
