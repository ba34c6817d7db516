package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/reckoner/internal/domain"
)

var testAccounts = []domain.Account{
	{ID: "acc-1", Name: "Brokerage"},
	{ID: "acc-2", Name: "IRA"},
}

func fixedToday(t *testing.T, date string) {
	t.Helper()
	parsed, err := domain.ParseDate(date)
	require.NoError(t, err)
	old := today
	today = func() time.Time { return parsed }
	t.Cleanup(func() { today = old })
}

func validStockTx() domain.Transaction {
	return domain.Transaction{
		ID:            "tx-1",
		AccountID:     "acc-1",
		Ticker:        "AAPL",
		Kind:          domain.KindStock,
		Action:        domain.StockActionBuy,
		Shares:        100,
		PricePerShare: 150,
		TotalAmount:   15000,
		Date:          "2025-02-01",
		Fees:          1.5,
	}
}

func validOptionTx() domain.Transaction {
	return domain.Transaction{
		ID:              "tx-2",
		AccountID:       "acc-1",
		Ticker:          "AAPL",
		Kind:            domain.KindOption,
		Strategy:        domain.StrategyCoveredCall,
		OptionType:      domain.Call,
		OptionAction:    domain.SellToOpen,
		Contracts:       1,
		StrikePrice:     160,
		PremiumPerShare: 2.5,
		TotalPremium:    250,
		TransactionDate: "2025-02-01",
		ExpirationDate:  "2025-03-21",
	}
}

func TestValidate_ValidStockTransaction(t *testing.T) {
	fixedToday(t, "2025-06-01")

	result := New().Validate(validStockTx(), testAccounts)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Issues)
}

func TestValidate_StockHardErrors(t *testing.T) {
	fixedToday(t, "2025-06-01")

	testCases := []struct {
		name   string
		mutate func(*domain.Transaction)
		field  string
	}{
		{"unknown account", func(tx *domain.Transaction) { tx.AccountID = "acc-999" }, "accountId"},
		{"lowercase ticker", func(tx *domain.Transaction) { tx.Ticker = "aapl" }, "ticker"},
		{"too long ticker", func(tx *domain.Transaction) { tx.Ticker = "TOOLONG" }, "ticker"},
		{"unrecognized action", func(tx *domain.Transaction) { tx.Action = "" }, "action"},
		{"zero shares", func(tx *domain.Transaction) { tx.Shares = 0 }, "shares"},
		{"negative price", func(tx *domain.Transaction) { tx.PricePerShare = -1 }, "pricePerShare"},
		{"negative total", func(tx *domain.Transaction) { tx.TotalAmount = -1 }, "totalAmount"},
		{"negative fees", func(tx *domain.Transaction) { tx.Fees = -1 }, "fees"},
		{"bad date", func(tx *domain.Transaction) { tx.Date = "2026-02-30" }, "date"},
		{"malformed split ratio", func(tx *domain.Transaction) {
			tx.Action = domain.StockActionSplit
			tx.SplitRatio = "2-1"
		}, "splitRatio"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validStockTx()
			tc.mutate(&tx)

			result := New().Validate(tx, testAccounts)

			assert.False(t, result.IsValid)
			require.NotEmpty(t, result.Errors())
			assert.Equal(t, tc.field, result.Errors()[0].Field)
		})
	}
}

func TestValidate_OptionHardErrors(t *testing.T) {
	fixedToday(t, "2025-06-01")

	testCases := []struct {
		name   string
		mutate func(*domain.Transaction)
		field  string
	}{
		{"unrecognized option action", func(tx *domain.Transaction) { tx.OptionAction = "" }, "optionAction"},
		{"unrecognized option type", func(tx *domain.Transaction) { tx.OptionType = "" }, "optionType"},
		{"zero contracts", func(tx *domain.Transaction) { tx.Contracts = 0 }, "contracts"},
		{"zero strike", func(tx *domain.Transaction) { tx.StrikePrice = 0 }, "strikePrice"},
		{"negative premium", func(tx *domain.Transaction) { tx.PremiumPerShare = -1 }, "premiumPerShare"},
		{"bad transaction date", func(tx *domain.Transaction) { tx.TransactionDate = "01/02/2025" }, "transactionDate"},
		{"bad expiration date", func(tx *domain.Transaction) { tx.ExpirationDate = "soon" }, "expirationDate"},
		{"expiration before transaction", func(tx *domain.Transaction) {
			tx.TransactionDate = "2025-03-01"
			tx.ExpirationDate = "2025-02-01"
		}, "expirationDate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validOptionTx()
			tc.mutate(&tx)

			result := New().Validate(tx, testAccounts)

			assert.False(t, result.IsValid)
			require.NotEmpty(t, result.Errors())
			assert.Equal(t, tc.field, result.Errors()[0].Field)
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	fixedToday(t, "2025-06-01")

	t.Run("future date warns without blocking", func(t *testing.T) {
		tx := validStockTx()
		tx.Date = "2025-12-31"

		result := New().Validate(tx, testAccounts)

		assert.True(t, result.IsValid)
		require.Len(t, result.Warnings(), 1)
		assert.Equal(t, "date", result.Warnings()[0].Field)
	})

	t.Run("outlier price warns", func(t *testing.T) {
		tx := validStockTx()
		tx.PricePerShare = 12000

		result := New().Validate(tx, testAccounts)

		assert.True(t, result.IsValid)
		require.Len(t, result.Warnings(), 1)
		assert.Equal(t, "pricePerShare", result.Warnings()[0].Field)
	})

	t.Run("premium above strike warns", func(t *testing.T) {
		tx := validOptionTx()
		tx.StrikePrice = 2
		tx.PremiumPerShare = 2.5

		result := New().Validate(tx, testAccounts)

		assert.True(t, result.IsValid)
		require.Len(t, result.Warnings(), 1)
		assert.Equal(t, "premiumPerShare", result.Warnings()[0].Field)
	})
}

func TestValidateClosingTransaction(t *testing.T) {
	open := []domain.OptionPosition{
		{
			ID: "pos-1", AccountID: "acc-1", Ticker: "AAPL", OptionType: domain.Call,
			StrikePrice: 160, ExpirationDate: "2025-03-21", Contracts: 2,
			Status: domain.StatusOpen, OpeningSide: domain.SideSoldToOpen,
		},
		{
			ID: "pos-2", AccountID: "acc-1", Ticker: "AAPL", OptionType: domain.Call,
			StrikePrice: 160, ExpirationDate: "2025-03-21", Contracts: 3,
			Status: domain.StatusClosed, OpeningSide: domain.SideSoldToOpen,
		},
	}

	closing := validOptionTx()
	closing.OptionAction = domain.BuyToClose

	t.Run("within open quantity", func(t *testing.T) {
		closing := closing
		closing.Contracts = 2

		check := New().ValidateClosingTransaction(closing, open)
		assert.True(t, check.Valid)
	})

	t.Run("closed positions do not count", func(t *testing.T) {
		closing := closing
		closing.Contracts = 3

		check := New().ValidateClosingTransaction(closing, open)
		assert.False(t, check.Valid)
		assert.Contains(t, check.Error, "only 2 open")
	})

	t.Run("non-closing action rejected", func(t *testing.T) {
		opening := validOptionTx()

		check := New().ValidateClosingTransaction(opening, open)
		assert.False(t, check.Valid)
	})
}
