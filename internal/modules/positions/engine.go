// Package positions derives stock and option positions from the append-only
// transaction log. The derivation is a pure function of the full log: given
// the same transactions, Recompute produces identical results, so a full
// recompute on any log mutation is both correct and the simplest consistency
// model.
package positions

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/reckoner/internal/domain"
	"github.com/aristath/reckoner/internal/modules/lots"
)

// Book is the complete derived state for one recompute pass.
//
// Transactions is the chronologically ordered log with RealizedPL populated on
// option closes; the entries in the caller's log are never mutated.
type Book struct {
	Stocks       []domain.StockPosition  `json:"stocks"`
	Options      []domain.OptionPosition `json:"options"`
	Transactions []domain.Transaction    `json:"transactions"`
}

// Engine recomputes the Book from a transaction log. It holds no state between
// calls.
type Engine struct {
	matcher *lots.Matcher
	log     zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		matcher: lots.NewMatcher(),
		log:     log.With().Str("component", "positions-engine").Logger(),
	}
}

// stockState accumulates one account+ticker holding during the pass.
type stockState struct {
	pos domain.StockPosition
}

// Recompute replays the full log in chronological order and returns the
// derived Book. Ties on date keep the log's insertion order.
func (e *Engine) Recompute(transactions []domain.Transaction) Book {
	ordered := make([]domain.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EffectiveDate() < ordered[j].EffectiveDate()
	})

	stocks := map[string]*stockState{}
	var stockOrder []string

	var options []domain.OptionPosition

	for i := range ordered {
		tx := &ordered[i]
		if tx.IsOption() {
			e.applyOption(tx, &options)
			continue
		}
		e.applyStock(*tx, stocks, &stockOrder)
	}

	book := Book{Options: options, Transactions: ordered}
	for _, key := range stockOrder {
		book.Stocks = append(book.Stocks, stocks[key].pos)
	}
	sort.Slice(book.Stocks, func(i, j int) bool {
		if book.Stocks[i].AccountID == book.Stocks[j].AccountID {
			return book.Stocks[i].Ticker < book.Stocks[j].Ticker
		}
		return book.Stocks[i].AccountID < book.Stocks[j].AccountID
	})
	return book
}

func (e *Engine) applyStock(tx domain.Transaction, stocks map[string]*stockState, order *[]string) {
	key := tx.AccountID + "|" + tx.Ticker
	state, ok := stocks[key]
	if !ok {
		state = &stockState{pos: domain.StockPosition{AccountID: tx.AccountID, Ticker: tx.Ticker}}
		stocks[key] = state
		*order = append(*order, key)
	}
	pos := &state.pos

	switch tx.Action {
	case domain.StockActionBuy, domain.StockActionInitial:
		// Fees are capitalized into the cost basis.
		pos.Shares += tx.Shares
		pos.TotalCostBasis += tx.Shares*tx.PricePerShare + tx.Fees
		if pos.FirstPurchaseDate == "" || tx.Date < pos.FirstPurchaseDate {
			pos.FirstPurchaseDate = tx.Date
		}

	case domain.StockActionSell:
		sold := math.Min(tx.Shares, pos.Shares)
		if sold > 0 {
			avg := pos.TotalCostBasis / pos.Shares
			pos.RealizedPL += (tx.PricePerShare-avg)*sold - tx.Fees
			pos.Shares -= sold
			pos.TotalCostBasis -= avg * sold
			if pos.Shares == 0 {
				pos.TotalCostBasis = 0
			}
		}

	case domain.StockActionSplit:
		if factor, ok := splitFactor(tx.SplitRatio); ok && pos.Shares > 0 {
			pos.Shares *= factor
		} else if !ok {
			e.log.Warn().Str("transaction_id", tx.ID).Str("split_ratio", tx.SplitRatio).
				Msg("skipping split with malformed ratio")
		}

	case domain.StockActionDividend:
		// Cash dividends do not change the holding.
	}

	if tx.Date > pos.LastTransactionDate {
		pos.LastTransactionDate = tx.Date
	}
	pos.TransactionIDs = append(pos.TransactionIDs, tx.ID)
	if pos.Shares > 0 {
		pos.AverageCostBasis = pos.TotalCostBasis / pos.Shares
	} else {
		pos.AverageCostBasis = 0
	}
}

func (e *Engine) applyOption(tx *domain.Transaction, options *[]domain.OptionPosition) {
	if tx.OptionAction.IsOpening() {
		e.applyOptionOpen(*tx, options)
		return
	}
	if tx.OptionAction.IsClosing() {
		e.applyOptionClose(tx, options)
	}
}

// applyOptionOpen grows an existing open position with the same identity key
// and opening side, or creates a new one. Positions with different opening
// sides are never merged.
func (e *Engine) applyOptionOpen(tx domain.Transaction, options *[]domain.OptionPosition) {
	side := domain.SideSoldToOpen
	premium := tx.TotalPremium
	if tx.OptionAction == domain.BuyToOpen {
		side = domain.SideBoughtToOpen
		premium = -tx.TotalPremium
	}

	for i := range *options {
		pos := &(*options)[i]
		if pos.Status != domain.StatusOpen || pos.OpeningSide != side {
			continue
		}
		if pos.AccountID != tx.AccountID || pos.Ticker != tx.Ticker ||
			pos.OptionType != tx.OptionType || pos.StrikePrice != tx.StrikePrice ||
			pos.ExpirationDate != tx.ExpirationDate {
			continue
		}
		pos.Contracts += tx.Contracts
		pos.TotalPremium += premium
		if tx.TransactionDate < pos.OpenDate {
			pos.OpenDate = tx.TransactionDate
		}
		pos.TransactionIDs = append(pos.TransactionIDs, tx.ID)
		return
	}

	*options = append(*options, domain.OptionPosition{
		ID:             tx.ID, // first contributing transaction keys the lot
		AccountID:      tx.AccountID,
		Ticker:         tx.Ticker,
		OptionType:     tx.OptionType,
		StrikePrice:    tx.StrikePrice,
		ExpirationDate: tx.ExpirationDate,
		Contracts:      tx.Contracts,
		TotalPremium:   premium,
		OpenDate:       tx.TransactionDate,
		OpeningSide:    side,
		Status:         domain.StatusOpen,
		TransactionIDs: []string{tx.ID},
	})
}

// applyOptionClose runs the closing transaction through the FIFO matcher and
// folds the per-lot updates back into the book. Exhausted lots are marked
// closed, never deleted. The total realized P/L is recorded on the closing
// transaction copy.
func (e *Engine) applyOptionClose(tx *domain.Transaction, options *[]domain.OptionPosition) {
	updates := e.matcher.MatchClose(*tx, *options)
	if len(updates) == 0 {
		e.log.Warn().Str("transaction_id", tx.ID).Str("ticker", tx.Ticker).
			Msg("closing transaction matched no open lots")
		return
	}

	totalPL := 0.0
	for _, u := range updates {
		for i := range *options {
			pos := &(*options)[i]
			if pos.ID != u.PositionID {
				continue
			}
			// Scale the remaining premium by the surviving fraction so later
			// closes prorate against the reduced lot.
			if pos.Contracts > 0 {
				pos.TotalPremium *= float64(u.RemainingContracts) / float64(pos.Contracts)
			}
			pos.Contracts = u.RemainingContracts
			pos.RealizedPL += u.RealizedPL
			if u.IsClosed {
				pos.Status = domain.StatusClosed
			}
			pos.TransactionIDs = append(pos.TransactionIDs, tx.ID)
			break
		}
		totalPL += u.RealizedPL
	}

	tx.RealizedPL = &totalPL
}

// splitFactor parses a "new:old" ratio into a multiplier.
func splitFactor(ratio string) (float64, bool) {
	parts := strings.SplitN(ratio, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	newShares, err1 := strconv.ParseFloat(parts[0], 64)
	oldShares, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || newShares <= 0 || oldShares <= 0 {
		return 0, false
	}
	return newShares / oldShares, true
}
