// Package fingerprint derives stable content identities for transactions and
// detects exact-duplicate submissions against the existing log.
//
// Matching is an exact O(n) string-equality scan, not fuzzy matching:
// near-duplicates (an off-by-one-cent fee, say) are intentionally not flagged,
// because duplicate hits are surfaced as non-blocking warnings and false
// positives would nag on legitimate re-entries.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/aristath/reckoner/internal/domain"
)

// Compute derives a deterministic key from the semantically-identifying
// fields of a transaction. Two transactions with identical economic content
// produce identical fingerprints regardless of insertion order; the record ID
// and notes never participate.
func Compute(tx domain.Transaction) string {
	var parts []string
	if tx.IsOption() {
		parts = []string{
			"option",
			tx.AccountID,
			tx.Ticker,
			string(tx.OptionType),
			string(tx.OptionAction),
			tx.TransactionDate,
			tx.ExpirationDate,
			strconv.Itoa(tx.Contracts),
			formatAmount(tx.StrikePrice),
			formatAmount(tx.PremiumPerShare),
			formatAmount(tx.TotalPremium),
		}
	} else {
		parts = []string{
			"stock",
			tx.AccountID,
			tx.Ticker,
			string(tx.Action),
			tx.Date,
			formatAmount(tx.Shares),
			formatAmount(tx.PricePerShare),
			formatAmount(tx.TotalAmount),
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// FindDuplicates returns every transaction in the log whose fingerprint
// exactly equals the candidate's. The candidate itself (same ID) is skipped so
// a recorded transaction is not its own duplicate.
func FindDuplicates(candidate domain.Transaction, log []domain.Transaction) []domain.Transaction {
	key := Compute(candidate)

	var matches []domain.Transaction
	for _, tx := range log {
		if tx.ID != "" && tx.ID == candidate.ID {
			continue
		}
		if Compute(tx) == key {
			matches = append(matches, tx)
		}
	}
	return matches
}

// formatAmount renders a monetary amount with fixed precision so that float
// representation noise cannot split identical values into distinct keys.
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
