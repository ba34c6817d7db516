// Package sanitize normalizes and bounds untrusted input fields before they
// enter the domain model. Every function is pure, total, and returns an
// empty/zero sentinel instead of failing.
package sanitize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aristath/reckoner/internal/domain"
)

// Truncation limits per field kind.
const (
	MaxTextLength        = 1000
	MaxNotesLength       = 500
	MaxAccountNameLength = 100
	MaxTickerLength      = 5
)

var (
	angleBracketPattern = regexp.MustCompile(`[<>]`)
	jsSchemePattern     = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+=`)
	nonLetterPattern    = regexp.MustCompile(`[^A-Z]`)
	numericPattern      = regexp.MustCompile(`[^0-9.\-]`)
)

// Text strips markup-injection characters and patterns, trims whitespace and
// hard-truncates to maxLen (MaxTextLength when maxLen <= 0).
func Text(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = MaxTextLength
	}
	s = angleBracketPattern.ReplaceAllString(s, "")
	s = jsSchemePattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// Notes sanitizes free-form note text.
func Notes(s string) string {
	return Text(s, MaxNotesLength)
}

// AccountName sanitizes an account display name.
func AccountName(s string) string {
	return Text(s, MaxAccountNameLength)
}

// Ticker trims, uppercases, strips every non-letter character and truncates
// to five characters.
func Ticker(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = nonLetterPattern.ReplaceAllString(s, "")
	if len(s) > MaxTickerLength {
		s = s[:MaxTickerLength]
	}
	return s
}

// Number coerces a string to a float64, keeping only digits, '.' and '-'.
// Non-finite or unparseable input becomes 0.
func Number(s string) float64 {
	s = numericPattern.ReplaceAllString(strings.TrimSpace(s), "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Date accepts only a strict YYYY-MM-DD calendar date and returns "" on any
// failure, including dates that do not round-trip (e.g. 2026-02-30).
func Date(s string) string {
	s = strings.TrimSpace(s)
	if _, err := domain.ParseDate(s); err != nil {
		return ""
	}
	return s
}

// OptionAction matches case-insensitively against the four option actions and
// returns "" for anything else.
func OptionAction(s string) domain.OptionAction {
	switch domain.OptionAction(strings.ToLower(strings.TrimSpace(s))) {
	case domain.BuyToOpen:
		return domain.BuyToOpen
	case domain.SellToOpen:
		return domain.SellToOpen
	case domain.BuyToClose:
		return domain.BuyToClose
	case domain.SellToClose:
		return domain.SellToClose
	}
	return ""
}

// OptionType maps call/c to call and put/p to put, case-insensitively,
// returning "" otherwise.
func OptionType(s string) domain.OptionType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return domain.Call
	case "put", "p":
		return domain.Put
	}
	return ""
}

// StockAction matches case-insensitively against the known stock actions and
// returns "" for anything else.
func StockAction(s string) domain.StockAction {
	action := domain.StockAction(strings.ToLower(strings.TrimSpace(s)))
	if domain.ValidStockActions[action] {
		return action
	}
	return ""
}
