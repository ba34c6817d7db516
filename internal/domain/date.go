package domain

import (
	"fmt"
	"time"
)

// DateLayout is the only calendar-date format accepted anywhere in the system.
// Dates are parsed in local time and never shifted through UTC, so a recorded
// trading day stays the same day regardless of the host timezone.
const DateLayout = "2006-01-02"

// ParseDate parses a strict YYYY-MM-DD calendar date. The formatted result
// must round-trip to the input exactly, which rejects values like 2026-02-30
// that time.Parse would otherwise normalize into March.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if t.Format(DateLayout) != s {
		return time.Time{}, fmt.Errorf("invalid date %q: does not round-trip", s)
	}
	return t, nil
}

// FormatDate renders a time as a YYYY-MM-DD calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a calendar date by n days (negative to go back) and returns
// the shifted date string. The input must already be a valid date.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}
