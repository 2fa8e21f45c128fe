package extract

import (
	"fmt"
	"time"
)

// canonicalISODate renders a year/month/day triple as YYYY-MM-DD,
// rejecting impossible calendar dates.
func canonicalISODate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// monthNumber resolves an Italian month name via the lookup table
func monthNumber(name string) (int, bool) {
	m, ok := monthNames[name]
	return m, ok
}
