package models

import (
	"fmt"
	"time"
)

// DateLayout is the storage and wire layout for calendar dates.
const DateLayout = "2006-01-02"

// MonthLayout is the storage and wire layout for billing months.
const MonthLayout = "2006-01"

// Month identifies a calendar month (e.g. a bill month or a meal month).
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing the given date.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String formats the month as "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Start returns the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Bounds returns the first day of the month and the first day of the next
// month, formatted with DateLayout, for half-open range queries.
func (m Month) Bounds() (from, to string) {
	start := m.Start()
	return start.Format(DateLayout), start.AddDate(0, 1, 0).Format(DateLayout)
}

// ParseDate parses a "YYYY-MM-DD" string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
