package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Day bounds of a monthly attendance count.
const (
	MinDays = 0
	MaxDays = 365
)

var (
	// ErrInvalidMonth is returned for month values not shaped YYYY-MM.
	ErrInvalidMonth = errors.New("month must be formatted YYYY-MM")
	// ErrDaysOutOfRange is returned for counts outside [MinDays, MaxDays].
	ErrDaysOutOfRange = errors.New("days must be between 0 and 365")
)

const monthLayout = "2006-01"

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// CurrentMonth returns the month containing now.
func CurrentMonth(now time.Time) Month {
	return Month{Year: now.Year(), Month: now.Month()}
}

// ParseMonth reads a YYYY-MM value.
// PRE: s is user input
// POST: returns ErrInvalidMonth unless s is a valid month
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// ParseMonthOr returns the parsed month, or fallback when s is empty or malformed.
func ParseMonthOr(s string, fallback Month) Month {
	if s == "" {
		return fallback
	}
	m, err := ParseMonth(s)
	if err != nil {
		return fallback
	}
	return m
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label is the human form, e.g. "March 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Next returns the following month.
func (m Month) Next() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// ValidateDays checks a day count before it is sent.
func ValidateDays(d int) error {
	if d < MinDays || d > MaxDays {
		return ErrDaysOutOfRange
	}
	return nil
}

// ClampDays bounds a typed value for display.
func ClampDays(d int) int {
	if d < MinDays {
		return MinDays
	}
	if d > MaxDays {
		return MaxDays
	}
	return d
}

// Record is the academy API's answer to an attendance update.
type Record struct {
	Player int    `json:"player"`
	Month  string `json:"month"`
	Days   int    `json:"days"`
}
