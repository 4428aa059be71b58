package core

import (
	"fmt"
	"time"
)

// DateLayout is the canonical key format used for every date comparison.
const DateLayout = "2006-01-02"

// Date is a civil calendar date with no time-of-day component. It is
// comparable, so two values for the same day are always equal.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: time.Month(month), Day: day}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD key.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// String returns the zero-padded YYYY-MM-DD key.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week of the date.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// Between reports whether d lies in [from, to], both ends included.
func (d Date) Between(from, to Date) bool {
	return d.Compare(from) >= 0 && d.Compare(to) <= 0
}

// InMonth reports whether d falls in the given year and month.
func (d Date) InMonth(year, month int) bool {
	return d.Year == year && int(d.Month) == month
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	if err := ValidateMonth(int(d.Month)); err != nil {
		return err
	}
	if d.Day < 1 || d.Day > DaysInMonth(d.Year, int(d.Month)) {
		return ErrInvalidDay
	}
	return nil
}

// ValidateMonth checks that month is in 1..12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// DaysInMonth returns the number of days of month in year using the
// Gregorian rule: the last day of month is day 0 of month+1.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstOfMonth returns day 1 of the month.
func FirstOfMonth(year, month int) Date {
	return NewDate(year, month, 1)
}

// LastOfMonth returns the last calendar day of the month.
func LastOfMonth(year, month int) Date {
	return NewDate(year, month, DaysInMonth(year, month))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
