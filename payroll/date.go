package payroll

import (
	"time"
)

// =============================================================================
// DATE - Calendar day without time-of-day or timezone
// =============================================================================

// Date is a date-only value. All week-boundary math is explicit day-of-week
// arithmetic in UTC; there is no timezone ambiguity to inherit.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses "YYYY-MM-DD". Malformed input fails fast rather than
// degrading into a zero date that would silently corrupt totals.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Reason: "want YYYY-MM-DD, got " + s, Err: ErrInvalidDate}
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }
func (d Date) IsZero() bool              { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// Format delegates to time.Time layouts (export uses "02/01" week labels).
func (d Date) Format(layout string) string { return d.t.Format(layout) }

// MondayOfWeek returns the Monday of the week containing d.
// time.Weekday has Sunday = 0, so the offset back to Monday is (wd+6)%7.
func (d Date) MondayOfWeek() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Earlier returns the earlier of two dates.
func Earlier(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// Later returns the later of two dates.
func Later(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// DaysBetween returns the whole days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}
