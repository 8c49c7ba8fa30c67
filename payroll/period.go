package payroll

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is an inclusive [Start, End] date range. Pay periods are created
// by HR and bound which weeks and shifts a calculation considers.
type Period struct {
	Start Date
	End   Date
}

func NewPeriod(start, end Date) Period {
	return Period{Start: start, End: end}
}

// Contains reports whether the date falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns the inclusive day count of the period.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End) + 1
}

// Validate rejects inverted or unset ranges.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrInvalidPeriod
	}
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WEEK BUCKET - One calendar week of a period
// =============================================================================

// WeekBucket is one Monday-to-Sunday week overlapping a period, with the
// shifts that fall inside both the week and the period. Weeks with no
// shifts are still produced: threshold resolution happens per week whether
// or not anyone worked.
type WeekBucket struct {
	WeekStart Date // Monday
	WeekEnd   Date // Sunday
	Shifts    []Shift
}

// ActualHours totals the worked hours of the bucket's shifts.
func (w WeekBucket) ActualHours() Hours {
	return SumDurations(w.Shifts)
}
