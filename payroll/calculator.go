/*
calculator.go - Pay-period aggregation

PURPOSE:
  The entry point of the core. Composes the other three pieces into the
  per-employee, per-period result payroll consumes:

    1. baseMonthlyHours = baseWeeklyHours * 4.33
    2. amendmentAdjustment summed across ALL overlapping amendments
    3. per week: resolve threshold (single winner), sum actual hours,
       band the overtime, accumulate
    4. totalHours = base + adjustment + the three overtime totals

  Only "real" (punched) shifts count toward overtime; planned shifts are
  filtered out up front. Shifts outside the period are ignored.

VALIDATION:
  Inputs are validated before any arithmetic — a Calculate call either
  returns a complete, internally consistent PayResult or a validation
  error, never a partial result.
*/
package payroll

import "github.com/shopspring/decimal"

// WeeksPerMonth converts a weekly contractual commitment into the monthly
// base. Fixed by business rule.
var WeeksPerMonth = decimal.NewFromFloat(4.33)

// =============================================================================
// PAY RESULT
// =============================================================================

// WeekDetail is the per-week breakdown behind the period totals. The report
// endpoint and the export cells are rendered from these.
type WeekDetail struct {
	WeekStart       Date
	WeekEnd         Date
	Threshold       Hours
	ThresholdSource ThresholdSource
	ActualHours     Hours
	Bands           OvertimeBands
}

// PayResult is the complete pay-variable output for one employee over one
// pay period.
type PayResult struct {
	// BaseMonthlyHours is baseWeeklyHours * 4.33, from the original contract
	// only — amendments never touch it.
	BaseMonthlyHours Hours

	// AmendmentAdjustment is the summed hour delta of every amendment
	// overlapping the period (may be negative).
	AmendmentAdjustment Hours

	// Overtime totals across the period's weeks.
	TotalOvertime10 Hours
	TotalOvertime25 Hours
	TotalOvertime50 Hours

	// PointedHours is the raw sum of punched hours within the period.
	PointedHours Hours

	// TotalHours = BaseMonthlyHours + AmendmentAdjustment + the three
	// overtime totals.
	TotalHours Hours

	// Weeks holds the per-week breakdown, chronological.
	Weeks []WeekDetail
}

// =============================================================================
// CALCULATOR
// =============================================================================

// CalculationInput bundles the already-loaded records Calculate consumes.
// The core does no I/O; callers load and pass.
type CalculationInput struct {
	BaseWeeklyHours Hours
	Amendments      []Amendment
	Shifts          []Shift
	Period          Period
}

// Validate checks every input record before computation starts.
func (in CalculationInput) Validate() error {
	if err := in.Period.Validate(); err != nil {
		return err
	}
	if in.BaseWeeklyHours.IsNegative() {
		return &ValidationError{Field: "baseWeeklyHours", Reason: "negative", Err: ErrInvalidHours}
	}
	for _, a := range in.Amendments {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	for _, s := range in.Shifts {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Calculate produces the PayResult for one employee over one pay period.
//
// Amendments must be in the order HR recorded them (start date ascending) —
// the weekly threshold rule is order-dependent, see amendment.go.
func Calculate(in CalculationInput) (PayResult, error) {
	if err := in.Validate(); err != nil {
		return PayResult{}, err
	}

	base := in.BaseWeeklyHours
	baseMonthly := base.Mul(WeeksPerMonth)
	adjustment := AmendmentAdjustment(base, in.Amendments, in.Period)

	// Overtime only ever counts punched time inside the period.
	var real []Shift
	pointed := ZeroHours()
	for _, s := range in.Shifts {
		if s.Kind != ShiftReal || !in.Period.Contains(s.Date) {
			continue
		}
		real = append(real, s)
		pointed = pointed.Add(s.Duration())
	}

	var weeks []WeekDetail
	totals := OvertimeBands{Rate10: ZeroHours(), Rate25: ZeroHours(), Rate50: ZeroHours()}

	for _, bucket := range GroupByWeek(real, in.Period) {
		threshold, source := ResolveWeeklyThresholdSource(base, in.Amendments, bucket.WeekStart)
		actual := bucket.ActualHours()
		bands := BandOvertime(actual, threshold)
		totals = totals.Add(bands)

		weeks = append(weeks, WeekDetail{
			WeekStart:       bucket.WeekStart,
			WeekEnd:         bucket.WeekEnd,
			Threshold:       threshold,
			ThresholdSource: source,
			ActualHours:     actual,
			Bands:           bands,
		})
	}

	total := baseMonthly.Add(adjustment).Add(totals.Total())

	return PayResult{
		BaseMonthlyHours:    baseMonthly,
		AmendmentAdjustment: adjustment,
		TotalOvertime10:     totals.Rate10,
		TotalOvertime25:     totals.Rate25,
		TotalOvertime50:     totals.Rate50,
		PointedHours:        pointed,
		TotalHours:          total,
		Weeks:               weeks,
	}, nil
}
