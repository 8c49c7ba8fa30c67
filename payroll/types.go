/*
Package payroll is the pay-variable computation core.

PURPOSE:
  This package turns raw time-clock punches and contract terms into the
  numbers payroll actually needs: weekly overtime split into the 10%/25%/50%
  bands, contract amendments overlaid on a base contract, and pay-period
  totals. It is the single source of truth for this arithmetic — the report
  builder, the export layer, and the API summaries all call through here.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: A decimal quantity of worked or contracted hours
  - Contract: An employee's base weekly-hour commitment
  - Amendment: A dated override of the contracted weekly hours
  - Shift: A worked or planned interval on a single calendar day
  - PayResult: The complete per-employee output for a pay period

DESIGN PRINCIPLES:
  1. Purity: every computation is a deterministic function of its inputs
  2. Precision: decimal.Decimal everywhere, float64 only at the edges
  3. Totality: well-typed inputs never panic or error mid-computation;
     shape violations are rejected up front (see errors.go)

SEE ALSO:
  - amendment.go: Weekly threshold resolution and period adjustments
  - overtime.go:  Overtime banding
  - week.go:      Monday-aligned week bucketing
  - calculator.go: Pay-period aggregation
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS - Decimal hour quantity
// =============================================================================

// Hours is an amount of time expressed in hours. Fractions are minutes/60
// (e.g. 7.5 = 7h30). Backed by decimal.Decimal so that payroll totals never
// accumulate float error.
type Hours struct {
	Value decimal.Decimal
}

func NewHours(value float64) Hours {
	return Hours{Value: decimal.NewFromFloat(value)}
}

func NewHoursFromInt(value int) Hours {
	return Hours{Value: decimal.NewFromInt(int64(value))}
}

func ZeroHours() Hours {
	return Hours{Value: decimal.Zero}
}

// ParseHours parses a decimal string ("35", "7.75"). Used by the store,
// which persists hour quantities as text.
func ParseHours(s string) (Hours, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Hours{}, err
	}
	return Hours{Value: d}, nil
}

func (h Hours) Add(o Hours) Hours              { return Hours{Value: h.Value.Add(o.Value)} }
func (h Hours) Sub(o Hours) Hours              { return Hours{Value: h.Value.Sub(o.Value)} }
func (h Hours) Mul(s decimal.Decimal) Hours    { return Hours{Value: h.Value.Mul(s)} }
func (h Hours) Div(s decimal.Decimal) Hours    { return Hours{Value: h.Value.Div(s)} }
func (h Hours) Neg() Hours                     { return Hours{Value: h.Value.Neg()} }
func (h Hours) IsZero() bool                   { return h.Value.IsZero() }
func (h Hours) IsNegative() bool               { return h.Value.IsNegative() }
func (h Hours) IsPositive() bool               { return h.Value.IsPositive() }
func (h Hours) Equal(o Hours) bool             { return h.Value.Equal(o.Value) }
func (h Hours) GreaterThan(o Hours) bool       { return h.Value.GreaterThan(o.Value) }
func (h Hours) LessThan(o Hours) bool          { return h.Value.LessThan(o.Value) }
func (h Hours) String() string                 { return h.Value.String() }

func (h Hours) Min(o Hours) Hours {
	if h.LessThan(o) {
		return h
	}
	return o
}

func (h Hours) Max(o Hours) Hours {
	if h.GreaterThan(o) {
		return h
	}
	return o
}

func (h Hours) Float64() float64 {
	f, _ := h.Value.Float64()
	return f
}

// ClampZero floors a quantity at zero. Overtime below the threshold is
// never negative.
func (h Hours) ClampZero() Hours {
	if h.IsNegative() {
		return ZeroHours()
	}
	return h
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ContractID string
type AmendmentID string

// =============================================================================
// CONTRACT - Base employment terms
// =============================================================================

// Contract carries the base weekly-hour commitment used as the default
// overtime threshold. An employee may have several contracts on record;
// the first (primary) one is the one pay computation uses.
type Contract struct {
	ID           ContractID
	EmployeeID   EmployeeID
	HoursPerWeek Hours
}

// =============================================================================
// AMENDMENT - Dated override of the weekly commitment
// =============================================================================

// Amendment temporarily or permanently replaces a contract's weekly hours.
// EndDate nil means open-ended. NewHoursPerWeek nil means the amendment
// records something other than an hour change and never affects computation.
//
// The Temporary flag is informational only: resolution depends purely on
// the date range.
type Amendment struct {
	ID              AmendmentID
	ContractID      ContractID
	StartDate       Date
	EndDate         *Date
	NewHoursPerWeek *Hours
	Temporary       bool
}

// Validate checks the range invariant: start <= end when an end is set.
func (a Amendment) Validate() error {
	if a.StartDate.IsZero() {
		return &ValidationError{Field: "startDate", Reason: "missing", Err: ErrInvalidAmendment}
	}
	if a.EndDate != nil && a.EndDate.Before(a.StartDate) {
		return &ValidationError{Field: "endDate", Reason: "before start date", Err: ErrInvalidAmendment}
	}
	return nil
}

// =============================================================================
// SHIFT - Worked or planned interval on a single calendar day
// =============================================================================

type ShiftKind string

const (
	// ShiftPlanned is a scheduled interval. Never counted for overtime.
	ShiftPlanned ShiftKind = "planned"

	// ShiftReal is an actually punched interval. The only kind overtime
	// computation looks at.
	ShiftReal ShiftKind = "real"
)

// Shift is one interval on one calendar day. Start and end are hours of the
// day in [0, 24); overnight shifts are not modeled.
type Shift struct {
	EmployeeID EmployeeID
	Date       Date
	StartHour  Hours
	EndHour    Hours
	Kind       ShiftKind
}

// Duration returns the worked length of the shift.
func (s Shift) Duration() Hours {
	return s.EndHour.Sub(s.StartHour)
}

// Validate checks the interval invariants: hours within the day and
// end strictly after start.
func (s Shift) Validate() error {
	day := NewHoursFromInt(24)
	if s.StartHour.IsNegative() || !s.StartHour.LessThan(day) {
		return &ValidationError{Field: "startHour", Reason: "outside [0, 24)", Err: ErrInvalidShift}
	}
	if s.EndHour.IsNegative() || s.EndHour.GreaterThan(day) {
		return &ValidationError{Field: "endHour", Reason: "outside [0, 24]", Err: ErrInvalidShift}
	}
	if !s.EndHour.GreaterThan(s.StartHour) {
		return &ValidationError{Field: "endHour", Reason: "not after start hour", Err: ErrInvalidShift}
	}
	if s.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "missing", Err: ErrInvalidShift}
	}
	return nil
}

// SumDurations totals the worked hours of a set of shifts.
func SumDurations(shifts []Shift) Hours {
	total := ZeroHours()
	for _, s := range shifts {
		total = total.Add(s.Duration())
	}
	return total
}
