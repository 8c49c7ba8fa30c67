/*
amendment.go - Amendment resolution

PURPOSE:
  Two deliberately distinct readings of the same amendment list:

  1. ResolveWeeklyThreshold — the SINGLE-WINNER rule. For a given reference
     date, the first amendment in list order whose range contains the date
     sets that week's overtime threshold. Used once per week bucket.

  2. AmendmentAdjustment — the SUMMED rule. Every amendment overlapping the
     pay period contributes (new - base) * overlapWeeks to the monthly
     adjustment, all of them added together.

  These are separate functions on purpose. The weekly threshold and the
  monthly adjustment are different payroll quantities with different
  semantics; unifying them behind one "amendment effect" helper is exactly
  the kind of accidental merge that produced drift between the old call
  sites.

ORDER DEPENDENCE:
  When two amendment ranges overlap a reference date, the FIRST in list
  order wins — not the most recent, not the most specific. Callers feed
  amendments ordered by start date (the order HR sees them in). Sorting
  here by recency would change computed pay for existing data, so the rule
  is preserved as-is; the real fix is rejecting overlapping ranges at
  write time.
*/
package payroll

import "github.com/shopspring/decimal"

var sevenDays = decimal.NewFromInt(7)

// activeOn reports whether the amendment's range contains the reference
// date. A nil end date means open-ended.
func (a Amendment) activeOn(ref Date) bool {
	if ref.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || ref.BeforeOrEqual(*a.EndDate)
}

// ResolveWeeklyThreshold returns the effective weekly-hour threshold for a
// reference date: the first amendment in list order active on that date
// with a non-nil NewHoursPerWeek, or the contract's base hours when none
// matches.
func ResolveWeeklyThreshold(baseWeeklyHours Hours, amendments []Amendment, ref Date) Hours {
	threshold, _ := ResolveWeeklyThresholdSource(baseWeeklyHours, amendments, ref)
	return threshold
}

// ThresholdSource says where a week's threshold came from. Exports label
// each week with it.
type ThresholdSource string

const (
	ThresholdStandard  ThresholdSource = "standard"
	ThresholdAmendment ThresholdSource = "amendment"
)

// ResolveWeeklyThresholdSource is ResolveWeeklyThreshold plus the source of
// the returned value.
func ResolveWeeklyThresholdSource(baseWeeklyHours Hours, amendments []Amendment, ref Date) (Hours, ThresholdSource) {
	for _, a := range amendments {
		if a.NewHoursPerWeek != nil && a.activeOn(ref) {
			return *a.NewHoursPerWeek, ThresholdAmendment
		}
	}
	return baseWeeklyHours, ThresholdStandard
}

// AmendmentAdjustment sums, over every amendment overlapping the period,
// the hours it adds to (or removes from) the monthly base:
//
//	(newHoursPerWeek - baseWeeklyHours) * overlapDays+1 / 7
//
// An open-ended amendment extends through the period end. Overlaps are only
// counted when the window start is strictly before its end, mirroring how
// the monthly totals have always been computed.
func AmendmentAdjustment(baseWeeklyHours Hours, amendments []Amendment, period Period) Hours {
	adjustment := ZeroHours()
	for _, a := range amendments {
		if a.NewHoursPerWeek == nil {
			continue
		}

		end := period.End
		if a.EndDate != nil {
			end = *a.EndDate
		}

		overlapStart := Later(period.Start, a.StartDate)
		overlapEnd := Earlier(period.End, end)
		if !overlapStart.Before(overlapEnd) {
			continue
		}

		overlapWeeks := decimal.NewFromInt(int64(DaysBetween(overlapStart, overlapEnd) + 1)).Div(sevenDays)
		delta := a.NewHoursPerWeek.Sub(baseWeeklyHours)
		adjustment = adjustment.Add(delta.Mul(overlapWeeks))
	}
	return adjustment
}
