package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) payroll.Date {
	return payroll.NewDate(year, month, day)
}

func datePtr(year int, month time.Month, day int) *payroll.Date {
	d := date(year, month, day)
	return &d
}

func hoursPtr(n float64) *payroll.Hours {
	h := payroll.NewHours(n)
	return &h
}

func amendment(start payroll.Date, end *payroll.Date, newHours *payroll.Hours) payroll.Amendment {
	return payroll.Amendment{
		ID:              "am-test",
		ContractID:      "ct-test",
		StartDate:       start,
		EndDate:         end,
		NewHoursPerWeek: newHours,
	}
}

// =============================================================================
// WEEKLY THRESHOLD - SINGLE WINNER RULE
// =============================================================================

func TestResolveWeeklyThreshold_NoAmendments_ReturnsBase(t *testing.T) {
	threshold := payroll.ResolveWeeklyThreshold(hours(35), nil, date(2025, time.March, 10))

	assert.True(t, threshold.Equal(hours(35)))
}

func TestResolveWeeklyThreshold_ActiveAmendment_Overrides(t *testing.T) {
	// GIVEN: An amendment covering the reference date with 40h/week
	// THEN: 40 is returned, not the 35h base

	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 1), datePtr(2025, time.March, 31), hoursPtr(40)),
	}

	threshold := payroll.ResolveWeeklyThreshold(hours(35), amendments, date(2025, time.March, 10))

	assert.True(t, threshold.Equal(hours(40)))
}

func TestResolveWeeklyThreshold_OutsideRange_ReturnsBase(t *testing.T) {
	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 1), datePtr(2025, time.March, 31), hoursPtr(40)),
	}

	before := payroll.ResolveWeeklyThreshold(hours(35), amendments, date(2025, time.February, 28))
	after := payroll.ResolveWeeklyThreshold(hours(35), amendments, date(2025, time.April, 1))

	assert.True(t, before.Equal(hours(35)), "before range")
	assert.True(t, after.Equal(hours(35)), "after range")
}

func TestResolveWeeklyThreshold_BoundaryDatesInclusive(t *testing.T) {
	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 1), datePtr(2025, time.March, 31), hoursPtr(40)),
	}

	onStart := payroll.ResolveWeeklyThreshold(hours(35), amendments, date(2025, time.March, 1))
	onEnd := payroll.ResolveWeeklyThreshold(hours(35), amendments, date(2025, time.March, 31))

	assert.True(t, onStart.Equal(hours(40)), "start date inclusive")
	assert.True(t, onEnd.Equal(hours(40)), "end date inclusive")
}

func TestResolveWeeklyThreshold_OpenEnded_MatchesForever(t *testing.T) {
	amendments := []payroll.Amendment{
		amendment(date(2025, time.January, 1), nil, hoursPtr(30)),
	}

	threshold := payroll.ResolveWeeklyThreshold(hours(35), amendments, date(2030, time.December, 31))

	assert.True(t, threshold.Equal(hours(30)))
}

func TestResolveWeeklyThreshold_NilHours_FallsThrough(t *testing.T) {
	// An amendment with no hour change never sets the threshold, even when
	// its range matches; a later amendment in the list still can.
	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 1), datePtr(2025, time.March, 31), nil),
		amendment(date(2025, time.March, 1), datePtr(2025, time.March, 31), hoursPtr(42)),
	}

	threshold := payroll.ResolveWeeklyThreshold(hours(35), amendments, date(2025, time.March, 10))

	assert.True(t, threshold.Equal(hours(42)))
}

func TestResolveWeeklyThreshold_OverlappingAmendments_FirstInListWins(t *testing.T) {
	// GIVEN: Two amendments whose ranges both contain the reference date
	// THEN: The first in list order wins, regardless of which started later.
	// This mirrors existing behavior; see the order-dependence note in
	// amendment.go before "fixing" it.

	first := amendment(date(2025, time.March, 1), datePtr(2025, time.March, 31), hoursPtr(40))
	second := amendment(date(2025, time.March, 5), datePtr(2025, time.March, 20), hoursPtr(20))

	got := payroll.ResolveWeeklyThreshold(hours(35), []payroll.Amendment{first, second}, date(2025, time.March, 10))
	assert.True(t, got.Equal(hours(40)), "first in list should win")

	reversed := payroll.ResolveWeeklyThreshold(hours(35), []payroll.Amendment{second, first}, date(2025, time.March, 10))
	assert.True(t, reversed.Equal(hours(20)), "order reversed, winner changes")
}

func TestResolveWeeklyThresholdSource_LabelsOrigin(t *testing.T) {
	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 1), nil, hoursPtr(40)),
	}

	_, src := payroll.ResolveWeeklyThresholdSource(hours(35), amendments, date(2025, time.March, 10))
	assert.Equal(t, payroll.ThresholdAmendment, src)

	_, src = payroll.ResolveWeeklyThresholdSource(hours(35), nil, date(2025, time.March, 10))
	assert.Equal(t, payroll.ThresholdStandard, src)
}

// =============================================================================
// MONTHLY ADJUSTMENT - SUMMED RULE
// =============================================================================

func TestAmendmentAdjustment_HalfPeriod_PlusFive(t *testing.T) {
	// GIVEN: A 28-day period, 35h base, an amendment at 40h/week covering
	//        the first half (14 days)
	// THEN: adjustment = +5 * 14/7 = +10h

	period := payroll.NewPeriod(date(2025, time.March, 1), date(2025, time.March, 28))
	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 1), datePtr(2025, time.March, 14), hoursPtr(40)),
	}

	adj := payroll.AmendmentAdjustment(hours(35), amendments, period)

	assert.True(t, adj.Equal(hours(10)), "got %v", adj)
}

func TestAmendmentAdjustment_SumsAcrossAmendments(t *testing.T) {
	// Unlike the weekly threshold, the monthly adjustment is additive over
	// every overlapping amendment.
	period := payroll.NewPeriod(date(2025, time.March, 1), date(2025, time.March, 28))
	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 1), datePtr(2025, time.March, 14), hoursPtr(40)),  // +5 * 2 weeks
		amendment(date(2025, time.March, 15), datePtr(2025, time.March, 28), hoursPtr(28)), // -7 * 2 weeks
	}

	adj := payroll.AmendmentAdjustment(hours(35), amendments, period)

	// +10 - 14 = -4
	assert.True(t, adj.Equal(hours(-4)), "got %v", adj)
}

func TestAmendmentAdjustment_OpenEnded_ExtendsToPeriodEnd(t *testing.T) {
	period := payroll.NewPeriod(date(2025, time.March, 1), date(2025, time.March, 28))
	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 15), nil, hoursPtr(42)),
	}

	// Overlap is Mar 15..Mar 28 = 14 days = 2 weeks at +7h/week.
	adj := payroll.AmendmentAdjustment(hours(35), amendments, period)

	assert.True(t, adj.Equal(hours(14)), "got %v", adj)
}

func TestAmendmentAdjustment_NoOverlap_Zero(t *testing.T) {
	period := payroll.NewPeriod(date(2025, time.March, 1), date(2025, time.March, 31))
	amendments := []payroll.Amendment{
		amendment(date(2025, time.April, 1), datePtr(2025, time.April, 30), hoursPtr(40)),
	}

	adj := payroll.AmendmentAdjustment(hours(35), amendments, period)

	assert.True(t, adj.IsZero())
}

func TestAmendmentAdjustment_SingleDayOverlap_NotCounted(t *testing.T) {
	// The overlap window must be a strict range (start < end); a degenerate
	// one-day window contributes nothing. Preserved from the original
	// monthly-total computation.
	period := payroll.NewPeriod(date(2025, time.March, 1), date(2025, time.March, 31))
	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 31), datePtr(2025, time.March, 31), hoursPtr(40)),
	}

	adj := payroll.AmendmentAdjustment(hours(35), amendments, period)

	assert.True(t, adj.IsZero())
}

func TestAmendmentAdjustment_NilHours_Skipped(t *testing.T) {
	period := payroll.NewPeriod(date(2025, time.March, 1), date(2025, time.March, 31))
	amendments := []payroll.Amendment{
		amendment(date(2025, time.March, 1), datePtr(2025, time.March, 31), nil),
	}

	adj := payroll.AmendmentAdjustment(hours(35), amendments, period)

	assert.True(t, adj.IsZero())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestAmendmentValidate_EndBeforeStart_Rejected(t *testing.T) {
	a := amendment(date(2025, time.March, 10), datePtr(2025, time.March, 1), hoursPtr(40))

	err := a.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrInvalidAmendment)

	var verr *payroll.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "endDate", verr.Field)
}
