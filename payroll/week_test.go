package payroll_test

import (
	"testing"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

func realShift(emp string, d payroll.Date, start, end float64) payroll.Shift {
	return payroll.Shift{
		EmployeeID: payroll.EmployeeID(emp),
		Date:       d,
		StartHour:  hours(start),
		EndHour:    hours(end),
		Kind:       payroll.ShiftReal,
	}
}

// =============================================================================
// BUCKET SHAPE
// =============================================================================

func TestGroupByWeek_BucketsStartOnMonday(t *testing.T) {
	// GIVEN: A period starting Wednesday March 5, 2025
	// THEN: The first bucket starts on Monday March 3

	period := payroll.NewPeriod(date(2025, time.March, 5), date(2025, time.March, 20))

	buckets := payroll.GroupByWeek(nil, period)

	if len(buckets) == 0 {
		t.Fatal("expected buckets")
	}
	first := buckets[0]
	if !first.WeekStart.Equal(date(2025, time.March, 3)) {
		t.Errorf("expected week start 2025-03-03, got %s", first.WeekStart)
	}
	if first.WeekStart.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %s", first.WeekStart.Weekday())
	}
	if !first.WeekEnd.Equal(date(2025, time.March, 9)) {
		t.Errorf("expected week end 2025-03-09, got %s", first.WeekEnd)
	}
}

func TestGroupByWeek_MondayPeriodStart_IsItsOwnWeekStart(t *testing.T) {
	period := payroll.NewPeriod(date(2025, time.March, 3), date(2025, time.March, 9))

	buckets := payroll.GroupByWeek(nil, period)

	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if !buckets[0].WeekStart.Equal(date(2025, time.March, 3)) {
		t.Errorf("expected 2025-03-03, got %s", buckets[0].WeekStart)
	}
}

func TestGroupByWeek_AdvancesBySevenUntilPastEnd(t *testing.T) {
	// March 2025: Mar 1 is a Saturday. The containing week starts Feb 24;
	// the last bucket is the week of Mar 31.
	period := payroll.NewPeriod(date(2025, time.March, 1), date(2025, time.March, 31))

	buckets := payroll.GroupByWeek(nil, period)

	if len(buckets) != 6 {
		t.Fatalf("expected 6 buckets, got %d", len(buckets))
	}
	for i := 1; i < len(buckets); i++ {
		if payroll.DaysBetween(buckets[i-1].WeekStart, buckets[i].WeekStart) != 7 {
			t.Errorf("bucket %d not 7 days after its predecessor", i)
		}
	}
	last := buckets[len(buckets)-1]
	if !last.WeekStart.Equal(date(2025, time.March, 31)) {
		t.Errorf("expected last week start 2025-03-31, got %s", last.WeekStart)
	}
}

// =============================================================================
// PARTITION COVERAGE
// =============================================================================

func TestGroupByWeek_PartitionCoversPeriodExactly(t *testing.T) {
	// Every day of the period belongs to exactly one bucket's clipped range;
	// no gaps, no overlaps.

	period := payroll.NewPeriod(date(2025, time.February, 14), date(2025, time.April, 2))
	buckets := payroll.GroupByWeek(nil, period)

	seen := map[string]int{}
	for _, b := range buckets {
		from := payroll.Later(b.WeekStart, period.Start)
		to := payroll.Earlier(b.WeekEnd, period.End)
		for d := from; !d.After(to); d = d.AddDays(1) {
			seen[d.String()]++
		}
	}

	for d := period.Start; !d.After(period.End); d = d.AddDays(1) {
		if seen[d.String()] != 1 {
			t.Errorf("day %s covered %d times, want exactly once", d, seen[d.String()])
		}
		delete(seen, d.String())
	}
	for d := range seen {
		t.Errorf("day %s outside the period was covered", d)
	}
}

// =============================================================================
// SHIFT ASSIGNMENT
// =============================================================================

func TestGroupByWeek_ShiftsClippedToPeriod(t *testing.T) {
	// GIVEN: The period starts mid-week and a shift falls in the same week
	//        but before the period start
	// THEN: That shift is not assigned to any bucket

	period := payroll.NewPeriod(date(2025, time.March, 5), date(2025, time.March, 16))
	shifts := []payroll.Shift{
		realShift("emp-1", date(2025, time.March, 3), 9, 17),  // same week, before period
		realShift("emp-1", date(2025, time.March, 6), 9, 17),  // inside
		realShift("emp-1", date(2025, time.March, 17), 9, 17), // after period
	}

	buckets := payroll.GroupByWeek(shifts, period)

	total := 0
	for _, b := range buckets {
		total += len(b.Shifts)
	}
	if total != 1 {
		t.Fatalf("expected 1 assigned shift, got %d", total)
	}
	if !buckets[0].Shifts[0].Date.Equal(date(2025, time.March, 6)) {
		t.Errorf("wrong shift assigned: %s", buckets[0].Shifts[0].Date)
	}
}

func TestGroupByWeek_EmptyWeeksStillEmitted(t *testing.T) {
	// Threshold resolution happens per week whether or not anyone worked,
	// so weeks without shifts must still appear.
	period := payroll.NewPeriod(date(2025, time.March, 3), date(2025, time.March, 16))
	shifts := []payroll.Shift{
		realShift("emp-1", date(2025, time.March, 4), 9, 17),
	}

	buckets := payroll.GroupByWeek(shifts, period)

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if len(buckets[1].Shifts) != 0 {
		t.Errorf("expected empty second week, got %d shifts", len(buckets[1].Shifts))
	}
}

func TestGroupByWeek_NoShifts_AllBucketsEmpty(t *testing.T) {
	period := payroll.NewPeriod(date(2025, time.March, 1), date(2025, time.March, 31))

	buckets := payroll.GroupByWeek(nil, period)

	for i, b := range buckets {
		if len(b.Shifts) != 0 {
			t.Errorf("bucket %d not empty", i)
		}
	}
}
