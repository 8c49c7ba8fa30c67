/*
week.go - Monday-aligned week bucketing

PURPOSE:
  Partitions a pay period into calendar weeks (Monday 00:00 through Sunday)
  and assigns shifts to them. The week is the unit of overtime calculation:
  thresholds resolve per week, bands compute per week.

PROPERTIES:
  - The first bucket starts on the Monday of the week containing the period
    start; buckets advance by exactly 7 days until weekStart passes the
    period end.
  - Shifts are clipped to the period: a shift in the first or last week but
    outside [periodStart, periodEnd] is excluded.
  - Buckets are chronological and weeks without shifts are still emitted.
*/
package payroll

// GroupByWeek partitions the period into Monday-aligned week buckets and
// distributes the shifts among them. A shift lands in the bucket whose
// clipped range [max(weekStart, periodStart), min(weekEnd, periodEnd)]
// contains its date.
func GroupByWeek(shifts []Shift, period Period) []WeekBucket {
	var buckets []WeekBucket

	for weekStart := period.Start.MondayOfWeek(); !weekStart.After(period.End); weekStart = weekStart.AddDays(7) {
		weekEnd := weekStart.AddDays(6)

		from := Later(weekStart, period.Start)
		to := Earlier(weekEnd, period.End)

		var weekShifts []Shift
		for _, s := range shifts {
			if s.Date.AfterOrEqual(from) && s.Date.BeforeOrEqual(to) {
				weekShifts = append(weekShifts, s)
			}
		}

		buckets = append(buckets, WeekBucket{
			WeekStart: weekStart,
			WeekEnd:   weekEnd,
			Shifts:    weekShifts,
		})
	}

	return buckets
}
