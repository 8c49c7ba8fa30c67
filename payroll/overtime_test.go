package payroll_test

import (
	"testing"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func hours(n float64) payroll.Hours {
	return payroll.NewHours(n)
}

func assertHours(t *testing.T, want float64, got payroll.Hours, label string) {
	t.Helper()
	if !got.Equal(hours(want)) {
		t.Errorf("%s: expected %v, got %v", label, want, got)
	}
}

// =============================================================================
// BANDING TESTS
// =============================================================================

func TestBandOvertime_FiveHoursOver_SplitsFourOne(t *testing.T) {
	// GIVEN: 40 actual hours against a 35h threshold (5h overtime)
	// WHEN: Banding
	// THEN: 4h at 10%, 1h at 25%, nothing at 50%

	bands := payroll.BandOvertime(hours(40), hours(35))

	assertHours(t, 4, bands.Rate10, "rate10")
	assertHours(t, 1, bands.Rate25, "rate25")
	assertHours(t, 0, bands.Rate50, "rate50")
}

func TestBandOvertime_FifteenHoursOver_FillsAllBands(t *testing.T) {
	// GIVEN: 50 actual hours against a 35h threshold (15h overtime)
	// THEN: 4h at 10%, 4h at 25%, 7h at 50%

	bands := payroll.BandOvertime(hours(50), hours(35))

	assertHours(t, 4, bands.Rate10, "rate10")
	assertHours(t, 4, bands.Rate25, "rate25")
	assertHours(t, 7, bands.Rate50, "rate50")
}

func TestBandOvertime_UnderThreshold_AllZero(t *testing.T) {
	bands := payroll.BandOvertime(hours(30), hours(35))

	if !bands.IsZero() {
		t.Errorf("expected zero bands, got %+v", bands)
	}
}

func TestBandOvertime_ExactlyAtThreshold_AllZero(t *testing.T) {
	bands := payroll.BandOvertime(hours(35), hours(35))

	if !bands.Total().IsZero() {
		t.Errorf("expected zero overtime, got %v", bands.Total())
	}
}

func TestBandOvertime_FractionalOvertime(t *testing.T) {
	// 4.5h of overtime: the first band fills, the half hour spills into 25%
	bands := payroll.BandOvertime(hours(39.5), hours(35))

	assertHours(t, 4, bands.Rate10, "rate10")
	assertHours(t, 0.5, bands.Rate25, "rate25")
	assertHours(t, 0, bands.Rate50, "rate50")
}

// =============================================================================
// PROPERTY TESTS
// =============================================================================

func TestBandOvertime_Conservation(t *testing.T) {
	// For all actual, threshold >= 0:
	//   rate10 + rate25 + rate50 == max(0, actual - threshold)
	// and rate10 <= 4, rate25 <= 4, all bands >= 0.

	for actual := 0.0; actual <= 60; actual += 2.5 {
		for threshold := 0.0; threshold <= 45; threshold += 3.5 {
			bands := payroll.BandOvertime(hours(actual), hours(threshold))

			expected := hours(actual).Sub(hours(threshold)).ClampZero()
			if !bands.Total().Equal(expected) {
				t.Fatalf("conservation violated at actual=%v threshold=%v: total %v != overtime %v",
					actual, threshold, bands.Total(), expected)
			}

			if bands.Rate10.GreaterThan(hours(4)) {
				t.Fatalf("rate10 cap violated at actual=%v threshold=%v: %v", actual, threshold, bands.Rate10)
			}
			if bands.Rate25.GreaterThan(hours(4)) {
				t.Fatalf("rate25 cap violated at actual=%v threshold=%v: %v", actual, threshold, bands.Rate25)
			}
			if bands.Rate10.IsNegative() || bands.Rate25.IsNegative() || bands.Rate50.IsNegative() {
				t.Fatalf("negative band at actual=%v threshold=%v: %+v", actual, threshold, bands)
			}

			wantRate50 := hours(actual).Sub(hours(threshold)).Sub(hours(8)).ClampZero()
			if !bands.Rate50.Equal(wantRate50) {
				t.Fatalf("rate50 at actual=%v threshold=%v: got %v want %v", actual, threshold, bands.Rate50, wantRate50)
			}
		}
	}
}
