/*
overtime.go - Weekly overtime banding

PURPOSE:
  Splits a week's excess hours over the threshold into the three premium
  bands of the applicable collective rules:

    first 4h of overtime   -> 10% premium
    next 4h  (4h..8h)      -> 25% premium
    beyond 8h              -> 50% premium

  The widths are fixed business rules, not configuration.

GUARANTEE:
  Rate10 + Rate25 + Rate50 == max(0, actual - threshold), all bands >= 0.
*/
package payroll

// Band widths in hours of overtime.
var (
	band10Width = NewHoursFromInt(4)
	band25Width = NewHoursFromInt(4)
	band25Ceil  = NewHoursFromInt(8) // 10% width + 25% width
)

// OvertimeBands is a week's overtime split by premium rate.
type OvertimeBands struct {
	Rate10 Hours
	Rate25 Hours
	Rate50 Hours
}

// Total returns the full overtime amount across the three bands.
func (b OvertimeBands) Total() Hours {
	return b.Rate10.Add(b.Rate25).Add(b.Rate50)
}

func (b OvertimeBands) IsZero() bool {
	return b.Rate10.IsZero() && b.Rate25.IsZero() && b.Rate50.IsZero()
}

// Add accumulates another week's bands.
func (b OvertimeBands) Add(o OvertimeBands) OvertimeBands {
	return OvertimeBands{
		Rate10: b.Rate10.Add(o.Rate10),
		Rate25: b.Rate25.Add(o.Rate25),
		Rate50: b.Rate50.Add(o.Rate50),
	}
}

// BandOvertime splits the excess of actual worked hours over the weekly
// threshold into the three bands. Pure; negative inputs are a caller error
// and simply clamp to zero overtime.
func BandOvertime(actualHours, threshold Hours) OvertimeBands {
	overtime := actualHours.Sub(threshold).ClampZero()
	return OvertimeBands{
		Rate10: overtime.Min(band10Width),
		Rate25: overtime.Sub(band10Width).ClampZero().Min(band25Width),
		Rate50: overtime.Sub(band25Ceil).ClampZero(),
	}
}
