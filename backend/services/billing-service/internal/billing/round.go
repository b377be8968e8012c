package billing

import "math"

const (
	// StoredCostDecimals is the precision of persisted cost values.
	StoredCostDecimals = 6
	// EnergyDecimals is the precision of meter energy totals.
	EnergyDecimals = 6
	// SummaryDecimals is the precision of user-facing totals.
	SummaryDecimals = 2
	// ProfileDecimals is the precision of the hourly usage profile.
	ProfileDecimals = 3
)

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
