package core

import "math"

// Rounding helpers for report output. Monetary values carry 2 decimals,
// hours and percentages 1, and year totals whole dollars. Cached slices
// store these rounded values verbatim, so the rounding is contractual.

// Round2 rounds to 2 decimal places (money).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to 1 decimal place (hours, percentages).
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundDollars rounds to whole dollars (year totals).
func RoundDollars(v float64) float64 {
	return math.Round(v)
}
