package utils

import "math"

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Round3 rounds to three decimals for display.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
