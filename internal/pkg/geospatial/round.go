package geospatial

import "math"

// Output precision of the coordinate table.
const (
	MeterDecimals  = 3
	DegreeDecimals = 5
)

// Round rounds v to the given number of decimal places, with halves rounded
// away from zero (1.5 -> 2, -2.5 -> -3).
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
