package geospatial

import "math"

// Azimuth returns the clockwise angle from north, in degrees within [0, 360),
// of the point (lon, lat) seen from the origin (originLon, originLat).
//
// Degree differences are treated as planar offsets (dx = Δlon, dy = Δlat).
// This is not a geodesic bearing; it is only meaningful for small areas and
// is kept for parity with existing outputs. A point coinciding with the
// origin has azimuth 0.
func Azimuth(lon, lat, originLon, originLat float64) float64 {
	dx := lon - originLon
	dy := lat - originLat
	deg := toDeg(math.Atan2(dx, dy))
	if deg < 0 {
		deg += 360
	}
	// -0 and values that round up to 360 both belong at 0.
	if deg >= 360 || deg == 0 {
		return 0
	}
	return deg
}

// ForwardAngle returns the clockwise angular distance from one azimuth to
// another, in [0, 360).
func ForwardAngle(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d < 0 {
		d += 360
	}
	return d
}
