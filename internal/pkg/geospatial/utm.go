package geospatial

import "math"

// UTMZone returns the UTM zone number (1..60) containing the longitude.
// Zones are 6° wide starting at -180°; longitudes outside [-180, 180) wrap.
func UTMZone(lon float64) int {
	z := math.Mod((lon+180)/6, 60)
	if z < 0 {
		z += 60
	}
	return int(math.Floor(z)) + 1
}

// UTMZoneCentralMeridian returns the central meridian of a zone in degrees.
func UTMZoneCentralMeridian(zone int) float64 {
	return float64(zone)*6 - 183
}

// SouthFalseNorthing is the offset added to northings of the southern UTM
// variant.
const SouthFalseNorthing = 10_000_000.0

// IsSouthern reports whether a latitude uses the southern UTM variant
// (false northing of 10 000 km).
func IsSouthern(lat float64) bool {
	return lat < 0
}
