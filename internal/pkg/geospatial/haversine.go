package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// RingLength returns the length in meters of the closed ring through the
// given (lat, lon) pairs, including the closing edge back to the first point.
func RingLength(lats, lons []float64) float64 {
	n := len(lats)
	if n < 2 || len(lons) != n {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		total += Haversine(lats[i], lons[i], lats[j], lons[j])
	}
	return total
}

// Extent returns the bounding box of the given (lat, lon) pairs.
func Extent(lats, lons []float64) (minLat, minLon, maxLat, maxLon float64) {
	if len(lats) == 0 || len(lons) != len(lats) {
		return 0, 0, 0, 0
	}
	minLat, maxLat = lats[0], lats[0]
	minLon, maxLon = lons[0], lons[0]
	for i := 1; i < len(lats); i++ {
		minLat = math.Min(minLat, lats[i])
		maxLat = math.Max(maxLat, lats[i])
		minLon = math.Min(minLon, lons[i])
		maxLon = math.Max(maxLon, lons[i])
	}
	return minLat, minLon, maxLat, maxLon
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
