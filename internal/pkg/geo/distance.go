// Package geo computes great-circle distances between WGS-84 coordinates.
package geo

import "math"

const EarthRadiusKm = 6371.0

const degToRad = math.Pi / 180.0

// DistanceKm returns the haversine distance in kilometres between two
// points given in degrees. Coordinates are not range-checked.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Within reports whether the point (lat, lon) lies inside radiusKm of the
// centre, boundary included.
func Within(centreLat, centreLon, lat, lon, radiusKm float64) bool {
	return DistanceKm(centreLat, centreLon, lat, lon) <= radiusKm
}
