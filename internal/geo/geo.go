// Package geo holds the geometric helpers used to enrich routes.
package geo

import "math"

const (
	EarthRadiusKm = 6371.0
	KmToMiles     = 0.621371
)

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between two coordinates using
// the haversine formula.
func Distance(from, to Coordinate) (miles, km float64) {
	if from == to {
		return 0, 0
	}

	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dlat := lat2 - lat1
	dlon := (to.Lon - from.Lon) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	km = EarthRadiusKm * c
	return km * KmToMiles, km
}

// TimezoneDelta is dest minus origin in whole hours. A missing offset counts as zero.
func TimezoneDelta(originOffset, destOffset *float64) int {
	var o, d float64
	if originOffset != nil {
		o = *originOffset
	}
	if destOffset != nil {
		d = *destOffset
	}
	return int(math.Round(d - o))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// DistanceCategory buckets a flight length in miles.
func DistanceCategory(miles float64) string {
	switch {
	case miles < 1000:
		return "Short-haul (<1000 mi)"
	case miles < 3000:
		return "Medium-haul (1000-3000 mi)"
	case miles < 6000:
		return "Long-haul (3000-6000 mi)"
	default:
		return "Ultra long-haul (>6000 mi)"
	}
}

// JetLagLevel buckets the absolute timezone difference in hours.
func JetLagLevel(tzDiff int) string {
	if tzDiff < 0 {
		tzDiff = -tzDiff
	}
	switch {
	case tzDiff <= 2:
		return "Minimal (0-2h)"
	case tzDiff <= 5:
		return "Moderate (3-5h)"
	case tzDiff <= 8:
		return "Significant (6-8h)"
	default:
		return "Severe (9+h)"
	}
}
