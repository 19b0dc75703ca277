// Package climate derives monthly temperature summaries from the Open-Meteo archive.
package climate

import "math"

// DescribeTemperature labels a month by its average and maximum temperature.
func DescribeTemperature(avg, maxTemp float64) string {
	switch {
	case avg >= 30:
		switch {
		case maxTemp >= 38:
			return "Extremely Hot"
		case maxTemp >= 35:
			return "Very Hot"
		}
		return "Hot & Humid"
	case avg >= 25:
		if maxTemp >= 32 {
			return "Hot & Dry"
		}
		return "Warm"
	case avg >= 20:
		return "Pleasant"
	case avg >= 15:
		return "Mild"
	case avg >= 10:
		return "Cool"
	case avg >= 5:
		return "Cold"
	case avg >= 0:
		return "Very Cold"
	}
	return "Freezing"
}

// ClassifyLatitude is a coarse climate zone from latitude alone.
func ClassifyLatitude(lat float64) string {
	switch abs := math.Abs(lat); {
	case abs >= 60:
		return "Polar/Subarctic"
	case abs >= 45:
		return "Continental"
	case abs >= 35:
		return "Temperate"
	case abs >= 23.5:
		return "Subtropical"
	}
	return "Tropical"
}

// SkiSuitable needs a cold winter away from the tropics.
func SkiSuitable(lat, winterAvg float64) bool {
	return winterAvg < 5 && math.Abs(lat) > 30
}

// mean averages the non-nil values, rounded to one decimal.
func mean(values []*float64) (float64, bool) {
	var sum float64
	var n int
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum/float64(n)*10) / 10, true
}
