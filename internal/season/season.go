// Package season maps dates to hemisphere-aware seasons and school calendar periods.
package season

import (
	"fmt"
	"strings"
	"time"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

var southernHemisphere = map[string]struct{}{
	"Australia":    {},
	"New Zealand":  {},
	"Argentina":    {},
	"Chile":        {},
	"Brazil":       {},
	"South Africa": {},
	"Uruguay":      {},
	"Paraguay":     {},
	"Peru":         {},
	"Bolivia":      {},
}

// IsSouthern reports whether country is in the southern hemisphere set.
func IsSouthern(country string) bool {
	_, ok := southernHemisphere[country]
	return ok
}

// SeasonAt returns the season on date at a location in country.
func SeasonAt(date time.Time, country string) types.Season {
	s := northernSeason(date.Month())
	if IsSouthern(country) {
		return Opposite(s)
	}
	return s
}

func northernSeason(m time.Month) types.Season {
	switch m {
	case time.December, time.January, time.February:
		return types.SeasonWinter
	case time.March, time.April, time.May:
		return types.SeasonSpring
	case time.June, time.July, time.August:
		return types.SeasonSummer
	default:
		return types.SeasonFall
	}
}

// Opposite pairs Winter with Summer and Spring with Fall.
func Opposite(s types.Season) types.Season {
	switch s {
	case types.SeasonWinter:
		return types.SeasonSummer
	case types.SeasonSummer:
		return types.SeasonWinter
	case types.SeasonSpring:
		return types.SeasonFall
	case types.SeasonFall:
		return types.SeasonSpring
	}
	return s
}

// ParseSeason accepts labels such as "summer", "Fall 🍂" or "Autumn".
// An empty label, "All" or "All Seasons" parse to the empty season.
func ParseSeason(label string) (types.Season, error) {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, types.FilterAll) || strings.EqualFold(label, "All Seasons") {
		return "", nil
	}
	word := strings.ToLower(strings.Fields(label)[0])
	switch word {
	case "summer":
		return types.SeasonSummer, nil
	case "winter":
		return types.SeasonWinter, nil
	case "spring":
		return types.SeasonSpring, nil
	case "fall", "autumn":
		return types.SeasonFall, nil
	}
	return "", fmt.Errorf("%w: unknown season %q", types.ErrInvalidRequest, label)
}
