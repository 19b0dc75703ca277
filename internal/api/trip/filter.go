package trip

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

// FilterRoutes applies the route explorer filter and optional sort.
func FilterRoutes(routes []types.EnrichedRoute, f types.RouteFilter) []types.EnrichedRoute {
	origins := upperSet(f.Origins)
	destinations := upperSet(f.Destinations)
	levels := lowerSet(f.PriceLevels)
	airlines := lowerSet(f.Airlines)

	out := make([]types.EnrichedRoute, 0, len(routes))
	for _, r := range routes {
		if len(origins) > 0 && !origins[strings.ToUpper(r.Origin)] {
			continue
		}
		if len(destinations) > 0 && !destinations[strings.ToUpper(r.Route.Destination)] {
			continue
		}
		if len(f.CabinClasses) > 0 && !slices.Contains(f.CabinClasses, r.CabinClass) {
			continue
		}
		if len(levels) > 0 && !levels[strings.ToLower(r.PriceLevel)] {
			continue
		}
		if len(f.DaysAhead) > 0 && !slices.Contains(f.DaysAhead, r.DaysAhead) {
			continue
		}
		if f.MinPrice != nil && r.PriceAvg < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && r.PriceAvg > *f.MaxPrice {
			continue
		}
		if len(airlines) > 0 && !hasAirline(r.Route, airlines) {
			continue
		}
		out = append(out, r)
	}

	sortRoutes(out, f.SortBy)
	return out
}

func hasAirline(r types.Route, selected map[string]bool) bool {
	for _, name := range r.AirlineNames() {
		if selected[strings.ToLower(name)] {
			return true
		}
	}
	return false
}

const unknownDuration = 9999

func sortRoutes(routes []types.EnrichedRoute, by types.RouteSort) {
	var key func(types.EnrichedRoute) float64
	switch by {
	case types.SortLowestPrice:
		key = func(r types.EnrichedRoute) float64 { return r.PriceAvg }
	case types.SortPricePerMile:
		key = func(r types.EnrichedRoute) float64 {
			if r.Geo == nil {
				return 1e9
			}
			return r.Geo.PricePerMile
		}
	case types.SortDuration:
		key = func(r types.EnrichedRoute) float64 {
			if r.SampleFlight == nil {
				return unknownDuration
			}
			return float64(ParseDuration(r.SampleFlight.Duration))
		}
	case types.SortFewestStops:
		key = func(r types.EnrichedRoute) float64 {
			if r.SampleFlight == nil {
				return 99
			}
			return float64(r.SampleFlight.Stops)
		}
	default:
		return
	}
	sort.SliceStable(routes, func(i, j int) bool { return key(routes[i]) < key(routes[j]) })
}

var durationPattern = regexp.MustCompile(`(?i)(?:(\d+)\s*hrs?)?\s*(?:(\d+)\s*mins?)?`)

// ParseDuration converts strings like "12 hr 15 min" to minutes.
// Unparseable input yields a large sentinel so it sorts last.
func ParseDuration(s string) int {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || (m[1] == "" && m[2] == "") {
		return unknownDuration
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes
}

func upperSet(values []string) map[string]bool {
	s := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[strings.ToUpper(v)] = true
		}
	}
	return s
}

func lowerSet(values []string) map[string]bool {
	s := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[strings.ToLower(v)] = true
		}
	}
	return s
}
