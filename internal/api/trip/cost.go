package trip

import (
	"github.com/FACorreiaa/go-flight-explorer/internal/geo"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

// BookingWindow describes how far ahead of travel a fare was observed.
func BookingWindow(daysAhead int) string {
	switch {
	case daysAhead < 14:
		return "Last Minute"
	case daysAhead < 30:
		return "Book Soon"
	case daysAhead < 60:
		return "Good Window"
	case daysAhead < 120:
		return "Early Bird"
	default:
		return "Far Advance"
	}
}

// Suggest adds party costs to match results. nights > 0 also estimates the
// stay using the destination's moderate daily budget.
func Suggest(results []types.MatchResult, travelers, nights int) []types.TripSuggestion {
	out := make([]types.TripSuggestion, len(results))
	for i, r := range results {
		flights := geo.Round(r.PriceAvg*float64(travelers), 2)
		s := types.TripSuggestion{
			MatchResult:     r,
			Travelers:       travelers,
			TotalFlightCost: flights,
			BookBy:          r.BookBy(),
			BookingWindow:   BookingWindow(r.DaysAhead),
		}
		if nights > 0 && r.Destination != nil && r.Destination.BudgetPerDay > 0 {
			total := geo.Round(flights+float64(nights)*r.Destination.BudgetPerDay*float64(travelers), 2)
			s.EstimatedTripCost = &total
		}
		out[i] = s
	}
	return out
}
