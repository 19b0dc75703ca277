package insights

import (
	"math"
	"sort"

	"github.com/FACorreiaa/go-flight-explorer/internal/api/trip"
	"github.com/FACorreiaa/go-flight-explorer/internal/geo"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

// Compute summarizes a route collection. Geography-based figures only count
// resolved routes.
func Compute(routes []types.EnrichedRoute) *types.Insights {
	out := &types.Insights{
		Routes:           len(routes),
		Regions:          []types.RegionStats{},
		DistanceBuckets:  map[string]int{},
		JetLagBuckets:    map[string]int{},
		BookingLeadTimes: []types.BookingLeadStats{},
	}

	type regionAcc struct {
		count, perMileCount int
		min, sum, perMile   float64
	}
	regions := map[types.Region]*regionAcc{}
	type leadAcc struct {
		count int
		sum   float64
	}
	leads := map[int]*leadAcc{}

	for i := range routes {
		r := &routes[i]

		if out.CheapestRoute == nil || r.PriceAvg < out.CheapestRoute.PriceAvg {
			out.CheapestRoute = r
		}

		la, ok := leads[r.DaysAhead]
		if !ok {
			la = &leadAcc{}
			leads[r.DaysAhead] = la
		}
		la.count++
		la.sum += r.PriceAvg

		if !r.Resolved() {
			continue
		}
		out.Resolved++
		out.DistanceBuckets[geo.DistanceCategory(r.Geo.DistanceMiles)]++
		out.JetLagBuckets[geo.JetLagLevel(r.Geo.TimezoneDiff)]++

		ra, ok := regions[r.Geo.DestRegion]
		if !ok {
			ra = &regionAcc{min: math.Inf(1)}
			regions[r.Geo.DestRegion] = ra
		}
		ra.count++
		ra.sum += r.PriceAvg
		ra.min = math.Min(ra.min, r.PriceAvg)
		if r.Geo.PricePerMile > 0 {
			ra.perMileCount++
			ra.perMile += r.Geo.PricePerMile
			if out.BestValuePerMile == nil || r.Geo.PricePerMile < out.BestValuePerMile.Geo.PricePerMile {
				out.BestValuePerMile = r
			}
		}
	}

	for region, ra := range regions {
		stats := types.RegionStats{
			Region:   region,
			Routes:   ra.count,
			MinPrice: geo.Round(ra.min, 2),
			AvgPrice: geo.Round(ra.sum/float64(ra.count), 2),
		}
		if ra.perMileCount > 0 {
			stats.AvgPricePerMile = geo.Round(ra.perMile/float64(ra.perMileCount), 3)
		}
		out.Regions = append(out.Regions, stats)
	}
	sort.Slice(out.Regions, func(i, j int) bool {
		if out.Regions[i].AvgPrice != out.Regions[j].AvgPrice {
			return out.Regions[i].AvgPrice < out.Regions[j].AvgPrice
		}
		return out.Regions[i].Region < out.Regions[j].Region
	})

	for days, la := range leads {
		out.BookingLeadTimes = append(out.BookingLeadTimes, types.BookingLeadStats{
			DaysAhead: days,
			Routes:    la.count,
			AvgPrice:  geo.Round(la.sum/float64(la.count), 2),
			Advice:    trip.BookingWindow(days),
		})
	}
	sort.Slice(out.BookingLeadTimes, func(i, j int) bool {
		return out.BookingLeadTimes[i].DaysAhead < out.BookingLeadTimes[j].DaysAhead
	})
	best := -1
	for i, l := range out.BookingLeadTimes {
		if best < 0 || l.AvgPrice < out.BookingLeadTimes[best].AvgPrice {
			best = i
		}
	}
	if best >= 0 {
		days := out.BookingLeadTimes[best].DaysAhead
		out.BestDaysAhead = &days
	}
	return out
}
