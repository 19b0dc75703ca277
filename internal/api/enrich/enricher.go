// Package enrich derives geographic, seasonal and climate attributes for routes.
package enrich

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-flight-explorer/internal/geo"
	"github.com/FACorreiaa/go-flight-explorer/internal/season"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

// Enrich returns one enriched record per input route, in input order.
// Routes whose airports cannot be resolved keep their raw fields only.
func Enrich(routes []types.Route, airports types.AirportIndex, destinations types.DestinationIndex) []types.EnrichedRoute {
	out := make([]types.EnrichedRoute, len(routes))
	for i := range routes {
		out[i] = EnrichRoute(routes[i], airports, destinations)
	}
	return out
}

// EnrichConcurrent is Enrich split across at most workers goroutines.
func EnrichConcurrent(ctx context.Context, routes []types.Route, airports types.AirportIndex, destinations types.DestinationIndex, workers int) ([]types.EnrichedRoute, error) {
	if workers <= 1 || len(routes) < 2*workers {
		return Enrich(routes, airports, destinations), nil
	}

	out := make([]types.EnrichedRoute, len(routes))
	chunk := (len(routes) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(routes); start += chunk {
		end := min(start+chunk, len(routes))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[i] = EnrichRoute(routes[i], airports, destinations)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EnrichRoute enriches a single route.
func EnrichRoute(r types.Route, airports types.AirportIndex, destinations types.DestinationIndex) types.EnrichedRoute {
	e := types.EnrichedRoute{Route: r}

	origin, okOrigin := airports[r.Origin]
	dest, okDest := airports[r.Destination]
	if !okOrigin || !okDest {
		return e
	}

	miles, km := geo.Distance(
		geo.Coordinate{Lat: origin.Latitude, Lon: origin.Longitude},
		geo.Coordinate{Lat: dest.Latitude, Lon: dest.Longitude},
	)
	var pricePerMile float64
	if miles > 0 {
		pricePerMile = geo.Round(r.PriceAvg/miles, 2)
	}

	travel := r.TravelDate.Time
	e.Geo = &types.RouteGeography{
		DistanceMiles: geo.Round(miles, 1),
		DistanceKm:    geo.Round(km, 1),
		PricePerMile:  pricePerMile,
		OriginCity:    origin.City,
		OriginCountry: origin.Country,
		DestCity:      dest.City,
		DestCountry:   dest.Country,
		TimezoneDiff:  geo.TimezoneDelta(origin.UTCOffset, dest.UTCOffset),
		OriginRegion:  geo.ClassifyRegion(origin.Country),
		DestRegion:    geo.ClassifyRegion(dest.Country),
		OriginSeason:  season.SeasonAt(travel, origin.Country),
		DestSeason:    season.SeasonAt(travel, dest.Country),
	}

	if d, ok := destinations[r.Destination]; ok && d != nil {
		e.Destination = &types.DestinationRef{
			ID:           d.ID,
			Name:         d.Name,
			Country:      d.Country,
			Categories:   d.Categories,
			BudgetPerDay: d.BudgetPerDay.Moderate,
			Description:  d.Description,
			SkiSuitable:  d.SkiSuitable,
		}
		if m, ok := d.MonthlyTemps[MonthKey(travel.Month())]; ok {
			e.Climate = &types.ClimateNote{AvgTempC: m.Avg, Description: m.Description}
		}
	}
	return e
}

// MonthKey is the three-letter abbreviation used by monthly climate tables.
func MonthKey(m time.Month) string {
	return m.String()[:3]
}

// Count reports how many records were fully and partially enriched.
func Count(routes []types.EnrichedRoute) (resolved, degraded int) {
	for _, r := range routes {
		if r.Resolved() {
			resolved++
		} else {
			degraded++
		}
	}
	return resolved, degraded
}
