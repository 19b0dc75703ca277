package enrich

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-flight-explorer/internal/geo"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

func offset(v float64) *float64 { return &v }

func fixtures() (types.AirportIndex, types.DestinationIndex) {
	airports := types.IndexAirports([]types.Airport{
		{Code: "SYD", City: "Sydney", Country: "Australia", Latitude: -33.9, Longitude: 151.2, UTCOffset: offset(10)},
		{Code: "LAX", City: "Los Angeles", Country: "United States", Latitude: 33.9, Longitude: -118.4, UTCOffset: offset(-8)},
		{Code: "DPS", City: "Denpasar", Country: "Indonesia", Latitude: -8.74, Longitude: 115.17, UTCOffset: offset(8)},
		{Code: "KEF", City: "Reykjavik", Country: "Iceland", Latitude: 63.98, Longitude: -22.6},
	})
	destinations := types.IndexDestinations([]types.Destination{
		{
			ID:           "bali",
			Name:         "Bali",
			Country:      "Indonesia",
			Airports:     []string{"DPS"},
			Categories:   types.NewCategorySet("beach", "culture"),
			BudgetPerDay: types.BudgetPerDay{Budget: 40, Moderate: 90, Luxury: 300},
			MonthlyTemps: map[string]types.ClimateMonth{
				"Jul": {Avg: 26, Min: 23, Max: 29, Description: "Warm & Dry"},
			},
		},
		{ID: "iceland", Name: "Iceland", Country: "Iceland", Airports: []string{"KEF"}, Categories: types.NewCategorySet("nature")},
	})
	return airports, destinations
}

func TestEnrichRoute(t *testing.T) {
	airports, destinations := fixtures()

	t.Run("resolved route", func(t *testing.T) {
		r := types.Route{Origin: "SYD", Destination: "LAX", CabinClass: types.CabinEconomy, TravelDate: types.NewDate(2025, 1, 15), PriceAvg: 1200}
		e := EnrichRoute(r, airports, destinations)

		require.True(t, e.Resolved())
		assert.Equal(t, r, e.Route)
		assert.InEpsilon(t, 7487.0, e.Geo.DistanceMiles, 0.01)
		assert.InDelta(t, e.Geo.DistanceKm, e.Geo.DistanceMiles/geo.KmToMiles, 1)
		assert.Equal(t, geo.Round(1200/e.Geo.DistanceMiles, 2), e.Geo.PricePerMile)
		assert.Equal(t, -18, e.Geo.TimezoneDiff)
		assert.Equal(t, "Sydney", e.Geo.OriginCity)
		assert.Equal(t, "United States", e.Geo.DestCountry)
		assert.Equal(t, types.RegionOceania, e.Geo.OriginRegion)
		assert.Equal(t, types.RegionNorthAmerica, e.Geo.DestRegion)
		assert.Equal(t, types.SeasonSummer, e.Geo.OriginSeason)
		assert.Equal(t, types.SeasonWinter, e.Geo.DestSeason)
		assert.Nil(t, e.Climate)
		assert.Nil(t, e.Destination)
	})

	t.Run("climate for travel month", func(t *testing.T) {
		r := types.Route{Origin: "SYD", Destination: "DPS", TravelDate: types.NewDate(2025, 7, 10), PriceAvg: 300}
		e := EnrichRoute(r, airports, destinations)

		require.NotNil(t, e.Climate)
		assert.Equal(t, 26.0, e.Climate.AvgTempC)
		assert.Equal(t, "Warm & Dry", e.Climate.Description)
		require.NotNil(t, e.Destination)
		assert.Equal(t, "bali", e.Destination.ID)
		assert.Equal(t, 90.0, e.Destination.BudgetPerDay)
		assert.True(t, e.Destination.Categories.Has("beach"))
	})

	t.Run("no climate for missing month", func(t *testing.T) {
		r := types.Route{Origin: "SYD", Destination: "DPS", TravelDate: types.NewDate(2025, 3, 10), PriceAvg: 300}
		e := EnrichRoute(r, airports, destinations)
		assert.Nil(t, e.Climate)
		assert.NotNil(t, e.Destination)
	})

	t.Run("missing offset counts as zero", func(t *testing.T) {
		r := types.Route{Origin: "LAX", Destination: "KEF", TravelDate: types.NewDate(2025, 2, 1), PriceAvg: 500}
		e := EnrichRoute(r, airports, destinations)
		require.True(t, e.Resolved())
		assert.Equal(t, 8, e.Geo.TimezoneDiff)
	})

	t.Run("unknown airport degrades", func(t *testing.T) {
		r := types.Route{Origin: "SYD", Destination: "XXX", TravelDate: types.NewDate(2025, 2, 1), PriceAvg: 500}
		e := EnrichRoute(r, airports, destinations)
		assert.False(t, e.Resolved())
		assert.Nil(t, e.Climate)
		assert.Nil(t, e.Destination)
		assert.Equal(t, r, e.Route)
	})

	t.Run("same airport has zero price per mile", func(t *testing.T) {
		r := types.Route{Origin: "SYD", Destination: "SYD", TravelDate: types.NewDate(2025, 2, 1), PriceAvg: 500}
		e := EnrichRoute(r, airports, destinations)
		require.True(t, e.Resolved())
		assert.Zero(t, e.Geo.DistanceMiles)
		assert.Zero(t, e.Geo.PricePerMile)
	})
}

func sampleRoutes(n int) []types.Route {
	codes := []string{"SYD", "LAX", "DPS", "KEF", "ZZZ"}
	routes := make([]types.Route, n)
	start := types.NewDate(2025, 1, 1)
	for i := range routes {
		routes[i] = types.Route{
			Origin:      codes[i%len(codes)],
			Destination: codes[(i+1)%len(codes)],
			CabinClass:  types.CabinEconomy,
			TravelDate:  start.AddDays(i % 365),
			PriceAvg:    float64(100 + i),
		}
	}
	return routes
}

func TestEnrichPreservesLengthAndOrder(t *testing.T) {
	airports, destinations := fixtures()
	routes := sampleRoutes(57)

	out := Enrich(routes, airports, destinations)
	require.Len(t, out, len(routes))
	for i := range routes {
		assert.Equal(t, routes[i], out[i].Route, fmt.Sprintf("index %d", i))
	}

	resolved, degraded := Count(out)
	assert.Equal(t, len(routes), resolved+degraded)
	assert.Positive(t, degraded)

	assert.Empty(t, Enrich(nil, airports, destinations))
}

func TestEnrichConcurrentMatchesSequential(t *testing.T) {
	airports, destinations := fixtures()
	routes := sampleRoutes(1000)

	got, err := EnrichConcurrent(context.Background(), routes, airports, destinations, 4)
	require.NoError(t, err)
	assert.Equal(t, Enrich(routes, airports, destinations), got)
}

func TestEnrichConcurrentCancelled(t *testing.T) {
	airports, destinations := fixtures()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EnrichConcurrent(ctx, sampleRoutes(1000), airports, destinations, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "Jan", MonthKey(time.January))
	assert.Equal(t, "Sep", MonthKey(time.September))
}
