package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

func setupRepositoryTest(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresRepository(mock, nil, logger), mock
}

func ptr[T any](v T) *T { return &v }

func TestPostgresRepository_Airports(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, mock := setupRepositoryTest(t)
		rows := mock.NewRows([]string{"code", "name", "city", "country", "latitude", "longitude", "utc_offset"}).
			AddRow("DPS", "Ngurah Rai", "Denpasar", "Indonesia", -8.75, 115.17, ptr(8.0)).
			AddRow("SYD", "Kingsford Smith", "Sydney", "Australia", -33.94, 151.18, nil)
		mock.ExpectQuery("FROM airports").WillReturnRows(rows)

		airports, err := repo.Airports(ctx)
		require.NoError(t, err)
		require.Len(t, airports, 2)
		assert.Equal(t, "DPS", airports[0].Code)
		require.NotNil(t, airports[0].UTCOffset)
		assert.Equal(t, 8.0, *airports[0].UTCOffset)
		assert.Nil(t, airports[1].UTCOffset)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := setupRepositoryTest(t)
		dbErr := errors.New("connection refused")
		mock.ExpectQuery("FROM airports").WillReturnError(dbErr)

		_, err := repo.Airports(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, dbErr))
		assert.Contains(t, err.Error(), "failed to query airports")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_Destinations(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupRepositoryTest(t)

	mock.ExpectQuery("FROM destinations").WillReturnRows(
		mock.NewRows([]string{"id", "name", "country", "airports", "categories",
			"budget_low", "budget_moderate", "budget_luxury", "description", "climate_type", "ski_suitable"}).
			AddRow("bali", "Bali", "Indonesia", []string{"DPS"}, []string{"beach", "Culture"}, 40.0, 90.0, 300.0, "Island", "Tropical", false).
			AddRow("queenstown", "Queenstown", "New Zealand", []string{"ZQN"}, []string{"ski"}, 80.0, 180.0, 500.0, "", "Temperate", true))
	mock.ExpectQuery("FROM destination_climate").WillReturnRows(
		mock.NewRows([]string{"destination_id", "month", "avg_c", "min_c", "max_c", "description"}).
			AddRow("bali", "Jul", 27.0, 23.0, 31.0, "Warm").
			AddRow("gone", "Jul", 1.0, 0.0, 2.0, "Cold"))

	dests, err := repo.Destinations(ctx)
	require.NoError(t, err)
	require.Len(t, dests, 2)
	assert.True(t, dests[0].Categories.Has("culture"))
	assert.Equal(t, 90.0, dests[0].BudgetPerDay.Moderate)
	assert.Equal(t, "Warm", dests[0].MonthlyTemps["Jul"].Description)
	assert.Nil(t, dests[1].MonthlyTemps)
	assert.True(t, dests[1].SkiSuitable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Routes(t *testing.T) {
	ctx := context.Background()
	snapshotID := uuid.New()

	t.Run("latest snapshot", func(t *testing.T) {
		repo, mock := setupRepositoryTest(t)
		mock.ExpectQuery("FROM dataset_snapshots").WillReturnRows(
			mock.NewRows([]string{"id", "total_routes", "economy_routes", "business_routes", "scraped_at"}).
				AddRow(snapshotID, 2, 1, 1, "2025-06-01"))
		mock.ExpectQuery("FROM routes").WithArgs(snapshotID).WillReturnRows(
			mock.NewRows([]string{"origin", "destination", "cabin_class", "travel_date", "days_ahead",
				"price_min", "price_avg", "price_max", "price_level", "airlines",
				"sample_duration", "sample_stops", "sample_price", "sample_airline"}).
				AddRow("SYD", "DPS", "economy", time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), 30,
					250.0, 300.0, 350.0, "low", []string{"Jetstar"},
					ptr("6 hr 20 min"), ptr(0), ptr(298.0), ptr("Jetstar")).
				AddRow("SYD", "LHR", "business", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), 60,
					5000.0, 6200.0, 7000.0, "high", []string{"Qantas"},
					nil, nil, nil, nil))

		meta, routes, err := repo.Routes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, meta.TotalRoutes)
		require.Len(t, routes, 2)
		assert.Equal(t, types.CabinEconomy, routes[0].CabinClass)
		assert.Equal(t, types.NewDate(2025, 7, 10), routes[0].TravelDate)
		require.NotNil(t, routes[0].SampleFlight)
		assert.Equal(t, "6 hr 20 min", routes[0].SampleFlight.Duration)
		assert.Nil(t, routes[1].SampleFlight)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no snapshot imported", func(t *testing.T) {
		repo, mock := setupRepositoryTest(t)
		mock.ExpectQuery("FROM dataset_snapshots").WillReturnError(pgx.ErrNoRows)

		_, _, err := repo.Routes(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrDatasetNotLoaded))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_ImportRoutes(t *testing.T) {
	ctx := context.Background()
	meta := types.DatasetMetadata{TotalRoutes: 1, EconomyRoutes: 1, ScrapedAt: "2025-06-01"}
	routes := []types.Route{{Origin: "SYD", Destination: "DPS", CabinClass: types.CabinEconomy, TravelDate: types.NewDate(2025, 7, 10), PriceAvg: 300}}
	columns := []string{"snapshot_id", "origin", "destination", "cabin_class", "travel_date", "days_ahead",
		"price_min", "price_avg", "price_max", "price_level", "airlines",
		"sample_duration", "sample_stops", "sample_price", "sample_airline"}

	t.Run("success", func(t *testing.T) {
		repo, mock := setupRepositoryTest(t)
		id := uuid.New()
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO dataset_snapshots").WithArgs(1, 1, 0, "2025-06-01").
			WillReturnRows(mock.NewRows([]string{"id"}).AddRow(id))
		mock.ExpectCopyFrom(pgx.Identifier{"routes"}, columns).WillReturnResult(1)
		mock.ExpectCommit()

		got, err := repo.ImportRoutes(ctx, meta, routes)
		require.NoError(t, err)
		assert.Equal(t, id, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("copy failure rolls back", func(t *testing.T) {
		repo, mock := setupRepositoryTest(t)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO dataset_snapshots").WithArgs(1, 1, 0, "2025-06-01").
			WillReturnRows(mock.NewRows([]string{"id"}).AddRow(uuid.New()))
		mock.ExpectCopyFrom(pgx.Identifier{"routes"}, columns).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		_, err := repo.ImportRoutes(ctx, meta, routes)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to copy routes")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_ReplaceAirports(t *testing.T) {
	ctx := context.Background()
	airports := []types.Airport{
		{Code: "SYD", City: "Sydney"},
		{Code: "SYD", City: "Duplicate"},
		{Code: "", City: "Nowhere"},
	}

	t.Run("success", func(t *testing.T) {
		repo, mock := setupRepositoryTest(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM airports").WillReturnResult(pgxmock.NewResult("DELETE", 10))
		mock.ExpectCopyFrom(pgx.Identifier{"airports"},
			[]string{"code", "name", "city", "country", "latitude", "longitude", "utc_offset"}).WillReturnResult(1)
		mock.ExpectCommit()

		require.NoError(t, repo.ReplaceAirports(ctx, airports))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clear failure rolls back", func(t *testing.T) {
		repo, mock := setupRepositoryTest(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM airports").WillReturnError(errors.New("locked"))
		mock.ExpectRollback()

		require.Error(t, repo.ReplaceAirports(ctx, airports))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_ReplaceDestinations(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupRepositoryTest(t)
	dests := []types.Destination{{
		ID: "bali", Name: "Bali", Airports: []string{"DPS"}, Categories: types.NewCategorySet("beach"),
		MonthlyTemps: map[string]types.ClimateMonth{"Jul": {Avg: 27}},
	}}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM destinations").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"destinations"},
		[]string{"id", "position", "name", "country", "airports", "categories",
			"budget_low", "budget_moderate", "budget_luxury", "description", "climate_type", "ski_suitable"}).WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"destination_climate"},
		[]string{"destination_id", "month", "avg_c", "min_c", "max_c", "description"}).WillReturnResult(1)
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceDestinations(ctx, dests))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveClimateMonth(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupRepositoryTest(t)
	cm := types.ClimateMonth{Avg: 27.5, Min: 23, Max: 31, Description: "Warm"}

	mock.ExpectExec("INSERT INTO destination_climate").
		WithArgs("bali", "Jul", 27.5, 23.0, 31.0, "Warm").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.SaveClimateMonth(ctx, "bali", "Jul", cm))
	assert.NoError(t, mock.ExpectationsWereMet())
}
