package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-flight-explorer/app/observability/metrics"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Source     = (*PostgresRepository)(nil)
)

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository interface {
	Source
	// ReplaceAirports swaps the airport table contents. Duplicate codes keep the first row.
	ReplaceAirports(ctx context.Context, airports []types.Airport) error
	// ReplaceDestinations swaps destinations and their climate tables.
	ReplaceDestinations(ctx context.Context, destinations []types.Destination) error
	// ImportRoutes stores routes as a new snapshot and returns its id.
	ImportRoutes(ctx context.Context, meta types.DatasetMetadata, routes []types.Route) (uuid.UUID, error)
	SaveClimateMonth(ctx context.Context, destinationID, month string, cm types.ClimateMonth) error
}

type PostgresRepository struct {
	logger  *slog.Logger
	db      DBTX
	metrics *metrics.AppMetrics
}

func NewPostgresRepository(db DBTX, appMetrics *metrics.AppMetrics, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger:  logger,
		db:      db,
		metrics: appMetrics,
	}
}

func (r *PostgresRepository) Name() string { return "postgres" }

func (r *PostgresRepository) startSpan(ctx context.Context, name, table string) (context.Context, trace.Span) {
	return otel.Tracer("DatasetRepository").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", table),
	))
}

func (r *PostgresRepository) fail(ctx context.Context, span trace.Span, l *slog.Logger, msg string, err error) error {
	l.ErrorContext(ctx, msg, slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return fmt.Errorf("%s: %w", msg, err)
}

func (r *PostgresRepository) Airports(ctx context.Context) ([]types.Airport, error) {
	ctx, span := r.startSpan(ctx, "Airports", "airports")
	defer span.End()
	l := r.logger.With(slog.String("method", "Airports"))
	start := time.Now()

	rows, err := r.db.Query(ctx, `
		SELECT code, name, city, country, latitude, longitude, utc_offset
		FROM airports
		ORDER BY code`)
	if err != nil {
		r.metrics.RecordQuery(ctx, "airports", time.Since(start), err)
		return nil, r.fail(ctx, span, l, "failed to query airports", err)
	}
	defer rows.Close()

	var airports []types.Airport
	for rows.Next() {
		var a types.Airport
		if err := rows.Scan(&a.Code, &a.Name, &a.City, &a.Country, &a.Latitude, &a.Longitude, &a.UTCOffset); err != nil {
			return nil, r.fail(ctx, span, l, "failed to scan airport", err)
		}
		airports = append(airports, a)
	}
	err = rows.Err()
	r.metrics.RecordQuery(ctx, "airports", time.Since(start), err)
	if err != nil {
		return nil, r.fail(ctx, span, l, "failed iterating airports", err)
	}

	span.SetAttributes(attribute.Int("airports.count", len(airports)))
	span.SetStatus(codes.Ok, "airports loaded")
	return airports, nil
}

func (r *PostgresRepository) Destinations(ctx context.Context) ([]types.Destination, error) {
	ctx, span := r.startSpan(ctx, "Destinations", "destinations")
	defer span.End()
	l := r.logger.With(slog.String("method", "Destinations"))
	start := time.Now()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, country, airports, categories,
		       budget_low, budget_moderate, budget_luxury,
		       description, climate_type, ski_suitable
		FROM destinations
		ORDER BY position, id`)
	if err != nil {
		r.metrics.RecordQuery(ctx, "destinations", time.Since(start), err)
		return nil, r.fail(ctx, span, l, "failed to query destinations", err)
	}

	var destinations []types.Destination
	byID := make(map[string]int)
	for rows.Next() {
		var d types.Destination
		var categories []string
		if err := rows.Scan(&d.ID, &d.Name, &d.Country, &d.Airports, &categories,
			&d.BudgetPerDay.Budget, &d.BudgetPerDay.Moderate, &d.BudgetPerDay.Luxury,
			&d.Description, &d.ClimateType, &d.SkiSuitable); err != nil {
			rows.Close()
			return nil, r.fail(ctx, span, l, "failed to scan destination", err)
		}
		d.Categories = types.NewCategorySet(categories...)
		byID[d.ID] = len(destinations)
		destinations = append(destinations, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		r.metrics.RecordQuery(ctx, "destinations", time.Since(start), err)
		return nil, r.fail(ctx, span, l, "failed iterating destinations", err)
	}

	climate, err := r.db.Query(ctx, `
		SELECT destination_id, month, avg_c, min_c, max_c, description
		FROM destination_climate`)
	if err != nil {
		r.metrics.RecordQuery(ctx, "destinations", time.Since(start), err)
		return nil, r.fail(ctx, span, l, "failed to query destination climate", err)
	}
	defer climate.Close()

	for climate.Next() {
		var id, month string
		var cm types.ClimateMonth
		if err := climate.Scan(&id, &month, &cm.Avg, &cm.Min, &cm.Max, &cm.Description); err != nil {
			return nil, r.fail(ctx, span, l, "failed to scan destination climate", err)
		}
		i, ok := byID[id]
		if !ok {
			continue
		}
		if destinations[i].MonthlyTemps == nil {
			destinations[i].MonthlyTemps = make(map[string]types.ClimateMonth)
		}
		destinations[i].MonthlyTemps[month] = cm
	}
	err = climate.Err()
	r.metrics.RecordQuery(ctx, "destinations", time.Since(start), err)
	if err != nil {
		return nil, r.fail(ctx, span, l, "failed iterating destination climate", err)
	}

	span.SetAttributes(attribute.Int("destinations.count", len(destinations)))
	span.SetStatus(codes.Ok, "destinations loaded")
	return destinations, nil
}

// Routes returns the routes of the most recently imported snapshot.
func (r *PostgresRepository) Routes(ctx context.Context) (*types.DatasetMetadata, []types.Route, error) {
	ctx, span := r.startSpan(ctx, "Routes", "routes")
	defer span.End()
	l := r.logger.With(slog.String("method", "Routes"))
	start := time.Now()

	var snapshotID uuid.UUID
	var meta types.DatasetMetadata
	err := r.db.QueryRow(ctx, `
		SELECT id, total_routes, economy_routes, business_routes, scraped_at
		FROM dataset_snapshots
		ORDER BY loaded_at DESC
		LIMIT 1`).Scan(&snapshotID, &meta.TotalRoutes, &meta.EconomyRoutes, &meta.BusinessRoutes, &meta.ScrapedAt)
	if err != nil {
		r.metrics.RecordQuery(ctx, "routes", time.Since(start), err)
		if errors.Is(err, pgx.ErrNoRows) {
			l.WarnContext(ctx, "No dataset snapshot imported")
			span.SetStatus(codes.Error, "no snapshot")
			return nil, nil, fmt.Errorf("no dataset snapshot: %w", types.ErrDatasetNotLoaded)
		}
		return nil, nil, r.fail(ctx, span, l, "failed to query latest snapshot", err)
	}
	span.SetAttributes(attribute.String("dataset.snapshot_id", snapshotID.String()))

	rows, err := r.db.Query(ctx, `
		SELECT origin, destination, cabin_class, travel_date, days_ahead,
		       price_min, price_avg, price_max, price_level, airlines,
		       sample_duration, sample_stops, sample_price, sample_airline
		FROM routes
		WHERE snapshot_id = $1
		ORDER BY id`, snapshotID)
	if err != nil {
		r.metrics.RecordQuery(ctx, "routes", time.Since(start), err)
		return nil, nil, r.fail(ctx, span, l, "failed to query routes", err)
	}
	defer rows.Close()

	routes := make([]types.Route, 0, meta.TotalRoutes)
	for rows.Next() {
		var rt types.Route
		var cabin string
		var travel time.Time
		var duration, airline *string
		var stops *int
		var price *float64
		if err := rows.Scan(&rt.Origin, &rt.Destination, &cabin, &travel, &rt.DaysAhead,
			&rt.PriceMin, &rt.PriceAvg, &rt.PriceMax, &rt.PriceLevel, &rt.Airlines,
			&duration, &stops, &price, &airline); err != nil {
			return nil, nil, r.fail(ctx, span, l, "failed to scan route", err)
		}
		rt.CabinClass = types.CabinClass(cabin)
		rt.TravelDate = types.DateOf(travel)
		if duration != nil || stops != nil {
			rt.SampleFlight = &types.SampleFlight{}
			if duration != nil {
				rt.SampleFlight.Duration = *duration
			}
			if stops != nil {
				rt.SampleFlight.Stops = *stops
			}
			if price != nil {
				rt.SampleFlight.Price = *price
			}
			if airline != nil {
				rt.SampleFlight.Airline = *airline
			}
		}
		routes = append(routes, rt)
	}
	err = rows.Err()
	r.metrics.RecordQuery(ctx, "routes", time.Since(start), err)
	if err != nil {
		return nil, nil, r.fail(ctx, span, l, "failed iterating routes", err)
	}

	l.DebugContext(ctx, "Routes loaded", slog.Int("count", len(routes)), slog.String("snapshot_id", snapshotID.String()))
	span.SetAttributes(attribute.Int("routes.count", len(routes)))
	span.SetStatus(codes.Ok, "routes loaded")
	return &meta, routes, nil
}

func rollback(ctx context.Context, tx pgx.Tx, l *slog.Logger) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		l.WarnContext(ctx, "Rollback failed", slog.Any("error", err))
	}
}

func (r *PostgresRepository) ReplaceAirports(ctx context.Context, airports []types.Airport) error {
	ctx, span := r.startSpan(ctx, "ReplaceAirports", "airports")
	defer span.End()
	l := r.logger.With(slog.String("method", "ReplaceAirports"))

	seen := make(map[string]struct{}, len(airports))
	rows := make([][]any, 0, len(airports))
	for _, a := range airports {
		if a.Code == "" {
			continue
		}
		if _, dup := seen[a.Code]; dup {
			continue
		}
		seen[a.Code] = struct{}{}
		rows = append(rows, []any{a.Code, a.Name, a.City, a.Country, a.Latitude, a.Longitude, a.UTCOffset})
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.fail(ctx, span, l, "failed to begin transaction", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM airports"); err != nil {
		rollback(ctx, tx, l)
		return r.fail(ctx, span, l, "failed to clear airports", err)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"airports"},
		[]string{"code", "name", "city", "country", "latitude", "longitude", "utc_offset"},
		pgx.CopyFromRows(rows))
	if err != nil {
		rollback(ctx, tx, l)
		return r.fail(ctx, span, l, "failed to copy airports", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return r.fail(ctx, span, l, "failed to commit airports", err)
	}

	l.InfoContext(ctx, "Airports replaced", slog.Int64("rows", n))
	span.SetStatus(codes.Ok, "airports replaced")
	return nil
}

func (r *PostgresRepository) ReplaceDestinations(ctx context.Context, destinations []types.Destination) error {
	ctx, span := r.startSpan(ctx, "ReplaceDestinations", "destinations")
	defer span.End()
	l := r.logger.With(slog.String("method", "ReplaceDestinations"))

	destRows := make([][]any, 0, len(destinations))
	var climateRows [][]any
	for i, d := range destinations {
		destRows = append(destRows, []any{
			d.ID, i, d.Name, d.Country, d.Airports, d.Categories.List(),
			d.BudgetPerDay.Budget, d.BudgetPerDay.Moderate, d.BudgetPerDay.Luxury,
			d.Description, d.ClimateType, d.SkiSuitable,
		})
		for month, cm := range d.MonthlyTemps {
			climateRows = append(climateRows, []any{d.ID, month, cm.Avg, cm.Min, cm.Max, cm.Description})
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.fail(ctx, span, l, "failed to begin transaction", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM destinations"); err != nil {
		rollback(ctx, tx, l)
		return r.fail(ctx, span, l, "failed to clear destinations", err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"destinations"},
		[]string{"id", "position", "name", "country", "airports", "categories",
			"budget_low", "budget_moderate", "budget_luxury", "description", "climate_type", "ski_suitable"},
		pgx.CopyFromRows(destRows)); err != nil {
		rollback(ctx, tx, l)
		return r.fail(ctx, span, l, "failed to copy destinations", err)
	}
	if len(climateRows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"destination_climate"},
			[]string{"destination_id", "month", "avg_c", "min_c", "max_c", "description"},
			pgx.CopyFromRows(climateRows)); err != nil {
			rollback(ctx, tx, l)
			return r.fail(ctx, span, l, "failed to copy destination climate", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return r.fail(ctx, span, l, "failed to commit destinations", err)
	}

	l.InfoContext(ctx, "Destinations replaced", slog.Int("destinations", len(destRows)), slog.Int("climate_months", len(climateRows)))
	span.SetStatus(codes.Ok, "destinations replaced")
	return nil
}

func (r *PostgresRepository) ImportRoutes(ctx context.Context, meta types.DatasetMetadata, routes []types.Route) (uuid.UUID, error) {
	ctx, span := r.startSpan(ctx, "ImportRoutes", "routes")
	defer span.End()
	l := r.logger.With(slog.String("method", "ImportRoutes"))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, r.fail(ctx, span, l, "failed to begin transaction", err)
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO dataset_snapshots (total_routes, economy_routes, business_routes, scraped_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, meta.TotalRoutes, meta.EconomyRoutes, meta.BusinessRoutes, meta.ScrapedAt).Scan(&id)
	if err != nil {
		rollback(ctx, tx, l)
		return uuid.Nil, r.fail(ctx, span, l, "failed to insert snapshot", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"routes"},
		[]string{"snapshot_id", "origin", "destination", "cabin_class", "travel_date", "days_ahead",
			"price_min", "price_avg", "price_max", "price_level", "airlines",
			"sample_duration", "sample_stops", "sample_price", "sample_airline"},
		pgx.CopyFromSlice(len(routes), func(i int) ([]any, error) {
			rt := routes[i]
			var duration, airline *string
			var stops *int
			var price *float64
			if sf := rt.SampleFlight; sf != nil {
				duration, stops, price, airline = &sf.Duration, &sf.Stops, &sf.Price, &sf.Airline
			}
			return []any{id, rt.Origin, rt.Destination, string(rt.CabinClass), rt.TravelDate.Time, rt.DaysAhead,
				rt.PriceMin, rt.PriceAvg, rt.PriceMax, rt.PriceLevel, rt.Airlines,
				duration, stops, price, airline}, nil
		}))
	if err != nil {
		rollback(ctx, tx, l)
		return uuid.Nil, r.fail(ctx, span, l, "failed to copy routes", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, r.fail(ctx, span, l, "failed to commit routes", err)
	}

	l.InfoContext(ctx, "Routes imported", slog.String("snapshot_id", id.String()), slog.Int64("rows", n))
	span.SetAttributes(attribute.String("dataset.snapshot_id", id.String()))
	span.SetStatus(codes.Ok, "routes imported")
	return id, nil
}

func (r *PostgresRepository) SaveClimateMonth(ctx context.Context, destinationID, month string, cm types.ClimateMonth) error {
	ctx, span := r.startSpan(ctx, "SaveClimateMonth", "destination_climate")
	defer span.End()
	start := time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO destination_climate (destination_id, month, avg_c, min_c, max_c, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (destination_id, month) DO UPDATE
		SET avg_c = EXCLUDED.avg_c, min_c = EXCLUDED.min_c, max_c = EXCLUDED.max_c,
		    description = EXCLUDED.description`,
		destinationID, month, cm.Avg, cm.Min, cm.Max, cm.Description)
	r.metrics.RecordQuery(ctx, "save_climate_month", time.Since(start), err)
	if err != nil {
		return r.fail(ctx, span, r.logger.With(slog.String("method", "SaveClimateMonth")), "failed to save climate month", err)
	}
	span.SetStatus(codes.Ok, "climate month saved")
	return nil
}
