package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-flight-explorer/app/observability/metrics"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/enrich"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

const climateBackfillLimit = 4

var _ Service = (*ServiceImpl)(nil)

// Source supplies the raw dataset.
type Source interface {
	Name() string
	Airports(ctx context.Context) ([]types.Airport, error)
	Destinations(ctx context.Context) ([]types.Destination, error)
	Routes(ctx context.Context) (*types.DatasetMetadata, []types.Route, error)
}

// ClimateLookup provides monthly climate for a coordinate.
type ClimateLookup interface {
	MonthlyClimate(ctx context.Context, lat, lon float64, month time.Month) (*types.MonthlyClimate, error)
}

// climateSaver is implemented by sources that can persist backfilled months.
type climateSaver interface {
	SaveClimateMonth(ctx context.Context, destinationID, month string, cm types.ClimateMonth) error
}

// Snapshot is an immutable, fully enriched dataset.
type Snapshot struct {
	Info         types.DatasetInfo
	Airports     types.AirportIndex
	Destinations types.DestinationIndex
	Routes       []types.EnrichedRoute
}

type Service interface {
	Reload(ctx context.Context) (*types.DatasetInfo, error)
	Info(ctx context.Context) (*types.DatasetInfo, error)
	EnrichedRoutes(ctx context.Context) ([]types.EnrichedRoute, error)
	Snapshot() (*Snapshot, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	source  Source
	climate ClimateLookup
	workers int
	metrics *metrics.AppMetrics
	clock   func() time.Time

	reloadMu sync.Mutex
	current  atomic.Pointer[Snapshot]
}

// NewServiceImpl builds the snapshot service. climate may be nil to skip backfilling.
func NewServiceImpl(source Source, climate ClimateLookup, workers int, appMetrics *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		source:  source,
		climate: climate,
		workers: workers,
		metrics: appMetrics,
		clock:   time.Now,
	}
}

// Reload reads the source, enriches it and publishes the new snapshot.
// The previous snapshot keeps serving until the swap, and on failure.
func (s *ServiceImpl) Reload(ctx context.Context) (*types.DatasetInfo, error) {
	ctx, span := otel.Tracer("DatasetService").Start(ctx, "Reload")
	defer span.End()
	l := s.logger.With(slog.String("method", "Reload"), slog.String("source", s.source.Name()))

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	var (
		airports     []types.Airport
		destinations []types.Destination
		meta         *types.DatasetMetadata
		routes       []types.Route
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		airports, err = s.source.Airports(gctx)
		return err
	})
	g.Go(func() (err error) {
		destinations, err = s.source.Destinations(gctx)
		return err
	})
	g.Go(func() (err error) {
		meta, routes, err = s.source.Routes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to load dataset", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	airportIdx := types.IndexAirports(airports)
	destIdx := types.IndexDestinations(destinations)
	if s.climate != nil {
		s.backfillClimate(ctx, destIdx, airportIdx, routes)
	}

	enriched, err := enrich.EnrichConcurrent(ctx, routes, airportIdx, destIdx, s.workers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrichment failed")
		return nil, fmt.Errorf("failed to enrich routes: %w", err)
	}
	resolved, degraded := enrich.Count(enriched)
	s.metrics.RecordEnrichment(ctx, resolved, degraded)
	if degraded > 0 {
		l.WarnContext(ctx, "Some routes reference unknown airports", slog.Int("degraded", degraded))
	}

	if meta == nil {
		m := summarize(routes, "")
		meta = &m
	}
	snap := &Snapshot{
		Info: types.DatasetInfo{
			DatasetMetadata: *meta,
			Source:          s.source.Name(),
			Airports:        len(airportIdx),
			Destinations:    len(destinations),
			Resolved:        resolved,
			Degraded:        degraded,
			LoadedAt:        s.clock(),
		},
		Airports:     airportIdx,
		Destinations: destIdx,
		Routes:       enriched,
	}
	s.current.Store(snap)

	l.InfoContext(ctx, "Dataset loaded",
		slog.Int("routes", len(enriched)),
		slog.Int("resolved", resolved),
		slog.Duration("elapsed", time.Since(start)))
	span.SetAttributes(attribute.Int("routes.count", len(enriched)), attribute.Int("routes.degraded", degraded))
	span.SetStatus(codes.Ok, "dataset loaded")

	info := snap.Info
	return &info, nil
}

type climateJob struct {
	dest  *types.Destination
	month time.Month
	lat   float64
	lon   float64
}

// backfillClimate fetches climate for destination months that routes travel
// in but the destination table lacks. Lookup failures are logged and skipped.
func (s *ServiceImpl) backfillClimate(ctx context.Context, destinations types.DestinationIndex, airports types.AirportIndex, routes []types.Route) {
	l := s.logger.With(slog.String("method", "backfillClimate"))

	type key struct {
		id    string
		month time.Month
	}
	queued := make(map[key]struct{})
	var jobs []climateJob
	for _, r := range routes {
		d := destinations[r.Destination]
		if d == nil {
			continue
		}
		month := r.TravelDate.Month()
		if _, ok := d.MonthlyTemps[enrich.MonthKey(month)]; ok {
			continue
		}
		k := key{d.ID, month}
		if _, ok := queued[k]; ok {
			continue
		}
		a, ok := airports[r.Destination]
		if !ok {
			continue
		}
		queued[k] = struct{}{}
		jobs = append(jobs, climateJob{dest: d, month: month, lat: a.Latitude, lon: a.Longitude})
	}
	if len(jobs) == 0 {
		return
	}

	saver, _ := s.source.(climateSaver)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(climateBackfillLimit)
	for _, job := range jobs {
		g.Go(func() error {
			mc, err := s.climate.MonthlyClimate(gctx, job.lat, job.lon, job.month)
			if err != nil {
				l.WarnContext(gctx, "Climate lookup failed", slog.String("destination", job.dest.ID), slog.Any("error", err))
				return nil
			}
			cm := types.ClimateMonth{Avg: mc.Avg, Min: mc.Min, Max: mc.Max, Description: mc.Description}
			monthKey := enrich.MonthKey(job.month)

			mu.Lock()
			if job.dest.MonthlyTemps == nil {
				job.dest.MonthlyTemps = make(map[string]types.ClimateMonth)
			}
			job.dest.MonthlyTemps[monthKey] = cm
			mu.Unlock()

			if saver != nil {
				if err := saver.SaveClimateMonth(gctx, job.dest.ID, monthKey, cm); err != nil {
					l.WarnContext(gctx, "Failed to persist climate month", slog.String("destination", job.dest.ID), slog.Any("error", err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	l.InfoContext(ctx, "Climate backfill finished", slog.Int("lookups", len(jobs)))
}

func (s *ServiceImpl) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, types.ErrDatasetNotLoaded
	}
	return snap, nil
}

func (s *ServiceImpl) Info(_ context.Context) (*types.DatasetInfo, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	info := snap.Info
	return &info, nil
}

// EnrichedRoutes returns the current snapshot's routes. Callers must not modify them.
func (s *ServiceImpl) EnrichedRoutes(_ context.Context) ([]types.EnrichedRoute, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Routes, nil
}
