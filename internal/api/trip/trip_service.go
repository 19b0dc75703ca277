package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-flight-explorer/app/observability/metrics"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

const defaultLimit = 10

var _ Service = (*ServiceImpl)(nil)

// RouteSource provides the current enriched route collection.
type RouteSource interface {
	EnrichedRoutes(ctx context.Context) ([]types.EnrichedRoute, error)
}

// Clock returns the current time; injected so matching stays deterministic in tests.
type Clock func() time.Time

type Service interface {
	SearchTrips(ctx context.Context, req types.TripSearchRequest) (*types.TripSearchResponse, error)
	ExploreRoutes(ctx context.Context, filter types.RouteFilter, limit int) ([]types.EnrichedRoute, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	routes  RouteSource
	clock   Clock
	metrics *metrics.AppMetrics
}

func NewServiceImpl(routes RouteSource, clock Clock, appMetrics *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	if clock == nil {
		clock = time.Now
	}
	return &ServiceImpl{
		logger:  logger,
		routes:  routes,
		clock:   clock,
		metrics: appMetrics,
	}
}

func (s *ServiceImpl) SearchTrips(ctx context.Context, req types.TripSearchRequest) (*types.TripSearchResponse, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "SearchTrips", trace.WithAttributes(
		attribute.String("trip.origin", req.Origin),
		attribute.Float64("trip.budget", req.BudgetPerPerson),
		attribute.String("trip.cabin", string(req.CabinClass)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SearchTrips"), slog.String("origin", req.Origin))
	start := time.Now()

	routes, err := s.routes.EnrichedRoutes(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get enriched routes", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "route source failed")
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}

	results, err := Match(routes, req.TripRequest, s.clock())
	if err != nil {
		outcome := "error"
		if errors.Is(err, types.ErrInvalidRequest) {
			outcome = "invalid"
			l.WarnContext(ctx, "Rejected trip request", slog.Any("error", err))
		} else {
			l.ErrorContext(ctx, "Trip matching failed", slog.Any("error", err))
		}
		s.metrics.RecordMatch(ctx, time.Since(start), 0, outcome)
		span.RecordError(err)
		span.SetStatus(codes.Error, "match failed")
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	total := len(results)
	if len(results) > limit {
		results = results[:limit]
	}

	travelers := req.Travelers()
	resp := &types.TripSearchResponse{
		TotalMatches: total,
		Travelers:    travelers,
		Results:      Suggest(results, travelers, req.Nights),
	}

	s.metrics.RecordMatch(ctx, time.Since(start), total, "ok")
	span.SetAttributes(attribute.Int("trip.matches", total))
	span.SetStatus(codes.Ok, "trips matched")
	l.InfoContext(ctx, "Trip search completed", slog.Int("matches", total), slog.Int("returned", len(resp.Results)))
	return resp, nil
}

func (s *ServiceImpl) ExploreRoutes(ctx context.Context, filter types.RouteFilter, limit int) ([]types.EnrichedRoute, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ExploreRoutes")
	defer span.End()

	routes, err := s.routes.EnrichedRoutes(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get enriched routes", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "route source failed")
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}

	out := FilterRoutes(routes, filter)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	span.SetAttributes(attribute.Int("routes.count", len(out)))
	span.SetStatus(codes.Ok, "routes filtered")
	return out, nil
}
