package insights

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-flight-explorer/internal/api/trip"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Insights(ctx context.Context, filter types.RouteFilter) (*types.Insights, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	routes trip.RouteSource
}

func NewServiceImpl(routes trip.RouteSource, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		routes: routes,
	}
}

// Insights summarizes the routes left after applying the explorer filter.
func (s *ServiceImpl) Insights(ctx context.Context, filter types.RouteFilter) (*types.Insights, error) {
	ctx, span := otel.Tracer("InsightsService").Start(ctx, "Insights")
	defer span.End()

	routes, err := s.routes.EnrichedRoutes(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get enriched routes", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "route source failed")
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}

	result := Compute(trip.FilterRoutes(routes, filter))
	span.SetAttributes(
		attribute.Int("insights.routes", result.Routes),
		attribute.Int("insights.regions", len(result.Regions)),
	)
	span.SetStatus(codes.Ok, "insights computed")
	return result, nil
}
