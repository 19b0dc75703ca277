package climate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-flight-explorer/app/observability/metrics"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

const source = "Open-Meteo"

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	MonthlyClimate(ctx context.Context, lat, lon float64, month time.Month) (*types.MonthlyClimate, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	fetcher Fetcher
	cache   *cache.Cache
	metrics *metrics.AppMetrics
}

func NewServiceImpl(fetcher Fetcher, cacheTTL time.Duration, appMetrics *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		fetcher: fetcher,
		cache:   cache.New(cacheTTL, cacheTTL/2),
		metrics: appMetrics,
	}
}

func cacheKey(lat, lon float64, month time.Month) string {
	return fmt.Sprintf("%g,%g,%d", lat, lon, int(month))
}

// MonthlyClimate summarizes the reference-year daily series for month.
func (s *ServiceImpl) MonthlyClimate(ctx context.Context, lat, lon float64, month time.Month) (*types.MonthlyClimate, error) {
	ctx, span := otel.Tracer("ClimateService").Start(ctx, "MonthlyClimate", trace.WithAttributes(
		attribute.Float64("climate.lat", lat),
		attribute.Float64("climate.lon", lon),
		attribute.Int("climate.month", int(month)),
	))
	defer span.End()

	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be 1-12", types.ErrInvalidRequest)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", types.ErrInvalidRequest)
	}

	key := cacheKey(lat, lon, month)
	if cached, found := s.cache.Get(key); found {
		s.metrics.RecordClimateCacheHit(ctx)
		span.SetAttributes(attribute.Bool("climate.cache_hit", true))
		mc := *cached.(*types.MonthlyClimate)
		return &mc, nil
	}

	l := s.logger.With(slog.String("method", "MonthlyClimate"), slog.String("key", key))
	daily, err := s.fetcher.FetchMonth(ctx, lat, lon, month)
	if err != nil {
		l.WarnContext(ctx, "Climate fetch failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, fmt.Errorf("%w: %w", types.ErrClimateUnavailable, err)
	}

	avg, okAvg := mean(daily.Mean)
	maxTemp, okMax := mean(daily.Max)
	minTemp, okMin := mean(daily.Min)
	if !okAvg || !okMax || !okMin {
		span.SetStatus(codes.Error, "empty series")
		return nil, fmt.Errorf("%w: no daily temperatures for %s", types.ErrClimateUnavailable, key)
	}

	mc := &types.MonthlyClimate{
		Latitude:    lat,
		Longitude:   lon,
		Month:       int(month),
		Avg:         avg,
		Min:         minTemp,
		Max:         maxTemp,
		Description: DescribeTemperature(avg, maxTemp),
		ClimateType: ClassifyLatitude(lat),
		Source:      source,
	}
	if isWinterMonth(lat, month) {
		mc.SkiSuitable = SkiSuitable(lat, avg)
	}

	s.cache.Set(key, mc, cache.DefaultExpiration)
	l.DebugContext(ctx, "Climate fetched", slog.Float64("avg", avg), slog.String("desc", mc.Description))
	span.SetStatus(codes.Ok, "climate fetched")
	out := *mc
	return &out, nil
}

func isWinterMonth(lat float64, m time.Month) bool {
	if lat < 0 {
		return m >= time.June && m <= time.August
	}
	return m == time.December || m <= time.February
}
