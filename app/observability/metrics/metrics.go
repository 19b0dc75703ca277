package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// A nil *AppMetrics is valid and records nothing.
type AppMetrics struct {
	TripMatchRequestsTotal   metric.Int64Counter
	TripMatchDurationSeconds metric.Float64Histogram
	TripMatchResults         metric.Int64Histogram
	RoutesEnrichedTotal      metric.Int64Counter
	RoutesDegradedTotal      metric.Int64Counter
	AgentMessagesTotal       metric.Int64Counter
	ClimateCacheHitsTotal    metric.Int64Counter
	DbQueryDurationSeconds   metric.Float64Histogram
	DbQueryErrorsTotal       metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("FlightExplorer")
		m, err := newAppMetrics(meter)
		if err != nil {
			log.Fatalf("Metrics: %v", err)
		}
		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	if m.TripMatchRequestsTotal, err = meter.Int64Counter(
		"trip_match_requests_total",
		metric.WithDescription("Total number of trip match requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.TripMatchDurationSeconds, err = meter.Float64Histogram(
		"trip_match_duration_seconds",
		metric.WithDescription("Duration of trip matching in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.TripMatchResults, err = meter.Int64Histogram(
		"trip_match_results",
		metric.WithDescription("Number of routes matched per request"),
		metric.WithUnit("{route}"),
	); err != nil {
		return nil, err
	}
	if m.RoutesEnrichedTotal, err = meter.Int64Counter(
		"routes_enriched_total",
		metric.WithDescription("Routes enriched with resolved airports"),
		metric.WithUnit("{route}"),
	); err != nil {
		return nil, err
	}
	if m.RoutesDegradedTotal, err = meter.Int64Counter(
		"routes_degraded_total",
		metric.WithDescription("Routes left without geographic fields"),
		metric.WithUnit("{route}"),
	); err != nil {
		return nil, err
	}
	if m.AgentMessagesTotal, err = meter.Int64Counter(
		"agent_messages_total",
		metric.WithDescription("Messages handled by the trip agent"),
		metric.WithUnit("{message}"),
	); err != nil {
		return nil, err
	}
	if m.ClimateCacheHitsTotal, err = meter.Int64Counter(
		"climate_cache_hits_total",
		metric.WithDescription("Climate lookups served from cache"),
	); err != nil {
		return nil, err
	}
	if m.DbQueryDurationSeconds, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.DbQueryErrorsTotal, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

func (m *AppMetrics) RecordMatch(ctx context.Context, elapsed time.Duration, results int, outcome string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.TripMatchRequestsTotal.Add(ctx, 1, attrs)
	m.TripMatchDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
	m.TripMatchResults.Record(ctx, int64(results))
}

func (m *AppMetrics) RecordEnrichment(ctx context.Context, resolved, degraded int) {
	if m == nil {
		return
	}
	m.RoutesEnrichedTotal.Add(ctx, int64(resolved))
	m.RoutesDegradedTotal.Add(ctx, int64(degraded))
}

func (m *AppMetrics) RecordAgentMessage(ctx context.Context, extractor string, ready bool) {
	if m == nil {
		return
	}
	m.AgentMessagesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("extractor", extractor),
		attribute.Bool("ready_to_search", ready),
	))
}

func (m *AppMetrics) RecordClimateCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.ClimateCacheHitsTotal.Add(ctx, 1)
}

func (m *AppMetrics) RecordQuery(ctx context.Context, query string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("query", query))
	m.DbQueryDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
