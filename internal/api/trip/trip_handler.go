package trip

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-flight-explorer/internal/api"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// MatchTrips handles POST /trips/match.
func (h *HandlerImpl) MatchTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "MatchTrips", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/match"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "MatchTrips"))

	var req types.TripSearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.SearchTrips(ctx, req)
	if err != nil {
		status := api.StatusFromError(err)
		if status >= http.StatusInternalServerError {
			l.ErrorContext(ctx, "Trip search failed", slog.Any("error", err))
		}
		api.ErrorResponse(w, r, status, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// ListRoutes handles GET /routes with explorer filters in the query string.
func (h *HandlerImpl) ListRoutes(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "ListRoutes", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/routes"),
	))
	defer span.End()

	filter, limit, err := ParseRouteFilter(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	routes, err := h.service.ExploreRoutes(ctx, filter, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Route exploration failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"count":  len(routes),
		"routes": routes,
	})
}

// ParseRouteFilter reads explorer filters and the result limit from the query string.
func ParseRouteFilter(r *http.Request) (types.RouteFilter, int, error) {
	q := r.URL.Query()
	f := types.RouteFilter{
		Origins:      splitList(q.Get("origin")),
		Destinations: splitList(q.Get("destination")),
		PriceLevels:  splitList(q.Get("price_level")),
		Airlines:     splitList(q.Get("airline")),
		SortBy:       types.RouteSort(q.Get("sort")),
	}
	for _, c := range splitList(q.Get("cabin")) {
		f.CabinClasses = append(f.CabinClasses, types.CabinClass(strings.ToLower(c)))
	}
	for _, d := range splitList(q.Get("days_ahead")) {
		n, err := strconv.Atoi(d)
		if err != nil {
			return f, 0, invalid("days_ahead must be integers")
		}
		f.DaysAhead = append(f.DaysAhead, n)
	}
	var err error
	if f.MinPrice, err = optionalFloat(q.Get("min_price")); err != nil {
		return f, 0, invalid("min_price must be a number")
	}
	if f.MaxPrice, err = optionalFloat(q.Get("max_price")); err != nil {
		return f, 0, invalid("max_price must be a number")
	}
	switch f.SortBy {
	case types.SortNone, types.SortLowestPrice, types.SortPricePerMile, types.SortDuration, types.SortFewestStops:
	default:
		return f, 0, invalid("unknown sort %q", f.SortBy)
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return f, 0, invalid("limit must be a non-negative integer")
		}
	}
	return f, limit, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func optionalFloat(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
