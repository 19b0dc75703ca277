package climate

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-flight-explorer/internal/api"
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

// GetMonthlyClimate handles GET /climate?lat=&lon=&month=.
func (h *HandlerImpl) GetMonthlyClimate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ClimateHandler").Start(r.Context(), "GetMonthlyClimate", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/climate"),
	))
	defer span.End()

	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "month must be an integer between 1 and 12")
		return
	}

	mc, err := h.service.MonthlyClimate(ctx, lat, lon, time.Month(month))
	if err != nil {
		status := api.StatusFromError(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "Climate lookup failed", slog.Any("error", err))
		}
		api.ErrorResponse(w, r, status, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, mc)
}
