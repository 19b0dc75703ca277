package insights

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-flight-explorer/internal/api"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/trip"
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

// GetInsights handles GET /insights. It accepts the same filters as GET /routes.
func (h *HandlerImpl) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("InsightsHandler").Start(r.Context(), "GetInsights", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/insights"),
	))
	defer span.End()

	filter, _, err := trip.ParseRouteFilter(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Insights(ctx, filter)
	if err != nil {
		status := api.StatusFromError(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "Insights failed", slog.Any("error", err))
		}
		api.ErrorResponse(w, r, status, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}
