package dataset

import (
	"log/slog"
	"net/http"

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

// GetMetadata handles GET /dataset/metadata.
func (h *HandlerImpl) GetMetadata(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DatasetHandler").Start(r.Context(), "GetMetadata", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/dataset/metadata"),
	))
	defer span.End()

	info, err := h.service.Info(ctx)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, info)
}

// Reload handles POST /admin/dataset/reload.
func (h *HandlerImpl) Reload(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DatasetHandler").Start(r.Context(), "Reload", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/dataset/reload"),
	))
	defer span.End()

	info, err := h.service.Reload(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Dataset reload failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "dataset reload failed")
		return
	}
	h.logger.InfoContext(ctx, "Dataset reloaded via admin endpoint", slog.Int("routes", info.TotalRoutes))
	api.WriteJSONResponse(w, r, http.StatusOK, info)
}
