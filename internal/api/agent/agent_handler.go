package agent

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
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

func sessionIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "sessionID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid session id %q", types.ErrInvalidRequest, raw)
	}
	return id, nil
}

// CreateSession handles POST /agent/sessions.
func (h *HandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AgentHandler").Start(r.Context(), "CreateSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/agent/sessions"),
	))
	defer span.End()

	session, err := h.service.CreateSession(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to create agent session", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "failed to create session")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, session)
}

// GetSession handles GET /agent/sessions/{sessionID}.
func (h *HandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AgentHandler").Start(r.Context(), "GetSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/agent/sessions/{sessionID}"),
	))
	defer span.End()

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	session, err := h.service.GetSession(ctx, id)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, session)
}

// SendMessage handles POST /agent/sessions/{sessionID}/messages.
func (h *HandlerImpl) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AgentHandler").Start(r.Context(), "SendMessage", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/agent/sessions/{sessionID}/messages"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SendMessage"))

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req types.AgentMessageRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.SendMessage(ctx, id, req.Message)
	if err != nil {
		status := api.StatusFromError(err)
		if status >= http.StatusInternalServerError {
			l.ErrorContext(ctx, "Agent message failed", slog.Any("error", err))
		}
		api.ErrorResponse(w, r, status, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// DeleteSession handles DELETE /agent/sessions/{sessionID}.
func (h *HandlerImpl) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AgentHandler").Start(r.Context(), "DeleteSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/agent/sessions/{sessionID}"),
	))
	defer span.End()

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteSession(ctx, id); err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
