package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-flight-explorer/app/observability/metrics"
	"github.com/FACorreiaa/go-flight-explorer/internal/season"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

// resultLimit is how many suggestions a ready conversation returns.
const resultLimit = 5

var _ Service = (*ServiceImpl)(nil)

// Extractor turns a user message into a structured reply given the session so far.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, session *types.AgentSession, message string) (*types.AgentReply, error)
}

// TripSearcher runs the trip search once a conversation has every required parameter.
type TripSearcher interface {
	SearchTrips(ctx context.Context, req types.TripSearchRequest) (*types.TripSearchResponse, error)
}

type Service interface {
	CreateSession(ctx context.Context) (*types.AgentSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*types.AgentSession, error)
	SendMessage(ctx context.Context, id uuid.UUID, message string) (*types.AgentMessageResponse, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

type ServiceImpl struct {
	logger    *slog.Logger
	extractor Extractor
	store     SessionStore
	trips     TripSearcher
	metrics   *metrics.AppMetrics
	clock     func() time.Time
}

func NewServiceImpl(extractor Extractor, store SessionStore, trips TripSearcher, appMetrics *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		extractor: extractor,
		store:     store,
		trips:     trips,
		metrics:   appMetrics,
		clock:     time.Now,
	}
}

func (s *ServiceImpl) CreateSession(ctx context.Context) (*types.AgentSession, error) {
	ctx, span := otel.Tracer("AgentService").Start(ctx, "CreateSession")
	defer span.End()

	now := s.clock().UTC()
	session := &types.AgentSession{
		ID:        uuid.New(),
		History:   []types.ConversationTurn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save agent session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "session save failed")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	span.SetAttributes(attribute.String("agent.session_id", session.ID.String()))
	span.SetStatus(codes.Ok, "session created")
	return session, nil
}

func (s *ServiceImpl) GetSession(ctx context.Context, id uuid.UUID) (*types.AgentSession, error) {
	return s.store.Get(ctx, id)
}

func (s *ServiceImpl) DeleteSession(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("AgentService").Start(ctx, "DeleteSession", trace.WithAttributes(
		attribute.String("agent.session_id", id.String()),
	))
	defer span.End()

	if err := s.store.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session delete failed")
		return err
	}
	span.SetStatus(codes.Ok, "session deleted")
	return nil
}

func (s *ServiceImpl) SendMessage(ctx context.Context, id uuid.UUID, message string) (*types.AgentMessageResponse, error) {
	ctx, span := otel.Tracer("AgentService").Start(ctx, "SendMessage", trace.WithAttributes(
		attribute.String("agent.session_id", id.String()),
		attribute.String("agent.extractor", s.extractor.Name()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SendMessage"), slog.String("session_id", id.String()))

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", types.ErrInvalidRequest)
	}

	session, err := s.store.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session lookup failed")
		return nil, err
	}

	reply, err := s.extractor.Extract(ctx, session, message)
	if err != nil {
		// The exchange is not recorded so the user can simply rephrase.
		l.WarnContext(ctx, "Intent extraction failed", slog.Any("error", err))
		span.RecordError(err)
		s.metrics.RecordAgentMessage(ctx, s.extractor.Name(), false)
		return &types.AgentMessageResponse{SessionID: id, Reply: *FallbackReply()}, nil
	}

	mergeParams(&session.Params, reply.ExtractedParams)
	reply.ExtractedParams = session.Params
	missing := MissingParams(session.Params)
	ready := reply.ReadyToSearch && len(missing) == 0
	reply.ReadyToSearch = ready
	reply.MissingParams = missing
	session.PendingParam = ""
	if ready {
		reply.NextQuestion = nil
	} else if len(missing) > 0 {
		session.PendingParam = missing[0]
		if reply.NextQuestion == nil {
			reply.NextQuestion = ptr(questionFor(missing[0], session.Params))
		}
	}

	now := s.clock().UTC()
	session.History = append(session.History,
		types.ConversationTurn{Role: types.RoleUser, Content: message, Timestamp: now},
		types.ConversationTurn{Role: types.RoleAssistant, Content: reply.Message, Timestamp: now},
	)
	session.UpdatedAt = now
	if err := s.store.Save(ctx, session); err != nil {
		l.ErrorContext(ctx, "Failed to save agent session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "session save failed")
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.metrics.RecordAgentMessage(ctx, s.extractor.Name(), ready)
	resp := &types.AgentMessageResponse{SessionID: id, Reply: *reply}
	if !ready {
		span.SetStatus(codes.Ok, "awaiting parameters")
		return resp, nil
	}

	req := ToSearchRequest(session.Params)
	found, err := s.trips.SearchTrips(ctx, req)
	if err != nil {
		if !errors.Is(err, types.ErrInvalidRequest) {
			l.ErrorContext(ctx, "Trip search failed", slog.Any("error", err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "trip search failed")
		return nil, fmt.Errorf("failed to search trips: %w", err)
	}
	resp.Results = found.Results
	resp.Found = found.TotalMatches
	resp.TotalTravelers = found.Travelers

	span.SetAttributes(attribute.Int("agent.found", found.TotalMatches))
	span.SetStatus(codes.Ok, "trips found")
	l.InfoContext(ctx, "Agent search completed", slog.Int("found", found.TotalMatches))
	return resp, nil
}

// mergeParams copies every parameter the extractor provided over the session's.
func mergeParams(dst *types.TripParams, src types.TripParams) {
	if src.Origin != nil {
		dst.Origin = src.Origin
	}
	if src.Budget != nil {
		dst.Budget = src.Budget
	}
	if src.Adults != nil {
		dst.Adults = src.Adults
	}
	if src.Children != nil {
		dst.Children = src.Children
	}
	if src.CabinClass != nil {
		dst.CabinClass = src.CabinClass
	}
	if src.TripType != nil {
		dst.TripType = src.TripType
	}
	if src.OriginSeason != nil {
		dst.OriginSeason = src.OriginSeason
	}
	if src.DestSeason != nil {
		dst.DestSeason = src.DestSeason
	}
	if src.Stops != nil {
		dst.Stops = src.Stops
	}
	if src.SchoolCalendar != nil {
		dst.SchoolCalendar = src.SchoolCalendar
	}
}

// ToSearchRequest converts conversation parameters into a trip search.
// Optional values the matcher would reject are dropped rather than failing the search.
func ToSearchRequest(p types.TripParams) types.TripSearchRequest {
	req := types.TripSearchRequest{Limit: resultLimit}
	if p.Origin != nil {
		req.Origin = strings.TrimSpace(*p.Origin)
	}
	if p.Budget != nil {
		req.BudgetPerPerson = *p.Budget
	}
	req.Adults = ptr(1)
	if p.Adults != nil && *p.Adults > 0 {
		req.Adults = ptr(*p.Adults)
	}
	if p.Children != nil && *p.Children > 0 {
		req.Children = *p.Children
	}
	if p.CabinClass != nil {
		switch c := types.CabinClass(strings.ToLower(strings.TrimSpace(*p.CabinClass))); c {
		case types.CabinEconomy, types.CabinBusiness, types.CabinFirst:
			req.CabinClass = c
		}
	}
	if p.TripType != nil {
		req.TripType = strings.ToLower(strings.TrimSpace(*p.TripType))
	}
	if p.OriginSeason != nil {
		if v, err := season.ParseSeason(*p.OriginSeason); err == nil {
			req.OriginSeason = v
		}
	}
	if p.DestSeason != nil {
		if v, err := season.ParseSeason(*p.DestSeason); err == nil {
			req.DestSeason = v
		}
	}
	if p.Stops != nil {
		for _, c := range []types.StopConstraint{types.StopsAll, types.StopsDirectOnly, types.StopsOneMax, types.StopsTwoPlusOK} {
			if strings.EqualFold(strings.TrimSpace(*p.Stops), string(c)) {
				req.Stops = c
			}
		}
	}
	if p.SchoolCalendar != nil {
		if v, err := season.ParseSchoolPeriod(*p.SchoolCalendar); err == nil {
			req.SchoolPeriod = v
		}
	}
	return req
}
