package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Name() string { return "mock" }

func (m *MockExtractor) Extract(ctx context.Context, session *types.AgentSession, message string) (*types.AgentReply, error) {
	args := m.Called(ctx, session, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AgentReply), args.Error(1)
}

type MockTripSearcher struct {
	mock.Mock
}

func (m *MockTripSearcher) SearchTrips(ctx context.Context, req types.TripSearchRequest) (*types.TripSearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripSearchResponse), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Get(ctx context.Context, id uuid.UUID) (*types.AgentSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AgentSession), args.Error(1)
}

func (m *MockSessionStore) Save(ctx context.Context, session *types.AgentSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

var sessionNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func setupAgentServiceTest() (*ServiceImpl, *MockExtractor, *MockTripSearcher, *MemoryStore) {
	extractor := new(MockExtractor)
	trips := new(MockTripSearcher)
	store := NewMemoryStore(time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewServiceImpl(extractor, store, trips, nil, logger)
	svc.clock = func() time.Time { return sessionNow }
	return svc, extractor, trips, store
}

func TestServiceImpl_CreateSession(t *testing.T) {
	svc, _, _, store := setupAgentServiceTest()

	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.Equal(t, sessionNow, session.CreatedAt)
	assert.Empty(t, session.History)

	stored, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)

	t.Run("store failure", func(t *testing.T) {
		failing := new(MockSessionStore)
		failing.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()
		svc := NewServiceImpl(new(MockExtractor), failing, new(MockTripSearcher), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := svc.CreateSession(context.Background())
		assert.ErrorContains(t, err, "connection refused")
		failing.AssertExpectations(t)
	})
}

func TestServiceImpl_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown session", func(t *testing.T) {
		svc, _, _, _ := setupAgentServiceTest()
		_, err := svc.SendMessage(ctx, uuid.New(), "hello")
		assert.ErrorIs(t, err, types.ErrSessionNotFound)
	})

	t.Run("blank message", func(t *testing.T) {
		svc, _, _, _ := setupAgentServiceTest()
		_, err := svc.SendMessage(ctx, uuid.New(), "   ")
		assert.ErrorIs(t, err, types.ErrInvalidRequest)
	})

	t.Run("extractor failure falls back without recording the turn", func(t *testing.T) {
		svc, extractor, _, store := setupAgentServiceTest()
		session, err := svc.CreateSession(ctx)
		require.NoError(t, err)
		extractor.On("Extract", mock.Anything, mock.Anything, "beach please").
			Return(nil, errors.New("quota exceeded")).Once()

		resp, err := svc.SendMessage(ctx, session.ID, "beach please")
		require.NoError(t, err)
		assert.Equal(t, *FallbackReply(), resp.Reply)

		stored, err := store.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.History)
		extractor.AssertExpectations(t)
	})

	t.Run("missing parameters set the pending question", func(t *testing.T) {
		svc, extractor, trips, store := setupAgentServiceTest()
		session, err := svc.CreateSession(ctx)
		require.NoError(t, err)
		extractor.On("Extract", mock.Anything, mock.Anything, "From Sydney").Return(&types.AgentReply{
			Message:         "Great, Sydney it is.",
			ExtractedParams: types.TripParams{Origin: ptr("SYD")},
		}, nil).Once()

		resp, err := svc.SendMessage(ctx, session.ID, "From Sydney")
		require.NoError(t, err)
		assert.False(t, resp.Reply.ReadyToSearch)
		assert.Equal(t, []string{"budget", "adults"}, resp.Reply.MissingParams)
		require.NotNil(t, resp.Reply.NextQuestion)
		assert.Equal(t, "What's your budget per person for flights?", *resp.Reply.NextQuestion)
		assert.Empty(t, resp.Results)

		stored, err := store.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, "SYD", *stored.Params.Origin)
		assert.Equal(t, paramBudget, stored.PendingParam)
		require.Len(t, stored.History, 2)
		assert.Equal(t, types.RoleUser, stored.History[0].Role)
		assert.Equal(t, "Great, Sydney it is.", stored.History[1].Content)
		trips.AssertNotCalled(t, "SearchTrips", mock.Anything, mock.Anything)
	})

	t.Run("ready claim without required parameters is not ready", func(t *testing.T) {
		svc, extractor, trips, _ := setupAgentServiceTest()
		session, err := svc.CreateSession(ctx)
		require.NoError(t, err)
		extractor.On("Extract", mock.Anything, mock.Anything, "go").Return(&types.AgentReply{
			Message:         "Searching!",
			ReadyToSearch:   true,
			ExtractedParams: types.TripParams{Origin: ptr("SYD"), Budget: ptr(900.0)},
		}, nil).Once()

		resp, err := svc.SendMessage(ctx, session.ID, "go")
		require.NoError(t, err)
		assert.False(t, resp.Reply.ReadyToSearch)
		assert.Equal(t, []string{"adults"}, resp.Reply.MissingParams)
		trips.AssertNotCalled(t, "SearchTrips", mock.Anything, mock.Anything)
	})

	t.Run("ready conversation searches trips", func(t *testing.T) {
		svc, extractor, trips, store := setupAgentServiceTest()
		session, err := svc.CreateSession(ctx)
		require.NoError(t, err)
		session.Params = types.TripParams{Origin: ptr("SYD"), TripType: ptr("beach")}
		require.NoError(t, store.Save(ctx, session))

		extractor.On("Extract", mock.Anything, mock.MatchedBy(func(s *types.AgentSession) bool {
			return s.Params.Origin != nil && *s.Params.Origin == "SYD"
		}), "2 adults, 2 kids, $1200 each in summer break").Return(&types.AgentReply{
			Message:       "Perfect! Let me find flights...",
			ReadyToSearch: true,
			ExtractedParams: types.TripParams{
				Budget:         ptr(1200.0),
				Adults:         ptr(2),
				Children:       ptr(2),
				CabinClass:     ptr("Economy"),
				OriginSeason:   ptr("Summer ☀️"),
				SchoolCalendar: ptr("US/Canada: Summer Break"),
			},
		}, nil).Once()

		want := types.TripSearchRequest{
			TripRequest: types.TripRequest{
				Origin:          "SYD",
				BudgetPerPerson: 1200,
				Adults:          ptr(2),
				Children:        2,
				CabinClass:      types.CabinEconomy,
				TripType:        "beach",
				OriginSeason:    types.SeasonSummer,
				SchoolPeriod:    "US/Canada: Summer Break",
			},
			Limit: 5,
		}
		results := []types.TripSuggestion{{Travelers: 4, TotalFlightCost: 1200}}
		trips.On("SearchTrips", mock.Anything, want).Return(&types.TripSearchResponse{
			TotalMatches: 7,
			Travelers:    4,
			Results:      results,
		}, nil).Once()

		resp, err := svc.SendMessage(ctx, session.ID, "2 adults, 2 kids, $1200 each in summer break")
		require.NoError(t, err)
		assert.True(t, resp.Reply.ReadyToSearch)
		assert.Nil(t, resp.Reply.NextQuestion)
		assert.Equal(t, 7, resp.Found)
		assert.Equal(t, 4, resp.TotalTravelers)
		assert.Equal(t, results, resp.Results)
		assert.Equal(t, "beach", *resp.Reply.ExtractedParams.TripType)

		stored, err := store.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.PendingParam)
		extractor.AssertExpectations(t)
		trips.AssertExpectations(t)
	})

	t.Run("search failure", func(t *testing.T) {
		svc, extractor, trips, _ := setupAgentServiceTest()
		session, err := svc.CreateSession(ctx)
		require.NoError(t, err)
		extractor.On("Extract", mock.Anything, mock.Anything, "ok").Return(&types.AgentReply{
			Message:         "Searching",
			ReadyToSearch:   true,
			ExtractedParams: types.TripParams{Origin: ptr("SYD"), Budget: ptr(500.0), Adults: ptr(1)},
		}, nil).Once()
		trips.On("SearchTrips", mock.Anything, mock.Anything).Return(nil, types.ErrDatasetNotLoaded).Once()

		_, err = svc.SendMessage(ctx, session.ID, "ok")
		assert.ErrorIs(t, err, types.ErrDatasetNotLoaded)
	})
}

func TestServiceImpl_DeleteSession(t *testing.T) {
	svc, _, _, _ := setupAgentServiceTest()
	ctx := context.Background()
	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, session.ID))
	assert.ErrorIs(t, svc.DeleteSession(ctx, session.ID), types.ErrSessionNotFound)
	_, err = svc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
}

func TestToSearchRequest(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req := ToSearchRequest(types.TripParams{Origin: ptr(" Sydney "), Budget: ptr(700.0)})
		assert.Equal(t, "Sydney", req.Origin)
		assert.Equal(t, 700.0, req.BudgetPerPerson)
		require.NotNil(t, req.Adults)
		assert.Equal(t, 1, *req.Adults)
		assert.Equal(t, 0, req.Children)
		assert.Equal(t, 5, req.Limit)
	})

	t.Run("unknown optional values are dropped", func(t *testing.T) {
		req := ToSearchRequest(types.TripParams{
			Origin:         ptr("SYD"),
			Budget:         ptr(700.0),
			CabinClass:     ptr("premium economy"),
			Stops:          ptr("sometimes"),
			DestSeason:     ptr("monsoon"),
			SchoolCalendar: ptr("Mars: Summer Break"),
		})
		assert.Empty(t, req.CabinClass)
		assert.Empty(t, req.Stops)
		assert.Empty(t, req.DestSeason)
		assert.Empty(t, req.SchoolPeriod)
	})

	t.Run("known optional values", func(t *testing.T) {
		req := ToSearchRequest(types.TripParams{
			Stops:      ptr("direct only"),
			DestSeason: ptr("Winter ❄️"),
			TripType:   ptr("Ski"),
		})
		assert.Equal(t, types.StopsDirectOnly, req.Stops)
		assert.Equal(t, types.SeasonWinter, req.DestSeason)
		assert.Equal(t, "ski", req.TripType)
	})
}
