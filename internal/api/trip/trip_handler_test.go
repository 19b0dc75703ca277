package trip

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

type MockTripService struct {
	mock.Mock
}

func (m *MockTripService) SearchTrips(ctx context.Context, req types.TripSearchRequest) (*types.TripSearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripSearchResponse), args.Error(1)
}

func (m *MockTripService) ExploreRoutes(ctx context.Context, filter types.RouteFilter, limit int) ([]types.EnrichedRoute, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.EnrichedRoute), args.Error(1)
}

func setupTripHandlerTest() (*HandlerImpl, *MockTripService) {
	svc := new(MockTripService)
	return NewHandlerImpl(svc, slog.New(slog.NewTextHandler(io.Discard, nil))), svc
}

func TestHandlerImpl_MatchTrips(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, svc := setupTripHandlerTest()
		want := types.TripSearchRequest{
			TripRequest: types.TripRequest{Origin: "SYD", BudgetPerPerson: 400, Adults: ptr(2), CabinClass: types.CabinEconomy},
			Nights:      5,
		}
		svc.On("SearchTrips", mock.Anything, want).Return(&types.TripSearchResponse{TotalMatches: 1, Travelers: 2}, nil).Once()

		body := `{"origin":"SYD","budget_per_person":400,"adults":2,"cabin_class":"economy","nights":5}`
		rr := httptest.NewRecorder()
		h.MatchTrips(rr, httptest.NewRequest(http.MethodPost, "/trips/match", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp types.TripSearchResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.TotalMatches)
		svc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		h, svc := setupTripHandlerTest()
		rr := httptest.NewRecorder()
		h.MatchTrips(rr, httptest.NewRequest(http.MethodPost, "/trips/match", strings.NewReader(`{"origin":`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "SearchTrips", mock.Anything, mock.Anything)
	})

	t.Run("missing budget fails validation", func(t *testing.T) {
		h, svc := setupTripHandlerTest()
		rr := httptest.NewRecorder()
		h.MatchTrips(rr, httptest.NewRequest(http.MethodPost, "/trips/match", strings.NewReader(`{"origin":"SYD"}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "SearchTrips", mock.Anything, mock.Anything)
	})

	t.Run("service errors map to status", func(t *testing.T) {
		h, svc := setupTripHandlerTest()
		svc.On("SearchTrips", mock.Anything, mock.Anything).Return(nil, types.ErrDatasetNotLoaded).Once()

		rr := httptest.NewRecorder()
		h.MatchTrips(rr, httptest.NewRequest(http.MethodPost, "/trips/match", strings.NewReader(`{"origin":"SYD","budget_per_person":100}`)))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestHandlerImpl_ListRoutes(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		h, svc := setupTripHandlerTest()
		maxPrice := 900.0
		want := types.RouteFilter{
			Origins:      []string{"SYD", "MEL"},
			CabinClasses: []types.CabinClass{types.CabinBusiness},
			DaysAhead:    []int{30, 60},
			MaxPrice:     &maxPrice,
			SortBy:       types.SortLowestPrice,
		}
		svc.On("ExploreRoutes", mock.Anything, want, 5).Return(explorerRoutes()[:1], nil).Once()

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/routes?origin=SYD,MEL&cabin=Business&days_ahead=30,60&max_price=900&sort=price&limit=5", nil)
		h.ListRoutes(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Count)
		svc.AssertExpectations(t)
	})

	for _, query := range []string{"days_ahead=soon", "min_price=cheap", "sort=random", "limit=-1"} {
		t.Run("rejects "+query, func(t *testing.T) {
			h, svc := setupTripHandlerTest()
			rr := httptest.NewRecorder()
			h.ListRoutes(rr, httptest.NewRequest(http.MethodGet, "/routes?"+query, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			svc.AssertNotCalled(t, "ExploreRoutes", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
