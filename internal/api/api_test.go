package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Origin string `json:"origin"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"origin":"SYD"}`))
		var p payload
		require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), r, &p))
		assert.Equal(t, "SYD", p.Origin)
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"origin":"SYD","x":1}`))
		var p payload
		err := DecodeJSONBody(httptest.NewRecorder(), r, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown key "x"`)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		assert.EqualError(t, DecodeJSONBody(httptest.NewRecorder(), r, &p), "body must not be empty")
	})

	t.Run("wrong type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"origin":7}`))
		var p payload
		err := DecodeJSONBody(httptest.NewRecorder(), r, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `field "origin"`)
	})

	t.Run("too large", func(t *testing.T) {
		big := `{"origin":"` + strings.Repeat("A", maxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		var p payload
		err := DecodeJSONBody(httptest.NewRecorder(), r, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "larger than")
	})

	t.Run("two values", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"origin":"A"}{"origin":"B"}`))
		var p payload
		assert.EqualError(t, DecodeJSONBody(httptest.NewRecorder(), r, &p), "body must only contain a single JSON value")
	})
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFromError(fmt.Errorf("%w: origin", types.ErrInvalidRequest)))
	assert.Equal(t, http.StatusNotFound, StatusFromError(types.ErrSessionNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFromError(fmt.Errorf("wrap: %w", types.ErrDatasetNotLoaded)))
	assert.Equal(t, http.StatusInternalServerError, StatusFromError(errors.New("boom")))
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(types.TripSearchRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidRequest))
	assert.Contains(t, err.Error(), "origin failed required")
	assert.Contains(t, err.Error(), "budget_per_person failed required")

	ok := types.TripSearchRequest{TripRequest: types.TripRequest{Origin: "SYD", BudgetPerPerson: 400}}
	assert.NoError(t, ValidateStruct(ok))

	noAdults := ok
	noAdults.Adults = new(int)
	err = ValidateStruct(noAdults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adults failed gte")

	tooMany := ok
	tooMany.Limit = 1000
	assert.Error(t, ValidateStruct(tooMany))
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadRequest, "bad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"error":"bad"`)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
