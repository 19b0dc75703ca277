package appMiddleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-flight-explorer/config"
)

var testJWT = config.JWTConfig{SecretKey: "test-secret", Issuer: "go-flight-explorer"}

func signToken(t *testing.T, secret, issuer, role string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "user-1",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func setupMiddlewareTest() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := GetUserIDFromContext(r.Context())
		_, _ = w.Write([]byte(id))
	})
	return Authenticate(logger, testJWT)(RequireRole(logger, RoleAdmin)(final))
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"admin", "Bearer " + signToken(t, "test-secret", "go-flight-explorer", RoleAdmin, future), http.StatusOK},
		{"lowercase scheme", "bearer " + signToken(t, "test-secret", "go-flight-explorer", RoleAdmin, future), http.StatusOK},
		{"not an admin", "Bearer " + signToken(t, "test-secret", "go-flight-explorer", "viewer", future), http.StatusForbidden},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signToken(t, "other-secret", "go-flight-explorer", RoleAdmin, future), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signToken(t, "test-secret", "someone-else", RoleAdmin, future), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, "test-secret", "go-flight-explorer", RoleAdmin, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized},
	}
	h := setupMiddlewareTest()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/dataset/reload", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", rr.Body.String())
			}
		})
	}
}

func TestAuthenticatePanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() {
		Authenticate(slog.New(slog.NewTextHandler(io.Discard, nil)), config.JWTConfig{})
	})
}
