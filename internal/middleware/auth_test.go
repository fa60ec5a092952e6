package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/auth"
	"github.com/VictorEZCodes/BouncerLink/internal/middleware"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identityResult struct {
	identity auth.Identity
	ok       bool
}

func setupAuthAPI(t *testing.T, secret string) (*chi.Mux, chan identityResult) {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.Authenticate(api, auth.NewVerifier(secret)))

	results := make(chan identityResult, 1)

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		identity, ok := auth.IdentityFromContext(ctx)
		results <- identityResult{identity: identity, ok: ok}

		return &testOutput{Body: "ok"}, nil
	})

	return router, results
}

func mintToken(t *testing.T, secret, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"email": "owner@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func TestAuthenticate(t *testing.T) {
	t.Run("attaches the identity for a valid token", func(t *testing.T) {
		router, results := setupAuthAPI(t, "secret")

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, "secret", "user-1"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		result := <-results
		assert.True(t, result.ok)
		assert.Equal(t, "user-1", result.identity.UserID)
		assert.Equal(t, "owner@example.com", result.identity.Email)
	})

	t.Run("proceeds anonymously without a token", func(t *testing.T) {
		router, results := setupAuthAPI(t, "secret")

		req := httptest.NewRequest(http.MethodGet, "/test", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, (<-results).ok)
	})

	t.Run("proceeds anonymously with an invalid token", func(t *testing.T) {
		router, results := setupAuthAPI(t, "secret")

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, "wrong-secret", "user-1"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, (<-results).ok)
	})

	t.Run("ignores non-bearer authorization headers", func(t *testing.T) {
		router, results := setupAuthAPI(t, "secret")

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, (<-results).ok)
	})
}
