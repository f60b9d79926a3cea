package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestSecret(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, Init())
}

func TestGenerateAndValidateToken(t *testing.T) {
	initTestSecret(t)

	token, err := GenerateToken("user-1", "agent@example.com", "Jennifer Smith")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "agent@example.com", claims.Email)
	assert.Equal(t, "Jennifer Smith", claims.Name)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	initTestSecret(t)

	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestInitFailsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.Error(t, Init())
}

func TestJWTMiddleware(t *testing.T) {
	initTestSecret(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetClaimsFromContext(r.Context())
		if r.URL.Path == "/health" || r.URL.Path == "/api/login" {
			w.WriteHeader(http.StatusOK)
			return
		}
		require.NoError(t, err)
		w.Write([]byte(claims.Email))
	})
	protected := JWTMiddleware(next)

	t.Run("public paths skip auth", func(t *testing.T) {
		for _, path := range []string{"/health", "/api/login"} {
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest("GET", "/api/analyses", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/analyses", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes claims through", func(t *testing.T) {
		token, err := GenerateToken("user-1", "agent@example.com", "Jennifer Smith")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/analyses", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "agent@example.com", rec.Body.String())
	})
}
