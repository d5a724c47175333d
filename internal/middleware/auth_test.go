// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/jeddrive/internal/core"
)

type stubVerifier map[string]*AccessTokenClaims

func (v stubVerifier) VerifyAccessToken(_ context.Context, token string) (*AccessTokenClaims, error) {
	if token == "expired" {
		return nil, core.ErrTokenExpired
	}
	if c, ok := v[token]; ok {
		return c, nil
	}
	return nil, core.ErrTokenInvalid
}

var verifier = stubVerifier{
	"sara": {UserID: "u2", Role: "user", Tier: "standard"},
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-User", GetUserID(r.Context()))
	w.Header().Set("X-Tier", GetUserTier(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func request(header string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return req
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(verifier)(http.HandlerFunc(whoAmI))

	tests := []struct {
		name   string
		header string
		user   string
	}{
		{"anonymous", "", ""},
		{"valid token", "Bearer sara", "u2"},
		{"lowercase scheme", "bearer sara", "u2"},
		{"expired token stays anonymous", "Bearer expired", ""},
		{"basic auth ignored", "Basic sara", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, request(tt.header))
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.user, rec.Header().Get("X-User"))
		})
	}
}

func TestAuthenticator(t *testing.T) {
	h := Authenticator(verifier)(http.HandlerFunc(whoAmI))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"expired", "Bearer expired", http.StatusUnauthorized},
		{"unknown", "Bearer nobody", http.StatusUnauthorized},
		{"valid", "Bearer sara", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, request(tt.header))
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("Bearer sara"))
	assert.Equal(t, "standard", rec.Header().Get("X-Tier"))
}

func TestRequireProvider(t *testing.T) {
	tests := []struct {
		role   string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"user", http.StatusForbidden},
		{"provider", http.StatusNoContent},
		{"admin", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			req := request("")
			if tt.role != "" {
				req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{UserID: "x", Role: tt.role}))
			}
			rec := httptest.NewRecorder()
			RequireProvider(http.HandlerFunc(whoAmI)).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
