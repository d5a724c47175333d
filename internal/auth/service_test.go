// AngelaMos | 2026
// service_test.go

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jeddrive/internal/auth"
	"github.com/carterperez-dev/jeddrive/internal/config"
	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/kv"
	"github.com/carterperez-dev/jeddrive/internal/middleware"
	"github.com/carterperez-dev/jeddrive/internal/store"
	"github.com/carterperez-dev/jeddrive/internal/user"
)

const seedPassword = "jeddrive-demo"

type fixture struct {
	svc   *auth.Service
	jwt   *auth.JWTManager
	store *store.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, auth.GenerateKeyPair(privPath, pubPath))

	jwtManager, err := auth.NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privPath,
		PublicKeyPath:      pubPath,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 24 * time.Hour,
		Issuer:             "jeddrive",
		Audience:           "jeddrive-api",
	})
	require.NoError(t, err)

	hash, err := core.HashPassword(seedPassword)
	require.NoError(t, err)

	backend := kv.NewMemoryStore()
	st, err := store.Open(ctx, backend, store.Options{Seed: true, PasswordHash: hash})
	require.NoError(t, err)

	users := user.NewService(user.NewRepository(st))
	svc := auth.NewService(auth.NewRepository(backend), jwtManager, users)

	return fixture{svc: svc, jwt: jwtManager, store: st}
}

func TestLoginByPhoneAndEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, auth.LoginRequest{
		Identifier: "0501234567",
		Password:   seedPassword,
	}, "test", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, auth.TierPremium, resp.User.Tier)
	assert.Equal(t, int((15 * time.Minute).Seconds()), resp.Tokens.ExpiresIn)

	current := f.store.Snapshot().User
	require.NotNil(t, current)
	assert.Equal(t, "u1", current.ID)
	assert.Empty(t, current.PasswordHash)

	claims, err := f.jwt.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, auth.TierPremium, claims.Tier)

	resp, err = f.svc.Login(ctx, auth.LoginRequest{
		Identifier: "SARA@jeddrive.com",
		Password:   seedPassword,
	}, "test", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "u2", resp.User.ID)
	assert.Equal(t, auth.TierStandard, resp.User.Tier)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, auth.LoginRequest{
		Identifier: "0501234567",
		Password:   "wrong-password",
	}, "", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, auth.LoginRequest{
		Identifier: "0599999999",
		Password:   seedPassword,
	}, "", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, auth.RegisterRequest{
		Name:     "Omar",
		Phone:    "0561112222",
		Email:    "omar@example.com",
		Password: "a-long-password",
	}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "user", resp.User.Role)

	_, found := f.store.Snapshot().FindUserBy("0561112222")
	assert.True(t, found)

	_, err = f.svc.Register(ctx, auth.RegisterRequest{
		Name:     "Someone Else",
		Phone:    "0501234567",
		Password: "a-long-password",
	}, "", "")
	assert.ErrorIs(t, err, auth.ErrAccountExists)
}

func TestRefreshRotationAndReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, auth.LoginRequest{
		Identifier: "0501234567",
		Password:   seedPassword,
	}, "", "")
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(ctx, login.Tokens.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, login.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	_, err = f.svc.Refresh(ctx, login.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, auth.ErrTokenReuse)

	_, err = f.svc.Refresh(ctx, rotated.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, core.ErrTokenRevoked, "whole family is revoked after reuse")

	_, err = f.svc.Refresh(ctx, "not-a-token", "", "")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestLogoutClearsCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, auth.LoginRequest{
		Identifier: "0559876543",
		Password:   seedPassword,
	}, "", "")
	require.NoError(t, err)

	sessions, err := f.svc.GetActiveSessions(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, f.svc.Logout(ctx, login.Tokens.RefreshToken, "u2"))
	assert.Nil(t, f.store.Snapshot().User)

	sessions, err = f.svc.GetActiveSessions(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.svc.ForgotPassword(ctx, "0559876543")
	require.NoError(t, err)
	assert.Len(t, issued.Code, 4)
	assert.Equal(t, "******6543", issued.DeliveredTo)

	wrong := "0000"
	if issued.Code == wrong {
		wrong = "1111"
	}
	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{
		Identifier:  "0559876543",
		Code:        wrong,
		NewPassword: "brand-new-password",
	})
	assert.ErrorIs(t, err, auth.ErrResetCodeInvalid)

	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{
		Identifier:  "0559876543",
		Code:        issued.Code,
		NewPassword: "brand-new-password",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, auth.LoginRequest{
		Identifier: "0559876543",
		Password:   "brand-new-password",
	}, "", "")
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{
		Identifier:  "0559876543",
		Code:        issued.Code,
		NewPassword: "another-password",
	})
	assert.ErrorIs(t, err, auth.ErrResetCodeInvalid, "codes are single use")

	_, err = f.svc.ForgotPassword(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResetCodeBurnsAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.svc.ForgotPassword(ctx, "0559876543")
	require.NoError(t, err)

	wrong := "0000"
	if issued.Code == wrong {
		wrong = "1111"
	}
	for range 5 {
		err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{
			Identifier:  "0559876543",
			Code:        wrong,
			NewPassword: "brand-new-password",
		})
		assert.ErrorIs(t, err, auth.ErrResetCodeInvalid)
	}

	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{
		Identifier:  "0559876543",
		Code:        issued.Code,
		NewPassword: "brand-new-password",
	})
	assert.ErrorIs(t, err, auth.ErrResetCodeInvalid)
}

func TestAccessTokenClaims(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := newFixture(t)

	token, err := f.jwt.CreateAccessToken(&auth.UserInfo{ID: "up1", Role: "provider"})
	require.NoError(t, err)

	claims, err := f.jwt.VerifyAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "up1", claims.UserID)
	assert.Equal(t, "provider", claims.Role)
	assert.Equal(t, auth.TierStandard, claims.Tier)

	_, err = other.jwt.VerifyAccessToken(ctx, token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid, "signed by another key")

	forged, err := f.jwt.CreateAccessToken(&auth.UserInfo{ID: "x", Role: "superuser"})
	require.NoError(t, err)
	_, err = f.jwt.VerifyAccessToken(ctx, forged)
	assert.ErrorIs(t, err, core.ErrTokenInvalid, "unknown role")

	_, err = f.jwt.VerifyAccessToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	assert.NotEmpty(t, f.jwt.GetKeyID())
}

func TestHandlers(t *testing.T) {
	f := newFixture(t)
	h := auth.NewHandler(f.svc)

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Authenticator(f.jwt))

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/auth/login", "", `{"identifier":"0559876543","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(http.MethodPost, "/auth/register", "",
		`{"name":"Dup","phone":"0559876543","email":"dup@example.com","password":"long-enough-1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = do(http.MethodPost, "/auth/password/reset", "",
		`{"identifier":"0559876543","code":"0000","new_password":"long-enough-1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/auth/me", "", "").Code)

	token, err := f.jwt.CreateAccessToken(&auth.UserInfo{ID: "u2", Role: "user"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/auth/me", token, "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/auth/sessions", token, "").Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/auth/logout", token, "").Code, "body is optional")
}
