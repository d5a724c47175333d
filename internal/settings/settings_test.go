// AngelaMos | 2026
// settings_test.go

package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/kv"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

func newService(t *testing.T, backend kv.Store) *Service {
	t.Helper()
	st, err := store.Open(context.Background(), backend, store.Options{Seed: true})
	require.NoError(t, err)
	return NewService(st)
}

func ptr(s string) *string { return &s }

func TestDefaults(t *testing.T) {
	s := newService(t, kv.NewMemoryStore()).Get(context.Background())

	assert.Equal(t, domain.ThemeLight, s.Theme)
	assert.Equal(t, domain.LanguageArabic, s.Language)
	assert.Equal(t, store.DefaultBannerURL, s.BannerURL)
	assert.Equal(t, store.DefaultTicker, s.Ticker)
}

func TestUpdatesPersist(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryStore()
	svc := newService(t, backend)

	got, err := svc.UpdatePreferences(ctx, PreferencesRequest{Theme: ptr("luxury")})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLuxury, got.Theme)
	assert.Equal(t, domain.LanguageArabic, got.Language, "unset fields are left alone")

	_, err = svc.UpdateBranding(ctx, BrandingRequest{Ticker: ptr("  Ramadan hours 9pm-3am  ")})
	require.NoError(t, err)

	reopened := newService(t, backend).Get(ctx)
	assert.Equal(t, domain.ThemeLuxury, reopened.Theme)
	assert.Equal(t, "Ramadan hours 9pm-3am", reopened.Ticker)
	assert.Equal(t, store.DefaultBannerURL, reopened.BannerURL)
}

func TestHandlers(t *testing.T) {
	h := NewHandler(newService(t, kv.NewMemoryStore()))

	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	pass := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	h.RegisterRoutes(r, pass)
	h.RegisterAdminRoutes(r, deny, pass)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data Settings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.LanguageArabic, body.Data.Language)

	assert.Equal(t, http.StatusOK, do(http.MethodPut, "/settings", `{"language":"en"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, "/settings", `{"theme":"neon"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPut, "/admin/settings", `{"scrolling_ticker":"hi"}`).Code)
}
