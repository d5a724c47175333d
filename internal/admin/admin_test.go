// AngelaMos | 2026
// admin_test.go

package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/kv"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), kv.NewMemoryStore(), store.Options{Seed: true})
	require.NoError(t, err)
	return st
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	pid := "p1"

	for _, o := range []domain.Order{
		{ID: "A", UserID: "u2", ProviderID: &pid, Status: domain.OrderCompleted, TotalPrice: 120, Commission: 12},
		{ID: "B", UserID: "u2", ProviderID: &pid, Status: domain.OrderCompleted, TotalPrice: 97.5, Commission: 9.75, OfflineSyncPending: true},
		{ID: "C", UserID: "u2", ProviderID: &pid, Status: domain.OrderAccepted, TotalPrice: 400, Commission: 40},
	} {
		_, err := st.Dispatch(ctx, store.AddOrder{Order: o})
		require.NoError(t, err)
	}

	got := NewService(st, slog.Default()).Overview(ctx)

	assert.Equal(t, 5, got.Users)
	assert.Equal(t, 3, got.Providers)
	assert.Equal(t, 2, got.ActiveProviders)
	assert.Equal(t, 1, got.BlockedProviders)
	assert.Equal(t, 3, got.Orders)
	assert.Equal(t, 2, got.OrdersByStatus[domain.OrderCompleted])
	assert.Equal(t, 1, got.PendingSync)
	assert.InDelta(t, 217.5, got.Revenue, 0.001)
	assert.InDelta(t, 21.75, got.Commission, 0.001)
	assert.InDelta(t, 670, got.OutstandingDebt, 0.001)
	assert.Equal(t, 1, got.ActiveCoupons)
	assert.Equal(t, 1, got.ByCategory[domain.CategoryTow])
}

func TestResetRestoresSeed(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	_, err := st.Dispatch(ctx, store.DeleteProvider{ID: "p1"})
	require.NoError(t, err)
	require.Len(t, st.Snapshot().Providers, 2)

	h := NewHandler(NewService(st, slog.Default()), HandlerConfig{})
	pass := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	h.RegisterRoutes(r, pass, pass)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reset", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, st.Snapshot().Providers, 3)
}

func TestSystemStats(t *testing.T) {
	h := NewHandler(NewService(newStore(t), slog.Default()), HandlerConfig{
		BackendPing: func(context.Context) error { return errors.New("down") },
		LiveClients: func(context.Context) int { return 4 },
	})
	pass := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	h.RegisterRoutes(r, pass, pass)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/admin/stats", http.StatusOK, `"live_clients":4`},
		{"/admin/stats/runtime", http.StatusOK, `"go_version"`},
		{"/admin/stats/db", http.StatusNotFound, ""},
		{"/admin/overview", http.StatusOK, `"active_providers":2`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}
