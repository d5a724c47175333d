// AngelaMos | 2026
// provider_test.go

package provider

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/events"
	"github.com/carterperez-dev/jeddrive/internal/kv"
	"github.com/carterperez-dev/jeddrive/internal/middleware"
	"github.com/carterperez-dev/jeddrive/internal/notification"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

type fixture struct {
	svc    *Service
	store  *store.Store
	events *events.Recorder
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	st, err := store.Open(context.Background(), kv.NewMemoryStore(), store.Options{Seed: true})
	require.NoError(t, err)

	rec := &events.Recorder{}
	if opts.CompletionFee == 0 {
		opts.CompletionFee = 20
	}
	svc := NewService(st, rec, notification.NewService(st), opts, slog.Default())
	return fixture{svc: svc, store: st, events: rec}
}

func (f fixture) addOrder(t *testing.T, id, providerID, otp string) {
	t.Helper()
	pid := providerID
	_, err := f.store.Dispatch(context.Background(), store.AddOrder{Order: domain.Order{
		ID:         id,
		UserID:     "u2",
		ProviderID: &pid,
		Status:     domain.OrderAccepted,
		TotalPrice: 150,
		Commission: 15,
		UniqueOTP:  otp,
		CreatedAt:  time.Now().UTC(),
	}})
	require.NoError(t, err)
}

func (f fixture) provider(t *testing.T, id string) domain.Provider {
	t.Helper()
	p, ok := f.store.Snapshot().FindProvider(id)
	require.True(t, ok)
	return p
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, Options{})
	all := f.svc.Catalog(ctx, "")
	require.Len(t, all, 2, "pending providers are not listed")
	assert.True(t, all[1].IsBlocked, "over-limit providers stay visible by default")

	tow := f.svc.Catalog(ctx, "Tow")
	require.Len(t, tow, 1)
	assert.Equal(t, "p1", tow[0].ID)
	assert.Equal(t, domain.OrderMobile, tow[0].OrderType)

	strict := newFixture(t, Options{HideOverLimit: true})
	listed := strict.svc.Catalog(ctx, "")
	require.Len(t, listed, 1)
	assert.Equal(t, "p1", listed[0].ID)

	_, err := strict.svc.GetListed(ctx, "p2")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCompleteOrderOnline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.addOrder(t, "o1", "p1", "JD-AAAAAA")

	o, err := f.svc.CompleteOrder(ctx, f.provider(t, "p1"), "o1", " jd-aaaaaa ")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, o.Status)
	assert.False(t, o.OfflineSyncPending)
	assert.InDelta(t, 140, f.provider(t, "p1").DebtBalance, 0.001)

	assert.Contains(t, f.events.Types(), events.OrderCompleted)
	assert.NotEmpty(t, f.store.Snapshot().Notifications)

	_, err = f.svc.CompleteOrder(ctx, f.provider(t, "p1"), "o1", "JD-AAAAAA")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.InDelta(t, 140, f.provider(t, "p1").DebtBalance, 0.001)
}

func TestCompleteOrderRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.addOrder(t, "o1", "p1", "JD-AAAAAA")
	f.addOrder(t, "o2", "p2", "JD-BBBBBB")

	_, err := f.svc.CompleteOrder(ctx, f.provider(t, "p1"), "o1", "JD-WRONG1")
	assert.ErrorIs(t, err, domain.ErrOTPMismatch)

	_, err = f.svc.CompleteOrder(ctx, f.provider(t, "p1"), "o2", "JD-BBBBBB")
	assert.ErrorIs(t, err, core.ErrNotFound, "orders of other providers are invisible")

	_, err = f.svc.CompleteOrder(ctx, f.provider(t, "p2"), "o2", "JD-BBBBBB")
	assert.ErrorIs(t, err, domain.ErrProviderBlocked)

	o, _ := f.store.Snapshot().FindOrder("o2")
	assert.Equal(t, domain.OrderAccepted, o.Status)
}

func TestOfflineCompletionAndSync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.addOrder(t, "o1", "p1", "JD-AAAAAA")

	resp, err := f.svc.ToggleOffline(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderOffline, resp.Status)

	o, err := f.svc.CompleteOrder(ctx, f.provider(t, "p1"), "o1", "JD-AAAAAA")
	require.NoError(t, err)
	assert.True(t, o.OfflineSyncPending)
	assert.InDelta(t, 120, f.provider(t, "p1").DebtBalance, 0.001)

	synced, err := f.svc.SyncAndConnect(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, synced.Synced)
	assert.Equal(t, domain.ProviderActive, synced.Provider.Status)
	assert.InDelta(t, 120, synced.Provider.DebtBalance, 0.001, "skipped fees are not replayed by default")

	again, err := f.svc.SyncAndConnect(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, again.Synced)
	assert.Equal(t, domain.ProviderActive, again.Provider.Status)
}

func TestSyncSettlesWhenConfigured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{SettleOnSync: true})
	f.addOrder(t, "o1", "p1", "JD-AAAAAA")

	_, err := f.svc.ToggleOffline(ctx, "p1")
	require.NoError(t, err)
	_, err = f.svc.CompleteOrder(ctx, f.provider(t, "p1"), "o1", "JD-AAAAAA")
	require.NoError(t, err)

	synced, err := f.svc.SyncAndConnect(ctx, "p1")
	require.NoError(t, err)
	assert.InDelta(t, 140, synced.Provider.DebtBalance, 0.001)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.addOrder(t, "o1", "p1", "JD-AAAAAA")
	f.addOrder(t, "o2", "p1", "JD-CCCCCC")
	f.addOrder(t, "o3", "p2", "JD-BBBBBB")

	_, err := f.svc.CompleteOrder(ctx, f.provider(t, "p1"), "o1", "JD-AAAAAA")
	require.NoError(t, err)

	p, err := f.svc.Resolve(ctx, "up1", domain.RoleProvider, "p2")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID, "providers cannot pick another profile")

	d := f.svc.Dashboard(ctx, p)
	assert.Equal(t, 2, d.Stats.TotalOrders)
	assert.Equal(t, 1, d.Stats.CompletedOrders)
	assert.Equal(t, 1, d.Stats.ActiveOrders)
	assert.InDelta(t, 150, d.Stats.GrossRevenue, 0.001)
	assert.InDelta(t, 15, d.Stats.Commission, 0.001)
	assert.InDelta(t, 360, d.Stats.RemainingCredit, 0.001)

	p, err = f.svc.Resolve(ctx, "u1", domain.RoleAdmin, "p2")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
	assert.True(t, f.svc.Dashboard(ctx, p).Provider.IsBlocked)

	_, err = f.svc.Resolve(ctx, "u2", domain.RoleUser, "")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAdminOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{DefaultCreditLimit: 750})

	created, err := f.svc.Create(ctx, CreateProviderRequest{
		BusinessName: "Tint Masters",
		ServiceType:  "Tinting",
		City:         "Jeddah",
		Services:     []ServiceInput{{Name: "Full tint", Price: 900}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderActive, created.Status)
	assert.InDelta(t, 750, created.CreditLimit, 0.001)
	require.Len(t, created.ServicesList, 1)
	assert.NotEmpty(t, created.ServicesList[0].ID)

	_, err = f.svc.Create(ctx, CreateProviderRequest{
		UserID: "ghost", BusinessName: "X", ServiceType: "Wash", City: "Jeddah",
		Services: []ServiceInput{{Name: "Wash", Price: 10}},
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	toggled, err := f.svc.ToggleStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderBlocked, toggled.Status)
	toggled, err = f.svc.ToggleStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderActive, toggled.Status)

	priced, err := f.svc.SetServicePrice(ctx, "p1", "ps2", 275)
	require.NoError(t, err)
	assert.InDelta(t, 275, priced.ServicesList[1].Price, 0.001)
	_, err = f.svc.SetServicePrice(ctx, "p1", "ps9", 1)
	assert.ErrorIs(t, err, core.ErrNotFound)

	debts := f.svc.Debts(ctx)
	require.Len(t, debts.Providers, 2)
	assert.Equal(t, "p2", debts.Providers[0].ProviderID)
	assert.InDelta(t, 670, debts.TotalOwed, 0.001)
	assert.Equal(t, 1, debts.Blocked)

	settled, err := f.svc.SettleDebt(ctx, "p2")
	require.NoError(t, err)
	assert.Zero(t, settled.DebtBalance)
	assert.False(t, settled.IsBlocked)

	negative := -40.0
	updated, err := f.svc.Update(ctx, "p3", UpdateProviderRequest{DebtBalance: &negative})
	require.NoError(t, err)
	assert.InDelta(t, -40, updated.DebtBalance, 0.001)

	_, err = f.svc.Update(ctx, "missing", UpdateProviderRequest{DebtBalance: &negative})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), core.ErrNotFound)
}

func as(userID string, role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID: userID,
				Role:   string(role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestHandlerCompleteOrder(t *testing.T) {
	f := newFixture(t, Options{})
	f.addOrder(t, "o1", "p1", "JD-AAAAAA")
	f.addOrder(t, "o2", "p2", "JD-BBBBBB")

	h := NewHandler(f.svc)

	tests := []struct {
		name   string
		auth   func(http.Handler) http.Handler
		path   string
		body   string
		status int
	}{
		{"customer refused", as("u2", domain.RoleUser), "/provider/orders/o1/complete", `{"otp":"JD-AAAAAA"}`, http.StatusForbidden},
		{"wrong otp", as("up1", domain.RoleProvider), "/provider/orders/o1/complete", `{"otp":"JD-000000"}`, http.StatusUnprocessableEntity},
		{"missing otp", as("up1", domain.RoleProvider), "/provider/orders/o1/complete", `{}`, http.StatusBadRequest},
		{"blocked provider", as("up2", domain.RoleProvider), "/provider/orders/o2/complete", `{"otp":"JD-BBBBBB"}`, http.StatusForbidden},
		{"completes", as("up1", domain.RoleProvider), "/provider/orders/o1/complete", `{"otp":"JD-AAAAAA"}`, http.StatusOK},
		{"already completed", as("up1", domain.RoleProvider), "/provider/orders/o1/complete", `{"otp":"JD-AAAAAA"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			h.RegisterRoutes(r, tt.auth, middleware.RequireProvider)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestOfflineModeKeepsAdminDecisions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	_, err := f.svc.ToggleStatus(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, domain.ProviderBlocked, f.provider(t, "p1").Status)

	for range 2 {
		_, err = f.svc.ToggleOffline(ctx, "p1")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.Equal(t, domain.ProviderBlocked, f.provider(t, "p1").Status)

	for range 2 {
		_, err = f.svc.ToggleOffline(ctx, "p3")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.Equal(t, domain.ProviderPending, f.provider(t, "p3").Status)

	_, err = f.svc.ToggleOffline(ctx, "p2")
	assert.ErrorIs(t, err, domain.ErrProviderBlocked)
}

func TestToggleOnline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	resp, err := f.svc.ToggleOnline(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, resp.IsOnline)
	assert.Equal(t, domain.ProviderActive, resp.Status)
	assert.Contains(t, f.events.Types(), events.ProviderOnlineToggled)

	resp, err = f.svc.ToggleOnline(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, resp.IsOnline)

	_, err = f.svc.ToggleOffline(ctx, "p1")
	require.NoError(t, err)
	_, err = f.svc.ToggleOnline(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.ToggleOnline(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestHandlerAvailability(t *testing.T) {
	f := newFixture(t, Options{})
	h := NewHandler(f.svc)

	tests := []struct {
		name   string
		auth   func(http.Handler) http.Handler
		path   string
		status int
	}{
		{"goes offline for new orders", as("up1", domain.RoleProvider), "/provider/online", http.StatusOK},
		{"over limit", as("up2", domain.RoleProvider), "/provider/online", http.StatusForbidden},
		{"awaiting approval", as("up3", domain.RoleProvider), "/provider/online", http.StatusConflict},
		{"pending cannot enter offline mode", as("up3", domain.RoleProvider), "/provider/offline", http.StatusConflict},
		{"customer refused", as("u2", domain.RoleUser), "/provider/online", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			h.RegisterRoutes(r, tt.auth, middleware.RequireProvider)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	assert.False(t, f.provider(t, "p1").IsOnline)
}
