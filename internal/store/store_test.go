// AngelaMos | 2026
// store_test.go

package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/kv"
)

type failingKV struct {
	*kv.MemoryStore
	err error
}

func (f *failingKV) SetMulti(context.Context, map[string][]byte) error {
	return f.err
}

func openSeeded(t *testing.T) (*Store, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	s, err := Open(context.Background(), mem, Options{Seed: true})
	require.NoError(t, err)
	return s, mem
}

func addOrder(t *testing.T, s *Store, id, providerID, otp string) {
	t.Helper()
	pid := providerID
	_, err := s.Dispatch(context.Background(), AddOrder{Order: domain.Order{
		ID:         id,
		UserID:     "u1",
		ProviderID: &pid,
		Status:     domain.OrderAccepted,
		UniqueOTP:  otp,
		TotalPrice: 150,
	}})
	require.NoError(t, err)
}

func TestOpenSeedsEmptyBackend(t *testing.T) {
	s, mem := openSeeded(t)
	state := s.Snapshot()

	assert.Len(t, state.Providers, 3)
	assert.Len(t, state.Coupons, 2)
	assert.Empty(t, state.Orders)
	assert.Equal(t, domain.ThemeLight, state.Theme)
	assert.Equal(t, domain.LanguageArabic, state.Language)

	raw, err := mem.Get(context.Background(), schemaVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "2", string(raw))

	raw, err = mem.Get(context.Background(), string(SliceOrders))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestOpenRestoresPersistedState(t *testing.T) {
	s, mem := openSeeded(t)
	ctx := context.Background()

	_, err := s.Dispatch(ctx, SetTheme{Theme: domain.ThemeDark})
	require.NoError(t, err)
	addOrder(t, s, "o1", "p1", "JD-ABC123")

	reopened, err := Open(ctx, mem, Options{Seed: true})
	require.NoError(t, err)

	state := reopened.Snapshot()
	assert.Equal(t, domain.ThemeDark, state.Theme)
	require.Len(t, state.Orders, 1)
	assert.Equal(t, "o1", state.Orders[0].ID)
}

func TestUpdateMissingIDLeavesStateUnchanged(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()
	before := s.Snapshot()

	name := "Ghost"
	status := domain.OrderCompleted

	actions := []Action{
		UpdateUser{ID: "missing", Patch: domain.UserPatch{Name: &name}},
		UpdateProvider{ID: "missing", Patch: domain.ProviderPatch{BusinessName: &name}},
		UpdateOrder{ID: "missing", Patch: domain.OrderPatch{Status: &status}},
		ToggleCoupon{ID: "missing"},
		DeleteProvider{ID: "missing"},
		ToggleOfflineMode{ProviderID: "missing"},
		ToggleOnline{ProviderID: "missing"},
	}

	for _, a := range actions {
		t.Run(string(a.Kind()), func(t *testing.T) {
			eff, err := s.Dispatch(ctx, a)
			require.NoError(t, err)
			assert.False(t, eff.Changed)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestOnlineCompletionAddsFee(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()
	addOrder(t, s, "o1", "p1", "JD-ABC123")

	eff, err := s.Dispatch(ctx, CompleteOrder{ID: "o1", OTP: " jd-abc123 ", Fee: 20})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Slice{SliceOrders, SliceProviders}, eff.Slices)

	state := s.Snapshot()
	order, _ := state.FindOrder("o1")
	provider, _ := state.FindProvider("p1")

	assert.Equal(t, domain.OrderCompleted, order.Status)
	assert.False(t, order.OfflineSyncPending)
	assert.InDelta(t, 140, provider.DebtBalance, 0.001)
}

func TestSecondCompletionDoesNotChargeTwice(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()
	addOrder(t, s, "o1", "p1", "JD-ABC123")

	_, err := s.Dispatch(ctx, CompleteOrder{ID: "o1", OTP: "JD-ABC123", Fee: 20})
	require.NoError(t, err)

	_, err = s.Dispatch(ctx, CompleteOrder{ID: "o1", OTP: "JD-ABC123", Fee: 20})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	provider, _ := s.Snapshot().FindProvider("p1")
	assert.InDelta(t, 140, provider.DebtBalance, 0.001)
}

func TestWrongOTPMutatesNothing(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()
	addOrder(t, s, "o1", "p1", "JD-ABC123")
	before := s.Snapshot()

	_, err := s.Dispatch(ctx, CompleteOrder{ID: "o1", OTP: "JD-XXXXXX", Fee: 20})
	require.ErrorIs(t, err, domain.ErrOTPMismatch)
	assert.Equal(t, before, s.Snapshot())

	_, err = s.Dispatch(ctx, CompleteOrder{ID: "o1", OTP: "JD-ABC123", Fee: 20})
	require.NoError(t, err)
}

func TestOfflineCompletionThenSync(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()
	addOrder(t, s, "o1", "p1", "JD-ABC123")

	_, err := s.Dispatch(ctx, ToggleOfflineMode{ProviderID: "p1"})
	require.NoError(t, err)

	eff, err := s.Dispatch(ctx, CompleteOrder{ID: "o1", OTP: "JD-ABC123", Fee: 20})
	require.NoError(t, err)
	assert.Equal(t, []Slice{SliceOrders}, eff.Slices)

	state := s.Snapshot()
	order, _ := state.FindOrder("o1")
	provider, _ := state.FindProvider("p1")
	assert.Equal(t, domain.OrderCompleted, order.Status)
	assert.True(t, order.OfflineSyncPending)
	assert.InDelta(t, 120, provider.DebtBalance, 0.001)

	_, err = s.Dispatch(ctx, ToggleOfflineMode{ProviderID: "p1"})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, SyncOfflineOrders{})
	require.NoError(t, err)

	state = s.Snapshot()
	order, _ = state.FindOrder("o1")
	provider, _ = state.FindProvider("p1")
	assert.False(t, order.OfflineSyncPending)
	assert.Equal(t, domain.ProviderActive, provider.Status)
	assert.InDelta(t, 120, provider.DebtBalance, 0.001)
}

func TestSyncWithSettleFeeReplaysCharges(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()
	addOrder(t, s, "o1", "p1", "JD-AAAAAA")
	addOrder(t, s, "o2", "p1", "JD-BBBBBB")

	_, err := s.Dispatch(ctx, ToggleOfflineMode{ProviderID: "p1"})
	require.NoError(t, err)
	for _, c := range []CompleteOrder{
		{ID: "o1", OTP: "JD-AAAAAA", Fee: 20},
		{ID: "o2", OTP: "JD-BBBBBB", Fee: 20},
	} {
		_, err := s.Dispatch(ctx, c)
		require.NoError(t, err)
	}

	_, err = s.Dispatch(ctx, SyncOfflineOrders{SettleFee: 20})
	require.NoError(t, err)

	provider, _ := s.Snapshot().FindProvider("p1")
	assert.InDelta(t, 160, provider.DebtBalance, 0.001)
}

func TestSyncWithNothingPending(t *testing.T) {
	s, _ := openSeeded(t)

	eff, err := s.Dispatch(context.Background(), SyncOfflineOrders{})
	require.NoError(t, err)
	assert.False(t, eff.Changed)
}

func TestBlockedProviderCannotComplete(t *testing.T) {
	s, _ := openSeeded(t)
	addOrder(t, s, "o1", "p2", "JD-ABC123")

	_, err := s.Dispatch(context.Background(), CompleteOrder{ID: "o1", OTP: "JD-ABC123", Fee: 20})
	require.ErrorIs(t, err, domain.ErrProviderBlocked)
}

func TestUpdateOrderEnforcesTransitions(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()
	addOrder(t, s, "o1", "p1", "JD-ABC123")

	back := domain.OrderPending
	_, err := s.Dispatch(ctx, UpdateOrder{ID: "o1", Patch: domain.OrderPatch{Status: &back}})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = s.Dispatch(ctx, TransitionOrder{ID: "o1", To: domain.OrderCancelled})
	require.NoError(t, err)

	_, err = s.Dispatch(ctx, TransitionOrder{ID: "o1", To: domain.OrderStarted})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReviewRequiresCompletedOrder(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()
	addOrder(t, s, "o1", "p1", "JD-ABC123")

	review := domain.Review{Rating: 5, Comment: "fast", CreatedAt: time.Now()}
	_, err := s.Dispatch(ctx, SubmitReview{OrderID: "o1", Review: review})
	require.ErrorIs(t, err, domain.ErrReviewNotAllowed)

	_, err = s.Dispatch(ctx, CompleteOrder{ID: "o1", OTP: "JD-ABC123", Fee: 20})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, SubmitReview{OrderID: "o1", Review: review})
	require.NoError(t, err)

	order, _ := s.Snapshot().FindOrder("o1")
	require.NotNil(t, order.Review)
	assert.Equal(t, 5, order.Review.Rating)
	assert.Equal(t, domain.OrderCompleted, order.Status)
}

func TestOrdersArePrepended(t *testing.T) {
	s, _ := openSeeded(t)
	addOrder(t, s, "o1", "p1", "JD-AAAAAA")
	addOrder(t, s, "o2", "p1", "JD-BBBBBB")

	orders := s.Snapshot().Orders
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID)
	assert.Equal(t, "o1", orders[1].ID)
}

func TestSnapshotIsNotAffectedByLaterDispatch(t *testing.T) {
	s, _ := openSeeded(t)
	before := s.Snapshot()

	_, err := s.Dispatch(context.Background(), ToggleCoupon{ID: "c1"})
	require.NoError(t, err)

	c, _ := before.FindCoupon("c1")
	assert.True(t, c.IsActive)
	c, _ = s.Snapshot().FindCoupon("c1")
	assert.False(t, c.IsActive)
}

func TestPersistFailureKeepsState(t *testing.T) {
	mem := kv.NewMemoryStore()
	ctx := context.Background()
	_, err := Open(ctx, mem, Options{Seed: true})
	require.NoError(t, err)

	boom := errors.New("quota exceeded")
	s, err := Open(ctx, &failingKV{MemoryStore: mem, err: boom}, Options{Seed: true})
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.Dispatch(ctx, SetTheme{Theme: domain.ThemeLuxury})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, before, s.Snapshot())
}

func TestApproveProviderRequest(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()

	req := domain.ProviderRequest{
		ID:           "r1",
		BusinessName: "Tint Pro",
		OwnerName:    "Omar",
		Phone:        "0511111111",
		ServiceType:  domain.CategoryTinting,
		City:         "Jeddah",
		Status:       domain.RequestPending,
	}
	_, err := s.Dispatch(ctx, AddProviderRequest{Request: req})
	require.NoError(t, err)

	owner := domain.User{ID: "u-new", Name: "Omar", Phone: req.Phone, Role: domain.RoleProvider}
	_, err = s.Dispatch(ctx, ApproveProviderRequest{
		ID:       "r1",
		Provider: req.ToProvider("p-new", owner.ID, domain.DefaultCreditLimit),
		NewOwner: &owner,
	})
	require.NoError(t, err)

	state := s.Snapshot()
	assert.Empty(t, state.ProviderRequests)
	p, ok := state.FindProvider("p-new")
	require.True(t, ok)
	assert.Equal(t, domain.ProviderActive, p.Status)
	_, ok = state.FindUser("u-new")
	assert.True(t, ok)

	eff, err := s.Dispatch(ctx, RejectProviderRequest{ID: "r1"})
	require.NoError(t, err)
	assert.False(t, eff.Changed)
}

func TestListenersSeeCommittedActions(t *testing.T) {
	s, _ := openSeeded(t)

	var got []ActionKind
	s.Subscribe(func(a Action, _ State) {
		got = append(got, a.Kind())
	})

	ctx := context.Background()
	_, err := s.Dispatch(ctx, SetLanguage{Language: domain.LanguageEnglish})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, ToggleCoupon{ID: "missing"})
	require.NoError(t, err)

	assert.Equal(t, []ActionKind{KindSetLanguage}, got)
}

func TestResetRestoresSeed(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()
	addOrder(t, s, "o1", "p1", "JD-ABC123")

	require.NoError(t, s.Reset(ctx))
	assert.Empty(t, s.Snapshot().Orders)
	assert.Len(t, s.Snapshot().Providers, 3)
}

func putJSON(t *testing.T, mem *kv.MemoryStore, key string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, mem.Set(context.Background(), key, b))
}

func TestOpenMigratesV1Layout(t *testing.T) {
	mem := kv.NewMemoryStore()
	ctx := context.Background()

	user := domain.User{ID: "u1", Name: "Faisal Admin", Role: domain.RoleAdmin}
	putJSON(t, mem, "user", user)
	putJSON(t, mem, "providers", []map[string]any{
		{"id": "p1", "business_name": "Fast Towing Jeddah", "status": "active", "debt_balance": 120},
	})
	putJSON(t, mem, "orders", []map[string]any{
		{"id": "o1", "service_id": "ps1", "service_name": "Normal Tow", "total_price": 150, "status": "accepted"},
	})

	s, err := Open(ctx, mem, Options{Seed: true})
	require.NoError(t, err)

	state := s.Snapshot()
	require.Len(t, state.Users, 1)
	assert.Equal(t, "u1", state.Users[0].ID)
	assert.NotNil(t, state.ProviderRequests)

	p, _ := state.FindProvider("p1")
	assert.InDelta(t, domain.DefaultCreditLimit, p.CreditLimit, 0.001)

	o, _ := state.FindOrder("o1")
	require.Len(t, o.Services, 1)
	assert.Equal(t, domain.ProviderService{ID: "ps1", Name: "Normal Tow", Price: 150}, o.Services[0])

	raw, err := mem.Get(ctx, schemaVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "2", string(raw))
}

func TestOpenRejectsFutureSchema(t *testing.T) {
	mem := kv.NewMemoryStore()
	putJSON(t, mem, schemaVersionKey, 99)

	_, err := Open(context.Background(), mem, Options{})
	require.ErrorIs(t, err, ErrUnsupportedSchema)
}

func TestOpenRejectsMalformedSlice(t *testing.T) {
	mem := kv.NewMemoryStore()
	require.NoError(t, mem.Set(context.Background(), "orders", []byte("{not json")))

	_, err := Open(context.Background(), mem, Options{})
	require.Error(t, err)
}

func TestOfflineModeOnlyBetweenActiveAndOffline(t *testing.T) {
	ctx := context.Background()
	blocked := domain.ProviderBlocked

	tests := []struct {
		name  string
		setup Action
		id    string
		want  error
	}{
		{"admin blocked", UpdateProvider{ID: "p1", Patch: domain.ProviderPatch{Status: &blocked}}, "p1", domain.ErrInvalidTransition},
		{"pending approval", nil, "p3", domain.ErrInvalidTransition},
		{"over credit limit", nil, "p2", domain.ErrProviderBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := openSeeded(t)
			if tt.setup != nil {
				_, err := s.Dispatch(ctx, tt.setup)
				require.NoError(t, err)
			}
			before, _ := s.Snapshot().FindProvider(tt.id)

			for range 2 {
				_, err := s.Dispatch(ctx, ToggleOfflineMode{ProviderID: tt.id})
				assert.ErrorIs(t, err, tt.want)
			}

			after, _ := s.Snapshot().FindProvider(tt.id)
			assert.Equal(t, before.Status, after.Status)
		})
	}
}

func TestToggleOnline(t *testing.T) {
	s, _ := openSeeded(t)
	ctx := context.Background()

	_, err := s.Dispatch(ctx, ToggleOnline{ProviderID: "p1"})
	require.NoError(t, err)
	p, _ := s.Snapshot().FindProvider("p1")
	assert.False(t, p.IsOnline)
	assert.Equal(t, domain.ProviderActive, p.Status)

	_, err = s.Dispatch(ctx, ToggleOnline{ProviderID: "p1"})
	require.NoError(t, err)
	p, _ = s.Snapshot().FindProvider("p1")
	assert.True(t, p.IsOnline)

	_, err = s.Dispatch(ctx, ToggleOnline{ProviderID: "p2"})
	assert.ErrorIs(t, err, domain.ErrProviderBlocked)

	_, err = s.Dispatch(ctx, ToggleOnline{ProviderID: "p3"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = s.Dispatch(ctx, ToggleOfflineMode{ProviderID: "p1"})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, ToggleOnline{ProviderID: "p1"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAddOrderRedeemsCouponInOneWrite(t *testing.T) {
	s, mem := openSeeded(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Dispatch(ctx, AddCoupon{Coupon: domain.Coupon{
		ID: "cx", Code: "ONCE", Type: domain.CouponFixed, DiscountValue: 10,
		IsActive: true, MaxUses: 1,
	}})
	require.NoError(t, err)

	eff, err := s.Dispatch(ctx, AddOrder{
		Order:    domain.Order{ID: "o1", UserID: "u2", Status: domain.OrderAccepted},
		CouponID: "cx",
		Now:      now,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Slice{SliceOrders, SliceCoupons}, eff.Slices)

	c, _ := s.Snapshot().FindCoupon("cx")
	assert.Equal(t, 1, c.CurrentUses)

	raw, err := mem.Get(ctx, string(SliceCoupons))
	require.NoError(t, err)
	var stored []domain.Coupon
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, 1, stored[len(stored)-1].CurrentUses)

	before := s.Snapshot()
	_, err = s.Dispatch(ctx, AddOrder{
		Order:    domain.Order{ID: "o2", UserID: "u2", Status: domain.OrderAccepted},
		CouponID: "cx",
		Now:      now,
	})
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)
	assert.Equal(t, before, s.Snapshot())

	tests := []struct {
		name string
		id   string
		now  time.Time
	}{
		{"expired", "c1", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"inactive", "c2", now},
		{"unknown", "nope", now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Dispatch(ctx, AddOrder{
				Order:    domain.Order{ID: "o-" + tt.name},
				CouponID: tt.id,
				Now:      tt.now,
			})
			assert.ErrorIs(t, err, domain.ErrCouponInvalid)
		})
	}
	assert.Len(t, s.Snapshot().Orders, 1)
}
