// AngelaMos | 2026
// coupon_test.go

package coupon

import (
	"context"
	"encoding/json"
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
	"github.com/carterperez-dev/jeddrive/internal/kv"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

func newService(t *testing.T, enforce bool) *Service {
	t.Helper()
	st, err := store.Open(context.Background(), kv.NewMemoryStore(), store.Options{Seed: true})
	require.NoError(t, err)

	svc := NewService(st, enforce)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	lenient := newService(t, false)

	c, err := lenient.Resolve(ctx, "jed20")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "c1", c.ID)

	c, err = lenient.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = lenient.Resolve(ctx, "FIRST50")
	assert.ErrorIs(t, err, domain.ErrCouponInvalid, "inactive coupons never apply")

	strict := newService(t, true)
	_, err = strict.Resolve(ctx, "JED20")
	assert.ErrorIs(t, err, domain.ErrCouponInvalid, "expired once limits are enforced")
}

func TestValidateComputesDiscount(t *testing.T) {
	svc := newService(t, false)

	resp, err := svc.Validate(context.Background(), ValidateRequest{Code: "JED20", Subtotal: 150})
	require.NoError(t, err)
	assert.InDelta(t, 30, resp.Discount, 0.001)
	assert.Equal(t, domain.CouponPercent, resp.Type)
}

func TestCreateToggleDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, false)

	c, err := svc.Create(ctx, CreateCouponRequest{
		Code:          "summer10",
		DiscountValue: 10,
		Type:          "fixed",
		ExpiryDate:    "2026-09-30",
		MaxUses:       5,
	})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", c.Code)
	assert.True(t, c.IsActive)

	toggled, err := svc.Toggle(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	require.NoError(t, svc.Delete(ctx, c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), core.ErrNotFound)
	_, err = svc.Toggle(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Create(ctx, CreateCouponRequest{Code: "HALFPLUS", DiscountValue: 150, Type: "percent"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestEnforcedLimitsSkipExhausted(t *testing.T) {
	ctx := context.Background()

	lenient := newService(t, false)
	strict := newService(t, true)
	assert.False(t, lenient.EnforcesLimits())
	assert.True(t, strict.EnforcesLimits())

	for _, svc := range []*Service{lenient, strict} {
		_, err := svc.store.Dispatch(ctx, store.AddCoupon{Coupon: domain.Coupon{
			ID: "cx", Code: "USEDUP", Type: domain.CouponFixed, DiscountValue: 10,
			IsActive: true, MaxUses: 3, CurrentUses: 3,
		}})
		require.NoError(t, err)
	}

	c, err := lenient.Resolve(ctx, "usedup")
	require.NoError(t, err)
	assert.Equal(t, "cx", c.ID)

	_, err = strict.Resolve(ctx, "usedup")
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)
}

func TestHandlerValidate(t *testing.T) {
	h := NewHandler(newService(t, false))
	pass := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	h.RegisterRoutes(r, pass, pass)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid code", `{"code":"JED20","subtotal":200}`, http.StatusOK},
		{"unknown code", `{"code":"NOPE","subtotal":200}`, http.StatusUnprocessableEntity},
		{"missing code", `{"subtotal":200}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/coupons/validate", strings.NewReader(tt.body))
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/coupons/validate", strings.NewReader(`{"code":"jed20","subtotal":200}`),
	))
	var body struct {
		Data ValidateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 40, body.Data.Discount, 0.001)
}
