// AngelaMos | 2026
// service.go

package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

type Service struct {
	store         *store.Store
	enforceLimits bool
	now           func() time.Time
}

// NewService builds the coupon service. With enforceLimits set, expiry and
// max uses are checked and checkout counts every redemption.
func NewService(s *store.Store, enforceLimits bool) *Service {
	return &Service{
		store:         s,
		enforceLimits: enforceLimits,
		now:           time.Now,
	}
}

// EnforcesLimits reports whether checkout should redeem the coupon along
// with the order.
func (s *Service) EnforcesLimits() bool {
	return s.enforceLimits
}

// Resolve looks up an applicable coupon by code. An empty code resolves to
// no coupon.
func (s *Service) Resolve(_ context.Context, code string) (*domain.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}

	c, ok := domain.FindCoupon(
		s.store.Snapshot().Coupons,
		code,
		s.enforceLimits,
		s.now(),
	)
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", code, domain.ErrCouponInvalid)
	}
	return &c, nil
}

func (s *Service) Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error) {
	c, err := s.Resolve(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("validate: %w", domain.ErrCouponInvalid)
	}

	return &ValidateResponse{
		Code:          c.Code,
		Type:          c.Type,
		DiscountValue: c.DiscountValue,
		Discount:      c.Discount(req.Subtotal),
	}, nil
}

func (s *Service) List(_ context.Context) []CouponResponse {
	coupons := s.store.Snapshot().Coupons
	now := s.now()

	out := make([]CouponResponse, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, CouponResponse{
			Coupon:    c,
			Expired:   c.Expired(now),
			Exhausted: c.Exhausted(),
		})
	}
	return out
}

func (s *Service) Create(ctx context.Context, req CreateCouponRequest) (*domain.Coupon, error) {
	kind := domain.CouponType(req.Type)
	if kind == domain.CouponPercent && req.DiscountValue > 100 {
		return nil, fmt.Errorf(
			"percent discount above 100: %w",
			core.ErrInvalidInput,
		)
	}

	c := domain.Coupon{
		ID:            uuid.New().String(),
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountValue: req.DiscountValue,
		Type:          kind,
		IsActive:      true,
		ExpiryDate:    req.ExpiryDate,
		MaxUses:       req.MaxUses,
	}

	if _, err := s.store.Dispatch(ctx, store.AddCoupon{Coupon: c}); err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}
	return &c, nil
}

func (s *Service) Toggle(ctx context.Context, id string) (*domain.Coupon, error) {
	eff, err := s.store.Dispatch(ctx, store.ToggleCoupon{ID: id})
	if err != nil {
		return nil, fmt.Errorf("toggle coupon: %w", err)
	}
	if !eff.Changed {
		return nil, fmt.Errorf("toggle coupon %s: %w", id, core.ErrNotFound)
	}

	c, _ := s.store.Snapshot().FindCoupon(id)
	return &c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	eff, err := s.store.Dispatch(ctx, store.DeleteCoupon{ID: id})
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if !eff.Changed {
		return fmt.Errorf("delete coupon %s: %w", id, core.ErrNotFound)
	}
	return nil
}
