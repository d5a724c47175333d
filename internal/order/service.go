// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teris-io/shortid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/events"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

// defaultLocation stands in for geolocation, which is simulated.
var defaultLocation = domain.Location{
	Lat:     21.5,
	Lng:     39.2,
	Address: "حي الروضة، جدة",
}

type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

type CouponResolver interface {
	Resolve(ctx context.Context, code string) (*domain.Coupon, error)
	EnforcesLimits() bool
}

type Options struct {
	Pricing       domain.PricingRules
	HideOverLimit bool
}

type Service struct {
	store     *store.Store
	coupons   CouponResolver
	publisher events.Publisher
	notifier  Notifier
	opts      Options
	logger    *slog.Logger
	newID     func() (string, error)
	now       func() time.Time
}

func NewService(
	s *store.Store,
	coupons CouponResolver,
	publisher events.Publisher,
	notifier Notifier,
	opts Options,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     s,
		coupons:   coupons,
		publisher: publisher,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
		newID:     shortid.Generate,
		now:       time.Now,
	}
}

type priced struct {
	provider domain.Provider
	services []domain.ProviderService
	coupon   *domain.Coupon
	quote    domain.Quote
}

func (s *Service) price(ctx context.Context, userID string, req QuoteRequest) (*priced, error) {
	state := s.store.Snapshot()

	p, ok := state.FindProvider(req.ProviderID)
	if !ok {
		return nil, fmt.Errorf("provider %s: %w", req.ProviderID, core.ErrNotFound)
	}
	if !p.Listed(s.opts.HideOverLimit) {
		return nil, fmt.Errorf("provider %s: %w", p.ID, domain.ErrProviderNotListed)
	}

	if len(req.ServiceIDs) == 0 {
		return nil, domain.ErrNoServicesSelected
	}
	services := make([]domain.ProviderService, 0, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		svc, ok := p.Service(id)
		if !ok {
			return nil, fmt.Errorf("service %s: %w", id, domain.ErrUnknownService)
		}
		services = append(services, svc)
	}

	premium := false
	if u, ok := state.FindUser(userID); ok {
		premium = u.IsPremium
	}

	coupon, err := s.coupons.Resolve(ctx, req.CouponCode)
	if err != nil {
		return nil, err
	}

	return &priced{
		provider: p,
		services: services,
		coupon:   coupon,
		quote:    domain.PriceOrder(services, premium, coupon, s.opts.Pricing),
	}, nil
}

func (s *Service) Quote(ctx context.Context, userID string, req QuoteRequest) (*QuoteResponse, error) {
	pr, err := s.price(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	return &QuoteResponse{
		ProviderID: pr.provider.ID,
		Services:   pr.services,
		OrderType:  pr.provider.OrderType(),
		Quote:      pr.quote,
	}, nil
}

// Checkout prices the selection and books it. Orders start out accepted
// and carry a fresh completion OTP for the customer to hand over.
func (s *Service) Checkout(
	ctx context.Context,
	userID string,
	req CheckoutRequest,
) (*domain.Order, error) {
	pr, err := s.price(ctx, userID, req.QuoteRequest)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("checkout: order id: %w", err)
	}
	otp, err := domain.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	loc := defaultLocation
	if req.Location != nil {
		loc = domain.Location{
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
			Address: req.Location.Address,
		}
	}

	names := make([]string, len(pr.services))
	for i, svc := range pr.services {
		names[i] = svc.Name
	}

	providerID := pr.provider.ID
	o := domain.Order{
		ID:            strings.ToUpper(id),
		UserID:        userID,
		ProviderID:    &providerID,
		ServiceID:     pr.services[0].ID,
		ServiceName:   strings.Join(names, " + "),
		Services:      pr.services,
		Status:        domain.OrderAccepted,
		LocationGPS:   loc,
		TotalPrice:    pr.quote.Total,
		UniqueOTP:     otp,
		CreatedAt:     s.now().UTC(),
		Commission:    pr.quote.Commission,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		OrderType:     pr.provider.OrderType(),
		CouponCode:    pr.quote.CouponCode,
	}

	add := store.AddOrder{Order: o, Now: o.CreatedAt}
	if pr.coupon != nil && s.coupons.EnforcesLimits() {
		add.CouponID = pr.coupon.ID
	}
	if _, err := s.store.Dispatch(ctx, add); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	core.AddSpanEvent(ctx, "order.created",
		attribute.String("order.id", o.ID),
		attribute.String("order.provider_id", providerID),
		attribute.Float64("order.total", o.TotalPrice),
	)

	s.publish(ctx, events.New(events.OrderCreated, o.ID, map[string]any{
		"provider_id": providerID,
		"user_id":     userID,
		"total_price": o.TotalPrice,
		"commission":  o.Commission,
	}))
	s.notify(ctx, "New order", fmt.Sprintf(
		"Order %s for %s at %s (%.2f SAR)",
		o.ID, o.ServiceName, pr.provider.BusinessName, o.TotalPrice,
	))

	return &o, nil
}

// Mine returns the customer's orders, newest first.
func (s *Service) Mine(_ context.Context, userID string, f Filter) []domain.Order {
	out := make([]domain.Order, 0)
	for _, o := range s.store.Snapshot().Orders {
		if o.UserID == userID && f.match(o) {
			out = append(out, o)
		}
	}
	return out
}

// Get returns an order visible to the caller: its customer, the provider it
// is assigned to, or an admin.
func (s *Service) Get(
	_ context.Context,
	userID string,
	role domain.Role,
	id string,
) (*domain.Order, error) {
	state := s.store.Snapshot()

	o, ok := state.FindOrder(id)
	if !ok {
		return nil, fmt.Errorf("get order %s: %w", id, core.ErrNotFound)
	}

	switch {
	case role == domain.RoleAdmin, o.UserID == userID:
	case role == domain.RoleProvider:
		p, ok := state.ProviderForUser(userID)
		if !ok || !o.BelongsToProvider(p.ID) {
			return nil, fmt.Errorf("get order %s: %w", id, core.ErrNotFound)
		}
	default:
		return nil, fmt.Errorf("get order %s: %w", id, core.ErrNotFound)
	}

	return &o, nil
}

func (s *Service) Review(
	ctx context.Context,
	userID, id string,
	req ReviewRequest,
) (*domain.Order, error) {
	if _, err := s.owned(userID, id); err != nil {
		return nil, err
	}

	eff, err := s.store.Dispatch(ctx, store.SubmitReview{
		OrderID: id,
		Review: domain.Review{
			Rating:    req.Rating,
			Comment:   strings.TrimSpace(req.Comment),
			CreatedAt: s.now().UTC(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("review order %s: %w", id, err)
	}
	if !eff.Changed {
		return nil, fmt.Errorf("review order %s: %w", id, core.ErrNotFound)
	}

	o, _ := s.store.Snapshot().FindOrder(id)
	s.publish(ctx, events.New(events.OrderReviewed, id, map[string]any{
		"rating": req.Rating,
	}))
	return &o, nil
}

func (s *Service) Cancel(ctx context.Context, userID, id string) (*domain.Order, error) {
	if _, err := s.owned(userID, id); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, domain.OrderCancelled)
}

func (s *Service) owned(userID, id string) (domain.Order, error) {
	o, ok := s.store.Snapshot().FindOrder(id)
	if !ok || o.UserID != userID {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, core.ErrNotFound)
	}
	return o, nil
}

// List is the admin view over every order.
func (s *Service) List(_ context.Context, params ListParams) ([]domain.Order, int) {
	matched := make([]domain.Order, 0)
	for _, o := range s.store.Snapshot().Orders {
		if params.Status != "" && string(o.Status) != params.Status {
			continue
		}
		if params.ProviderID != "" && !o.BelongsToProvider(params.ProviderID) {
			continue
		}
		if params.UserID != "" && o.UserID != params.UserID {
			continue
		}
		matched = append(matched, o)
	}

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	return matched[start:end], total
}

// SetStatus lets an admin move an order along the lifecycle. Completion
// through this path skips the OTP and the completion fee.
func (s *Service) SetStatus(
	ctx context.Context,
	id string,
	to domain.OrderStatus,
) (*domain.Order, error) {
	eff, err := s.store.Dispatch(ctx, store.UpdateOrder{
		ID:    id,
		Patch: domain.OrderPatch{Status: &to},
	})
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}
	if !eff.Changed {
		return nil, fmt.Errorf("set order status %s: %w", id, core.ErrNotFound)
	}

	o, _ := s.store.Snapshot().FindOrder(id)
	s.publish(ctx, events.New(events.OrderStatus, id, map[string]any{
		"status": o.Status,
	}))
	return &o, nil
}

func (s *Service) transition(
	ctx context.Context,
	id string,
	to domain.OrderStatus,
) (*domain.Order, error) {
	eff, err := s.store.Dispatch(ctx, store.TransitionOrder{ID: id, To: to})
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}
	if !eff.Changed {
		return nil, fmt.Errorf("order %s: %w", id, core.ErrNotFound)
	}

	o, _ := s.store.Snapshot().FindOrder(id)

	kind := events.OrderStatus
	if to == domain.OrderCancelled {
		kind = events.OrderCancelled
	}
	s.publish(ctx, events.New(kind, id, map[string]any{"status": o.Status}))
	return &o, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publish event failed", "type", e.Type, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, title, body string) {
	if err := s.notifier.Notify(ctx, title, body); err != nil {
		s.logger.Warn("notification failed", "title", title, "error", err)
	}
}
