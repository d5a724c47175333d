// AngelaMos | 2026
// service.go

package provider

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/events"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

type Options struct {
	CompletionFee      float64
	SettleOnSync       bool
	HideOverLimit      bool
	DefaultCreditLimit float64
}

type Service struct {
	store     *store.Store
	publisher events.Publisher
	notifier  Notifier
	opts      Options
	logger    *slog.Logger
}

func NewService(
	s *store.Store,
	publisher events.Publisher,
	notifier Notifier,
	opts Options,
	logger *slog.Logger,
) *Service {
	if opts.DefaultCreditLimit <= 0 {
		opts.DefaultCreditLimit = domain.DefaultCreditLimit
	}
	return &Service{
		store:     s,
		publisher: publisher,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
	}
}

// Catalog lists the providers customers can book, optionally narrowed to
// one category.
func (s *Service) Catalog(_ context.Context, category string) []ProviderResponse {
	out := make([]ProviderResponse, 0)
	for _, p := range s.store.Snapshot().Providers {
		if !p.Listed(s.opts.HideOverLimit) {
			continue
		}
		if category != "" && string(p.ServiceType) != category {
			continue
		}
		out = append(out, toResponse(p))
	}
	return out
}

func (s *Service) GetListed(_ context.Context, id string) (*ProviderResponse, error) {
	p, ok := s.store.Snapshot().FindProvider(id)
	if !ok || !p.Listed(s.opts.HideOverLimit) {
		return nil, fmt.Errorf("get provider %s: %w", id, core.ErrNotFound)
	}
	resp := toResponse(p)
	return &resp, nil
}

// Resolve finds the provider profile a dashboard request acts on. Provider
// accounts always get their own; admins name one explicitly.
func (s *Service) Resolve(
	_ context.Context,
	userID string,
	role domain.Role,
	providerID string,
) (domain.Provider, error) {
	state := s.store.Snapshot()

	if role == domain.RoleAdmin && providerID != "" {
		p, ok := state.FindProvider(providerID)
		if !ok {
			return domain.Provider{}, fmt.Errorf("provider %s: %w", providerID, core.ErrNotFound)
		}
		return p, nil
	}

	p, ok := state.ProviderForUser(userID)
	if !ok {
		return domain.Provider{}, fmt.Errorf("provider for user %s: %w", userID, core.ErrNotFound)
	}
	return p, nil
}

func (s *Service) Dashboard(_ context.Context, p domain.Provider) DashboardResponse {
	resp := DashboardResponse{
		Provider: toResponse(p),
		Orders:   make([]domain.Order, 0),
	}

	gross := decimal.Zero
	commission := decimal.Zero
	for _, o := range s.store.Snapshot().Orders {
		if !o.BelongsToProvider(p.ID) {
			continue
		}
		resp.Orders = append(resp.Orders, o)
		resp.Stats.TotalOrders++

		switch {
		case o.Status == domain.OrderCompleted:
			resp.Stats.CompletedOrders++
			gross = gross.Add(decimal.NewFromFloat(o.TotalPrice))
			commission = commission.Add(decimal.NewFromFloat(o.Commission))
		case o.Status.IsActive():
			resp.Stats.ActiveOrders++
		}
		if o.OfflineSyncPending {
			resp.Stats.PendingSync++
		}
	}

	remaining := decimal.NewFromFloat(p.CreditLimit).Sub(decimal.NewFromFloat(p.DebtBalance))
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	resp.Stats.GrossRevenue = gross.Round(2).InexactFloat64()
	resp.Stats.Commission = commission.Round(2).InexactFloat64()
	resp.Stats.RemainingCredit = remaining.Round(2).InexactFloat64()
	return resp
}

func (s *Service) ToggleOffline(ctx context.Context, providerID string) (*ProviderResponse, error) {
	eff, err := s.store.Dispatch(ctx, store.ToggleOfflineMode{ProviderID: providerID})
	if err != nil {
		return nil, fmt.Errorf("toggle offline: %w", err)
	}
	if !eff.Changed {
		return nil, fmt.Errorf("toggle offline %s: %w", providerID, core.ErrNotFound)
	}

	p, _ := s.store.Snapshot().FindProvider(providerID)
	s.publish(ctx, events.New(events.ProviderOfflineToggled, p.ID, map[string]any{
		"status": p.Status,
	}))

	resp := toResponse(p)
	return &resp, nil
}

// ToggleOnline flips whether an active provider accepts new orders. A
// provider in offline mode reconnects through SyncAndConnect instead.
func (s *Service) ToggleOnline(ctx context.Context, providerID string) (*ProviderResponse, error) {
	eff, err := s.store.Dispatch(ctx, store.ToggleOnline{ProviderID: providerID})
	if err != nil {
		return nil, fmt.Errorf("toggle online: %w", err)
	}
	if !eff.Changed {
		return nil, fmt.Errorf("toggle online %s: %w", providerID, core.ErrNotFound)
	}

	p, _ := s.store.Snapshot().FindProvider(providerID)
	s.publish(ctx, events.New(events.ProviderOnlineToggled, p.ID, map[string]any{
		"is_online": p.IsOnline,
	}))

	resp := toResponse(p)
	return &resp, nil
}

// SyncAndConnect brings an offline provider back online and clears the
// pending-sync flag on every order. With SettleOnSync the skipped
// completion fees are charged as part of the same sync.
func (s *Service) SyncAndConnect(ctx context.Context, providerID string) (*SyncResponse, error) {
	p, ok := s.store.Snapshot().FindProvider(providerID)
	if !ok {
		return nil, fmt.Errorf("sync provider %s: %w", providerID, core.ErrNotFound)
	}

	if p.IsOffline() {
		if _, err := s.ToggleOffline(ctx, providerID); err != nil {
			return nil, err
		}
	}

	synced, err := s.SyncOfflineOrders(ctx)
	if err != nil {
		return nil, err
	}

	p, _ = s.store.Snapshot().FindProvider(providerID)
	return &SyncResponse{Provider: toResponse(p), Synced: synced}, nil
}

// SyncOfflineOrders clears every pending-sync flag and returns how many
// orders were cleared.
func (s *Service) SyncOfflineOrders(ctx context.Context) (int, error) {
	pending := 0
	for _, o := range s.store.Snapshot().Orders {
		if o.OfflineSyncPending {
			pending++
		}
	}

	fee := 0.0
	if s.opts.SettleOnSync {
		fee = s.opts.CompletionFee
	}

	eff, err := s.store.Dispatch(ctx, store.SyncOfflineOrders{SettleFee: fee})
	if err != nil {
		return 0, fmt.Errorf("sync offline orders: %w", err)
	}
	if !eff.Changed {
		return 0, nil
	}

	s.publish(ctx, events.New(events.OrdersSynced, "", map[string]any{
		"count":       pending,
		"settled_fee": fee,
	}))
	return pending, nil
}

// CompleteOrder checks the customer's OTP and completes one of the
// provider's orders, charging the completion fee unless the provider is
// offline.
func (s *Service) CompleteOrder(
	ctx context.Context,
	p domain.Provider,
	orderID, otp string,
) (*domain.Order, error) {
	if _, err := s.ownedOrder(p, orderID); err != nil {
		return nil, err
	}

	_, err := s.store.Dispatch(ctx, store.CompleteOrder{
		ID:  orderID,
		OTP: otp,
		Fee: s.opts.CompletionFee,
	})
	if err != nil {
		return nil, fmt.Errorf("complete order %s: %w", orderID, err)
	}

	o, _ := s.store.Snapshot().FindOrder(orderID)

	s.publish(ctx, events.New(events.OrderCompleted, o.ID, map[string]any{
		"provider_id":          p.ID,
		"total_price":          o.TotalPrice,
		"offline_sync_pending": o.OfflineSyncPending,
	}))
	s.notify(ctx, "Order completed", fmt.Sprintf("%s completed order %s", p.BusinessName, o.ID))

	return &o, nil
}

// AdvanceOrder moves one of the provider's orders along the lifecycle.
// Completion is not reachable here; it requires the OTP.
func (s *Service) AdvanceOrder(
	ctx context.Context,
	p domain.Provider,
	orderID string,
	to domain.OrderStatus,
) (*domain.Order, error) {
	if to == domain.OrderCompleted {
		return nil, fmt.Errorf("advance order: completion needs an otp: %w", core.ErrInvalidInput)
	}
	if _, err := s.ownedOrder(p, orderID); err != nil {
		return nil, err
	}

	if _, err := s.store.Dispatch(ctx, store.TransitionOrder{ID: orderID, To: to}); err != nil {
		return nil, fmt.Errorf("advance order %s: %w", orderID, err)
	}

	o, _ := s.store.Snapshot().FindOrder(orderID)
	s.publish(ctx, events.New(events.OrderStatus, o.ID, map[string]any{
		"status":      o.Status,
		"provider_id": p.ID,
	}))
	return &o, nil
}

func (s *Service) ownedOrder(p domain.Provider, orderID string) (domain.Order, error) {
	o, ok := s.store.Snapshot().FindOrder(orderID)
	if !ok || !o.BelongsToProvider(p.ID) {
		return domain.Order{}, fmt.Errorf("order %s: %w", orderID, core.ErrNotFound)
	}
	return o, nil
}

func (s *Service) List(_ context.Context) []ProviderResponse {
	return toResponseList(s.store.Snapshot().Providers)
}

func (s *Service) Get(_ context.Context, id string) (*ProviderResponse, error) {
	p, ok := s.store.Snapshot().FindProvider(id)
	if !ok {
		return nil, fmt.Errorf("get provider %s: %w", id, core.ErrNotFound)
	}
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req CreateProviderRequest) (*ProviderResponse, error) {
	if req.UserID != "" {
		if _, ok := s.store.Snapshot().FindUser(req.UserID); !ok {
			return nil, fmt.Errorf("owner %s does not exist: %w", req.UserID, core.ErrInvalidInput)
		}
	}

	limit := req.CreditLimit
	if limit <= 0 {
		limit = s.opts.DefaultCreditLimit
	}

	p := domain.Provider{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		BusinessName:  req.BusinessName,
		ServiceType:   domain.Category(req.ServiceType),
		City:          req.City,
		Status:        domain.ProviderActive,
		IsOnline:      true,
		Rating:        5.0,
		CreditLimit:   limit,
		CRNumber:      req.CRNumber,
		Lat:           req.Lat,
		Lng:           req.Lng,
		GoogleMapsURL: req.GoogleMapsURL,
		ImageURL:      req.ImageURL,
		IsFeatured:    req.IsFeatured,
		ServicesList:  toServices(req.Services),
	}

	if _, err := s.store.Dispatch(ctx, store.AddProvider{Provider: p}); err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateProviderRequest,
) (*ProviderResponse, error) {
	return s.update(ctx, id, req.patch())
}

// ToggleStatus flips an active provider to blocked and anything else back
// to active.
func (s *Service) ToggleStatus(ctx context.Context, id string) (*ProviderResponse, error) {
	p, ok := s.store.Snapshot().FindProvider(id)
	if !ok {
		return nil, fmt.Errorf("toggle status %s: %w", id, core.ErrNotFound)
	}

	next := domain.ProviderActive
	if p.Status == domain.ProviderActive {
		next = domain.ProviderBlocked
	}

	resp, err := s.update(ctx, id, domain.ProviderPatch{Status: &next})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.ProviderStatusChanged, id, map[string]any{
		"status": next,
	}))
	return resp, nil
}

func (s *Service) SetServicePrice(
	ctx context.Context,
	id, serviceID string,
	price float64,
) (*ProviderResponse, error) {
	p, ok := s.store.Snapshot().FindProvider(id)
	if !ok {
		return nil, fmt.Errorf("set service price: provider %s: %w", id, core.ErrNotFound)
	}

	list, ok := p.WithServicePrice(serviceID, price)
	if !ok {
		return nil, fmt.Errorf("set service price: service %s: %w", serviceID, core.ErrNotFound)
	}

	return s.update(ctx, id, domain.ProviderPatch{ServicesList: list})
}

func (s *Service) SettleDebt(ctx context.Context, id string) (*ProviderResponse, error) {
	zero := 0.0
	resp, err := s.update(ctx, id, domain.ProviderPatch{DebtBalance: &zero})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.ProviderDebtSettled, id, nil))
	s.notify(ctx, "Debt settled", resp.BusinessName+" account settled")
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	eff, err := s.store.Dispatch(ctx, store.DeleteProvider{ID: id})
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	if !eff.Changed {
		return fmt.Errorf("delete provider %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// Debts lists providers carrying a balance, largest first.
func (s *Service) Debts(_ context.Context) DebtsResponse {
	resp := DebtsResponse{Providers: make([]DebtEntry, 0)}
	total := decimal.Zero

	for _, p := range s.store.Snapshot().Providers {
		if p.DebtBalance <= 0 {
			continue
		}
		blocked := p.IsBlocked()
		if blocked {
			resp.Blocked++
		}
		total = total.Add(decimal.NewFromFloat(p.DebtBalance))
		resp.Providers = append(resp.Providers, DebtEntry{
			ProviderID:   p.ID,
			BusinessName: p.BusinessName,
			DebtBalance:  p.DebtBalance,
			CreditLimit:  p.CreditLimit,
			IsBlocked:    blocked,
		})
	}

	slices.SortStableFunc(resp.Providers, func(a, b DebtEntry) int {
		return cmp.Compare(b.DebtBalance, a.DebtBalance)
	})
	resp.TotalOwed = total.Round(2).InexactFloat64()
	return resp
}

func (s *Service) update(
	ctx context.Context,
	id string,
	patch domain.ProviderPatch,
) (*ProviderResponse, error) {
	eff, err := s.store.Dispatch(ctx, store.UpdateProvider{ID: id, Patch: patch})
	if err != nil {
		return nil, fmt.Errorf("update provider: %w", err)
	}
	if !eff.Changed {
		return nil, fmt.Errorf("update provider %s: %w", id, core.ErrNotFound)
	}

	p, _ := s.store.Snapshot().FindProvider(id)
	resp := toResponse(p)
	return &resp, nil
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
