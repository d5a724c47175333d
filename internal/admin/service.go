// AngelaMos | 2026
// service.go

package admin

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

type Service struct {
	store  *store.Store
	logger *slog.Logger
}

func NewService(s *store.Store, logger *slog.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Overview summarizes the marketplace. Revenue and commission count
// completed orders only.
func (s *Service) Overview(_ context.Context) Overview {
	state := s.store.Snapshot()

	out := Overview{
		Users:          len(state.Users),
		Providers:      len(state.Providers),
		OpenRequests:   len(state.ProviderRequests),
		Orders:         len(state.Orders),
		OrdersByStatus: make(map[domain.OrderStatus]int),
		ByCategory:     make(map[domain.Category]int),
	}

	debt := decimal.Zero
	for _, p := range state.Providers {
		out.ByCategory[p.ServiceType]++
		if p.Status == domain.ProviderActive {
			out.ActiveProviders++
		}
		if p.IsBlocked() {
			out.BlockedProviders++
		}
		if p.DebtBalance > 0 {
			debt = debt.Add(decimal.NewFromFloat(p.DebtBalance))
		}
	}

	revenue := decimal.Zero
	commission := decimal.Zero
	for _, o := range state.Orders {
		out.OrdersByStatus[o.Status]++
		if o.OfflineSyncPending {
			out.PendingSync++
		}
		if o.Status == domain.OrderCompleted {
			revenue = revenue.Add(decimal.NewFromFloat(o.TotalPrice))
			commission = commission.Add(decimal.NewFromFloat(o.Commission))
		}
	}

	for _, c := range state.Coupons {
		if c.IsActive {
			out.ActiveCoupons++
		}
	}
	for _, n := range state.Notifications {
		if n.Status == domain.NotificationUnread {
			out.UnreadAlerts++
		}
	}

	out.Revenue = revenue.Round(2).InexactFloat64()
	out.Commission = commission.Round(2).InexactFloat64()
	out.OutstandingDebt = debt.Round(2).InexactFloat64()
	return out
}

// Reset wipes the backend and restores the demo marketplace.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.logger.Warn("marketplace reset by admin")
	return nil
}
