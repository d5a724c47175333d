// AngelaMos | 2026
// service.go

package signup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/events"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

type Service struct {
	store              *store.Store
	publisher          events.Publisher
	notifier           Notifier
	defaultCreditLimit float64
	logger             *slog.Logger
	now                func() time.Time
}

func NewService(
	s *store.Store,
	publisher events.Publisher,
	notifier Notifier,
	defaultCreditLimit float64,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:              s,
		publisher:          publisher,
		notifier:           notifier,
		defaultCreditLimit: defaultCreditLimit,
		logger:             logger,
		now:                time.Now,
	}
}

func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*domain.ProviderRequest, error) {
	pr := domain.ProviderRequest{
		ID:            uuid.New().String(),
		BusinessName:  strings.TrimSpace(req.BusinessName),
		OwnerName:     strings.TrimSpace(req.OwnerName),
		Phone:         req.Phone,
		Email:         strings.ToLower(req.Email),
		ServiceType:   domain.Category(req.ServiceType),
		City:          req.City,
		CRNumber:      req.CRNumber,
		GoogleMapsURL: req.GoogleMapsURL,
		ImageURL:      req.ImageURL,
		ServicesList:  req.services(),
		Status:        domain.RequestPending,
		CreatedAt:     s.now().UTC(),
	}

	if _, err := s.store.Dispatch(ctx, store.AddProviderRequest{Request: pr}); err != nil {
		return nil, fmt.Errorf("submit provider request: %w", err)
	}

	s.publish(ctx, events.New(events.RequestSubmitted, pr.ID, map[string]any{
		"business_name": pr.BusinessName,
		"service_type":  pr.ServiceType,
	}))
	s.notify(ctx, "New provider request",
		fmt.Sprintf("%s (%s) applied to join as %s", pr.BusinessName, pr.City, pr.ServiceType))

	return &pr, nil
}

// List returns the open applications, newest first.
func (s *Service) List(_ context.Context) []domain.ProviderRequest {
	reqs := s.store.Snapshot().ProviderRequests
	out := make([]domain.ProviderRequest, len(reqs))
	for i, r := range reqs {
		out[len(reqs)-1-i] = r
	}
	return out
}

func (s *Service) Get(_ context.Context, id string) (*domain.ProviderRequest, error) {
	r, ok := s.store.Snapshot().FindProviderRequest(id)
	if !ok {
		return nil, fmt.Errorf("provider request %s: %w", id, core.ErrNotFound)
	}
	return &r, nil
}

// Approve turns the application into an active provider. The owner is
// matched to an existing account by phone, then email; an existing account
// is promoted to the provider role, otherwise a new one is created.
func (s *Service) Approve(ctx context.Context, id string) (*ApproveResponse, error) {
	state := s.store.Snapshot()

	req, ok := state.FindProviderRequest(id)
	if !ok {
		return nil, fmt.Errorf("approve request %s: %w", id, core.ErrNotFound)
	}

	action := store.ApproveProviderRequest{ID: id}
	resp := &ApproveResponse{}

	owner, found := state.FindUserBy(req.Phone)
	if !found && req.Email != "" {
		owner, found = state.FindUserBy(req.Email)
	}

	if found {
		if owner.Role == domain.RoleAdmin {
			return nil, fmt.Errorf("approve request %s: owner is an admin: %w", id, core.ErrInvalidInput)
		}
		if _, taken := state.ProviderForUser(owner.ID); taken {
			return nil, fmt.Errorf("approve request %s: owner already runs a provider: %w", id, core.ErrDuplicateKey)
		}
		action.PromoteUserID = owner.ID
		resp.OwnerID = owner.ID
	} else {
		u := domain.User{
			ID:        uuid.New().String(),
			Name:      req.OwnerName,
			Phone:     req.Phone,
			Email:     req.Email,
			Role:      domain.RoleProvider,
			CreatedAt: s.now().UTC(),
		}
		action.NewOwner = &u
		resp.OwnerID = u.ID
		resp.NewAccount = true
	}

	action.Provider = req.ToProvider(uuid.New().String(), resp.OwnerID, s.defaultCreditLimit)

	eff, err := s.store.Dispatch(ctx, action)
	if err != nil {
		return nil, fmt.Errorf("approve request %s: %w", id, err)
	}
	if !eff.Changed {
		return nil, fmt.Errorf("approve request %s: %w", id, core.ErrNotFound)
	}
	resp.Provider = action.Provider

	s.publish(ctx, events.New(events.RequestApproved, id, map[string]any{
		"provider_id": action.Provider.ID,
		"owner_id":    resp.OwnerID,
		"new_account": resp.NewAccount,
	}))
	s.notify(ctx, "Provider approved",
		fmt.Sprintf("%s is now live on JedDrive", action.Provider.BusinessName))

	return resp, nil
}

func (s *Service) Reject(ctx context.Context, id string) error {
	req, ok := s.store.Snapshot().FindProviderRequest(id)
	if !ok {
		return fmt.Errorf("reject request %s: %w", id, core.ErrNotFound)
	}

	eff, err := s.store.Dispatch(ctx, store.RejectProviderRequest{ID: id})
	if err != nil {
		return err
	}
	if !eff.Changed {
		return fmt.Errorf("reject request %s: %w", id, core.ErrNotFound)
	}

	s.publish(ctx, events.New(events.RequestRejected, id, map[string]any{
		"business_name": req.BusinessName,
	}))
	s.notify(ctx, "Provider request rejected",
		fmt.Sprintf("The application from %s was declined", req.BusinessName))
	return nil
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
