// AngelaMos | 2026
// service.go

package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// Notify prepends an unread entry to the global notification log.
func (s *Service) Notify(ctx context.Context, title, body string) error {
	now := time.Now().UTC()
	_, err := s.store.Dispatch(ctx, store.AddNotification{
		Notification: domain.Notification{
			ID:        now.UnixMilli(),
			Title:     title,
			Body:      body,
			Status:    domain.NotificationUnread,
			CreatedAt: now,
		},
	})
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (s *Service) List(_ context.Context, unreadOnly bool) ListResponse {
	all := s.store.Snapshot().Notifications

	resp := ListResponse{Notifications: make([]domain.Notification, 0, len(all))}
	for _, n := range all {
		if n.Status == domain.NotificationUnread {
			resp.Unread++
		} else if unreadOnly {
			continue
		}
		resp.Notifications = append(resp.Notifications, n)
	}
	return resp
}

func (s *Service) MarkAllRead(ctx context.Context) error {
	if _, err := s.store.Dispatch(ctx, store.MarkNotificationsRead{}); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
