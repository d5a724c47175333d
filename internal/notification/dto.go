// AngelaMos | 2026
// dto.go

package notification

import (
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type ListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

type BroadcastRequest struct {
	Title string `json:"title" validate:"required,min=1,max=120"`
	Body  string `json:"body"  validate:"required,min=1,max=1000"`
}

// Message is one frame pushed to websocket subscribers.
type Message struct {
	Type         string               `json:"type"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

const (
	MessageNotification = "notification"
	MessageAllRead      = "notifications_read"
)
