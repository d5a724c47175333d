// AngelaMos | 2026
// events.go

package events

import (
	"context"
	"sync"
	"time"
)

type Type string

const (
	OrderCreated   Type = "order.created"
	OrderStatus    Type = "order.status_changed"
	OrderCompleted Type = "order.completed"
	OrderCancelled Type = "order.cancelled"
	OrderReviewed  Type = "order.reviewed"
	OrdersSynced   Type = "order.offline_synced"

	ProviderOfflineToggled Type = "provider.offline_toggled"
	ProviderOnlineToggled  Type = "provider.online_toggled"
	ProviderDebtSettled    Type = "provider.debt_settled"
	ProviderStatusChanged  Type = "provider.status_changed"

	RequestSubmitted Type = "provider_request.submitted"
	RequestApproved  Type = "provider_request.approved"
	RequestRejected  Type = "provider_request.rejected"
)

// Event is a marketplace fact published after the store committed it.
// The type doubles as the routing key.
type Event struct {
	Type       Type      `json:"type"`
	SubjectID  string    `json:"subject_id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(t Type, subjectID string, payload any) Event {
	return Event{
		Type:       t,
		SubjectID:  subjectID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = (*Recorder)(nil)
)
