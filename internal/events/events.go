package events

import (
	"context"
	"errors"
	"time"
)

// Type identifies a job application lifecycle event.
type Type string

// Lifecycle event types. The value is also the last MQTT topic segment.
const (
	TypeCreated       Type = "created"
	TypeUpdated       Type = "updated"
	TypeStatusChanged Type = "status_changed"
	TypeDeleted       Type = "deleted"
)

// Event describes a change to a job application.
type Event struct {
	Type          Type      `json:"type"`
	ApplicationID string    `json:"application_id"`
	OwnerID       string    `json:"owner_id"`
	ActorID       string    `json:"actor_id"`
	Status        string    `json:"status,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers events to an external sink. Callers treat errors as
// non-fatal: the change has already been committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
