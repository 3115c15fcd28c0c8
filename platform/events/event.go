// Package events carries the in-process pub/sub primitives the modules
// communicate over. It knows nothing about leads, reps, or any other
// domain type; those live in internal/events.
package events

import (
	"context"
	"time"
)

// Event is what travels over the bus. Implementations are small immutable
// structs embedding BaseEvent.
type Event interface {
	// EventName identifies the event type for subscription matching.
	EventName() string
	// OccurredAt reports when the event was raised.
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp every event shares.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to events of one subscribed type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus connects publishers to subscribers by event name.
type Bus interface {
	// Publish fans the event out to its subscribers without waiting for
	// them; handler errors are logged, not returned.
	Publish(ctx context.Context, event Event)

	// PublishSync runs every subscriber before returning and joins their
	// errors.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for the name an Event reports via
	// EventName.
	Subscribe(eventName string, handler Handler)
}
