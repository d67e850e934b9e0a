// Package events carries the in-process event bus the modules talk over.
// Lead capture, webhook ingestion, and the scheduler stay decoupled by
// publishing here instead of calling each other.
package events

import (
	"context"
	"time"
)

// Event is anything the bus can route. EventName keys handler dispatch,
// so two event types must never share a name.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp half of Event; concrete events embed
// it and add their own EventName.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// Handler consumes events routed to it by name.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe without a wrapper type.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes published events to the handlers subscribed under their name.
type Bus interface {
	// Publish dispatches to handlers asynchronously. Handler failures are
	// logged by the bus, never surfaced to the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync waits for every handler and returns the first failure.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers handler under eventName, which must match what
	// the event's EventName returns.
	Subscribe(eventName string, handler Handler)
}
