package repository

import (
	"context"
	"time"
)

// Event types emitted by the version lifecycle
const (
	EventVersionOpen  = "version_open"
	EventVersionClose = "version_close"
	EventRegistration = "registration"
)

// Event is one entry in an object's event history
type Event struct {
	ID        string
	ObjectID  string
	EventType string
	Payload   map[string]any
	CreatedAt time.Time
}

// EventLog records lifecycle events. Recording is best effort; failures are
// logged by the implementation and never returned.
type EventLog interface {
	Record(ctx context.Context, externalID, eventType string, payload map[string]any)
}

// EventSink is a durable destination for events
type EventSink interface {
	Write(ctx context.Context, event Event) error
}

// EventReader lists recorded events for an object, oldest first
type EventReader interface {
	ListEvents(ctx context.Context, externalID string) ([]Event, error)
}
