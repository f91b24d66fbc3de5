// Package pubsub delivers renderer updates to the Bubble Tea loop.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened to the rendered container.
type EventType string

const (
	// MountEvent carries the first state of a container.
	MountEvent EventType = "mount"
	// UpdateEvent carries a new state to animate to.
	UpdateEvent EventType = "update"
	// ErrorEvent reports a problem loading or watching a source.
	ErrorEvent EventType = "error"
)

// Event is a published value with its type.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Err       error
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
	PublishError(err error)
}
