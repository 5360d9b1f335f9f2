// Package eventbus hands workflow events to whatever runs workflows outside
// this service.
package eventbus

import (
	"context"

	"github.com/dukex/trainflow/pkg/events"
)

// Event is a workflow event. Every event belongs to one workflow and is keyed
// by its id, so events of a workflow keep their order on partitioned channels.
type Event interface {
	GetType() events.EventType
	GetWorkflowID() string
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventHandler receives the decoded event, e.g. *events.WorkflowApplied.
type EventHandler func(ctx context.Context, event any) error

type EventSubscriber interface {
	// Handle registers the handler of one event type. Events without a
	// handler are acknowledged and dropped.
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
}
