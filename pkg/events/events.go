// Package events defines the workflow lifecycle events published to the event bus.
package events

import (
	"time"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every workflow event.
const Topic = "trainflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowSavedEvent         EventType = "workflow.saved"
	WorkflowDeletedEvent       EventType = "workflow.deleted"
	WorkflowStatusChangedEvent EventType = "workflow.status_changed"
	WorkflowAppliedEvent       EventType = "workflow.applied"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// GetWorkflowID returns the workflow the event belongs to; it is the message key.
func (b BaseEvent) GetWorkflowID() string {
	return b.WorkflowID
}

// WorkflowSaved is published after an editing session is written back as a workflow.
type WorkflowSaved struct {
	BaseEvent

	Name      string                  `json:"name"`
	Category  models.WorkflowCategory `json:"category"`
	Status    models.WorkflowStatus   `json:"status"`
	Created   bool                    `json:"created"`
	NodeCount int                     `json:"node_count"`
	EdgeCount int                     `json:"edge_count"`
	SessionID string                  `json:"session_id,omitempty"`
}

func (w WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

type WorkflowStatusChanged struct {
	BaseEvent

	PreviousStatus models.WorkflowStatus `json:"previous_status"`
	Status         models.WorkflowStatus `json:"status"`
}

func (w WorkflowStatusChanged) GetType() EventType {
	return WorkflowStatusChangedEvent
}

// WorkflowApplied hands a pending instance over to the engine that runs it.
type WorkflowApplied struct {
	BaseEvent

	InstanceID string `json:"instance_id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

func (w WorkflowApplied) GetType() EventType {
	return WorkflowAppliedEvent
}

// NewEvent returns an empty event of the given type for decoding, or false when
// the type is unknown.
func NewEvent(eventType EventType) (any, bool) {
	switch eventType {
	case WorkflowSavedEvent:
		return &WorkflowSaved{}, true
	case WorkflowDeletedEvent:
		return &WorkflowDeleted{}, true
	case WorkflowStatusChangedEvent:
		return &WorkflowStatusChanged{}, true
	case WorkflowAppliedEvent:
		return &WorkflowApplied{}, true
	default:
		return nil, false
	}
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}
