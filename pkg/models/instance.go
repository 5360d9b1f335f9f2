package models

import "time"

// InstanceStatus represents the state of a workflow applied to an entity.
// Only pending is set here; the remaining states are written by the external engine.
type InstanceStatus string

const (
	InstanceStatusPending   InstanceStatus = "pending"
	InstanceStatusRunning   InstanceStatus = "running"
	InstanceStatusCompleted InstanceStatus = "completed"
	InstanceStatusRejected  InstanceStatus = "rejected"
	InstanceStatusFailed    InstanceStatus = "failed"
)

// WorkflowInstance records that a workflow was applied to one entity row.
type WorkflowInstance struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Status     InstanceStatus `json:"status"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	CreatedAt  time.Time      `json:"created_at"`
}
