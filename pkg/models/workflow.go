// Package models defines the core domain models for training workflow definitions.
package models

import (
	"slices"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Being edited, never applied
	WorkflowStatusActive   WorkflowStatus = "active"   // Can be applied to entities
	WorkflowStatusInactive WorkflowStatus = "inactive" // Kept for history, cannot be applied
)

// WorkflowStatuses lists every known workflow status.
var WorkflowStatuses = []WorkflowStatus{
	WorkflowStatusDraft,
	WorkflowStatusActive,
	WorkflowStatusInactive,
}

// IsValid reports whether the status is one of the known statuses.
func (s WorkflowStatus) IsValid() bool {
	return slices.Contains(WorkflowStatuses, s)
}

// WorkflowCategory groups workflows by the kind of request they drive.
type WorkflowCategory string

const (
	CategoryTrainingRequest  WorkflowCategory = "training_request"
	CategoryCourseEnrollment WorkflowCategory = "course_enrollment"
	CategoryCertification    WorkflowCategory = "certification"
	CategoryExpenseApproval  WorkflowCategory = "expense_approval"
)

// WorkflowCategories lists every known workflow category.
var WorkflowCategories = []WorkflowCategory{
	CategoryTrainingRequest,
	CategoryCourseEnrollment,
	CategoryCertification,
	CategoryExpenseApproval,
}

// IsValid reports whether the category is one of the known categories.
func (c WorkflowCategory) IsValid() bool {
	return slices.Contains(WorkflowCategories, c)
}

// Workflow is a workflow definition: a graph of typed nodes joined by edges.
type Workflow struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"        validate:"required"`
	Description string           `json:"description"`
	Category    WorkflowCategory `json:"category"    validate:"required,oneof=training_request course_enrollment certification expense_approval"`
	Status      WorkflowStatus   `json:"status"      validate:"required,oneof=draft active inactive"`
	Nodes       []*WorkflowNode  `json:"nodes"`
	Edges       []*WorkflowEdge  `json:"edges"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// EdgeLabelTrue and EdgeLabelFalse name the two branches of a condition node.
const (
	EdgeLabelTrue  = "True"
	EdgeLabelFalse = "False"
)

// WorkflowEdge is a directed connection between two nodes.
type WorkflowEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"          validate:"required"`
	Target string `json:"target"          validate:"required"`
	Label  string `json:"label,omitempty"` // Only set on condition branches
}

// Node returns the node with the given id, or nil.
func (w *Workflow) Node(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// OutgoingEdges returns the edges whose source is the given node, in graph order.
func (w *Workflow) OutgoingEdges(nodeID string) []*WorkflowEdge {
	edges := make([]*WorkflowEdge, 0)

	for _, edge := range w.Edges {
		if edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}
