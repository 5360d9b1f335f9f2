// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/protocol"
	"github.com/dukex/trainflow/pkg/services"
)

// StartSessionRequest represents the request body for opening a session on a new workflow.
type StartSessionRequest struct {
	Name        string                  `json:"name"        validate:"max=200"`
	Description string                  `json:"description"`
	Category    models.WorkflowCategory `json:"category"    validate:"omitempty,oneof=training_request course_enrollment certification expense_approval"`
}

// UpdateSessionRequest changes the workflow details of a session.
// All fields are optional to support partial updates.
type UpdateSessionRequest struct {
	Name        *string                  `json:"name,omitempty"        validate:"omitempty,max=200"`
	Description *string                  `json:"description,omitempty"`
	Category    *models.WorkflowCategory `json:"category,omitempty"    validate:"omitempty,oneof=training_request course_enrollment certification expense_approval"`
}

// AddNodeRequest represents the request body for adding a node to the canvas.
type AddNodeRequest struct {
	Type models.NodeType `json:"type" validate:"required,oneof=start approval condition notification action end"`
}

// UpdateNodeRequest carries a partial data patch. A null value removes the key.
type UpdateNodeRequest struct {
	Data map[string]any `json:"data" validate:"required"`
}

// MoveNodeRequest sets the canvas position of a node.
type MoveNodeRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// ConnectRequest represents the request body for adding an edge.
// Label is only accepted on edges leaving a condition node.
type ConnectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Label  string `json:"label"  validate:"omitempty,oneof=True False"`
}

// SetStatusRequest represents the request body for changing a workflow status.
type SetStatusRequest struct {
	Status models.WorkflowStatus `json:"status" validate:"required,oneof=draft active inactive"`
}

// ApplyWorkflowRequest names the entity row a workflow is applied to.
type ApplyWorkflowRequest struct {
	EntityType string `json:"entity_type" validate:"required"`
	EntityID   string `json:"entity_id"   validate:"required"`
}

// EvaluateConditionRequest carries the entity record a condition node is evaluated against.
type EvaluateConditionRequest struct {
	Record map[string]any `json:"record" validate:"required"`
}

// ReadinessResponse is the save checklist with the unmet items spelled out.
type ReadinessResponse struct {
	services.ReadinessReport

	Missing []string `json:"missing"`
}

// NewReadinessResponse builds the response of a readiness report.
func NewReadinessResponse(report services.ReadinessReport) ReadinessResponse {
	return ReadinessResponse{ReadinessReport: report, Missing: report.Missing()}
}

// NodeTypeResponse describes one entry of the node palette.
type NodeTypeResponse struct {
	Type         models.NodeType `json:"type"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	DefaultLabel string          `json:"default_label"`
	Schema       map[string]any  `json:"schema"`
}

// TransformNodeType builds the palette entry of a node factory.
func TransformNodeType(factory protocol.NodeFactory) NodeTypeResponse {
	return NodeTypeResponse{
		Type:         factory.ID(),
		Name:         factory.Name(),
		Description:  factory.Description(),
		DefaultLabel: factory.DefaultLabel(),
		Schema:       factory.Schema(),
	}
}
