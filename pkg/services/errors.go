// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/trainflow/pkg/graph"
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/otelhelper"
	"github.com/dukex/trainflow/pkg/persistence"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/dukex/trainflow/pkg/sessions"
	"go.opentelemetry.io/otel/trace"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidStatus    = errors.New("invalid workflow status")
	ErrInvalidCategory  = errors.New("invalid workflow category")
	ErrInvalidGraph     = errors.New("invalid workflow graph")
	ErrWorkflowNil      = errors.New("workflow cannot be nil")
	ErrUnknownEntity    = errors.New("unknown entity type")
	ErrEntityIDRequired = errors.New("entity ID is required")
	ErrNotCondition     = errors.New("node is not a condition node")
	ErrConditionFailed  = errors.New("condition cannot be evaluated")

	// Business Logic Conflicts (409 Conflict).
	ErrWorkflowNotReady  = errors.New("workflow is not ready to be saved")
	ErrWorkflowNotActive = errors.New("workflow is not active")

	// Not Found (404).
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
	ErrInstanceNotFound = persistence.ErrInstanceNotFound
	ErrSessionNotFound  = sessions.ErrSessionNotFound
	ErrNodeNotFound     = graph.ErrNodeNotFound
	ErrEdgeNotFound     = graph.ErrEdgeNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ReadinessReport is the full save checklist: the structural graph predicates
// plus the name and node count requirements.
type ReadinessReport struct {
	graph.Readiness

	HasName  bool `json:"has_name"`
	HasNodes bool `json:"has_nodes"`
	CanSave  bool `json:"can_save"`
}

// NewReadinessReport computes the checklist of a workflow name and graph.
func NewReadinessReport(name string, nodes []*models.WorkflowNode, edges []*models.WorkflowEdge) ReadinessReport {
	return ReadinessReport{
		Readiness: graph.Check(nodes, edges),
		HasName:   strings.TrimSpace(name) != "",
		HasNodes:  len(nodes) > 0,
		CanSave:   graph.CanSave(name, nodes, edges),
	}
}

// Missing lists the unmet checklist items.
func (r ReadinessReport) Missing() []string {
	missing := make([]string, 0)

	if !r.HasName {
		missing = append(missing, "workflow name is required")
	}

	if !r.HasNodes {
		missing = append(missing, "workflow must have at least one node")
	}

	if !r.HasOneStart {
		missing = append(missing, fmt.Sprintf("workflow must have exactly one start node (found %d)", r.StartCount))
	}

	if !r.HasEnd {
		missing = append(missing, "workflow must have at least one end node")
	}

	if !r.ConditionLabelsOK {
		missing = append(missing, "condition branches must be labeled True and False: "+strings.Join(r.InvalidConditions, ", "))
	}

	return missing
}

// NotReadyError rejects a save or activation and carries the checklist.
type NotReadyError struct {
	Op        string
	Readiness ReadinessReport
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrWorkflowNotReady, strings.Join(e.Readiness.Missing(), "; "))
}

func (e *NotReadyError) Unwrap() error {
	return ErrWorkflowNotReady
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidGraph) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrUnknownEntity) ||
		errors.Is(err, ErrEntityIDRequired) ||
		errors.Is(err, ErrNotCondition) ||
		errors.Is(err, ErrConditionFailed) ||
		errors.Is(err, registry.ErrInvalidNodeData) ||
		errors.Is(err, models.ErrUnknownNodeType) ||
		errors.Is(err, graph.ErrNodeTypeChange)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrWorkflowNotReady) ||
		errors.Is(err, ErrWorkflowNotActive) ||
		errors.Is(err, sessions.ErrConcurrentEdit) ||
		errors.Is(err, sessions.ErrSessionExists) ||
		errors.Is(err, persistence.ErrInstanceAlreadyExists)
}

// IsNotFoundError checks if an error refers to a missing resource (HTTP 404).
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrInstanceNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrEdgeNotFound)
}

// IsRejected reports whether err is a client error rather than a failure.
func IsRejected(err error) bool {
	return IsValidationError(err) || IsConflictError(err) || IsNotFoundError(err) || graph.IsRuleViolation(err)
}

// recordError marks the span failed, or only rejected for client errors.
func recordError(span trace.Span, err error) {
	if IsRejected(err) {
		otelhelper.SetRejected(span, err)

		return
	}

	otelhelper.SetError(span, err)
}
