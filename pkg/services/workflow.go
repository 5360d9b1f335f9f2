package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/trainflow/pkg/eventbus"
	"github.com/dukex/trainflow/pkg/events"
	"github.com/dukex/trainflow/pkg/graph"
	"github.com/dukex/trainflow/pkg/metrics"
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/otelhelper"
	"github.com/dukex/trainflow/pkg/persistence"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Workflow struct {
	options

	persistence persistence.Persistence
	registry    *registry.Registry
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, reg *registry.Registry, opts ...Option) *Workflow {
	return &Workflow{
		options:     newOptions("workflow_service", opts),
		persistence: persistence,
		registry:    reg,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	// Pagination
	Limit  int
	Offset int

	// Filtering
	Category *models.WorkflowCategory
	Status   *models.WorkflowStatus

	// Sorting
	SortBy    string
	SortOrder string
}

// ListWorkflowsResponse contains the result of listing workflows.
type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// ListWorkflows retrieves workflows with filtering, sorting, and pagination.
func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) (*ListWorkflowsResponse, error) {
	if req.Category != nil && !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCategory, *req.Category)
	}

	if req.Status != nil && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *req.Status)
	}

	if req.Limit < 0 || req.Limit > persistence.MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidRequest, persistence.MaxListLimit)
	}

	if req.Offset < 0 {
		return nil, fmt.Errorf("%w: offset cannot be negative", ErrInvalidRequest)
	}

	result, err := w.persistence.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		Category:  req.Category,
		Status:    req.Status,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		// Map persistence validation errors to service validation errors
		if persistence.IsInvalidSortField(err) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSortField, req.SortBy)
		}

		if errors.Is(err, persistence.ErrInvalidSortOrder) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSortOrder, req.SortOrder)
		}

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return &ListWorkflowsResponse{
		Workflows:   result.Workflows,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

// FetchByID returns a stored workflow.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}

		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	return workflow, nil
}

// Create validates and stores a new workflow. The graph must pass the save checklist.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	return w.create(ctx, workflow, "")
}

func (w *Workflow) create(ctx context.Context, workflow *models.Workflow, sessionID string) (*models.Workflow, error) {
	const op = "Create"

	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.create",
		attribute.String(otelhelper.SessionIDKey, sessionID),
	)
	defer span.End()

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate workflow id: %w", err)
		}

		workflow.ID = id.String()
	}

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, workflow.ID))

	err := w.save(ctx, op, workflow)
	metrics.RecordWorkflowSave("create", metrics.Result(err, IsRejected))

	if err != nil {
		recordError(span, err)

		return nil, err
	}

	w.publishSaved(ctx, workflow, true, sessionID)

	return workflow, nil
}

// Update replaces the stored workflow with the given definition.
func (w *Workflow) Update(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error) {
	return w.update(ctx, id, workflow, "")
}

func (w *Workflow) update(ctx context.Context, id string, workflow *models.Workflow, sessionID string) (*models.Workflow, error) {
	const op = "Update"

	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.update",
		attribute.String(otelhelper.WorkflowIDKey, id),
		attribute.String(otelhelper.SessionIDKey, sessionID),
	)
	defer span.End()

	existing, err := w.FetchByID(ctx, id)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	workflow.ID = existing.ID
	workflow.CreatedAt = existing.CreatedAt

	if workflow.Status == "" {
		workflow.Status = existing.Status
	}

	err = w.save(ctx, op, workflow)
	metrics.RecordWorkflowSave("update", metrics.Result(err, IsRejected))

	if err != nil {
		recordError(span, err)

		return nil, err
	}

	w.publishSaved(ctx, workflow, false, sessionID)

	if existing.Status != workflow.Status {
		w.publish(ctx, &events.WorkflowStatusChanged{
			BaseEvent:      events.NewBaseEvent(events.WorkflowStatusChangedEvent, workflow.ID),
			PreviousStatus: existing.Status,
			Status:         workflow.Status,
		})
	}

	return workflow, nil
}

// Delete removes a workflow together with its instances.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.delete",
		attribute.String(otelhelper.WorkflowIDKey, id),
	)
	defer span.End()

	err := w.persistence.WorkflowRepository().Delete(ctx, id)
	if err != nil {
		recordError(span, err)

		if persistence.IsWorkflowNotFound(err) {
			return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}

		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Deleted workflow", "workflow_id", id)

	w.publish(ctx, &events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, id),
	})

	return nil
}

// SetStatus moves a workflow between draft, active and inactive. Activation
// requires the graph to pass the save checklist.
func (w *Workflow) SetStatus(ctx context.Context, id string, status models.WorkflowStatus) (*models.Workflow, error) {
	const op = "SetStatus"

	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.set_status",
		attribute.String(otelhelper.WorkflowIDKey, id),
		attribute.String(otelhelper.WorkflowStatusKey, string(status)),
	)
	defer span.End()

	workflow, err := w.FetchByID(ctx, id)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	previous := workflow.Status
	if previous == status {
		return workflow, nil
	}

	if status == models.WorkflowStatusActive {
		report := NewReadinessReport(workflow.Name, workflow.Nodes, workflow.Edges)
		if !report.CanSave {
			err := &NotReadyError{Op: op, Readiness: report}
			recordError(span, err)

			return nil, err
		}
	}

	workflow.Status = status

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		recordError(span, err)

		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Changed workflow status", "workflow_id", id, "from", previous, "to", status)

	w.publish(ctx, &events.WorkflowStatusChanged{
		BaseEvent:      events.NewBaseEvent(events.WorkflowStatusChangedEvent, id),
		PreviousStatus: previous,
		Status:         status,
	})

	return workflow, nil
}

// ConditionResult is the outcome of evaluating a condition node against a record.
type ConditionResult struct {
	NodeID  string   `json:"node_id"`
	Result  bool     `json:"result"`
	Branch  string   `json:"branch"`
	Targets []string `json:"targets"`
}

// EvaluateCondition evaluates a stored condition node against an entity record
// and reports the branch that would be taken.
func (w *Workflow) EvaluateCondition(ctx context.Context, workflowID, nodeID string, record map[string]any) (*ConditionResult, error) {
	const op = "EvaluateCondition"

	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.evaluate_condition",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeIDKey, nodeID),
	)
	defer span.End()

	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	node := workflow.Node(nodeID)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	config, ok := node.Data.Config.(*models.ConditionConfig)
	if !ok || node.Type != models.NodeTypeCondition {
		return nil, fmt.Errorf("%w: %s is a %s node", ErrNotCondition, nodeID, node.Type)
	}

	result, err := config.Evaluate(record)
	if err != nil {
		recordError(span, err)

		return nil, NewValidationError(op, "condition_failed", err.Error(), errors.Join(ErrConditionFailed, err))
	}

	branch := models.EdgeLabelFalse
	if result {
		branch = models.EdgeLabelTrue
	}

	targets := make([]string, 0)

	outgoing := workflow.OutgoingEdges(nodeID)
	for _, edge := range outgoing {
		// a lone unlabeled branch is followed whatever the outcome
		if edge.Label == branch || (len(outgoing) == 1 && edge.Label == "") {
			targets = append(targets, edge.Target)
		}
	}

	return &ConditionResult{
		NodeID:  nodeID,
		Result:  result,
		Branch:  branch,
		Targets: targets,
	}, nil
}

// save validates the definition and writes it.
func (w *Workflow) save(ctx context.Context, op string, workflow *models.Workflow) error {
	err := w.validate(op, workflow)
	if err != nil {
		return err
	}

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Saved workflow", "workflow_id", workflow.ID, "op", op, "nodes", len(workflow.Nodes))

	return nil
}

// validate checks the metadata, the graph integrity, every node's data and
// finally the save checklist.
func (w *Workflow) validate(op string, workflow *models.Workflow) error {
	if !workflow.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, workflow.Category)
	}

	if !workflow.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, workflow.Status)
	}

	err := graph.CheckIntegrity(workflow.Nodes, workflow.Edges)
	if err != nil {
		return NewValidationError(op, "invalid_graph", err.Error(), errors.Join(ErrInvalidGraph, err))
	}

	if w.registry != nil {
		for _, node := range workflow.Nodes {
			err := w.registry.ValidateNode(node)
			if err != nil {
				return err
			}
		}
	}

	report := NewReadinessReport(workflow.Name, workflow.Nodes, workflow.Edges)
	if !report.CanSave {
		return &NotReadyError{Op: op, Readiness: report}
	}

	return nil
}

func (w *Workflow) publishSaved(ctx context.Context, workflow *models.Workflow, created bool, sessionID string) {
	w.publish(ctx, &events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, workflow.ID),
		Name:      workflow.Name,
		Category:  workflow.Category,
		Status:    workflow.Status,
		Created:   created,
		NodeCount: len(workflow.Nodes),
		EdgeCount: len(workflow.Edges),
		SessionID: sessionID,
	})
}

// publish sends an event after the write it describes succeeded. A failed publish
// is logged and does not undo the write.
func (o *options) publish(ctx context.Context, event eventbus.Event) {
	if o.publisher == nil {
		return
	}

	err := o.publisher.Publish(ctx, event)
	if err != nil {
		o.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "workflow_id", event.GetWorkflowID(), "error", err)
		otelhelper.SetError(trace.SpanFromContext(ctx), err)
	}
}
