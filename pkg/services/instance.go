package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/trainflow/pkg/catalog"
	"github.com/dukex/trainflow/pkg/events"
	"github.com/dukex/trainflow/pkg/metrics"
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/otelhelper"
	"github.com/dukex/trainflow/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Instance applies active workflows to entity rows. Running the instance is left
// to an external engine listening for workflow.applied events.
type Instance struct {
	options

	persistence persistence.Persistence
	workflows   *Workflow
	catalog     *catalog.Catalog
}

// NewInstance creates a new instance service.
func NewInstance(persistence persistence.Persistence, workflows *Workflow, entities *catalog.Catalog, opts ...Option) *Instance {
	return &Instance{
		options:     newOptions("instance_service", opts),
		persistence: persistence,
		workflows:   workflows,
		catalog:     entities,
	}
}

// ApplyRequest names the workflow and the entity row it is applied to.
type ApplyRequest struct {
	WorkflowID string
	EntityType string
	EntityID   string
}

// ApplyToEntity records a pending instance of an active workflow for one entity
// and announces it with a workflow.applied event.
func (i *Instance) ApplyToEntity(ctx context.Context, req ApplyRequest) (*models.WorkflowInstance, error) {
	ctx, span := otelhelper.StartSpan(ctx, i.tracer, "instance.apply",
		attribute.String(otelhelper.WorkflowIDKey, req.WorkflowID),
		attribute.String(otelhelper.EntityTypeKey, req.EntityType),
		attribute.String(otelhelper.EntityIDKey, req.EntityID),
	)
	defer span.End()

	instance, err := i.apply(ctx, req)
	metrics.RecordWorkflowApply(i.entityLabel(req.EntityType), metrics.Result(err, IsRejected))

	if err != nil {
		recordError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.InstanceIDKey, instance.ID))

	return instance, nil
}

// entityLabel keeps metric labels to catalog entity types.
func (i *Instance) entityLabel(entityType string) string {
	if i.catalog != nil {
		if _, ok := i.catalog.Entity(entityType); ok {
			return entityType
		}
	}

	return metrics.UnknownEntityType
}

func (i *Instance) apply(ctx context.Context, req ApplyRequest) (*models.WorkflowInstance, error) {
	if strings.TrimSpace(req.EntityID) == "" {
		return nil, ErrEntityIDRequired
	}

	if i.catalog != nil {
		if _, ok := i.catalog.Entity(req.EntityType); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, req.EntityType)
		}
	}

	workflow, err := i.workflows.FetchByID(ctx, req.WorkflowID)
	if err != nil {
		return nil, err
	}

	if workflow.Status != models.WorkflowStatusActive {
		return nil, fmt.Errorf("%w: %s is %s", ErrWorkflowNotActive, workflow.ID, workflow.Status)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate instance id: %w", err)
	}

	instance := &models.WorkflowInstance{
		ID:         id.String(),
		WorkflowID: workflow.ID,
		Status:     models.InstanceStatusPending,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
	}

	err = i.persistence.InstanceRepository().Create(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow instance: %w", err)
	}

	i.logger.InfoContext(ctx, "Applied workflow",
		"workflow_id", workflow.ID,
		"instance_id", instance.ID,
		"entity_type", instance.EntityType,
		"entity_id", instance.EntityID,
	)

	i.publish(ctx, &events.WorkflowApplied{
		BaseEvent:  events.NewBaseEvent(events.WorkflowAppliedEvent, workflow.ID),
		InstanceID: instance.ID,
		EntityType: instance.EntityType,
		EntityID:   instance.EntityID,
	})

	return instance, nil
}

// ListByWorkflow returns the instances of an existing workflow, newest first.
func (i *Instance) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowInstance, error) {
	_, err := i.workflows.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	instances, err := i.persistence.InstanceRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow instances: %w", err)
	}

	return instances, nil
}

// FetchByID returns one instance.
func (i *Instance) FetchByID(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	instance, err := i.persistence.InstanceRepository().GetByID(ctx, id)
	if err != nil {
		if persistence.IsInstanceNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
		}

		return nil, fmt.Errorf("failed to get workflow instance: %w", err)
	}

	return instance, nil
}
