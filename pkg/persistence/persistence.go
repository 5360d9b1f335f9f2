// Package persistence provides the storage abstraction for workflow definitions
// and the instances created when a workflow is applied to an entity.
package persistence

import (
	"context"

	"github.com/dukex/trainflow/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	InstanceRepository() InstanceRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions, one record per workflow with
// the graph inline.
type WorkflowRepository interface {
	ListWorkflows(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	// Save inserts or replaces the workflow, setting CreatedAt on first save and
	// UpdatedAt on every save.
	Save(ctx context.Context, workflow *models.Workflow) error
	// Delete removes the workflow and its instances.
	Delete(ctx context.Context, id string) error
}

// InstanceRepository stores the workflow_instances rows.
type InstanceRepository interface {
	Create(ctx context.Context, instance *models.WorkflowInstance) error
	GetByID(ctx context.Context, id string) (*models.WorkflowInstance, error)
	// ListByWorkflow returns the instances of a workflow, newest first.
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowInstance, error)
}
