package services

import (
	"testing"

	"github.com/dukex/trainflow/pkg/events"
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/dukex/trainflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_Create(t *testing.T) {
	s := newTestServices(t)

	workflow := testutil.CreateTestWorkflow(func(w *models.Workflow) {
		w.ID = ""
		w.Status = ""
	})

	created, err := s.workflows.Create(t.Context(), workflow)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := s.workflows.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, stored.Name)
	assert.Len(t, stored.Nodes, 7)

	saved, ok := s.publisher.last().(*events.WorkflowSaved)
	require.True(t, ok)
	assert.True(t, saved.Created)
	assert.Equal(t, created.ID, saved.WorkflowID)
	assert.Equal(t, 7, saved.NodeCount)
	assert.Equal(t, 6, saved.EdgeCount)
}

func TestWorkflow_Create_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		workflow   *models.Workflow
		assertions func(t *testing.T, err error)
	}{
		{
			name:     "nil workflow",
			workflow: nil,
			assertions: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrWorkflowNil)
			},
		},
		{
			name:     "missing name",
			workflow: testutil.CreateTestWorkflow(testutil.WithName("  ")),
			assertions: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrWorkflowNotReady)

				var notReady *NotReadyError
				require.ErrorAs(t, err, &notReady)
				assert.False(t, notReady.Readiness.HasName)
				assert.True(t, notReady.Readiness.HasOneStart)
				assert.Contains(t, err.Error(), "workflow name is required")
			},
		},
		{
			name:     "no end node",
			workflow: testutil.CreateTestWorkflow(testutil.WithoutEndNodes()),
			assertions: func(t *testing.T, err error) {
				var notReady *NotReadyError
				require.ErrorAs(t, err, &notReady)
				assert.False(t, notReady.Readiness.HasEnd)
				assert.True(t, IsConflictError(err))
			},
		},
		{
			name:     "unknown category",
			workflow: testutil.CreateTestWorkflow(testutil.WithCategory("onboarding")),
			assertions: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrInvalidCategory)
				assert.True(t, IsValidationError(err))
			},
		},
		{
			name: "edge to a missing node",
			workflow: testutil.CreateTestWorkflow(func(w *models.Workflow) {
				w.Edges = append(w.Edges, &models.WorkflowEdge{ID: "e-x", Source: "end-1", Target: "ghost-1"})
			}),
			assertions: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrInvalidGraph)
				assert.True(t, IsValidationError(err))
			},
		},
		{
			name: "node data referencing an unknown field",
			workflow: testutil.CreateTestWorkflow(func(w *models.Workflow) {
				w.Node("approval-1").Data.Config = &models.ApprovalConfig{
					EntityType:  "training_requests",
					EntityField: "ceo_approval",
				}
			}),
			assertions: func(t *testing.T, err error) {
				require.ErrorIs(t, err, registry.ErrInvalidNodeData)
				assert.Contains(t, err.Error(), "approval-1")
				assert.True(t, IsValidationError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServices(t)

			_, err := s.workflows.Create(t.Context(), tt.workflow)
			require.Error(t, err)
			tt.assertions(t, err)
			assert.Empty(t, s.publisher.types())
		})
	}
}

func TestWorkflow_Update(t *testing.T) {
	s := newTestServices(t)

	created, err := s.workflows.Create(t.Context(), testutil.CreateTestWorkflow())
	require.NoError(t, err)

	replacement := testutil.CreateTestWorkflow(testutil.WithName("Renamed"), func(w *models.Workflow) {
		w.ID = "ignored"
		w.Status = models.WorkflowStatusActive
	})

	updated, err := s.workflows.Update(t.Context(), created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	assert.Equal(t, []events.EventType{
		events.WorkflowSavedEvent,
		events.WorkflowSavedEvent,
		events.WorkflowStatusChangedEvent,
	}, s.publisher.types())

	_, err = s.workflows.Update(t.Context(), "missing", testutil.CreateTestWorkflow())
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflow_ListWorkflows(t *testing.T) {
	s := newTestServices(t)

	for _, name := range []string{"Bravo", "Alpha", "Charlie"} {
		_, err := s.workflows.Create(t.Context(), testutil.CreateTestWorkflow(testutil.WithName(name)))
		require.NoError(t, err)
	}

	result, err := s.workflows.ListWorkflows(t.Context(), ListWorkflowsRequest{
		SortBy:    "name",
		SortOrder: "asc",
		Limit:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.TotalCount)
	assert.True(t, result.HasNextPage)
	require.Len(t, result.Workflows, 2)
	assert.Equal(t, "Alpha", result.Workflows[0].Name)

	_, err = s.workflows.ListWorkflows(t.Context(), ListWorkflowsRequest{SortBy: "owner"})
	require.ErrorIs(t, err, ErrInvalidSortField)

	_, err = s.workflows.ListWorkflows(t.Context(), ListWorkflowsRequest{SortOrder: "sideways"})
	require.ErrorIs(t, err, ErrInvalidSortOrder)

	bad := models.WorkflowStatus("published")
	_, err = s.workflows.ListWorkflows(t.Context(), ListWorkflowsRequest{Status: &bad})
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.workflows.ListWorkflows(t.Context(), ListWorkflowsRequest{Limit: 500})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestWorkflow_SetStatus(t *testing.T) {
	s := newTestServices(t)

	created, err := s.workflows.Create(t.Context(), testutil.CreateTestWorkflow())
	require.NoError(t, err)

	active, err := s.workflows.SetStatus(t.Context(), created.ID, models.WorkflowStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusActive, active.Status)

	changed, ok := s.publisher.last().(*events.WorkflowStatusChanged)
	require.True(t, ok)
	assert.Equal(t, models.WorkflowStatusDraft, changed.PreviousStatus)
	assert.Equal(t, models.WorkflowStatusActive, changed.Status)

	// same status is a no-op
	_, err = s.workflows.SetStatus(t.Context(), created.ID, models.WorkflowStatusActive)
	require.NoError(t, err)
	assert.Len(t, s.publisher.types(), 2)

	_, err = s.workflows.SetStatus(t.Context(), created.ID, "archived")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.workflows.SetStatus(t.Context(), "missing", models.WorkflowStatusInactive)
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflow_SetStatus_ActivationRequiresReadiness(t *testing.T) {
	s := newTestServices(t)

	// a definition written around the service, e.g. by hand
	broken := testutil.CreateTestWorkflow(testutil.WithoutEndNodes())
	require.NoError(t, s.persistence.WorkflowRepository().Save(t.Context(), broken))

	_, err := s.workflows.SetStatus(t.Context(), broken.ID, models.WorkflowStatusActive)
	require.ErrorIs(t, err, ErrWorkflowNotReady)

	_, err = s.workflows.SetStatus(t.Context(), broken.ID, models.WorkflowStatusInactive)
	require.NoError(t, err)
}

func TestWorkflow_Delete(t *testing.T) {
	s := newTestServices(t)

	created, err := s.workflows.Create(t.Context(), testutil.CreateTestWorkflow())
	require.NoError(t, err)

	require.NoError(t, s.workflows.Delete(t.Context(), created.ID))

	_, err = s.workflows.FetchByID(t.Context(), created.ID)
	require.ErrorIs(t, err, ErrWorkflowNotFound)
	assert.True(t, IsNotFoundError(err))

	deleted, ok := s.publisher.last().(*events.WorkflowDeleted)
	require.True(t, ok)
	assert.Equal(t, created.ID, deleted.WorkflowID)

	err = s.workflows.Delete(t.Context(), created.ID)
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflow_EvaluateCondition(t *testing.T) {
	s := newTestServices(t)

	created, err := s.workflows.Create(t.Context(), testutil.CreateTestWorkflow())
	require.NoError(t, err)

	tests := []struct {
		name       string
		record     map[string]any
		wantResult bool
		wantBranch string
		wantTarget string
	}{
		{
			name:       "cheap request takes the True branch",
			record:     map[string]any{"estimated_cost": 250},
			wantResult: true,
			wantBranch: models.EdgeLabelTrue,
			wantTarget: "action-1",
		},
		{
			name:       "expensive request takes the False branch",
			record:     map[string]any{"estimated_cost": "4500"},
			wantResult: false,
			wantBranch: models.EdgeLabelFalse,
			wantTarget: "notification-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.workflows.EvaluateCondition(t.Context(), created.ID, "condition-1", tt.record)
			require.NoError(t, err)

			assert.Equal(t, tt.wantResult, result.Result)
			assert.Equal(t, tt.wantBranch, result.Branch)
			assert.Equal(t, []string{tt.wantTarget}, result.Targets)
		})
	}

	_, err = s.workflows.EvaluateCondition(t.Context(), created.ID, "approval-1", nil)
	require.ErrorIs(t, err, ErrNotCondition)

	_, err = s.workflows.EvaluateCondition(t.Context(), created.ID, "condition-9", nil)
	require.ErrorIs(t, err, ErrNodeNotFound)

	_, err = s.workflows.EvaluateCondition(t.Context(), created.ID, "condition-1", map[string]any{"estimated_cost": "a lot"})
	require.ErrorIs(t, err, ErrConditionFailed)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_HealthCheck(t *testing.T) {
	s := newTestServices(t)

	_, healthy := s.workflows.HealthCheck(t.Context())
	assert.True(t, healthy)

	message, healthy := NewWorkflow(nil, nil).HealthCheck(t.Context())
	assert.False(t, healthy)
	assert.Equal(t, "Persistence layer not initialized", message)
}
