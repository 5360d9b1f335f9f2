package web_test

import (
	"net/http"
	"testing"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/services"
	"github.com/dukex/trainflow/pkg/sessions"
	"github.com/dukex/trainflow/pkg/testutil"
	"github.com/dukex/trainflow/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIHandlers_EditingFlow(t *testing.T) {
	api := setupTestApp(t)

	var session sessions.Session

	api.doJSON(t, http.MethodPost, "/sessions", web.StartSessionRequest{}, http.StatusCreated, &session)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, models.CategoryTrainingRequest, session.Category)

	base := "/sessions/" + session.ID

	for _, nodeType := range []models.NodeType{
		models.NodeTypeStart,
		models.NodeTypeCondition,
		models.NodeTypeEnd,
		models.NodeTypeEnd,
		models.NodeTypeNotification,
	} {
		api.doJSON(t, http.MethodPost, base+"/nodes", web.AddNodeRequest{Type: nodeType}, http.StatusCreated, nil)
	}

	var edge models.WorkflowEdge

	api.doJSON(t, http.MethodPost, base+"/edges", web.ConnectRequest{Source: "start-1", Target: "condition-1"}, http.StatusCreated, &edge)
	assert.Empty(t, edge.Label)

	api.doJSON(t, http.MethodPost, base+"/edges", web.ConnectRequest{Source: "condition-1", Target: "end-1"}, http.StatusCreated, &edge)
	assert.Equal(t, models.EdgeLabelTrue, edge.Label)

	api.doJSON(t, http.MethodPost, base+"/edges", web.ConnectRequest{Source: "condition-1", Target: "end-2"}, http.StatusCreated, &edge)
	assert.Equal(t, models.EdgeLabelFalse, edge.Label)

	rejected := api.problem(t, http.MethodPost, base+"/edges", web.ConnectRequest{Source: "condition-1", Target: "notification-1"}, http.StatusConflict)
	assert.Equal(t, "graph_rule_violation", rejected.Type)
	assert.Equal(t, base+"/edges", rejected.Instance)

	var readiness web.ReadinessResponse

	api.doJSON(t, http.MethodGet, base+"/readiness", nil, http.StatusOK, &readiness)
	assert.True(t, readiness.HasOneStart)
	assert.True(t, readiness.HasEnd)
	assert.True(t, readiness.ConditionLabelsOK)
	assert.False(t, readiness.CanSave)
	assert.Equal(t, []string{"workflow name is required"}, readiness.Missing)

	notReady := api.problem(t, http.MethodPost, base+"/save", nil, http.StatusConflict)
	assert.Equal(t, "workflow_not_ready", notReady.Type)
	assert.Equal(t, []string{"workflow name is required"}, notReady.Missing)
	assert.Equal(t, false, notReady.Readiness["can_save"])

	name := "Cost check"
	api.doJSON(t, http.MethodPatch, base, web.UpdateSessionRequest{Name: &name}, http.StatusOK, &session)
	assert.Equal(t, name, session.Name)

	var node models.WorkflowNode

	api.doJSON(t, http.MethodPatch, base+"/nodes/condition-1", web.UpdateNodeRequest{Data: map[string]any{
		"entityType": "training_requests",
		"field":      "estimated_cost",
		"operator":   models.OperatorGreaterThan,
		"value":      1000,
	}}, http.StatusOK, &node)
	assert.Equal(t, "condition-1", node.ID)

	var saved models.Workflow

	api.doJSON(t, http.MethodPost, base+"/save", nil, http.StatusOK, &saved)
	require.NotEmpty(t, saved.ID)
	assert.Len(t, saved.Nodes, 5)
	assert.Len(t, saved.Edges, 3)
	assert.Equal(t, models.WorkflowStatusDraft, saved.Status)

	var resaved models.Workflow

	api.doJSON(t, http.MethodPost, base+"/save", nil, http.StatusOK, &resaved)
	assert.Equal(t, saved.ID, resaved.ID)

	var result services.ConditionResult

	api.doJSON(t, http.MethodPost, "/workflows/"+saved.ID+"/nodes/condition-1/evaluate", web.EvaluateConditionRequest{
		Record: map[string]any{"estimated_cost": 2500},
	}, http.StatusOK, &result)
	assert.True(t, result.Result)
	assert.Equal(t, models.EdgeLabelTrue, result.Branch)
	assert.Equal(t, []string{"end-1"}, result.Targets)
}

func TestAPIHandlers_SessionNodes(t *testing.T) {
	api := setupTestApp(t)

	var session sessions.Session

	api.doJSON(t, http.MethodPost, "/sessions", web.StartSessionRequest{Name: "Nodes"}, http.StatusCreated, &session)

	base := "/sessions/" + session.ID

	var node models.WorkflowNode

	api.doJSON(t, http.MethodPost, base+"/nodes", web.AddNodeRequest{Type: models.NodeTypeApproval}, http.StatusCreated, &node)
	assert.Equal(t, "approval-1", node.ID)
	assert.Equal(t, "Approval", node.Data.Label)

	x, y := 320.0, 180.0
	api.doJSON(t, http.MethodPut, base+"/nodes/approval-1/position", web.MoveNodeRequest{X: &x, Y: &y}, http.StatusOK, &node)
	assert.Equal(t, models.Position{X: 320, Y: 180}, node.Position)

	api.doJSON(t, http.MethodPost, base+"/nodes/approval-1/duplicate", nil, http.StatusCreated, &node)
	assert.Equal(t, "approval-2", node.ID)
	assert.Equal(t, models.Position{X: 370, Y: 230}, node.Position)

	api.doJSON(t, http.MethodPost, base+"/edges", web.ConnectRequest{Source: "approval-1", Target: "approval-2"}, http.StatusCreated, nil)

	p := api.problem(t, http.MethodPatch, base+"/nodes/approval-1", web.UpdateNodeRequest{Data: map[string]any{
		"entityType":  "training_requests",
		"entityField": "salary",
	}}, http.StatusBadRequest)
	assert.Equal(t, "validation_error", p.Type)
	assert.Contains(t, p.Detail, "salary")

	status, _ := api.do(t, http.MethodDelete, base+"/edges/e-approval-1-approval-2", nil)
	assert.Equal(t, http.StatusNoContent, status)

	p = api.problem(t, http.MethodDelete, base+"/edges/e-approval-1-approval-2", nil, http.StatusNotFound)
	assert.Equal(t, "edge_not_found", p.Type)

	status, _ = api.do(t, http.MethodDelete, base+"/nodes/approval-2", nil)
	assert.Equal(t, http.StatusNoContent, status)

	p = api.problem(t, http.MethodPut, base+"/nodes/approval-2/position", web.MoveNodeRequest{X: &x, Y: &y}, http.StatusNotFound)
	assert.Equal(t, "node_not_found", p.Type)

	var stored sessions.Session

	api.doJSON(t, http.MethodGet, base, nil, http.StatusOK, &stored)
	require.NotNil(t, stored.Graph)
	assert.Len(t, stored.Graph.Nodes, 1)
	assert.Empty(t, stored.Graph.Edges)

	status, _ = api.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, status)

	p = api.problem(t, http.MethodGet, base, nil, http.StatusNotFound)
	assert.Equal(t, "session_not_found", p.Type)
}

func TestAPIHandlers_RequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{
			name:   "unknown node type",
			method: http.MethodPost,
			path:   "/nodes",
			body:   map[string]any{"type": "loop"},
		},
		{
			name:   "missing node type",
			method: http.MethodPost,
			path:   "/nodes",
			body:   map[string]any{},
		},
		{
			name:   "edge without target",
			method: http.MethodPost,
			path:   "/edges",
			body:   map[string]any{"source": "start-1"},
		},
		{
			name:   "invalid branch label",
			method: http.MethodPost,
			path:   "/edges",
			body:   map[string]any{"source": "start-1", "target": "end-1", "label": "Maybe"},
		},
		{
			name:   "invalid category",
			method: http.MethodPatch,
			path:   "",
			body:   map[string]any{"category": "onboarding"},
		},
		{
			name:   "position without y",
			method: http.MethodPut,
			path:   "/nodes/start-1/position",
			body:   map[string]any{"x": 10},
		},
		{
			name:   "node patch without data",
			method: http.MethodPatch,
			path:   "/nodes/start-1",
			body:   map[string]any{},
		},
	}

	api := setupTestApp(t)

	var session sessions.Session

	api.doJSON(t, http.MethodPost, "/sessions", web.StartSessionRequest{Name: "Validation"}, http.StatusCreated, &session)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := api.problem(t, tt.method, "/sessions/"+session.ID+tt.path, tt.body, http.StatusBadRequest)
			assert.Equal(t, "validation_error", p.Type)
		})
	}
}

func TestAPIHandlers_StartSession_InvalidJSON(t *testing.T) {
	api := setupTestApp(t)

	status, body := api.do(t, http.MethodPost, "/sessions", "not an object")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "invalid JSON format")
}

func TestAPIHandlers_Workflows(t *testing.T) {
	api := setupTestApp(t)
	ctx := t.Context()

	first, err := api.workflows.Create(ctx, testutil.CreateTestWorkflow(func(w *models.Workflow) {
		w.Name = "Alpha"
	}))
	require.NoError(t, err)

	_, err = api.workflows.Create(ctx, testutil.CreateTestWorkflow(func(w *models.Workflow) {
		w.Name = "Beta"
		w.Category = models.CategoryCertification
	}))
	require.NoError(t, err)

	var list struct {
		Workflows   []*models.Workflow `json:"workflows"`
		TotalCount  int64              `json:"total_count"`
		HasNextPage bool               `json:"has_next_page"`
	}

	api.doJSON(t, http.MethodGet, "/workflows?sort_by=name&sort_order=asc&limit=1", nil, http.StatusOK, &list)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.True(t, list.HasNextPage)
	require.Len(t, list.Workflows, 1)
	assert.Equal(t, "Alpha", list.Workflows[0].Name)

	api.doJSON(t, http.MethodGet, "/workflows?category=certification", nil, http.StatusOK, &list)
	require.Len(t, list.Workflows, 1)
	assert.Equal(t, "Beta", list.Workflows[0].Name)

	p := api.problem(t, http.MethodGet, "/workflows?sort_by=owner", nil, http.StatusBadRequest)
	assert.Equal(t, "validation_error", p.Type)

	p = api.problem(t, http.MethodGet, "/workflows?limit=abc", nil, http.StatusBadRequest)
	assert.Contains(t, p.Detail, "Invalid query parameters")

	var fetched models.Workflow

	api.doJSON(t, http.MethodGet, "/workflows/"+first.ID, nil, http.StatusOK, &fetched)
	assert.Equal(t, "Alpha", fetched.Name)
	assert.Len(t, fetched.Nodes, 7)

	p = api.problem(t, http.MethodGet, "/workflows/missing", nil, http.StatusNotFound)
	assert.Equal(t, "workflow_not_found", p.Type)

	status, _ := api.do(t, http.MethodDelete, "/workflows/"+first.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	api.problem(t, http.MethodDelete, "/workflows/"+first.ID, nil, http.StatusNotFound)
}

func TestAPIHandlers_StatusAndApply(t *testing.T) {
	api := setupTestApp(t)

	workflow, err := api.workflows.Create(t.Context(), testutil.CreateTestWorkflow())
	require.NoError(t, err)

	path := "/workflows/" + workflow.ID

	p := api.problem(t, http.MethodPost, path+"/apply", web.ApplyWorkflowRequest{
		EntityType: "training_requests",
		EntityID:   "7",
	}, http.StatusConflict)
	assert.Equal(t, "conflict", p.Type)

	api.problem(t, http.MethodPatch, path+"/status", web.SetStatusRequest{Status: "archived"}, http.StatusBadRequest)

	var updated models.Workflow

	api.doJSON(t, http.MethodPatch, path+"/status", web.SetStatusRequest{Status: models.WorkflowStatusActive}, http.StatusOK, &updated)
	assert.Equal(t, models.WorkflowStatusActive, updated.Status)

	var instance models.WorkflowInstance

	api.doJSON(t, http.MethodPost, path+"/apply", web.ApplyWorkflowRequest{
		EntityType: "training_requests",
		EntityID:   "7",
	}, http.StatusCreated, &instance)
	assert.Equal(t, models.InstanceStatusPending, instance.Status)
	assert.Equal(t, workflow.ID, instance.WorkflowID)

	p = api.problem(t, http.MethodPost, path+"/apply", web.ApplyWorkflowRequest{
		EntityType: "payroll",
		EntityID:   "7",
	}, http.StatusBadRequest)
	assert.Contains(t, p.Detail, "payroll")

	var instances struct {
		Instances  []models.WorkflowInstance `json:"instances"`
		TotalCount int                       `json:"total_count"`
	}

	api.doJSON(t, http.MethodGet, path+"/instances", nil, http.StatusOK, &instances)
	assert.Equal(t, 1, instances.TotalCount)

	var fetched models.WorkflowInstance

	api.doJSON(t, http.MethodGet, "/instances/"+instance.ID, nil, http.StatusOK, &fetched)
	assert.Equal(t, "7", fetched.EntityID)

	p = api.problem(t, http.MethodGet, "/instances/missing", nil, http.StatusNotFound)
	assert.Equal(t, "instance_not_found", p.Type)
}

func TestAPIHandlers_EditExistingWorkflow(t *testing.T) {
	api := setupTestApp(t)

	workflow, err := api.workflows.Create(t.Context(), testutil.CreateTestWorkflow())
	require.NoError(t, err)

	var session sessions.Session

	api.doJSON(t, http.MethodPost, "/workflows/"+workflow.ID+"/sessions", nil, http.StatusCreated, &session)
	assert.Equal(t, workflow.ID, session.WorkflowID)
	require.NotNil(t, session.Graph)
	assert.Len(t, session.Graph.Nodes, 7)

	api.problem(t, http.MethodPost, "/workflows/missing/sessions", nil, http.StatusNotFound)

	p := api.problem(t, http.MethodPost, "/workflows/"+workflow.ID+"/nodes/start-1/evaluate", web.EvaluateConditionRequest{
		Record: map[string]any{"estimated_cost": 10},
	}, http.StatusBadRequest)
	assert.Contains(t, p.Detail, "not a condition")
}

func TestAPIHandlers_Palette(t *testing.T) {
	api := setupTestApp(t)

	var palette struct {
		NodeTypes []web.NodeTypeResponse `json:"node_types"`
	}

	api.doJSON(t, http.MethodGet, "/node-types", nil, http.StatusOK, &palette)
	require.Len(t, palette.NodeTypes, len(models.NodeTypes))
	assert.Equal(t, models.NodeTypeStart, palette.NodeTypes[0].Type)
	assert.Equal(t, "object", palette.NodeTypes[0].Schema["type"])

	var catalog struct {
		Entities []struct {
			Name string `json:"name"`
		} `json:"entities"`
	}

	api.doJSON(t, http.MethodGet, "/catalog", nil, http.StatusOK, &catalog)
	require.NotEmpty(t, catalog.Entities)
	assert.Equal(t, "courses", catalog.Entities[0].Name)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	api := setupTestApp(t)

	var health map[string]any

	api.doJSON(t, http.MethodGet, "/health", nil, http.StatusOK, &health)
	assert.Equal(t, "healthy", health["status"])
	assert.Contains(t, health, "checkers")
}
