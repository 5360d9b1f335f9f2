package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowNode_UnmarshalJSON_SelectsVariantByType(t *testing.T) {
	body := `{
		"id": "approval-1",
		"type": "approval",
		"position": {"x": 120, "y": 340},
		"data": {
			"label": "Manager approval",
			"description": "Line manager signs off",
			"approverRole": "manager",
			"entityType": "training_requests",
			"entityField": "status"
		}
	}`

	var node WorkflowNode

	err := json.Unmarshal([]byte(body), &node)
	require.NoError(t, err)

	assert.Equal(t, "approval-1", node.ID)
	assert.Equal(t, NodeTypeApproval, node.Type)
	assert.Equal(t, Position{X: 120, Y: 340}, node.Position)
	assert.Equal(t, "Manager approval", node.Data.Label)
	assert.Equal(t, "Line manager signs off", node.Data.Description)

	config, ok := node.Data.Config.(*ApprovalConfig)
	require.True(t, ok, "expected *ApprovalConfig, got %T", node.Data.Config)
	assert.Equal(t, "manager", config.ApproverRole)
	assert.Equal(t, "training_requests", config.EntityType)
	assert.Equal(t, "status", config.EntityField)
}

func TestWorkflowNode_UnmarshalJSON_UnknownType(t *testing.T) {
	var node WorkflowNode

	err := json.Unmarshal([]byte(`{"id":"loop-1","type":"loop","data":{"label":"x"}}`), &node)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestWorkflowNode_UnmarshalJSON_MissingData(t *testing.T) {
	var node WorkflowNode

	err := json.Unmarshal([]byte(`{"id":"end-1","type":"end","position":{"x":1,"y":2}}`), &node)
	require.NoError(t, err)
	assert.IsType(t, &EndConfig{}, node.Data.Config)
	assert.Empty(t, node.Data.Label)
}

func TestWorkflowNode_MarshalJSON_FlattensData(t *testing.T) {
	node := WorkflowNode{
		ID:   "notification-1",
		Type: NodeTypeNotification,
		Data: NodeData{
			Label: "Notify learner",
			Config: &NotificationConfig{
				Recipients: []string{"learner@example.com"},
				Subject:    "Request approved",
			},
		},
	}

	body, err := json.Marshal(node)
	require.NoError(t, err)

	var wire map[string]any

	require.NoError(t, json.Unmarshal(body, &wire))

	data, ok := wire["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Notify learner", data["label"])
	assert.Equal(t, "Request approved", data["subject"])
	assert.Equal(t, []any{"learner@example.com"}, data["recipients"])
	assert.NotContains(t, data, "description")
}

func TestWorkflowNode_Clone_IsDeep(t *testing.T) {
	node := &WorkflowNode{
		ID:   "action-1",
		Type: NodeTypeAction,
		Data: NodeData{
			Label: "Enroll",
			Config: &ActionConfig{
				ActionType: ActionTypeUpdateEntity,
				EntityType: "training_requests",
				Updates:    []FieldUpdate{{Field: "status", Value: "enrolled"}},
			},
		},
	}

	clone, err := node.Clone()
	require.NoError(t, err)

	clone.Data.Config.(*ActionConfig).Updates[0].Value = "cancelled"

	assert.Equal(t, "enrolled", node.Data.Config.(*ActionConfig).Updates[0].Value)
	assert.Equal(t, "cancelled", clone.Data.Config.(*ActionConfig).Updates[0].Value)
}

func TestDecodeNodeData(t *testing.T) {
	data, err := DecodeNodeData(NodeTypeCondition, map[string]any{
		"label":    "Budget check",
		"field":    "cost",
		"operator": OperatorLessThan,
		"value":    500,
	})
	require.NoError(t, err)

	config, ok := data.Config.(*ConditionConfig)
	require.True(t, ok)
	assert.Equal(t, "Budget check", data.Label)
	assert.Equal(t, "cost", config.Field)
	assert.InDelta(t, 500, config.Value, 0)

	_, err = DecodeNodeData(NodeType("loop"), map[string]any{})
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestWorkflow_OutgoingEdges(t *testing.T) {
	workflow := &Workflow{
		Edges: []*WorkflowEdge{
			{ID: "e1", Source: "condition-1", Target: "end-1", Label: EdgeLabelTrue},
			{ID: "e2", Source: "start-1", Target: "condition-1"},
			{ID: "e3", Source: "condition-1", Target: "end-2", Label: EdgeLabelFalse},
		},
	}

	edges := workflow.OutgoingEdges("condition-1")
	require.Len(t, edges, 2)
	assert.Equal(t, "e1", edges[0].ID)
	assert.Equal(t, "e3", edges[1].ID)
	assert.Empty(t, workflow.OutgoingEdges("end-1"))
}
