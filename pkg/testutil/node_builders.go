// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a node of the given type with its default label and an
// empty configuration, which can be overridden.
func CreateTestNode(id string, nodeType models.NodeType, overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	config, err := models.NewNodeConfig(nodeType)
	if err != nil {
		panic(err)
	}

	node := &models.WorkflowNode{
		ID:       id,
		Type:     nodeType,
		Position: models.Position{X: 100, Y: 200},
		Data: models.NodeData{
			Label:  models.DefaultLabel(nodeType),
			Config: config,
		},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithConfig sets the node configuration.
func WithConfig(config models.NodeConfig) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Data.Config = config
	}
}

// WithLabel sets the node label.
func WithLabel(label string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Data.Label = label
	}
}

// CreateTestWorkflow creates a ready-to-save training request workflow:
// start-1 -> approval-1 -> condition-1, which branches True to action-1 -> end-1
// and False to notification-1 -> end-2.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	now := time.Now().UTC().Truncate(time.Millisecond)

	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "Training request approval",
		Description: "Manager approval with a cost threshold",
		Category:    models.CategoryTrainingRequest,
		Status:      models.WorkflowStatusDraft,
		Nodes: []*models.WorkflowNode{
			CreateTestNode("start-1", models.NodeTypeStart),
			CreateTestNode("approval-1", models.NodeTypeApproval, WithConfig(&models.ApprovalConfig{
				ApproverRole: "manager",
				EntityType:   "training_requests",
				EntityField:  "manager_approval",
			})),
			CreateTestNode("condition-1", models.NodeTypeCondition, WithConfig(&models.ConditionConfig{
				EntityType: "training_requests",
				Field:      "estimated_cost",
				Operator:   models.OperatorLessThanOrEqual,
				Value:      1000.0,
			})),
			CreateTestNode("action-1", models.NodeTypeAction, WithConfig(&models.ActionConfig{
				ActionType: models.ActionTypeUpdateEntity,
				EntityType: "training_requests",
				Updates:    []models.FieldUpdate{{Field: "status", Value: "approved"}},
			})),
			CreateTestNode("notification-1", models.NodeTypeNotification, WithConfig(&models.NotificationConfig{
				Recipients: []string{"hr"},
				Subject:    "Training request needs HR review",
				Template:   "hr_review",
			})),
			CreateTestNode("end-1", models.NodeTypeEnd),
			CreateTestNode("end-2", models.NodeTypeEnd),
		},
		Edges: []*models.WorkflowEdge{
			{ID: "e-start-1-approval-1", Source: "start-1", Target: "approval-1"},
			{ID: "e-approval-1-condition-1", Source: "approval-1", Target: "condition-1"},
			{ID: "e-condition-1-action-1", Source: "condition-1", Target: "action-1", Label: models.EdgeLabelTrue},
			{ID: "e-condition-1-notification-1", Source: "condition-1", Target: "notification-1", Label: models.EdgeLabelFalse},
			{ID: "e-action-1-end-1", Source: "action-1", Target: "end-1"},
			{ID: "e-notification-1-end-2", Source: "notification-1", Target: "end-2"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithName sets the workflow name.
func WithName(name string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Name = name
	}
}

// WithStatus sets the workflow status.
func WithStatus(status models.WorkflowStatus) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Status = status
	}
}

// WithCategory sets the workflow category.
func WithCategory(category models.WorkflowCategory) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Category = category
	}
}

// WithoutEndNodes removes every end node and the edges into them.
func WithoutEndNodes() func(*models.Workflow) {
	return func(w *models.Workflow) {
		nodes := make([]*models.WorkflowNode, 0, len(w.Nodes))
		for _, node := range w.Nodes {
			if node.Type != models.NodeTypeEnd {
				nodes = append(nodes, node)
			}
		}

		edges := make([]*models.WorkflowEdge, 0, len(w.Edges))
		for _, edge := range w.Edges {
			if target := w.Node(edge.Target); target == nil || target.Type != models.NodeTypeEnd {
				edges = append(edges, edge)
			}
		}

		w.Nodes = nodes
		w.Edges = edges
	}
}
