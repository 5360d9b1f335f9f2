package graph

import (
	"fmt"
	"slices"

	"github.com/dukex/trainflow/pkg/models"
)

// AddNode appends a node of the given type with the type's default label.
func (g *Graph) AddNode(nodeType models.NodeType) (*models.WorkflowNode, error) {
	config, err := models.NewNodeConfig(nodeType)
	if err != nil {
		return nil, ruleError("AddNode", string(nodeType), err)
	}

	node := &models.WorkflowNode{
		ID:       g.nextNodeID(nodeType),
		Type:     nodeType,
		Position: g.position(),
		Data: models.NodeData{
			Label:  models.DefaultLabel(nodeType),
			Config: config,
		},
	}

	g.Nodes = append(g.Nodes, node)

	return node, nil
}

// Connect adds an edge from source to target. Edges leaving a condition node are
// labeled True if that branch is still free, otherwise False.
func (g *Graph) Connect(sourceID, targetID string) (*models.WorkflowEdge, error) {
	return g.ConnectLabeled(sourceID, targetID, "")
}

// ConnectLabeled adds an edge with an explicit condition branch label.
// An empty label picks the branch the way Connect does.
func (g *Graph) ConnectLabeled(sourceID, targetID, label string) (*models.WorkflowEdge, error) {
	const op = "Connect"

	source := g.Node(sourceID)
	if source == nil {
		return nil, ruleError(op, sourceID, ErrNodeNotFound)
	}

	target := g.Node(targetID)
	if target == nil {
		return nil, ruleError(op, targetID, ErrNodeNotFound)
	}

	if sourceID == targetID {
		return nil, ruleError(op, sourceID, ErrSelfLoop)
	}

	if target.Type == models.NodeTypeStart {
		return nil, ruleError(op, targetID, ErrStartHasNoInputs)
	}

	if source.Type == models.NodeTypeEnd {
		return nil, ruleError(op, sourceID, ErrEndHasNoOutputs)
	}

	outgoing := g.OutgoingEdges(sourceID)

	for _, edge := range outgoing {
		if edge.Target == targetID {
			return nil, ruleError(op, sourceID, ErrEdgeExists)
		}
	}

	if source.Type != models.NodeTypeCondition {
		if label != "" {
			return nil, ruleError(op, sourceID, ErrLabelNotAllowed)
		}

		return g.appendEdge(sourceID, targetID, ""), nil
	}

	if len(outgoing) >= 2 {
		return nil, ruleError(op, sourceID, ErrConditionBranchLimit)
	}

	used := make([]string, 0, len(outgoing))
	for _, edge := range outgoing {
		used = append(used, edge.Label)
	}

	switch label {
	case "":
		label = models.EdgeLabelTrue
		if slices.Contains(used, models.EdgeLabelTrue) {
			label = models.EdgeLabelFalse
		}
	case models.EdgeLabelTrue, models.EdgeLabelFalse:
		if slices.Contains(used, label) {
			return nil, ruleError(op, sourceID, fmt.Errorf("%w: %s", ErrBranchLabelTaken, label))
		}
	default:
		return nil, ruleError(op, sourceID, fmt.Errorf("%w: %q", ErrInvalidBranchLabel, label))
	}

	return g.appendEdge(sourceID, targetID, label), nil
}

func (g *Graph) appendEdge(sourceID, targetID, label string) *models.WorkflowEdge {
	edge := &models.WorkflowEdge{
		ID:     g.newEdgeID(sourceID, targetID),
		Source: sourceID,
		Target: targetID,
		Label:  label,
	}

	g.Edges = append(g.Edges, edge)

	return edge
}

// DeleteNode removes the node and every edge that starts or ends at it.
func (g *Graph) DeleteNode(id string) error {
	index := slices.IndexFunc(g.Nodes, func(node *models.WorkflowNode) bool {
		return node.ID == id
	})
	if index < 0 {
		return ruleError("DeleteNode", id, ErrNodeNotFound)
	}

	g.Nodes = slices.Delete(g.Nodes, index, index+1)
	g.Edges = slices.DeleteFunc(g.Edges, func(edge *models.WorkflowEdge) bool {
		return edge.Source == id || edge.Target == id
	})

	return nil
}

// DeleteEdge removes a single edge.
func (g *Graph) DeleteEdge(id string) error {
	index := slices.IndexFunc(g.Edges, func(edge *models.WorkflowEdge) bool {
		return edge.ID == id
	})
	if index < 0 {
		return ruleError("DeleteEdge", id, ErrEdgeNotFound)
	}

	g.Edges = slices.Delete(g.Edges, index, index+1)

	return nil
}

// DuplicateNode copies a node's type and data under a new id, shifted by
// DuplicateOffset. Edges are not copied.
func (g *Graph) DuplicateNode(id string) (*models.WorkflowNode, error) {
	original := g.Node(id)
	if original == nil {
		return nil, ruleError("DuplicateNode", id, ErrNodeNotFound)
	}

	clone, err := original.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to copy node %s: %w", id, err)
	}

	clone.ID = g.nextNodeID(original.Type)
	clone.Position = models.Position{
		X: original.Position.X + DuplicateOffset.X,
		Y: original.Position.Y + DuplicateOffset.Y,
	}

	g.Nodes = append(g.Nodes, clone)

	return clone, nil
}

// MoveNode sets the canvas position of a node.
func (g *Graph) MoveNode(id string, position models.Position) (*models.WorkflowNode, error) {
	node := g.Node(id)
	if node == nil {
		return nil, ruleError("MoveNode", id, ErrNodeNotFound)
	}

	node.Position = position

	return node, nil
}

// UpdateNodeData merges a partial data payload into a node. Keys present in the
// patch replace the stored values, a nil value removes the key, and every other
// key is kept. The node type cannot change.
func (g *Graph) UpdateNodeData(id string, patch map[string]any) (*models.WorkflowNode, error) {
	const op = "UpdateNodeData"

	node := g.Node(id)
	if node == nil {
		return nil, ruleError(op, id, ErrNodeNotFound)
	}

	data, err := MergeNodeData(node, patch)
	if err != nil {
		return nil, ruleError(op, id, err)
	}

	node.Data = data

	return node, nil
}

// MergeNodeData computes the data a node would have after applying patch,
// without touching the node.
func MergeNodeData(node *models.WorkflowNode, patch map[string]any) (models.NodeData, error) {
	merged, err := MergedDataMap(node, patch)
	if err != nil {
		return models.NodeData{}, err
	}

	return models.DecodeNodeData(node.Type, merged)
}

// MergedDataMap returns the flattened data payload of node with patch applied.
func MergedDataMap(node *models.WorkflowNode, patch map[string]any) (map[string]any, error) {
	if patchedType, ok := patch["type"]; ok && patchedType != string(node.Type) {
		return nil, ErrNodeTypeChange
	}

	current, err := node.DataMap()
	if err != nil {
		return nil, err
	}

	for key, value := range patch {
		if key == "type" {
			continue
		}

		if value == nil {
			delete(current, key)

			continue
		}

		current[key] = value
	}

	return current, nil
}
