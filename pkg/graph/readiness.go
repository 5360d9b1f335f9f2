package graph

import (
	"strings"

	"github.com/dukex/trainflow/pkg/models"
)

// Readiness is the checklist that gates saving a workflow graph.
type Readiness struct {
	HasOneStart       bool `json:"has_one_start"`
	HasEnd            bool `json:"has_end"`
	ConditionLabelsOK bool `json:"condition_labels_ok"`

	StartCount int `json:"start_count"`
	EndCount   int `json:"end_count"`
	// InvalidConditions lists condition nodes whose outgoing edges break the branch rules.
	InvalidConditions []string `json:"invalid_conditions,omitempty"`
}

// Ready reports whether every structural predicate holds.
func (r Readiness) Ready() bool {
	return r.HasOneStart && r.HasEnd && r.ConditionLabelsOK
}

// Check computes the readiness checklist of a set of nodes and edges.
func Check(nodes []*models.WorkflowNode, edges []*models.WorkflowEdge) Readiness {
	readiness := Readiness{ConditionLabelsOK: true}

	outgoing := make(map[string][]*models.WorkflowEdge)
	for _, edge := range edges {
		outgoing[edge.Source] = append(outgoing[edge.Source], edge)
	}

	for _, node := range nodes {
		switch node.Type {
		case models.NodeTypeStart:
			readiness.StartCount++
		case models.NodeTypeEnd:
			readiness.EndCount++
		case models.NodeTypeCondition:
			if !conditionLabelsOK(outgoing[node.ID]) {
				readiness.ConditionLabelsOK = false
				readiness.InvalidConditions = append(readiness.InvalidConditions, node.ID)
			}
		}
	}

	readiness.HasOneStart = readiness.StartCount == 1
	readiness.HasEnd = readiness.EndCount > 0

	return readiness
}

// conditionLabelsOK accepts zero or one outgoing edge, or exactly two edges
// labeled True and False.
func conditionLabelsOK(edges []*models.WorkflowEdge) bool {
	switch len(edges) {
	case 0, 1:
		return true
	case 2:
		first, second := edges[0].Label, edges[1].Label

		return (first == models.EdgeLabelTrue && second == models.EdgeLabelFalse) ||
			(first == models.EdgeLabelFalse && second == models.EdgeLabelTrue)
	default:
		return false
	}
}

// CanSave reports whether a workflow with this name and graph may be saved.
func CanSave(name string, nodes []*models.WorkflowNode, edges []*models.WorkflowEdge) bool {
	return strings.TrimSpace(name) != "" && len(nodes) > 0 && Check(nodes, edges).Ready()
}

// Readiness returns the checklist of the graph.
func (g *Graph) Readiness() Readiness {
	return Check(g.Nodes, g.Edges)
}

// CanSave reports whether the graph may be saved under the given name.
func (g *Graph) CanSave(name string) bool {
	return CanSave(name, g.Nodes, g.Edges)
}
