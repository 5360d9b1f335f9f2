// Package graph implements the in-memory workflow graph editor: node and edge
// mutations, condition branch labeling and the readiness checklist.
package graph

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/dukex/trainflow/pkg/models"
)

// Positioner picks the canvas position of a newly added node.
type Positioner func() models.Position

// RandomPosition places nodes somewhere in the visible area of a fresh canvas.
func RandomPosition() models.Position {
	return models.Position{
		X: rand.Float64()*400 + 100, //nolint:gosec // layout only
		Y: rand.Float64()*400 + 100, //nolint:gosec // layout only
	}
}

// DuplicateOffset is how far a duplicated node is moved from its original.
var DuplicateOffset = models.Position{X: 50, Y: 50}

// Graph is the editable node/edge state of one workflow.
// Counters hold the last id suffix handed out per node type and only grow.
type Graph struct {
	Nodes    []*models.WorkflowNode  `json:"nodes"`
	Edges    []*models.WorkflowEdge  `json:"edges"`
	Counters map[models.NodeType]int `json:"counters"`

	positioner Positioner
}

// Option configures a Graph.
type Option func(*Graph)

// WithPositioner overrides the placement of added nodes.
func WithPositioner(positioner Positioner) Option {
	return func(g *Graph) {
		g.positioner = positioner
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		Nodes:    make([]*models.WorkflowNode, 0),
		Edges:    make([]*models.WorkflowEdge, 0),
		Counters: make(map[models.NodeType]int),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// FromWorkflow loads the nodes and edges of a stored workflow into an editable
// graph. Counters are seeded from the existing ids so new ids never collide.
func FromWorkflow(workflow *models.Workflow, opts ...Option) (*Graph, error) {
	err := CheckIntegrity(workflow.Nodes, workflow.Edges)
	if err != nil {
		return nil, err
	}

	g := New(opts...)

	for _, node := range workflow.Nodes {
		clone, err := node.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to copy node %s: %w", node.ID, err)
		}

		g.Nodes = append(g.Nodes, clone)
	}

	for _, edge := range workflow.Edges {
		copied := *edge
		g.Edges = append(g.Edges, &copied)
	}

	g.SeedCounters()

	return g, nil
}

// SetPositioner replaces the positioner, e.g. after the graph was decoded from JSON.
func (g *Graph) SetPositioner(positioner Positioner) {
	g.positioner = positioner
}

// SeedCounters raises every per-type counter to at least the largest numeric
// suffix already used by a node id of that type.
func (g *Graph) SeedCounters() {
	if g.Counters == nil {
		g.Counters = make(map[models.NodeType]int)
	}

	for _, node := range g.Nodes {
		prefix, suffix, found := cutLast(node.ID, "-")
		if !found || prefix != string(node.Type) {
			continue
		}

		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}

		if n > g.Counters[node.Type] {
			g.Counters[node.Type] = n
		}
	}
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *models.WorkflowNode {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id string) *models.WorkflowEdge {
	for _, edge := range g.Edges {
		if edge.ID == id {
			return edge
		}
	}

	return nil
}

// OutgoingEdges returns the edges leaving the given node.
func (g *Graph) OutgoingEdges(nodeID string) []*models.WorkflowEdge {
	edges := make([]*models.WorkflowEdge, 0)

	for _, edge := range g.Edges {
		if edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

func (g *Graph) nextNodeID(nodeType models.NodeType) string {
	if g.Counters == nil {
		g.Counters = make(map[models.NodeType]int)
	}

	for {
		g.Counters[nodeType]++

		id := fmt.Sprintf("%s-%d", nodeType, g.Counters[nodeType])
		if g.Node(id) == nil {
			return id
		}
	}
}

func (g *Graph) position() models.Position {
	if g.positioner == nil {
		return RandomPosition()
	}

	return g.positioner()
}

func edgeID(source, target string) string {
	return "e-" + source + "-" + target
}

// newEdgeID returns edgeID(source, target), suffixed when hyphenated node ids
// of another pair already produced the same id.
func (g *Graph) newEdgeID(source, target string) string {
	base := edgeID(source, target)
	id := base

	for n := 2; g.Edge(id) != nil; n++ {
		id = base + "-" + strconv.Itoa(n)
	}

	return id
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}

	return s[:i], s[i+len(sep):], true
}
