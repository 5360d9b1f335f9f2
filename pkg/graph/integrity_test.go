package graph

import (
	"testing"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIntegrity(t *testing.T) {
	start := node("start-1", models.NodeTypeStart)
	end := node("end-1", models.NodeTypeEnd)

	tests := []struct {
		name    string
		nodes   []*models.WorkflowNode
		edges   []*models.WorkflowEdge
		wantErr bool
	}{
		{
			name:  "well formed",
			nodes: []*models.WorkflowNode{start, end},
			edges: []*models.WorkflowEdge{edge("start-1", "end-1", "")},
		},
		{
			name:    "nil node",
			nodes:   []*models.WorkflowNode{start, nil},
			wantErr: true,
		},
		{
			name:    "node without id",
			nodes:   []*models.WorkflowNode{{Type: models.NodeTypeEnd}},
			wantErr: true,
		},
		{
			name:    "duplicate node id",
			nodes:   []*models.WorkflowNode{start, node("start-1", models.NodeTypeStart)},
			wantErr: true,
		},
		{
			name:    "nil edge",
			nodes:   []*models.WorkflowNode{start, end},
			edges:   []*models.WorkflowEdge{nil},
			wantErr: true,
		},
		{
			name:    "edge to a missing node",
			nodes:   []*models.WorkflowNode{start},
			edges:   []*models.WorkflowEdge{edge("start-1", "end-1", "")},
			wantErr: true,
		},
		{
			name:    "duplicate edge id",
			nodes:   []*models.WorkflowNode{start, end},
			edges:   []*models.WorkflowEdge{edge("start-1", "end-1", ""), edge("start-1", "end-1", "")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIntegrity(tt.nodes, tt.edges)
			if !tt.wantErr {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, ErrMalformedGraph)
		})
	}
}

func TestFromWorkflow_RejectsMalformedGraph(t *testing.T) {
	_, err := FromWorkflow(&models.Workflow{Nodes: []*models.WorkflowNode{nil}})
	require.ErrorIs(t, err, ErrMalformedGraph)
}

func TestGraph_Connect_HyphenatedIDsGetDistinctEdgeIDs(t *testing.T) {
	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			node("a-b", models.NodeTypeApproval),
			node("c", models.NodeTypeApproval),
			node("a", models.NodeTypeApproval),
			node("b-c", models.NodeTypeApproval),
		},
		Edges: []*models.WorkflowEdge{edge("a-b", "c", "")},
	}

	g, err := FromWorkflow(workflow, WithPositioner(fixedPosition))
	require.NoError(t, err)

	added, err := g.Connect("a", "b-c")
	require.NoError(t, err)
	assert.NotEqual(t, "e-a-b-c", added.ID)
	require.NoError(t, CheckIntegrity(g.Nodes, g.Edges))

	require.NoError(t, g.DeleteEdge(added.ID))
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "a-b", g.Edges[0].Source)
	assert.Equal(t, "c", g.Edges[0].Target)
}
