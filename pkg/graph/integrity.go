package graph

import (
	"errors"
	"fmt"

	"github.com/dukex/trainflow/pkg/models"
)

var ErrMalformedGraph = errors.New("malformed workflow graph")

// CheckIntegrity rejects nil entries, duplicate ids and edges to missing nodes.
// The editor never produces these but a hand-written definition can.
func CheckIntegrity(nodes []*models.WorkflowNode, edges []*models.WorkflowEdge) error {
	ids := make(map[string]bool, len(nodes))

	for i, node := range nodes {
		if node == nil || node.ID == "" {
			return fmt.Errorf("%w: node %d has no id", ErrMalformedGraph, i)
		}

		if ids[node.ID] {
			return fmt.Errorf("%w: duplicate node id %q", ErrMalformedGraph, node.ID)
		}

		ids[node.ID] = true
	}

	edgeIDs := make(map[string]bool, len(edges))

	for i, edge := range edges {
		if edge == nil {
			return fmt.Errorf("%w: edge %d is empty", ErrMalformedGraph, i)
		}

		if !ids[edge.Source] || !ids[edge.Target] {
			return fmt.Errorf("%w: edge %q connects unknown nodes %q -> %q", ErrMalformedGraph, edge.ID, edge.Source, edge.Target)
		}

		if edgeIDs[edge.ID] {
			return fmt.Errorf("%w: duplicate edge id %q", ErrMalformedGraph, edge.ID)
		}

		edgeIDs[edge.ID] = true
	}

	return nil
}
