// Package terminal provides the start and end node factories for registry integration.
package terminal

import (
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/protocol"
)

// StartNodeFactory describes the single entry node of a workflow.
type StartNodeFactory struct{}

// NewStartNodeFactory creates a new factory instance.
func NewStartNodeFactory() protocol.NodeFactory {
	return &StartNodeFactory{}
}

// ID returns the factory ID.
func (f *StartNodeFactory) ID() models.NodeType {
	return models.NodeTypeStart
}

// Name returns the factory name.
func (f *StartNodeFactory) Name() string {
	return "Start"
}

// Description returns the factory description.
func (f *StartNodeFactory) Description() string {
	return "Entry point of the workflow. Every workflow has exactly one."
}

// DefaultLabel returns the label of new start nodes.
func (f *StartNodeFactory) DefaultLabel() string {
	return models.DefaultLabel(models.NodeTypeStart)
}

// Schema returns the JSON schema for start node data.
func (f *StartNodeFactory) Schema() map[string]any {
	return protocol.DataSchema(nil, nil)
}

// References returns nothing.
func (f *StartNodeFactory) References(models.NodeConfig) []protocol.Reference {
	return nil
}

// EndNodeFactory describes a terminal node.
type EndNodeFactory struct{}

// NewEndNodeFactory creates a new factory instance.
func NewEndNodeFactory() protocol.NodeFactory {
	return &EndNodeFactory{}
}

// ID returns the factory ID.
func (f *EndNodeFactory) ID() models.NodeType {
	return models.NodeTypeEnd
}

// Name returns the factory name.
func (f *EndNodeFactory) Name() string {
	return "End"
}

// Description returns the factory description.
func (f *EndNodeFactory) Description() string {
	return "Terminates the workflow. A workflow needs at least one."
}

// DefaultLabel returns the label of new end nodes.
func (f *EndNodeFactory) DefaultLabel() string {
	return models.DefaultLabel(models.NodeTypeEnd)
}

// Schema returns the JSON schema for end node data.
func (f *EndNodeFactory) Schema() map[string]any {
	return protocol.DataSchema(nil, nil)
}

// References returns nothing.
func (f *EndNodeFactory) References(models.NodeConfig) []protocol.Reference {
	return nil
}
