// Package protocol defines the contracts node type factories implement.
package protocol

import (
	"github.com/dukex/trainflow/pkg/models"
)

// NodeFactory describes one node type of the editor palette.
type NodeFactory interface {
	// ID returns the node type this factory describes
	ID() models.NodeType

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// DefaultLabel returns the label given to freshly added nodes
	DefaultLabel() string

	// Schema returns the JSON schema of the node's flattened data payload
	Schema() map[string]any

	// References returns the catalog entities and fields the configuration binds to
	References(config models.NodeConfig) []Reference
}

// Reference points from a configuration key to a catalog entity or one of its fields.
// An empty Field references the entity itself.
type Reference struct {
	Path   string
	Entity string
	Field  string
}

// DataSchema wraps type-specific properties into the schema of a node data
// payload, adding the label and description every node carries.
func DataSchema(properties map[string]any, definitions map[string]any) map[string]any {
	all := map[string]any{
		"label": map[string]any{
			"type":        "string",
			"description": "Label shown on the canvas",
			"maxLength":   120,
		},
		"description": map[string]any{
			"type":        "string",
			"description": "Free text shown in the node configuration form",
		},
	}

	for key, value := range properties {
		all[key] = value
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           all,
		"additionalProperties": false,
	}

	if len(definitions) > 0 {
		schema["definitions"] = definitions
	}

	return schema
}
