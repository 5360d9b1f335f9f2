// Package action provides the action node factory for registry integration.
package action

import (
	"fmt"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/protocol"
)

// ActionNodeFactory describes action nodes.
type ActionNodeFactory struct{}

// NewActionNodeFactory creates a new factory instance.
func NewActionNodeFactory() protocol.NodeFactory {
	return &ActionNodeFactory{}
}

// ID returns the factory ID.
func (f *ActionNodeFactory) ID() models.NodeType {
	return models.NodeTypeAction
}

// Name returns the factory name.
func (f *ActionNodeFactory) Name() string {
	return "Action"
}

// Description returns the factory description.
func (f *ActionNodeFactory) Description() string {
	return "Updates or creates an entity row, or calls a serverless function"
}

// DefaultLabel returns the label of new action nodes.
func (f *ActionNodeFactory) DefaultLabel() string {
	return models.DefaultLabel(models.NodeTypeAction)
}

// Schema returns the JSON schema for action node data.
func (f *ActionNodeFactory) Schema() map[string]any {
	return protocol.DataSchema(map[string]any{
		"actionType": map[string]any{
			"type":        "string",
			"description": "What the action does",
			"enum": []string{
				string(models.ActionTypeUpdateEntity),
				string(models.ActionTypeCreateEntity),
				string(models.ActionTypeCallFunction),
			},
		},
		"entityType": map[string]any{
			"type":        "string",
			"description": "Catalog entity that is updated or created",
			"examples":    []string{"training_requests", "training_sessions"},
		},
		"updates": map[string]any{
			"type":        "array",
			"description": "Field assignments applied to the entity",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"field": map[string]any{"type": "string", "minLength": 1},
					"value": map[string]any{},
				},
				"required":             []string{"field"},
				"additionalProperties": false,
			},
			"examples": []any{
				[]map[string]any{{"field": "status", "value": "approved"}},
			},
		},
		"functionName": map[string]any{
			"type":        "string",
			"description": "Serverless function invoked by call_function actions",
			"examples":    []string{"enroll-participant", "send-certificate"},
		},
	}, nil)
}

// References returns the entity and every updated field.
func (f *ActionNodeFactory) References(config models.NodeConfig) []protocol.Reference {
	action, ok := config.(*models.ActionConfig)
	if !ok {
		return nil
	}

	refs := make([]protocol.Reference, 0, len(action.Updates)+1)

	if action.EntityType != "" {
		refs = append(refs, protocol.Reference{Path: "entityType", Entity: action.EntityType})
	}

	for i, update := range action.Updates {
		refs = append(refs, protocol.Reference{
			Path:   fmt.Sprintf("updates[%d].field", i),
			Entity: action.EntityType,
			Field:  update.Field,
		})
	}

	return refs
}
