// Package approval provides the approval node factory for registry integration.
package approval

import (
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/protocol"
)

// ApprovalNodeFactory describes approval nodes.
type ApprovalNodeFactory struct{}

// NewApprovalNodeFactory creates a new factory instance.
func NewApprovalNodeFactory() protocol.NodeFactory {
	return &ApprovalNodeFactory{}
}

// ID returns the factory ID.
func (f *ApprovalNodeFactory) ID() models.NodeType {
	return models.NodeTypeApproval
}

// Name returns the factory name.
func (f *ApprovalNodeFactory) Name() string {
	return "Approval"
}

// Description returns the factory description.
func (f *ApprovalNodeFactory) Description() string {
	return "Waits for a user with the given role to approve or reject, and records the decision in an entity field"
}

// DefaultLabel returns the label of new approval nodes.
func (f *ApprovalNodeFactory) DefaultLabel() string {
	return models.DefaultLabel(models.NodeTypeApproval)
}

// Schema returns the JSON schema for approval node data.
func (f *ApprovalNodeFactory) Schema() map[string]any {
	return protocol.DataSchema(map[string]any{
		"approverRole": map[string]any{
			"type":        "string",
			"description": "Role of the users allowed to decide",
			"minLength":   1,
			"examples":    []string{"manager", "hr", "admin"},
		},
		"entityType": map[string]any{
			"type":        "string",
			"description": "Catalog entity the approval applies to",
			"examples":    []string{"training_requests", "costs"},
		},
		"entityField": map[string]any{
			"type":        "string",
			"description": "Field of the entity that stores the decision",
			"examples":    []string{"manager_approval", "hr_approval"},
		},
	}, nil)
}

// References returns the entity and decision field the approval binds to.
func (f *ApprovalNodeFactory) References(config models.NodeConfig) []protocol.Reference {
	approval, ok := config.(*models.ApprovalConfig)
	if !ok {
		return nil
	}

	refs := make([]protocol.Reference, 0, 2)

	if approval.EntityType != "" {
		refs = append(refs, protocol.Reference{Path: "entityType", Entity: approval.EntityType})
	}

	if approval.EntityField != "" {
		refs = append(refs, protocol.Reference{
			Path:   "entityField",
			Entity: approval.EntityType,
			Field:  approval.EntityField,
		})
	}

	return refs
}
