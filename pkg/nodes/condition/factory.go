// Package condition provides the condition node factory for registry integration.
package condition

import (
	"fmt"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/protocol"
)

// ConditionNodeFactory describes condition nodes.
type ConditionNodeFactory struct{}

// NewConditionNodeFactory creates a new factory instance.
func NewConditionNodeFactory() protocol.NodeFactory {
	return &ConditionNodeFactory{}
}

// ID returns the factory ID.
func (f *ConditionNodeFactory) ID() models.NodeType {
	return models.NodeTypeCondition
}

// Name returns the factory name.
func (f *ConditionNodeFactory) Name() string {
	return "Condition"
}

// Description returns the factory description.
func (f *ConditionNodeFactory) Description() string {
	return "Evaluates a rule or rule group against the entity and continues on the True or False branch"
}

// DefaultLabel returns the label of new condition nodes.
func (f *ConditionNodeFactory) DefaultLabel() string {
	return models.DefaultLabel(models.NodeTypeCondition)
}

// Schema returns the JSON schema for condition node data.
func (f *ConditionNodeFactory) Schema() map[string]any {
	operator := map[string]any{
		"type":        "string",
		"description": "Comparison applied to the field value",
		"enum":        models.ConditionOperators,
	}

	return protocol.DataSchema(map[string]any{
		"entityType": map[string]any{
			"type":        "string",
			"description": "Catalog entity the condition reads",
			"examples":    []string{"training_requests", "evaluations"},
		},
		"field": map[string]any{
			"type":        "string",
			"description": "Entity field compared by the single rule",
			"examples":    []string{"estimated_cost", "score"},
		},
		"operator": operator,
		"value": map[string]any{
			"description": "Value the field is compared with. Ignored by is_empty and is_not_empty.",
			"examples":    []any{1000, "high", []string{"manager", "hr"}},
		},
		"ruleGroup": map[string]any{
			"$ref": "#/definitions/ruleGroup",
		},
	}, map[string]any{
		"rule": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"field":    map[string]any{"type": "string", "minLength": 1},
				"operator": operator,
				"value":    map[string]any{},
			},
			"required":             []string{"field", "operator"},
			"additionalProperties": false,
		},
		"ruleGroup": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"combinator": map[string]any{
					"type": "string",
					"enum": []string{models.CombinatorAnd, models.CombinatorOr},
				},
				"rules": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/definitions/rule"},
				},
				"groups": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/definitions/ruleGroup"},
				},
			},
			"required":             []string{"combinator"},
			"additionalProperties": false,
		},
	})
}

// References returns the entity and every field read by the rule or rule group.
func (f *ConditionNodeFactory) References(config models.NodeConfig) []protocol.Reference {
	condition, ok := config.(*models.ConditionConfig)
	if !ok {
		return nil
	}

	refs := make([]protocol.Reference, 0)

	if condition.EntityType != "" {
		refs = append(refs, protocol.Reference{Path: "entityType", Entity: condition.EntityType})
	}

	if condition.Field != "" {
		refs = append(refs, protocol.Reference{Path: "field", Entity: condition.EntityType, Field: condition.Field})
	}

	if condition.RuleGroup != nil {
		refs = appendGroupReferences(refs, "ruleGroup", condition.EntityType, *condition.RuleGroup)
	}

	return refs
}

func appendGroupReferences(refs []protocol.Reference, path, entity string, group models.RuleGroup) []protocol.Reference {
	for i, rule := range group.Rules {
		refs = append(refs, protocol.Reference{
			Path:   fmt.Sprintf("%s.rules[%d].field", path, i),
			Entity: entity,
			Field:  rule.Field,
		})
	}

	for i, nested := range group.Groups {
		refs = appendGroupReferences(refs, fmt.Sprintf("%s.groups[%d]", path, i), entity, nested)
	}

	return refs
}
