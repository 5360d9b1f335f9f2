// Package models defines the typed node variants of a workflow graph.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// NodeType identifies the closed set of node variants a workflow graph may contain.
type NodeType string

const (
	NodeTypeStart        NodeType = "start"
	NodeTypeEnd          NodeType = "end"
	NodeTypeApproval     NodeType = "approval"
	NodeTypeCondition    NodeType = "condition"
	NodeTypeNotification NodeType = "notification"
	NodeTypeAction       NodeType = "action"
)

// NodeTypes lists every node type in palette order.
var NodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypeApproval,
	NodeTypeCondition,
	NodeTypeNotification,
	NodeTypeAction,
	NodeTypeEnd,
}

// ErrUnknownNodeType is returned when a node type is outside the closed variant set.
var ErrUnknownNodeType = errors.New("unknown node type")

// IsValid reports whether the node type is part of the variant set.
func (t NodeType) IsValid() bool {
	return slices.Contains(NodeTypes, t)
}

// FallbackLabel is the label given to nodes of a type without a default label.
const FallbackLabel = "New Node"

var defaultLabels = map[NodeType]string{
	NodeTypeStart:        "Start",
	NodeTypeEnd:          "End",
	NodeTypeApproval:     "Approval",
	NodeTypeCondition:    "Condition",
	NodeTypeNotification: "Notification",
	NodeTypeAction:       "Action",
}

// DefaultLabel returns the label a freshly added node of the given type gets.
func DefaultLabel(nodeType NodeType) string {
	if label, ok := defaultLabels[nodeType]; ok {
		return label
	}

	return FallbackLabel
}

// Position is the location of a node on the editor canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeConfig is the type-specific part of a node's data payload.
type NodeConfig interface {
	NodeType() NodeType
}

// StartConfig configures the single entry point of a workflow.
type StartConfig struct{}

func (StartConfig) NodeType() NodeType { return NodeTypeStart }

// EndConfig configures a terminal node.
type EndConfig struct{}

func (EndConfig) NodeType() NodeType { return NodeTypeEnd }

// ApprovalConfig routes the entity to a role for approval and records the
// decision in an entity field.
type ApprovalConfig struct {
	ApproverRole string `json:"approverRole,omitempty"`
	EntityType   string `json:"entityType,omitempty"`
	EntityField  string `json:"entityField,omitempty"`
}

func (ApprovalConfig) NodeType() NodeType { return NodeTypeApproval }

// ConditionConfig holds either a single rule or a rule group.
// When RuleGroup is set it takes precedence over the single rule.
type ConditionConfig struct {
	EntityType string     `json:"entityType,omitempty"`
	Field      string     `json:"field,omitempty"`
	Operator   string     `json:"operator,omitempty"`
	Value      any        `json:"value,omitempty"`
	RuleGroup  *RuleGroup `json:"ruleGroup,omitempty"`
}

func (ConditionConfig) NodeType() NodeType { return NodeTypeCondition }

// Combinators for rule groups.
const (
	CombinatorAnd = "and"
	CombinatorOr  = "or"
)

// RuleGroup combines rules and nested groups with a single combinator.
type RuleGroup struct {
	Combinator string      `json:"combinator"`
	Rules      []Rule      `json:"rules,omitempty"`
	Groups     []RuleGroup `json:"groups,omitempty"`
}

// Rule compares one entity field against a value.
type Rule struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

// ActionType enumerates what an action node does to the bound entity.
type ActionType string

const (
	ActionTypeUpdateEntity ActionType = "update_entity"
	ActionTypeCreateEntity ActionType = "create_entity"
	ActionTypeCallFunction ActionType = "call_function"
)

// FieldUpdate assigns a value to an entity field.
type FieldUpdate struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// ActionConfig configures a data mutation or a remote function call.
type ActionConfig struct {
	ActionType   ActionType    `json:"actionType,omitempty"`
	EntityType   string        `json:"entityType,omitempty"`
	Updates      []FieldUpdate `json:"updates,omitempty"`
	FunctionName string        `json:"functionName,omitempty"`
}

func (ActionConfig) NodeType() NodeType { return NodeTypeAction }

// NotificationConfig configures a message sent when the node is reached.
type NotificationConfig struct {
	Recipients []string `json:"recipients,omitempty"`
	Subject    string   `json:"subject,omitempty"`
	Template   string   `json:"template,omitempty"`
}

func (NotificationConfig) NodeType() NodeType { return NodeTypeNotification }

// NewNodeConfig returns an empty configuration for the given node type.
func NewNodeConfig(nodeType NodeType) (NodeConfig, error) {
	switch nodeType {
	case NodeTypeStart:
		return &StartConfig{}, nil
	case NodeTypeEnd:
		return &EndConfig{}, nil
	case NodeTypeApproval:
		return &ApprovalConfig{}, nil
	case NodeTypeCondition:
		return &ConditionConfig{}, nil
	case NodeTypeNotification:
		return &NotificationConfig{}, nil
	case NodeTypeAction:
		return &ActionConfig{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, nodeType)
	}
}

// NodeData is the data payload of a node: the common label and description plus
// the variant selected by the node type.
type NodeData struct {
	Label       string
	Description string
	Config      NodeConfig
}

// WorkflowNode represents a node instance in a workflow graph.
type WorkflowNode struct {
	ID       string
	Type     NodeType
	Position Position
	Data     NodeData
}

type nodeHeader struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type nodeWire struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data"`
}

// MarshalJSON flattens label, description and the type-specific config into one
// data object.
func (n WorkflowNode) MarshalJSON() ([]byte, error) {
	data, err := n.DataMap()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal node %s data: %w", n.ID, err)
	}

	return json.Marshal(nodeWire{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data:     raw,
	})
}

// UnmarshalJSON decodes the data object into the variant named by the node type.
func (n *WorkflowNode) UnmarshalJSON(body []byte) error {
	var wire nodeWire

	err := json.Unmarshal(body, &wire)
	if err != nil {
		return err
	}

	data, err := decodeNodeData(wire.Type, wire.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", wire.ID, err)
	}

	n.ID = wire.ID
	n.Type = wire.Type
	n.Position = wire.Position
	n.Data = data

	return nil
}

// DataMap returns the flattened data payload as a generic map.
func (n *WorkflowNode) DataMap() (map[string]any, error) {
	data := make(map[string]any)

	if n.Data.Config != nil {
		raw, err := json.Marshal(n.Data.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal node %s config: %w", n.ID, err)
		}

		err = json.Unmarshal(raw, &data)
		if err != nil {
			return nil, fmt.Errorf("failed to flatten node %s config: %w", n.ID, err)
		}
	}

	data["label"] = n.Data.Label
	if n.Data.Description != "" {
		data["description"] = n.Data.Description
	}

	return data, nil
}

// DecodeNodeData builds a typed data payload from a generic map.
func DecodeNodeData(nodeType NodeType, data map[string]any) (NodeData, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return NodeData{}, fmt.Errorf("failed to marshal node data: %w", err)
	}

	return decodeNodeData(nodeType, raw)
}

func decodeNodeData(nodeType NodeType, raw json.RawMessage) (NodeData, error) {
	config, err := NewNodeConfig(nodeType)
	if err != nil {
		return NodeData{}, err
	}

	if len(raw) == 0 || string(raw) == "null" {
		return NodeData{Config: config}, nil
	}

	var header nodeHeader

	err = json.Unmarshal(raw, &header)
	if err != nil {
		return NodeData{}, fmt.Errorf("invalid node data: %w", err)
	}

	err = json.Unmarshal(raw, config)
	if err != nil {
		return NodeData{}, fmt.Errorf("invalid %s node configuration: %w", nodeType, err)
	}

	return NodeData{
		Label:       header.Label,
		Description: header.Description,
		Config:      config,
	}, nil
}

// Clone returns a deep copy of the node.
func (n *WorkflowNode) Clone() (*WorkflowNode, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}

	var clone WorkflowNode

	err = json.Unmarshal(body, &clone)
	if err != nil {
		return nil, err
	}

	return &clone, nil
}
