package graph

import (
	"errors"
	"fmt"
)

// Rule violations reported by graph mutations. A rejected mutation never changes the graph.
var (
	ErrNodeNotFound         = errors.New("node not found")
	ErrEdgeNotFound         = errors.New("edge not found")
	ErrSelfLoop             = errors.New("a node cannot connect to itself")
	ErrEdgeExists           = errors.New("nodes are already connected")
	ErrStartHasNoInputs     = errors.New("start node cannot have incoming edges")
	ErrEndHasNoOutputs      = errors.New("end node cannot have outgoing edges")
	ErrConditionBranchLimit = errors.New("condition node can only have two outgoing edges (True and False)")
	ErrInvalidBranchLabel   = errors.New("condition branch label must be True or False")
	ErrBranchLabelTaken     = errors.New("condition branch label is already used")
	ErrLabelNotAllowed      = errors.New("only edges leaving a condition node can be labeled")
	ErrNodeTypeChange       = errors.New("node type cannot be changed")
)

// RuleError wraps a rule violation with the operation and node it concerns.
type RuleError struct {
	Op     string // Operation name (e.g. "Connect", "DeleteNode")
	NodeID string // Node the operation was applied to
	Err    error  // Underlying rule violation
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func (e *RuleError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func ruleError(op, nodeID string, err error) *RuleError {
	return &RuleError{Op: op, NodeID: nodeID, Err: err}
}

// IsRuleViolation reports whether err is a rejected graph mutation.
func IsRuleViolation(err error) bool {
	var ruleErr *RuleError

	return errors.As(err, &ruleErr)
}
