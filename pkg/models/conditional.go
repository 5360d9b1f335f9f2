package models

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Condition operators understood by Evaluate.
const (
	OperatorEquals             = "equals"
	OperatorNotEquals          = "not_equals"
	OperatorGreaterThan        = "greater_than"
	OperatorLessThan           = "less_than"
	OperatorGreaterThanOrEqual = "greater_than_or_equal"
	OperatorLessThanOrEqual    = "less_than_or_equal"
	OperatorContains           = "contains"
	OperatorNotContains        = "not_contains"
	OperatorIsEmpty            = "is_empty"
	OperatorIsNotEmpty         = "is_not_empty"
	OperatorIn                 = "in"
)

// ConditionOperators lists every supported operator.
var ConditionOperators = []string{
	OperatorEquals,
	OperatorNotEquals,
	OperatorGreaterThan,
	OperatorLessThan,
	OperatorGreaterThanOrEqual,
	OperatorLessThanOrEqual,
	OperatorContains,
	OperatorNotContains,
	OperatorIsEmpty,
	OperatorIsNotEmpty,
	OperatorIn,
}

var (
	ErrEmptyCondition      = errors.New("condition has no rule")
	ErrUnknownOperator     = errors.New("unknown condition operator")
	ErrUnknownCombinator   = errors.New("unknown rule group combinator")
	ErrIncomparableOperand = errors.New("operands cannot be compared")
)

// Evaluate applies the condition to an entity record.
func (c *ConditionConfig) Evaluate(record map[string]any) (bool, error) {
	if c.RuleGroup != nil {
		return c.RuleGroup.Evaluate(record)
	}

	if c.Field == "" || c.Operator == "" {
		return false, ErrEmptyCondition
	}

	return Rule{Field: c.Field, Operator: c.Operator, Value: c.Value}.Evaluate(record)
}

// Evaluate applies every rule and nested group, combined with the group's combinator.
// An empty group is true.
func (g *RuleGroup) Evaluate(record map[string]any) (bool, error) {
	combinator := strings.ToLower(g.Combinator)
	if combinator == "" {
		combinator = CombinatorAnd
	}

	if combinator != CombinatorAnd && combinator != CombinatorOr {
		return false, fmt.Errorf("%w: %q", ErrUnknownCombinator, g.Combinator)
	}

	results := make([]bool, 0, len(g.Rules)+len(g.Groups))

	for _, rule := range g.Rules {
		result, err := rule.Evaluate(record)
		if err != nil {
			return false, err
		}

		results = append(results, result)
	}

	for i := range g.Groups {
		result, err := g.Groups[i].Evaluate(record)
		if err != nil {
			return false, err
		}

		results = append(results, result)
	}

	if len(results) == 0 {
		return true, nil
	}

	if combinator == CombinatorOr {
		return slices.Contains(results, true), nil
	}

	return !slices.Contains(results, false), nil
}

// Evaluate compares the record's field value with the rule's value.
func (r Rule) Evaluate(record map[string]any) (bool, error) {
	actual := record[r.Field]

	switch r.Operator {
	case OperatorEquals:
		return equalValues(actual, r.Value), nil
	case OperatorNotEquals:
		return !equalValues(actual, r.Value), nil
	case OperatorGreaterThan, OperatorLessThan, OperatorGreaterThanOrEqual, OperatorLessThanOrEqual:
		cmp, err := compareValues(actual, r.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", r.Field, err)
		}

		switch r.Operator {
		case OperatorGreaterThan:
			return cmp > 0, nil
		case OperatorLessThan:
			return cmp < 0, nil
		case OperatorGreaterThanOrEqual:
			return cmp >= 0, nil
		default:
			return cmp <= 0, nil
		}
	case OperatorContains:
		return containsValue(actual, r.Value), nil
	case OperatorNotContains:
		return !containsValue(actual, r.Value), nil
	case OperatorIsEmpty:
		return isEmpty(actual), nil
	case OperatorIsNotEmpty:
		return !isEmpty(actual), nil
	case OperatorIn:
		return containsValue(r.Value, actual), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, r.Operator)
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)

		return f, err == nil
	default:
		return 0, false
	}
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	_, aString := a.(string)
	_, bString := b.(string)

	// Numeric strings only compare numerically against real numbers.
	if !aString || !bString {
		if x, ok := toNumber(a); ok {
			if y, ok := toNumber(b); ok {
				return x == y
			}
		}
	}

	if x, ok := a.(bool); ok {
		if y, ok := b.(string); ok {
			parsed, err := strconv.ParseBool(y)

			return err == nil && parsed == x
		}
	}

	if reflect.DeepEqual(a, b) {
		return true
	}

	return fmt.Sprint(a) == fmt.Sprint(b)
}

func compareValues(a, b any) (int, error) {
	x, okA := toNumber(a)
	y, okB := toNumber(b)

	if okA && okB {
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	}

	s, okA := a.(string)
	t, okB := b.(string)

	if okA && okB {
		return strings.Compare(s, t), nil
	}

	return 0, fmt.Errorf("%w: %T and %T", ErrIncomparableOperand, a, b)
}

func containsValue(container, item any) bool {
	switch c := container.(type) {
	case string:
		if item == nil {
			return false
		}

		return strings.Contains(strings.ToLower(c), strings.ToLower(fmt.Sprint(item)))
	case []any:
		for _, element := range c {
			if equalValues(element, item) {
				return true
			}
		}
	case []string:
		for _, element := range c {
			if equalValues(element, item) {
				return true
			}
		}
	}

	return false
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
