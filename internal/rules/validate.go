// internal/rules/validate.go
package rules

import (
	"fmt"

	"github.com/shutterbook/simulator/internal/types"
)

/*
 * Rule validation for admin-time saves.
 *
 * Validate checks a rule before it is stored so misconfigurations surface to
 * the administrator instead of silently hiding a section from customers.
 * Evaluate never calls Validate; a rule that fails validation still
 * evaluates (fail closed) if it reaches the evaluator some other way.
 *
 * Checks, in order:
 *   1. Both AND and OR present -> ErrAmbiguousRule
 *   2. Per condition: field present and bounded, operator known
 *   3. IN / NOT_IN: value is a list of at most MaxInOperatorValues entries
 *   4. >, >=, <, <=: value is numeric
 *
 * Errors carry the clause position ("OR[1].AND[0]") so the admin UI can point
 * at the offending condition.
 */

// Validate returns the first structural problem in rule, or nil.
// A nil rule is valid: it means the section is not gated.
func Validate(rule *types.ConditionalRule) error {
	if rule == nil {
		return nil
	}
	if rule.And != nil && rule.Or != nil {
		return types.ErrAmbiguousRule
	}

	key, clauses := "AND", rule.And
	if rule.And == nil {
		key, clauses = "OR", rule.Or
	}

	for i, c := range clauses {
		if err := validateClause(c); err != nil {
			return fmt.Errorf("%s[%d]%w", key, i, err)
		}
	}
	return nil
}

// validateClause checks a single clause; group members get their own index.
func validateClause(c types.Clause) error {
	switch {
	case c.Group != nil:
		for j, item := range c.Group.Conditions {
			if err := validateItem(item); err != nil {
				return fmt.Errorf(".AND[%d]: %w", j, err)
			}
		}
		return nil
	case c.Item != nil:
		if err := validateItem(*c.Item); err != nil {
			return fmt.Errorf(": %w", err)
		}
		return nil
	default:
		return fmt.Errorf(": %w: empty clause", types.ErrInvalidRule)
	}
}

// validateItem enforces field, operator and value-shape constraints.
func validateItem(item types.ConditionItem) error {
	if item.Field == "" {
		return types.ErrEmptyField
	}
	if len(item.Field) > types.MaxFieldNameLength {
		return types.ErrFieldTooLong
	}
	if !item.Operator.Known() {
		return fmt.Errorf("%w: %q", types.ErrUnknownOperator, item.Operator)
	}

	switch item.Operator {
	case types.OpIn, types.OpNotIn:
		list, ok := asList(item.Value)
		if !ok {
			return types.ErrInValuesNotArray
		}
		if len(list) > types.MaxInOperatorValues {
			return types.ErrTooManyInValues
		}
	case types.OpGt, types.OpGte, types.OpLt, types.OpLte:
		if _, ok := toFloat64(item.Value); !ok {
			return types.ErrNonNumericOperand
		}
	}
	return nil
}
