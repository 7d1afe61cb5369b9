// internal/rules/evaluate.go
package rules

import (
	"github.com/shutterbook/simulator/internal/types"
)

/*
 * Conditional rule evaluation.
 *
 * Evaluates a ConditionalRule against the customer's in-progress FormValues.
 *
 * Evaluation flow:
 *   1. Pick the group: AND if the key is present (even empty), else OR, else false
 *   2. AND group: empty is vacuously true; otherwise every clause must hold
 *   3. OR group: empty is false; otherwise one clause must hold
 *   4. Clause: nested group recurses as an AND group, item goes to EvaluateItem
 *   5. Item: absent field is false for every operator, then Compare
 *
 * Fail closed: no input shape produces a panic or an error. Anything the
 * evaluator does not understand is false, which hides the gated section.
 *
 * Short-circuit semantics: AND stops at the first false clause, OR at the
 * first true clause. Evaluation order is the declared order.
 */

// Evaluate reports whether rule is satisfied by values.
// A nil rule, or a rule with neither key, is never satisfied.
func Evaluate(rule *types.ConditionalRule, values types.FormValues) bool {
	if rule == nil {
		return false
	}
	if rule.And != nil {
		return evaluateAll(rule.And, values)
	}
	if rule.Or != nil {
		return evaluateAny(rule.Or, values)
	}
	return false
}

// evaluateAll is the AND group: every clause must hold, empty holds.
func evaluateAll(clauses []types.Clause, values types.FormValues) bool {
	for _, c := range clauses {
		if !evaluateClause(c, values) {
			return false
		}
	}
	return true
}

// evaluateAny is the OR group: one clause must hold, empty never holds.
func evaluateAny(clauses []types.Clause, values types.FormValues) bool {
	for _, c := range clauses {
		if evaluateClause(c, values) {
			return true
		}
	}
	return false
}

// evaluateClause dispatches a clause to its group or item evaluation.
// A clause with neither side set is malformed and evaluates false.
func evaluateClause(c types.Clause, values types.FormValues) bool {
	switch {
	case c.Group != nil:
		for _, item := range c.Group.Conditions {
			if !EvaluateItem(item, values) {
				return false
			}
		}
		return true
	case c.Item != nil:
		return EvaluateItem(*c.Item, values)
	default:
		return false
	}
}

// EvaluateItem checks a single comparison against values.
// Missing data never satisfies a condition, regardless of operator.
func EvaluateItem(item types.ConditionItem, values types.FormValues) bool {
	actual, ok := values[item.Field]
	if !ok {
		return false
	}
	return Compare(item.Operator, actual, item.Value)
}
