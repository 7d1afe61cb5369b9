// internal/rules/operators.go
package rules

import (
	"github.com/shutterbook/simulator/internal/types"
)

/*
 * Operator comparison logic.
 *
 * Implements the eight rule operators with strict, coercion-free semantics.
 *
 * Operators:
 *   - =, !=: strict equality; numbers compare across Go numeric kinds
 *   - IN, NOT_IN: membership; the rule value must be a list
 *   - >, >=, <, <=: numeric only; a non-number on either side is false
 *
 * Strict equality: a string never equals a number ("5" != 5), a bool never
 * equals a number. Lists and maps are never equal to anything, including
 * themselves, matching reference equality of decoded JSON arrays.
 *
 * Unsupported inputs return false rather than panicking. Note that NOT_IN
 * with a non-list value is false, not true: a misconfigured rule hides.
 */

// Compare applies op to the answered value and the rule's target value.
func Compare(op types.Operator, actual, target any) bool {
	switch op {
	case types.OpEq:
		return strictEqual(actual, target)
	case types.OpNeq:
		return !strictEqual(actual, target)
	case types.OpIn:
		set, ok := asList(target)
		if !ok {
			return false
		}
		return contains(set, actual)
	case types.OpNotIn:
		set, ok := asList(target)
		if !ok {
			return false
		}
		return !contains(set, actual)
	case types.OpGt:
		return compareOrdered(actual, target, func(c int) bool { return c > 0 })
	case types.OpGte:
		return compareOrdered(actual, target, func(c int) bool { return c >= 0 })
	case types.OpLt:
		return compareOrdered(actual, target, func(c int) bool { return c < 0 })
	case types.OpLte:
		return compareOrdered(actual, target, func(c int) bool { return c <= 0 })
	default:
		return false
	}
}

// strictEqual compares without coercion. Numbers of any Go kind are one type.
func strictEqual(a, b any) bool {
	na, aNum := toFloat64(a)
	nb, bNum := toFloat64(b)
	if aNum || bNum {
		return aNum && bNum && na == nb
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		// lists, maps and unknown kinds have no value equality
		return false
	}
}

// compareOrdered runs a three-way numeric comparison and hands the result to accept.
// Returns false when either side is not a number.
func compareOrdered(a, b any, accept func(int) bool) bool {
	na, okA := toFloat64(a)
	nb, okB := toFloat64(b)
	if !okA || !okB {
		return false
	}
	switch {
	case na < nb:
		return accept(-1)
	case na > nb:
		return accept(1)
	case na == nb:
		return accept(0)
	default:
		// NaN compares unordered
		return false
	}
}

// toFloat64 converts value to float64 if it's a numeric type.
// Handles float64 from JSON unmarshaling and integer kinds built in code.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// asList accepts decoded JSON arrays and the typed slices built in code.
func asList(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []float64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []int64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

// contains checks membership using strict equality.
func contains(set []any, v any) bool {
	for _, elem := range set {
		if strictEqual(v, elem) {
			return true
		}
	}
	return false
}
