// internal/types/rules.go
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

/*
 * Domain types for conditional visibility rules.
 *
 * A rule is an AND list or an OR list of clauses. A clause is either a single
 * comparison (ConditionItem) or a nested AND group of comparisons. Nesting
 * stops there: an AndGroup holds ConditionItems only, so a third level cannot
 * be expressed.
 *
 * Key presence is significant. A nil And/Or slice means the key is absent;
 * a non-nil empty slice means the key is present with no clauses. JSON
 * encoding preserves the distinction in both directions.
 *
 * Evaluation lives in internal/rules.
 */

// Operator is a comparison operator in a ConditionItem.
type Operator string

const (
	OpEq    Operator = "="
	OpNeq   Operator = "!="
	OpIn    Operator = "IN"
	OpNotIn Operator = "NOT_IN"
	OpGt    Operator = ">"
	OpGte   Operator = ">="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
)

// Known reports whether op is one of the eight supported operators.
func (op Operator) Known() bool {
	switch op {
	case OpEq, OpNeq, OpIn, OpNotIn, OpGt, OpGte, OpLt, OpLte:
		return true
	default:
		return false
	}
}

// ConditionItem compares one form field against a value.
type ConditionItem struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// AndGroup is a nested AND of comparisons, valid only as a Clause.
type AndGroup struct {
	Conditions []ConditionItem
}

// Clause is exactly one of Item or Group.
type Clause struct {
	Item  *ConditionItem
	Group *AndGroup
}

// Cond builds an item clause.
func Cond(field string, op Operator, value any) Clause {
	return Clause{Item: &ConditionItem{Field: field, Operator: op, Value: value}}
}

// All builds a nested AND group clause.
func All(items ...ConditionItem) Clause {
	if items == nil {
		items = []ConditionItem{}
	}
	return Clause{Group: &AndGroup{Conditions: items}}
}

// ConditionalRule gates a conditional section.
// When both And and Or are non-nil, And wins and Or is ignored.
type ConditionalRule struct {
	And []Clause
	Or  []Clause
}

// MatchAll returns a rule with an AND key holding clauses.
func MatchAll(clauses ...Clause) *ConditionalRule {
	if clauses == nil {
		clauses = []Clause{}
	}
	return &ConditionalRule{And: clauses}
}

// MatchAny returns a rule with an OR key holding clauses.
func MatchAny(clauses ...Clause) *ConditionalRule {
	if clauses == nil {
		clauses = []Clause{}
	}
	return &ConditionalRule{Or: clauses}
}

type andGroupJSON struct {
	And []ConditionItem `json:"AND"`
}

// MarshalJSON encodes a group as {"AND":[...]} and an item as a plain object.
func (c Clause) MarshalJSON() ([]byte, error) {
	switch {
	case c.Group != nil:
		conds := c.Group.Conditions
		if conds == nil {
			conds = []ConditionItem{}
		}
		return json.Marshal(andGroupJSON{And: conds})
	case c.Item != nil:
		return json.Marshal(c.Item)
	default:
		return nil, fmt.Errorf("%w: empty clause", ErrInvalidRule)
	}
}

// UnmarshalJSON decodes an object with an AND key as a group, anything else as an item.
func (c *Clause) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: clause must be an object: %v", ErrInvalidRule, err)
	}

	if raw, ok := probe["AND"]; ok {
		var conds []ConditionItem
		if err := decodeNumbers(raw, &conds); err != nil {
			return fmt.Errorf("%w: nested AND must list conditions: %v", ErrInvalidRule, err)
		}
		if conds == nil {
			conds = []ConditionItem{}
		}
		*c = Clause{Group: &AndGroup{Conditions: conds}}
		return nil
	}

	var item ConditionItem
	if err := decodeNumbers(data, &item); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	*c = Clause{Item: &item}
	return nil
}

type ruleJSON struct {
	And *[]Clause `json:"AND,omitempty"`
	Or  *[]Clause `json:"OR,omitempty"`
}

// MarshalJSON writes a key only when the corresponding slice is non-nil.
func (r ConditionalRule) MarshalJSON() ([]byte, error) {
	var out ruleJSON
	if r.And != nil {
		and := r.And
		out.And = &and
	}
	if r.Or != nil {
		or := r.Or
		out.Or = &or
	}
	return json.Marshal(out)
}

// UnmarshalJSON keeps "key present but empty" as a non-nil empty slice.
func (r *ConditionalRule) UnmarshalJSON(data []byte) error {
	var in ruleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	*r = ConditionalRule{}
	if in.And != nil {
		r.And = *in.And
		if r.And == nil {
			r.And = []Clause{}
		}
	}
	if in.Or != nil {
		r.Or = *in.Or
		if r.Or == nil {
			r.Or = []Clause{}
		}
	}
	return nil
}

// ParseRule decodes a stored conditional_rule column.
// Empty input and JSON null both mean "no rule configured".
func ParseRule(data []byte) (*ConditionalRule, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var rule ConditionalRule
	if err := json.Unmarshal(trimmed, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// decodeNumbers unmarshals data and normalizes condition values so every
// numeric value has one Go representation.
func decodeNumbers(data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return err
	}
	switch d := dest.(type) {
	case *ConditionItem:
		d.Value = NormalizeValue(d.Value)
	case *[]ConditionItem:
		for i := range *d {
			(*d)[i].Value = NormalizeValue((*d)[i].Value)
		}
	}
	return nil
}

// NormalizeValue converts integer Go kinds to float64 recursively through
// slices so values decoded from JSON and values built in code compare alike.
func NormalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = NormalizeValue(e)
		}
		return out
	default:
		return v
	}
}
