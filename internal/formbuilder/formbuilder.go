// Package formbuilder edits a shooting category's form draft step by step
// and converts a finished draft into catalog records.
//
// Every operation takes a FormBuilderData by value and returns a new one;
// the caller's draft is never modified.
package formbuilder

import (
	"fmt"

	"github.com/shutterbook/simulator/internal/types"
)

// ValidationResult collects every problem found in a draft.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Init starts an empty draft.
func Init(shopID, shootingCategoryID int64, shootingCategoryName string) types.FormBuilderData {
	return types.FormBuilderData{
		ShopID:               shopID,
		ShootingCategoryID:   shootingCategoryID,
		ShootingCategoryName: shootingCategoryName,
		Steps:                []types.FormBuilderStep{},
	}
}

// AddTriggerStep appends a trigger step. A draft may hold several.
func AddTriggerStep(data types.FormBuilderData, category types.FormBuilderCategory) types.FormBuilderData {
	return appendStep(data, types.FormBuilderStep{Type: types.StepTrigger, Category: category})
}

// AddConditionalStep appends a step gated on the answer to an earlier
// trigger category. It fails with a *types.ConfigurationError when the
// draft has no trigger step yet, or when condition.FieldID names no
// trigger category in the draft.
func AddConditionalStep(data types.FormBuilderData, category types.FormBuilderCategory, condition types.FormBuilderCondition) (types.FormBuilderData, error) {
	if !hasTrigger(data) {
		return data, &types.ConfigurationError{Reason: "at least one trigger step required before adding a conditional step"}
	}
	if !triggerCategoryExists(data, condition.FieldID) {
		return data, &types.ConfigurationError{
			Reason: fmt.Sprintf("condition field %d does not reference a trigger step", condition.FieldID),
		}
	}

	cond := condition
	return appendStep(data, types.FormBuilderStep{
		Type:      types.StepConditional,
		Category:  category,
		Condition: &cond,
	}), nil
}

// AddCommonFinalStep appends a step shown after the form has branched.
func AddCommonFinalStep(data types.FormBuilderData, category types.FormBuilderCategory) types.FormBuilderData {
	return appendStep(data, types.FormBuilderStep{Type: types.StepCommonFinal, Category: category})
}

// RemoveStep drops the step at index. An out-of-range index returns an
// unchanged copy.
func RemoveStep(data types.FormBuilderData, index int) types.FormBuilderData {
	out := data
	out.Steps = make([]types.FormBuilderStep, 0, len(data.Steps))
	for i, s := range data.Steps {
		if i != index {
			out.Steps = append(out.Steps, s)
		}
	}
	return out
}

// Validate reports every structural problem; it never stops at the first.
func Validate(data types.FormBuilderData) ValidationResult {
	result := ValidationResult{Errors: []string{}}

	if !hasTrigger(data) {
		result.Errors = append(result.Errors, "missing trigger step")
	}
	for i, s := range data.Steps {
		if len(s.Category.Items) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("category %s has no items", stepLabel(s, i)))
		}
		if s.Type != types.StepConditional {
			continue
		}
		switch {
		case s.Condition == nil:
			result.Errors = append(result.Errors, fmt.Sprintf("conditional step %s has no condition", stepLabel(s, i)))
		case !triggerCategoryExists(data, s.Condition.FieldID):
			result.Errors = append(result.Errors,
				fmt.Sprintf("conditional step %s condition references missing trigger %d", stepLabel(s, i), s.Condition.FieldID))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func appendStep(data types.FormBuilderData, step types.FormBuilderStep) types.FormBuilderData {
	out := data
	out.Steps = make([]types.FormBuilderStep, len(data.Steps), len(data.Steps)+1)
	copy(out.Steps, data.Steps)
	out.Steps = append(out.Steps, step)
	return out
}

func hasTrigger(data types.FormBuilderData) bool {
	for _, s := range data.Steps {
		if s.Type == types.StepTrigger {
			return true
		}
	}
	return false
}

func triggerCategoryExists(data types.FormBuilderData, categoryID int64) bool {
	for _, s := range data.Steps {
		if s.Type == types.StepTrigger && s.Category.ID == categoryID {
			return true
		}
	}
	return false
}

// stepLabel names a step in validation messages.
func stepLabel(s types.FormBuilderStep, index int) string {
	if s.Category.DisplayName != "" {
		return fmt.Sprintf("%q", s.Category.DisplayName)
	}
	return fmt.Sprintf("#%d", index+1)
}
