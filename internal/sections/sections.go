// internal/sections/sections.go
package sections

import (
	"github.com/shutterbook/simulator/internal/rules"
	"github.com/shutterbook/simulator/internal/types"
)

/*
 * Section visibility.
 *
 * Decides which product categories the customer form shows for the current
 * answers. Pure functions over catalog data; safe for concurrent use.
 *
 * Visibility by form_section:
 *   - inactive category: hidden regardless of section
 *   - trigger, common_final, none: shown
 *   - conditional: shown when it has no rule, else when the rule holds
 *   - anything else: hidden
 *
 * Display policy (Resolve): common_final sections wait until the form has
 * branched. They are released only when the form has no conditional
 * sections or at least one conditional section is visible.
 */

// Pattern classifies how a shooting category's form is laid out.
type Pattern string

const (
	// PatternTriggerGated forms ask trigger questions first and reveal
	// conditional sections from the answers.
	PatternTriggerGated Pattern = "trigger_gated"

	// PatternDirect forms show every active section without gating.
	PatternDirect Pattern = "direct"
)

// ShouldShow reports whether category is visible for values.
func ShouldShow(category types.ProductCategory, values types.FormValues) bool {
	if !category.IsActive {
		return false
	}
	switch category.FormSection {
	case types.SectionTrigger, types.SectionCommonFinal, types.SectionNone:
		return true
	case types.SectionConditional:
		if category.ConditionalRule == nil {
			return true
		}
		return rules.Evaluate(category.ConditionalRule, values)
	default:
		return false
	}
}

// FilterVisible returns the visible categories in their original order.
// The input slice is not modified.
func FilterVisible(categories []types.ProductCategory, values types.FormValues) []types.ProductCategory {
	visible := make([]types.ProductCategory, 0, len(categories))
	for _, c := range categories {
		if ShouldShow(c, values) {
			visible = append(visible, c)
		}
	}
	return visible
}

// HasTriggerSections reports whether any active category is a trigger.
func HasTriggerSections(categories []types.ProductCategory) bool {
	for _, c := range categories {
		if c.IsActive && c.FormSection == types.SectionTrigger {
			return true
		}
	}
	return false
}

// DetectPattern picks the form layout from the catalog.
func DetectPattern(categories []types.ProductCategory) Pattern {
	if HasTriggerSections(categories) {
		return PatternTriggerGated
	}
	return PatternDirect
}

// CommonFinalReleased reports whether common_final sections may be shown yet.
func CommonFinalReleased(categories []types.ProductCategory, values types.FormValues) bool {
	hasConditional := false
	for _, c := range categories {
		if !c.IsActive || c.FormSection != types.SectionConditional {
			continue
		}
		hasConditional = true
		if ShouldShow(c, values) {
			return true
		}
	}
	return !hasConditional
}

// Resolve applies FilterVisible and then holds back common_final sections
// until CommonFinalReleased allows them.
func Resolve(categories []types.ProductCategory, values types.FormValues) []types.ProductCategory {
	visible := FilterVisible(categories, values)
	if CommonFinalReleased(categories, values) {
		return visible
	}

	out := visible[:0]
	for _, c := range visible {
		if c.FormSection != types.SectionCommonFinal {
			out = append(out, c)
		}
	}
	return out
}
