// Package pricing computes estimate totals and campaign discounts.
//
// All amounts are integer yen. Prices are stored tax-excluded; the
// consumption tax multiplier is applied once, at the end, with floor
// rounding.
package pricing

import (
	"math"

	"github.com/shutterbook/simulator/internal/types"
)

// TaxMultiplier is the consumption tax applied to a tax-excluded subtotal.
const TaxMultiplier = 1.10

// CalculateTotal returns the tax-included total for the selected item IDs.
// Duplicate IDs count once; IDs with no matching item are skipped.
func CalculateTotal(selectedItemIDs []int64, allItems []types.Item) int64 {
	return ApplyTax(Subtotal(SelectItems(selectedItemIDs, allItems)))
}

// SelectItems resolves IDs to items, first occurrence wins, in selection order.
func SelectItems(selectedItemIDs []int64, allItems []types.Item) []types.Item {
	byID := make(map[int64]types.Item, len(allItems))
	for _, item := range allItems {
		if _, seen := byID[item.ID]; !seen {
			byID[item.ID] = item
		}
	}

	seen := make(map[int64]struct{}, len(selectedItemIDs))
	selected := make([]types.Item, 0, len(selectedItemIDs))
	for _, id := range selectedItemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := byID[id]; ok {
			selected = append(selected, item)
		}
	}
	return selected
}

// Subtotal sums prices. Negative prices reduce the sum.
func Subtotal(items []types.Item) int64 {
	var sum int64
	for _, item := range items {
		sum += item.Price
	}
	return sum
}

// ApplyTax floors subtotal*TaxMultiplier in float64, so 999 yields 1098.
// Negative subtotals floor toward negative infinity.
func ApplyTax(subtotal int64) int64 {
	return int64(math.Floor(float64(subtotal) * TaxMultiplier))
}
