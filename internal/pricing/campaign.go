package pricing

import (
	"math"
	"time"

	"github.com/shutterbook/simulator/internal/types"
)

// CampaignResult is a subtotal with at most one campaign discount applied.
// Total is tax-excluded: Subtotal - Discount.
type CampaignResult struct {
	Subtotal        int64           `json:"subtotal"`
	Discount        int64           `json:"discount"`
	Total           int64           `json:"total"`
	AppliedCampaign *types.Campaign `json:"applied_campaign,omitempty"`
}

// FindApplicable returns the first campaign, in iteration order, that is
// active, running on now's calendar date, and associated with at least one
// selected item. Dates compare in now's location; pass now.In(shopLocation).
func FindApplicable(selected []types.Item, campaigns []types.Campaign, now time.Time) *types.Campaign {
	today := civilDate(now, now.Location())
	for i := range campaigns {
		c := &campaigns[i]
		if !c.IsActive {
			continue
		}
		if today < civilDate(c.StartDate, now.Location()) || today > civilDate(c.EndDate, now.Location()) {
			continue
		}
		if matchesAny(c.Associations, selected) {
			found := *c
			return &found
		}
	}
	return nil
}

// CalculateDiscount applies the first applicable campaign to the selection's
// subtotal. Fixed discounts are not clamped; a discount larger than the
// subtotal yields a negative Total.
func CalculateDiscount(selected []types.Item, campaigns []types.Campaign, now time.Time) CampaignResult {
	result := CampaignResult{Subtotal: Subtotal(selected)}
	result.Total = result.Subtotal

	campaign := FindApplicable(selected, campaigns, now)
	if campaign == nil {
		return result
	}

	result.AppliedCampaign = campaign
	result.Discount = discountFor(*campaign, result.Subtotal)
	result.Total = result.Subtotal - result.Discount
	return result
}

func discountFor(c types.Campaign, subtotal int64) int64 {
	switch c.DiscountType {
	case types.DiscountTypePercentage:
		return int64(math.Floor(float64(subtotal) * c.DiscountValue / 100))
	case types.DiscountTypeFixed:
		return int64(c.DiscountValue)
	default:
		return 0
	}
}

func matchesAny(a types.CampaignAssociations, selected []types.Item) bool {
	for _, item := range selected {
		if containsID(a.ItemIDs, item.ID) ||
			containsID(a.ProductCategoryIDs, item.ProductCategoryID) ||
			containsID(a.ShootingCategoryIDs, item.ShootingCategoryID) {
			return true
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// civilDate packs t's calendar date in loc as yyyymmdd for ordering.
func civilDate(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return y*10000 + int(m)*100 + d
}
