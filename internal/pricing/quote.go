package pricing

import (
	"time"

	"github.com/shutterbook/simulator/internal/types"
)

// Quote is the full estimate shown to a customer.
//
// The campaign discount comes off the tax-excluded subtotal; tax is then
// applied to the discounted amount. Without a campaign, Total equals
// CalculateTotal for the same selection.
type Quote struct {
	Subtotal int64           `json:"subtotal"`
	Discount int64           `json:"discount"`
	Taxable  int64           `json:"taxable"`
	Tax      int64           `json:"tax"`
	Total    int64           `json:"total"`
	Campaign *types.Campaign `json:"campaign,omitempty"`
}

// NewQuote prices a selection with the first applicable campaign.
func NewQuote(selectedItemIDs []int64, allItems []types.Item, campaigns []types.Campaign, now time.Time) Quote {
	selected := SelectItems(selectedItemIDs, allItems)
	discounted := CalculateDiscount(selected, campaigns, now)

	total := ApplyTax(discounted.Total)
	return Quote{
		Subtotal: discounted.Subtotal,
		Discount: discounted.Discount,
		Taxable:  discounted.Total,
		Tax:      total - discounted.Total,
		Total:    total,
		Campaign: discounted.AppliedCampaign,
	}
}
