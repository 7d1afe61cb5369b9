package pricing

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/shutterbook/simulator/internal/types"
)

var jst = time.FixedZone("JST", 9*60*60)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, jst)
}

func springCampaign() types.Campaign {
	return types.Campaign{
		ID:            7,
		Name:          "Spring",
		DiscountType:  types.DiscountTypePercentage,
		DiscountValue: 10,
		StartDate:     day(2026, time.March, 1),
		EndDate:       day(2026, time.March, 31),
		IsActive:      true,
		Associations:  types.CampaignAssociations{ItemIDs: []int64{1}},
	}
}

func selection() []types.Item {
	return []types.Item{
		{ID: 1, ProductCategoryID: 10, ShootingCategoryID: 100, Price: 50000},
		{ID: 2, ProductCategoryID: 11, ShootingCategoryID: 100, Price: 10000},
		{ID: 3, ProductCategoryID: 11, ShootingCategoryID: 100, Price: 8000},
	}
}

// associate replaces a campaign's associations.
func associate(a types.CampaignAssociations) func(*types.Campaign) {
	return func(c *types.Campaign) { c.Associations = a }
}

func TestFindApplicable_Eligibility(t *testing.T) {
	inMarch := time.Date(2026, time.March, 15, 12, 0, 0, 0, jst)

	tests := []struct {
		name   string
		mutate func(*types.Campaign)
		now    time.Time
		want   bool
	}{
		{name: "active and in window", mutate: func(*types.Campaign) {}, now: inMarch, want: true},
		{name: "inactive", mutate: func(c *types.Campaign) { c.IsActive = false }, now: inMarch, want: false},
		{name: "before start", mutate: func(*types.Campaign) {}, now: time.Date(2026, time.February, 28, 23, 59, 0, 0, jst), want: false},
		{name: "start date inclusive", mutate: func(*types.Campaign) {}, now: time.Date(2026, time.March, 1, 0, 0, 0, 0, jst), want: true},
		{name: "end date inclusive late evening", mutate: func(*types.Campaign) {}, now: time.Date(2026, time.March, 31, 23, 59, 59, 0, jst), want: true},
		{name: "after end", mutate: func(*types.Campaign) {}, now: time.Date(2026, time.April, 1, 0, 0, 0, 0, jst), want: false},
		{
			name:   "matches by product category",
			mutate: associate(types.CampaignAssociations{ProductCategoryIDs: []int64{11}}),
			now:    inMarch,
			want:   true,
		},
		{
			name:   "matches by shooting category",
			mutate: associate(types.CampaignAssociations{ShootingCategoryIDs: []int64{100}}),
			now:    inMarch,
			want:   true,
		},
		{
			name:   "no association overlap",
			mutate: associate(types.CampaignAssociations{ItemIDs: []int64{99}}),
			now:    inMarch,
			want:   false,
		},
		{
			name:   "empty associations never match",
			mutate: associate(types.CampaignAssociations{}),
			now:    inMarch,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := springCampaign()
			tt.mutate(&c)
			got := FindApplicable(selection(), []types.Campaign{c}, tt.now)
			if (got != nil) != tt.want {
				t.Errorf("FindApplicable() = %v, want applicable %v", got, tt.want)
			}
		})
	}
}

func TestFindApplicable_DatesCompareInShopZone(t *testing.T) {
	// 2026-03-31 16:00 UTC is already April 1st in Tokyo.
	utc := time.Date(2026, time.March, 31, 16, 0, 0, 0, time.UTC)

	if FindApplicable(selection(), []types.Campaign{springCampaign()}, utc.In(jst)) != nil {
		t.Errorf("FindApplicable() applied a campaign after its end date in shop time")
	}
}

func TestFindApplicable_FirstEligibleWins(t *testing.T) {
	first := springCampaign()
	first.ID = 1
	first.IsActive = false
	second := springCampaign()
	second.ID = 2
	third := springCampaign()
	third.ID = 3

	got := FindApplicable(selection(), []types.Campaign{first, second, third}, day(2026, time.March, 10))
	if got == nil || got.ID != 2 {
		t.Errorf("FindApplicable() = %v, want campaign 2", got)
	}
}

func TestCalculateDiscount(t *testing.T) {
	now := day(2026, time.March, 10)

	tests := []struct {
		name         string
		discountType types.DiscountType
		value        float64
		items        []types.Item
		wantDiscount int64
		wantTotal    int64
	}{
		{name: "percentage", discountType: types.DiscountTypePercentage, value: 10, items: selection(), wantDiscount: 6800, wantTotal: 61200},
		{
			name:         "percentage floors",
			discountType: types.DiscountTypePercentage,
			value:        15,
			items:        []types.Item{{ID: 1, Price: 999}},
			wantDiscount: 149,
			wantTotal:    850,
		},
		{name: "fixed", discountType: types.DiscountTypeFixed, value: 5000, items: selection(), wantDiscount: 5000, wantTotal: 63000},
		{
			name:         "fixed is not clamped",
			discountType: types.DiscountTypeFixed,
			value:        5000,
			items:        []types.Item{{ID: 1, Price: 3000}},
			wantDiscount: 5000,
			wantTotal:    -2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := springCampaign()
			c.DiscountType = tt.discountType
			c.DiscountValue = tt.value

			got := CalculateDiscount(tt.items, []types.Campaign{c}, now)
			if got.Discount != tt.wantDiscount {
				t.Errorf("Discount = %d, want %d", got.Discount, tt.wantDiscount)
			}
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if got.AppliedCampaign == nil || got.AppliedCampaign.ID != c.ID {
				t.Errorf("AppliedCampaign = %v, want campaign %d", got.AppliedCampaign, c.ID)
			}
		})
	}
}

func TestCalculateDiscount_NoCampaign(t *testing.T) {
	got := CalculateDiscount(selection(), nil, day(2026, time.March, 10))

	if got.Subtotal != 68000 || got.Discount != 0 || got.Total != 68000 || got.AppliedCampaign != nil {
		t.Errorf("CalculateDiscount() = %+v, want undiscounted 68000", got)
	}
}

func TestNewQuote_DiscountBeforeTax(t *testing.T) {
	all := selection()
	q := NewQuote([]int64{1, 2, 3}, all, []types.Campaign{springCampaign()}, day(2026, time.March, 10))

	if q.Subtotal != 68000 || q.Discount != 6800 || q.Taxable != 61200 {
		t.Errorf("NewQuote() = %+v, want subtotal 68000, discount 6800, taxable 61200", q)
	}
	if q.Total != 67320 || q.Tax != 6120 {
		t.Errorf("NewQuote() total = %d tax = %d, want 67320 and 6120", q.Total, q.Tax)
	}
	if q.Campaign == nil || q.Campaign.ID != 7 {
		t.Errorf("NewQuote().Campaign = %v, want campaign 7", q.Campaign)
	}
}

func TestNewQuote_PropertyMatchesCalculateTotalWithoutCampaign(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	catalog := items(50000, 10000, 8000, 333, -500, 1)

	properties.Property("quote total equals CalculateTotal when no campaign applies", prop.ForAll(
		func(picks []int) bool {
			ids := make([]int64, len(picks))
			for i, p := range picks {
				ids[i] = int64(p)
			}
			q := NewQuote(ids, catalog, nil, day(2026, time.March, 10))
			return q.Total == CalculateTotal(ids, catalog) && q.Discount == 0
		},
		gen.SliceOf(gen.IntRange(0, 8)),
	))

	properties.TestingRun(t)
}
