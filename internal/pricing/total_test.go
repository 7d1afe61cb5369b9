package pricing

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/shutterbook/simulator/internal/types"
)

func items(prices ...int64) []types.Item {
	out := make([]types.Item, len(prices))
	for i, p := range prices {
		out[i] = types.Item{ID: int64(i + 1), Name: "item", Price: p, IsActive: true}
	}
	return out
}

func TestCalculateTotal(t *testing.T) {
	tests := []struct {
		name     string
		selected []int64
		all      []types.Item
		want     int64
	}{
		{name: "plan with options", selected: []int64{1, 2, 3}, all: items(50000, 10000, 8000), want: 74800},
		{name: "fractional tax floors", selected: []int64{1, 2, 3}, all: items(333, 333, 333), want: 1098},
		{name: "duplicates count once", selected: []int64{1, 1, 1}, all: items(10000), want: 11000},
		{name: "empty selection", selected: nil, all: items(10000), want: 0},
		{name: "unknown ids skipped", selected: []int64{1, 42}, all: items(1000), want: 1100},
		{name: "negative discount line", selected: []int64{1, 2}, all: items(10000, -2000), want: 8800},
		{name: "negative whole product", selected: []int64{1}, all: items(-10), want: -11},
		{name: "negative subtotal floors toward -inf", selected: []int64{1}, all: items(-5), want: -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateTotal(tt.selected, tt.all); got != tt.want {
				t.Errorf("CalculateTotal(%v) = %d, want %d", tt.selected, got, tt.want)
			}
		})
	}
}

func TestSelectItems_KeepsSelectionOrder(t *testing.T) {
	got := SelectItems([]int64{3, 1, 3, 9}, items(100, 200, 300))

	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 1 {
		t.Errorf("SelectItems() ids = %v, want [3 1]", itemIDs(got))
	}
}

func TestCalculateTotal_PropertyDuplicatesIgnored(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	catalog := items(50000, 10000, 8000, 333, -500, 0)

	properties.Property("repeating a selection does not change the total", prop.ForAll(
		func(picks []int, repeat int) bool {
			ids := make([]int64, len(picks))
			for i, p := range picks {
				ids[i] = int64(p)
			}
			repeated := make([]int64, 0, len(ids)*repeat)
			for r := 0; r < repeat; r++ {
				repeated = append(repeated, ids...)
			}
			return CalculateTotal(ids, catalog) == CalculateTotal(repeated, catalog)
		},
		gen.SliceOf(gen.IntRange(0, 8)),
		gen.IntRange(1, 4),
	))

	properties.TestingRun(t)
}

func itemIDs(in []types.Item) []int64 {
	out := make([]int64, len(in))
	for i, item := range in {
		out[i] = item.ID
	}
	return out
}
