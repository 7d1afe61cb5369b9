// Package simulator computes a customer's live estimate: which sections the
// form shows for the current answers, which items count toward the price,
// and the quote with any campaign discount.
package simulator

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shutterbook/simulator/internal/pricing"
	"github.com/shutterbook/simulator/internal/sections"
	"github.com/shutterbook/simulator/internal/types"
)

// Catalog is the read side of the admin configuration store.
type Catalog interface {
	ListProductCategories(ctx context.Context, shopID, shootingCategoryID int64) ([]types.ProductCategory, error)
	ListShootingCategoryItems(ctx context.Context, shopID, shootingCategoryID int64) ([]types.Item, error)
	ListCampaigns(ctx context.Context, shopID int64) ([]types.Campaign, error)
}

// Request is one recomputation of the customer form.
type Request struct {
	ShopID             int64            `json:"shop_id"`
	ShootingCategoryID int64            `json:"shooting_category_id" jsonschema:"required"`
	Values             types.FormValues `json:"values"`
	SelectedItemIDs    []int64          `json:"selected_item_ids"`
}

// Section is a visible category with its active items.
type Section struct {
	Category types.ProductCategory `json:"category"`
	Items    []types.Item          `json:"items"`
}

// Formatted holds display strings for the quote amounts.
type Formatted struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// Result is what the customer page renders.
type Result struct {
	Pattern         sections.Pattern `json:"pattern"`
	Sections        []Section        `json:"sections"`
	SelectedItemIDs []int64          `json:"selected_item_ids"`
	DroppedItemIDs  []int64          `json:"dropped_item_ids"`
	Quote           pricing.Quote    `json:"quote"`
	Formatted       Formatted        `json:"formatted"`
}

// Simulator is safe for concurrent use.
type Simulator struct {
	catalog  Catalog
	logger   zerolog.Logger
	location *time.Location
	now      func() time.Time
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// New creates a simulator. Campaign date windows are compared in location.
func New(catalog Catalog, location *time.Location, logger zerolog.Logger, opts ...Option) *Simulator {
	if location == nil {
		location = time.UTC
	}
	s := &Simulator{
		catalog:  catalog,
		logger:   logger.With().Str("component", "simulator").Logger(),
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate loads the shooting category's catalog and prices req.
func (s *Simulator) Simulate(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	defer func() { recordSimulation(start, err) }()

	var (
		categories []types.ProductCategory
		items      []types.Item
		campaigns  []types.Campaign
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.catalog.ListProductCategories(gctx, req.ShopID, req.ShootingCategoryID)
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = s.catalog.ListShootingCategoryItems(gctx, req.ShopID, req.ShootingCategoryID)
		if err != nil {
			return fmt.Errorf("failed to load items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		campaigns, err = s.catalog.ListCampaigns(gctx, req.ShopID)
		if err != nil {
			return fmt.Errorf("failed to load campaigns: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().
			Err(err).
			Int64("shop_id", req.ShopID).
			Int64("shooting_category_id", req.ShootingCategoryID).
			Msg("Catalog load failed")
		return nil, err
	}

	res := Compute(categories, items, campaigns, req.Values, req.SelectedItemIDs, s.now().In(s.location))

	if len(res.DroppedItemIDs) > 0 {
		droppedSelections.Add(float64(len(res.DroppedItemIDs)))
		s.logger.Debug().
			Int64("shop_id", req.ShopID).
			Ints64("dropped_item_ids", res.DroppedItemIDs).
			Msg("Dropped selections from hidden sections")
	}
	if res.Quote.Campaign != nil {
		campaignApplications.WithLabelValues(strconv.FormatInt(res.Quote.Campaign.ID, 10)).Inc()
	}

	s.logger.Debug().
		Int64("shop_id", req.ShopID).
		Int64("shooting_category_id", req.ShootingCategoryID).
		Int("sections", len(res.Sections)).
		Int64("total", res.Quote.Total).
		Dur("duration", time.Since(start)).
		Msg("Simulated quote")

	return res, nil
}

// Compute is the catalog-independent core of Simulate. now must already be
// in the shop's location.
//
// Selections in hidden sections, inactive items and unknown IDs are dropped.
// Auto-select items of visible sections are always included.
func Compute(
	categories []types.ProductCategory,
	items []types.Item,
	campaigns []types.Campaign,
	values types.FormValues,
	selectedItemIDs []int64,
	now time.Time,
) *Result {
	visible := sections.Resolve(categories, values)

	byCategory := make(map[int64][]types.Item, len(visible))
	for _, c := range visible {
		byCategory[c.ID] = []types.Item{}
	}
	eligible := make(map[int64]types.Item, len(items))
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		if list, ok := byCategory[item.ProductCategoryID]; ok {
			byCategory[item.ProductCategoryID] = append(list, item)
			eligible[item.ID] = item
		}
	}

	res := &Result{
		Pattern:         sections.DetectPattern(categories),
		Sections:        make([]Section, 0, len(visible)),
		SelectedItemIDs: []int64{},
		DroppedItemIDs:  []int64{},
	}
	for _, c := range visible {
		res.Sections = append(res.Sections, Section{Category: c, Items: byCategory[c.ID]})
	}

	seen := make(map[int64]struct{}, len(selectedItemIDs))
	for _, id := range selectedItemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := eligible[id]; ok {
			res.SelectedItemIDs = append(res.SelectedItemIDs, id)
		} else {
			res.DroppedItemIDs = append(res.DroppedItemIDs, id)
		}
	}
	for _, sec := range res.Sections {
		for _, item := range sec.Items {
			if _, dup := seen[item.ID]; item.AutoSelect && !dup {
				seen[item.ID] = struct{}{}
				res.SelectedItemIDs = append(res.SelectedItemIDs, item.ID)
			}
		}
	}

	res.Quote = pricing.NewQuote(res.SelectedItemIDs, items, campaigns, now)
	res.Formatted = Formatted{
		Subtotal: pricing.FormatYen(res.Quote.Subtotal),
		Discount: pricing.FormatYen(res.Quote.Discount),
		Tax:      pricing.FormatYen(res.Quote.Tax),
		Total:    pricing.FormatYen(res.Quote.Total),
	}
	return res
}
