package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shutterbook/simulator/internal/types"
)

type campaignRow struct {
	ID                  int64   `db:"id"`
	ShopID              int64   `db:"shop_id"`
	Name                string  `db:"name"`
	DiscountType        string  `db:"discount_type"`
	DiscountValue       float64 `db:"discount_value"`
	StartDate           string  `db:"start_date"`
	EndDate             string  `db:"end_date"`
	IsActive            bool    `db:"is_active"`
	ShootingCategoryIDs string  `db:"shooting_category_ids"`
	ProductCategoryIDs  string  `db:"product_category_ids"`
	ItemIDs             string  `db:"item_ids"`
}

// ListCampaigns returns a shop's campaigns in ID order, which is the order
// the discount resolver tries them in.
func (s *Store) ListCampaigns(ctx context.Context, shopID int64) ([]types.Campaign, error) {
	var rows []campaignRow
	if err := s.queries.Select(ctx, "list-campaigns", &rows, shopID); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	out := make([]types.Campaign, 0, len(rows))
	for _, r := range rows {
		c, err := s.toCampaign(r)
		if err != nil {
			// Skipping keeps a broken row from discounting anything
			s.logger.Warn().Err(err).Int64("campaign_id", r.ID).Msg("Skipping unreadable campaign")
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// CreateCampaign stores a campaign and returns its ID.
func (s *Store) CreateCampaign(ctx context.Context, c types.Campaign) (int64, error) {
	switch c.DiscountType {
	case types.DiscountTypePercentage, types.DiscountTypeFixed:
	default:
		return 0, &types.ConfigurationError{Reason: fmt.Sprintf("unknown discount type %q", c.DiscountType)}
	}

	shooting, err := encodeIDs(c.Associations.ShootingCategoryIDs)
	if err != nil {
		return 0, err
	}
	categories, err := encodeIDs(c.Associations.ProductCategoryIDs)
	if err != nil {
		return 0, err
	}
	items, err := encodeIDs(c.Associations.ItemIDs)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.queries.Get(ctx, "insert-campaign", &id,
		c.ShopID, c.Name, string(c.DiscountType), c.DiscountValue,
		c.StartDate.In(s.location).Format(dateLayout), c.EndDate.In(s.location).Format(dateLayout),
		c.IsActive, shooting, categories, items)
	if err != nil {
		return 0, fmt.Errorf("failed to insert campaign: %w", err)
	}
	return id, nil
}

func (s *Store) toCampaign(r campaignRow) (types.Campaign, error) {
	start, err := s.parseDate(r.StartDate)
	if err != nil {
		return types.Campaign{}, err
	}
	end, err := s.parseDate(r.EndDate)
	if err != nil {
		return types.Campaign{}, err
	}

	c := types.Campaign{
		ID:            r.ID,
		ShopID:        r.ShopID,
		Name:          r.Name,
		DiscountType:  types.DiscountType(r.DiscountType),
		DiscountValue: r.DiscountValue,
		StartDate:     start,
		EndDate:       end,
		IsActive:      r.IsActive,
	}
	if err := json.Unmarshal([]byte(r.ShootingCategoryIDs), &c.Associations.ShootingCategoryIDs); err != nil {
		return types.Campaign{}, fmt.Errorf("shooting_category_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(r.ProductCategoryIDs), &c.Associations.ProductCategoryIDs); err != nil {
		return types.Campaign{}, fmt.Errorf("product_category_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(r.ItemIDs), &c.Associations.ItemIDs); err != nil {
		return types.Campaign{}, fmt.Errorf("item_ids: %w", err)
	}
	return c, nil
}

// parseDate reads a stored calendar date as midnight in the shop's zone.
func (s *Store) parseDate(v string) (time.Time, error) {
	if len(v) < len(dateLayout) {
		return time.Time{}, fmt.Errorf("invalid campaign date %q", v)
	}
	return time.ParseInLocation(dateLayout, v[:len(dateLayout)], s.location)
}

func encodeIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode ids: %w", err)
	}
	return string(data), nil
}
