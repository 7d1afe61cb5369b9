// Package store persists the shop catalog, form drafts and API keys on top
// of the named queries in internal/core/db.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shutterbook/simulator/internal/core/db"
	"github.com/shutterbook/simulator/internal/rules"
	"github.com/shutterbook/simulator/internal/types"
)

// dateLayout is the storage format of campaign dates.
const dateLayout = "2006-01-02"

// Store is safe for concurrent use.
type Store struct {
	queries  *db.Queries
	logger   zerolog.Logger
	location *time.Location
	now      func() time.Time
}

// New creates a store. Campaign dates are interpreted in location.
func New(queries *db.Queries, location *time.Location, logger zerolog.Logger) *Store {
	if location == nil {
		location = time.UTC
	}
	return &Store{
		queries:  queries,
		logger:   logger.With().Str("component", "store").Logger(),
		location: location,
		now:      time.Now,
	}
}

type categoryRow struct {
	ID                 int64          `db:"id"`
	ShopID             int64          `db:"shop_id"`
	ShootingCategoryID int64          `db:"shooting_category_id"`
	Name               string         `db:"name"`
	DisplayName        string         `db:"display_name"`
	Description        string         `db:"description"`
	IsActive           bool           `db:"is_active"`
	FormSection        string         `db:"form_section"`
	ProductType        string         `db:"product_type"`
	ConditionalRule    sql.NullString `db:"conditional_rule"`
	SortOrder          int            `db:"sort_order"`
}

// toCategory decodes the stored rule. A rule that cannot be decoded is
// logged and replaced by an empty rule, which never matches.
func (s *Store) toCategory(r categoryRow) types.ProductCategory {
	c := types.ProductCategory{
		ID:                 r.ID,
		ShopID:             r.ShopID,
		ShootingCategoryID: r.ShootingCategoryID,
		Name:               r.Name,
		DisplayName:        r.DisplayName,
		Description:        r.Description,
		IsActive:           r.IsActive,
		FormSection:        types.FormSection(r.FormSection),
		ProductType:        types.ProductType(r.ProductType),
		SortOrder:          r.SortOrder,
	}
	if r.ConditionalRule.Valid {
		rule, err := types.ParseRule([]byte(r.ConditionalRule.String))
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int64("category_id", r.ID).
				Msg("Stored conditional rule is unreadable, hiding section")
			rule = &types.ConditionalRule{}
		}
		c.ConditionalRule = rule
	}
	return c
}

// ListProductCategories returns a shooting category's categories by sort order.
func (s *Store) ListProductCategories(ctx context.Context, shopID, shootingCategoryID int64) ([]types.ProductCategory, error) {
	var rows []categoryRow
	if err := s.queries.Select(ctx, "list-product-categories", &rows, shopID, shootingCategoryID); err != nil {
		return nil, fmt.Errorf("failed to list product categories: %w", err)
	}

	out := make([]types.ProductCategory, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.toCategory(r))
	}
	return out, nil
}

// GetProductCategory returns one category, or types.ErrNotFound.
func (s *Store) GetProductCategory(ctx context.Context, shopID, categoryID int64) (types.ProductCategory, error) {
	var row categoryRow
	err := s.queries.Get(ctx, "get-product-category", &row, categoryID, shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ProductCategory{}, fmt.Errorf("product category %d: %w", categoryID, types.ErrNotFound)
	}
	if err != nil {
		return types.ProductCategory{}, fmt.Errorf("failed to get product category: %w", err)
	}
	return s.toCategory(row), nil
}

// ListItems returns a category's items by sort order.
func (s *Store) ListItems(ctx context.Context, shopID, categoryID int64) ([]types.Item, error) {
	items := []types.Item{}
	if err := s.queries.Select(ctx, "list-items", &items, shopID, categoryID); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ListShootingCategoryItems returns every item of a shooting category.
func (s *Store) ListShootingCategoryItems(ctx context.Context, shopID, shootingCategoryID int64) ([]types.Item, error) {
	items := []types.Item{}
	if err := s.queries.Select(ctx, "list-shooting-category-items", &items, shopID, shootingCategoryID); err != nil {
		return nil, fmt.Errorf("failed to list shooting category items: %w", err)
	}
	return items, nil
}

// UpsertCategory inserts a category when ID is zero and updates it
// otherwise. The rule is validated first; an invalid rule is refused with
// a *types.ConfigurationError.
func (s *Store) UpsertCategory(ctx context.Context, c types.ProductCategory) (types.ProductCategory, error) {
	if err := validateCategory(c); err != nil {
		return types.ProductCategory{}, err
	}
	rule, err := encodeRule(c.ConditionalRule)
	if err != nil {
		return types.ProductCategory{}, err
	}

	if c.ID == 0 {
		var id int64
		err := s.queries.Get(ctx, "insert-product-category", &id,
			c.ShopID, c.ShootingCategoryID, c.Name, c.DisplayName, c.Description,
			c.IsActive, string(c.FormSection), string(c.ProductType), rule, c.SortOrder)
		if err != nil {
			return types.ProductCategory{}, fmt.Errorf("failed to insert product category: %w", err)
		}
		c.ID = id
		return c, nil
	}

	if err := updateCategory(ctx, s.queries, c, rule); err != nil {
		return types.ProductCategory{}, err
	}
	return c, nil
}

func updateCategory(ctx context.Context, q *db.Queries, c types.ProductCategory, rule sql.NullString) error {
	res, err := q.Exec(ctx, "update-product-category",
		c.ShootingCategoryID, c.Name, c.DisplayName, c.Description,
		c.IsActive, string(c.FormSection), string(c.ProductType), rule, c.SortOrder,
		c.ID, c.ShopID)
	if err != nil {
		return fmt.Errorf("failed to update product category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product category %d: %w", c.ID, types.ErrNotFound)
	}
	return nil
}

func validateCategory(c types.ProductCategory) error {
	switch c.FormSection {
	case types.SectionNone, types.SectionTrigger, types.SectionConditional, types.SectionCommonFinal:
	default:
		return fmt.Errorf("%w: %q", types.ErrInvalidSection, c.FormSection)
	}
	switch c.ProductType {
	case types.ProductTypePlan, types.ProductTypeOptionSingle, types.ProductTypeOptionMulti:
	default:
		return fmt.Errorf("%w: %q", types.ErrInvalidProductType, c.ProductType)
	}
	if err := rules.Validate(c.ConditionalRule); err != nil {
		return &types.ConfigurationError{Reason: fmt.Sprintf("category %q: %v", c.DisplayName, err)}
	}
	return nil
}

func encodeRule(rule *types.ConditionalRule) (sql.NullString, error) {
	if rule == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(rule)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode conditional rule: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
