package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shutterbook/simulator/internal/core/db"
	"github.com/shutterbook/simulator/internal/formbuilder"
	"github.com/shutterbook/simulator/internal/types"
)

// GetFormDraft loads the draft for a shooting category, or types.ErrNotFound.
func (s *Store) GetFormDraft(ctx context.Context, shopID, shootingCategoryID int64) (types.FormBuilderData, error) {
	var raw string
	err := s.queries.Get(ctx, "get-form-draft", &raw, shopID, shootingCategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return types.FormBuilderData{}, fmt.Errorf("form draft for shooting category %d: %w", shootingCategoryID, types.ErrNotFound)
	}
	if err != nil {
		return types.FormBuilderData{}, fmt.Errorf("failed to get form draft: %w", err)
	}

	var data types.FormBuilderData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return types.FormBuilderData{}, fmt.Errorf("failed to decode form draft: %w", err)
	}
	if data.Steps == nil {
		data.Steps = []types.FormBuilderStep{}
	}
	return data, nil
}

// SaveFormDraft stores the draft as opaque JSON, replacing any previous one.
func (s *Store) SaveFormDraft(ctx context.Context, data types.FormBuilderData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode form draft: %w", err)
	}
	if _, err := s.queries.Exec(ctx, "upsert-form-draft", data.ShopID, data.ShootingCategoryID, string(raw), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save form draft: %w", err)
	}
	return nil
}

// PublishForm validates and converts a draft, then in one transaction
// replaces the shooting category's catalog with the converted categories
// and items and records a revision.
//
// Categories and items of the shooting category that the draft no longer
// lists are deactivated, not deleted; campaigns may still reference them.
// Every step's category must already exist (UpsertCategory), since
// conditions refer to categories by ID. Items with a zero ID are created.
func (s *Store) PublishForm(ctx context.Context, data types.FormBuilderData) (types.RevisionID, error) {
	if result := formbuilder.Validate(data); !result.IsValid {
		return "", &types.ConfigurationError{Reason: strings.Join(result.Errors, "; ")}
	}
	for i, step := range data.Steps {
		if step.Category.ID == 0 {
			return "", &types.ConfigurationError{Reason: fmt.Sprintf("step %d category must be saved before publishing", i+1)}
		}
	}

	conv := formbuilder.ConvertToProductCategories(data)
	for _, c := range conv.Categories {
		if err := validateCategory(c); err != nil {
			return "", err
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode form draft: %w", err)
	}

	revision := types.NewRevisionID()
	err = s.queries.InTx(ctx, func(tx *db.Queries) error {
		if _, err := tx.Exec(ctx, "deactivate-items", false, data.ShopID, data.ShootingCategoryID); err != nil {
			return fmt.Errorf("failed to deactivate items: %w", err)
		}
		if _, err := tx.Exec(ctx, "deactivate-product-categories", false, data.ShopID, data.ShootingCategoryID); err != nil {
			return fmt.Errorf("failed to deactivate product categories: %w", err)
		}

		for _, c := range conv.Categories {
			rule, err := encodeRule(c.ConditionalRule)
			if err != nil {
				return err
			}
			if err := updateCategory(ctx, tx, c, rule); err != nil {
				return err
			}
		}
		for _, item := range conv.Items {
			if err := upsertItem(ctx, tx, item); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, "insert-form-revision",
			string(revision), data.ShopID, data.ShootingCategoryID, string(raw), s.now().UTC()); err != nil {
			return fmt.Errorf("failed to record revision: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Int64("shop_id", data.ShopID).
		Int64("shooting_category_id", data.ShootingCategoryID).
		Str("revision_id", string(revision)).
		Int("categories", len(conv.Categories)).
		Int("items", len(conv.Items)).
		Msg("Published form")

	return revision, nil
}

// ListRevisions returns a shooting category's revisions, newest first.
func (s *Store) ListRevisions(ctx context.Context, shopID, shootingCategoryID int64) ([]types.RevisionID, error) {
	var ids []string
	if err := s.queries.Select(ctx, "list-form-revisions", &ids, shopID, shootingCategoryID); err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}

	out := make([]types.RevisionID, len(ids))
	for i, id := range ids {
		out[i] = types.RevisionID(id)
	}
	return out, nil
}

func upsertItem(ctx context.Context, q *db.Queries, item types.Item) error {
	if item.ID == 0 {
		var id int64
		err := q.Get(ctx, "insert-item", &id,
			item.ShopID, item.ProductCategoryID, item.ShootingCategoryID, item.Name, item.Price,
			item.IsActive, item.AutoSelect, item.SortOrder)
		if err != nil {
			return fmt.Errorf("failed to insert item %q: %w", item.Name, err)
		}
		return nil
	}

	res, err := q.Exec(ctx, "update-item",
		item.ProductCategoryID, item.ShootingCategoryID, item.Name, item.Price,
		item.IsActive, item.AutoSelect, item.SortOrder,
		item.ID, item.ShopID)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item %d: %w", item.ID, types.ErrNotFound)
	}
	return nil
}
