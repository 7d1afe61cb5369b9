package api

import (
	"time"

	"github.com/shutterbook/simulator/internal/types"
)

// Requests never carry a shop ID; the shop comes from the API key.

type InitDraftRequest struct {
	ShootingCategoryID   int64  `json:"shooting_category_id"`
	ShootingCategoryName string `json:"shooting_category_name"`
}

type GetDraftRequest struct {
	ShootingCategoryID int64 `json:"shooting_category_id"`
}

// AddStepRequest appends one step. Condition is required for conditional
// steps and ignored otherwise.
type AddStepRequest struct {
	ShootingCategoryID int64                       `json:"shooting_category_id"`
	Type               types.StepType              `json:"type"`
	Category           types.FormBuilderCategory   `json:"category"`
	Condition          *types.FormBuilderCondition `json:"condition,omitempty"`
}

type RemoveStepRequest struct {
	ShootingCategoryID int64 `json:"shooting_category_id"`
	Index              int   `json:"index"`
}

type ValidateDraftRequest struct {
	ShootingCategoryID int64 `json:"shooting_category_id"`
}

type PublishDraftRequest struct {
	ShootingCategoryID int64 `json:"shooting_category_id"`
}

type UpsertCategoryRequest struct {
	Category types.ProductCategory `json:"category"`
}

// DraftResponse returns the draft after a read or mutation.
type DraftResponse struct {
	Draft types.FormBuilderData `json:"draft"`
}

type ValidateDraftResponse struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

type PublishDraftResponse struct {
	RevisionID  types.RevisionID `json:"revision_id"`
	PublishedAt time.Time        `json:"published_at"`
}

type UpsertCategoryResponse struct {
	Category types.ProductCategory `json:"category"`
}
