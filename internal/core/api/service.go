// Package api provides the gRPC form builder service for shop administrators.
package api

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/shutterbook/simulator/internal/core/auth"
	"github.com/shutterbook/simulator/internal/formbuilder"
	"github.com/shutterbook/simulator/internal/types"
)

// Drafts is the persistence the service needs. Implemented by *store.Store.
type Drafts interface {
	GetFormDraft(ctx context.Context, shopID, shootingCategoryID int64) (types.FormBuilderData, error)
	SaveFormDraft(ctx context.Context, data types.FormBuilderData) error
	PublishForm(ctx context.Context, data types.FormBuilderData) (types.RevisionID, error)
	UpsertCategory(ctx context.Context, c types.ProductCategory) (types.ProductCategory, error)
}

// FormBuilderService implements FormBuilderServer.
// Thin orchestration layer: the step model lives in formbuilder, storage in Drafts.
type FormBuilderService struct {
	drafts Drafts
	logger zerolog.Logger
}

// NewFormBuilderService creates the service with its dependencies.
func NewFormBuilderService(drafts Drafts, logger zerolog.Logger) (*FormBuilderService, error) {
	if drafts == nil {
		return nil, fmt.Errorf("drafts cannot be nil")
	}
	return &FormBuilderService{
		drafts: drafts,
		logger: logger.With().Str("component", "form_builder").Logger(),
	}, nil
}

// shopID returns the authenticated shop or an Internal status when the
// interceptor did not run.
func shopID(ctx context.Context) (int64, error) {
	id, ok := auth.ShopIDFromContext(ctx)
	if !ok {
		return 0, status.Error(codes.Internal, "missing shop_id in context")
	}
	return id, nil
}

// InitDraft starts an empty draft, replacing any existing one.
func (s *FormBuilderService) InitDraft(ctx context.Context, req *InitDraftRequest) (*DraftResponse, error) {
	shop, err := shopID(ctx)
	if err != nil {
		return nil, err
	}
	if req.ShootingCategoryID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "shooting_category_id required")
	}

	draft := formbuilder.Init(shop, req.ShootingCategoryID, req.ShootingCategoryName)
	if err := s.drafts.SaveFormDraft(ctx, draft); err != nil {
		return nil, toStatus(err)
	}
	return &DraftResponse{Draft: draft}, nil
}

func (s *FormBuilderService) GetDraft(ctx context.Context, req *GetDraftRequest) (*DraftResponse, error) {
	draft, err := s.load(ctx, req.ShootingCategoryID)
	if err != nil {
		return nil, err
	}
	return &DraftResponse{Draft: draft}, nil
}

// AddStep appends a step of the requested type and saves the draft.
func (s *FormBuilderService) AddStep(ctx context.Context, req *AddStepRequest) (*DraftResponse, error) {
	draft, err := s.load(ctx, req.ShootingCategoryID)
	if err != nil {
		return nil, err
	}

	switch req.Type {
	case types.StepTrigger:
		draft = formbuilder.AddTriggerStep(draft, req.Category)
	case types.StepConditional:
		if req.Condition == nil {
			return nil, status.Error(codes.InvalidArgument, "condition required for conditional step")
		}
		draft, err = formbuilder.AddConditionalStep(draft, req.Category, *req.Condition)
		if err != nil {
			return nil, toStatus(err)
		}
	case types.StepCommonFinal:
		draft = formbuilder.AddCommonFinalStep(draft, req.Category)
	default:
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("unknown step type %q", req.Type))
	}

	if err := s.drafts.SaveFormDraft(ctx, draft); err != nil {
		return nil, toStatus(err)
	}
	return &DraftResponse{Draft: draft}, nil
}

func (s *FormBuilderService) RemoveStep(ctx context.Context, req *RemoveStepRequest) (*DraftResponse, error) {
	draft, err := s.load(ctx, req.ShootingCategoryID)
	if err != nil {
		return nil, err
	}
	// An out-of-range index leaves the draft as it is.
	if req.Index < 0 || req.Index >= len(draft.Steps) {
		return &DraftResponse{Draft: draft}, nil
	}

	draft = formbuilder.RemoveStep(draft, req.Index)
	if err := s.drafts.SaveFormDraft(ctx, draft); err != nil {
		return nil, toStatus(err)
	}
	return &DraftResponse{Draft: draft}, nil
}

// ValidateDraft reports every problem with the stored draft. Problems are
// data, not an RPC error.
func (s *FormBuilderService) ValidateDraft(ctx context.Context, req *ValidateDraftRequest) (*ValidateDraftResponse, error) {
	draft, err := s.load(ctx, req.ShootingCategoryID)
	if err != nil {
		return nil, err
	}
	result := formbuilder.Validate(draft)
	return &ValidateDraftResponse{IsValid: result.IsValid, Errors: result.Errors}, nil
}

// PublishDraft converts the stored draft into live catalog rows.
func (s *FormBuilderService) PublishDraft(ctx context.Context, req *PublishDraftRequest) (*PublishDraftResponse, error) {
	draft, err := s.load(ctx, req.ShootingCategoryID)
	if err != nil {
		return nil, err
	}

	revision, err := s.drafts.PublishForm(ctx, draft)
	if err != nil {
		s.logger.Warn().Err(err).
			Int64("shop_id", draft.ShopID).
			Int64("shooting_category_id", draft.ShootingCategoryID).
			Msg("Publish refused")
		return nil, toStatus(err)
	}
	return &PublishDraftResponse{
		RevisionID:  revision,
		PublishedAt: types.RevisionTime(revision),
	}, nil
}

// UpsertCategory saves a category for the caller's shop. Any shop ID in the
// request is overwritten.
func (s *FormBuilderService) UpsertCategory(ctx context.Context, req *UpsertCategoryRequest) (*UpsertCategoryResponse, error) {
	shop, err := shopID(ctx)
	if err != nil {
		return nil, err
	}

	category := req.Category
	category.ShopID = shop
	saved, err := s.drafts.UpsertCategory(ctx, category)
	if err != nil {
		return nil, toStatus(err)
	}
	return &UpsertCategoryResponse{Category: saved}, nil
}

// load fetches the caller's draft for a shooting category.
func (s *FormBuilderService) load(ctx context.Context, shootingCategoryID int64) (types.FormBuilderData, error) {
	shop, err := shopID(ctx)
	if err != nil {
		return types.FormBuilderData{}, err
	}
	draft, err := s.drafts.GetFormDraft(ctx, shop, shootingCategoryID)
	if err != nil {
		return types.FormBuilderData{}, toStatus(err)
	}
	return draft, nil
}
