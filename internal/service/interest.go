package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	domainerrors "github.com/reelfeedapp/reelfeed-server/internal/errors"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// InterestService exposes a user's interest profile: the parent categories
// selected at registration and the per-category scores accrued since.
type InterestService struct {
	store  store.Store
	logger *slog.Logger
}

// NewInterestService creates a new interest service.
func NewInterestService(store store.Store, logger *slog.Logger) *InterestService {
	return &InterestService{
		store:  store,
		logger: logger,
	}
}

// SetParentInterestsRequest replaces the user's selected parent categories.
type SetParentInterestsRequest struct {
	ParentCategoryIDs []string `json:"parent_category_ids" validate:"max=20,dive,required"`
}

// SetParentInterests replaces the user's parent-category selection. An
// empty selection is allowed and flips the home feed to the popularity
// fallback.
func (s *InterestService) SetParentInterests(ctx context.Context, userID string, req SetParentInterestsRequest) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	for _, parentID := range req.ParentCategoryIDs {
		if _, err := s.store.GetParentCategory(ctx, parentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domainerrors.Validationf("unknown parent category: %s", parentID)
			}
			return fmt.Errorf("check parent category: %w", err)
		}
	}

	if err := s.store.SetUserParentInterests(ctx, userID, req.ParentCategoryIDs); err != nil {
		return fmt.Errorf("set parent interests: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Parent interests updated",
			"user_id", userID,
			"count", len(req.ParentCategoryIDs),
		)
	}

	return nil
}

// GetParentInterests returns the user's selected parent categories.
func (s *InterestService) GetParentInterests(ctx context.Context, userID string) ([]*domain.ParentCategory, error) {
	ids, err := s.store.GetUserParentInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get parent interests: %w", err)
	}

	parents := make([]*domain.ParentCategory, 0, len(ids))
	for _, parentID := range ids {
		parent, err := s.store.GetParentCategory(ctx, parentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get parent category: %w", err)
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// GetCategoryInterests returns the user's accrued per-category scores,
// highest first.
func (s *InterestService) GetCategoryInterests(ctx context.Context, userID string) ([]*domain.CategoryInterest, error) {
	interests, err := s.store.GetCategoryInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get category interests: %w", err)
	}
	return interests, nil
}
