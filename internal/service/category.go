package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	domainerrors "github.com/reelfeedapp/reelfeed-server/internal/errors"
	"github.com/reelfeedapp/reelfeed-server/internal/id"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// CategoryService manages the two-level category tree.
type CategoryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger,
	}
}

// CreateParentCategoryRequest contains new parent-category data.
type CreateParentCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
	Icon string `json:"icon" validate:"max=80"`
}

// CreateCategoryRequest contains new leaf-category data.
type CreateCategoryRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=80"`
	ParentCategoryID string `json:"parent_category_id" validate:"required"`
}

// CategoryTree is a parent category with its leaf categories attached.
type CategoryTree struct {
	Parent     *domain.ParentCategory `json:"parent"`
	Categories []*domain.Category     `json:"categories"`
}

// CreateParentCategory adds a top-level category.
func (s *CategoryService) CreateParentCategory(ctx context.Context, req CreateParentCategoryRequest) (*domain.ParentCategory, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	parentID, err := id.Generate("pcat")
	if err != nil {
		return nil, fmt.Errorf("generate parent category ID: %w", err)
	}

	now := time.Now()
	parent := &domain.ParentCategory{
		ID:        parentID,
		Name:      req.Name,
		Icon:      req.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateParentCategory(ctx, parent); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("parent category name already in use")
		}
		return nil, fmt.Errorf("create parent category: %w", err)
	}

	return parent, nil
}

// CreateCategory adds a leaf category under an existing parent.
func (s *CategoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*domain.Category, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	now := time.Now()
	category := &domain.Category{
		ID:               categoryID,
		Name:             req.Name,
		ParentCategoryID: req.ParentCategoryID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("category name already in use under this parent")
		}
		if errors.Is(err, store.ErrInvalidInput) {
			return nil, domainerrors.Validationf("unknown parent category: %s", req.ParentCategoryID)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

// GetCategory returns a single leaf category.
func (s *CategoryService) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("category not found")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// ListParentCategories returns all parent categories, sorted by name.
func (s *CategoryService) ListParentCategories(ctx context.Context) ([]*domain.ParentCategory, error) {
	parents, err := s.store.ListParentCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parent categories: %w", err)
	}
	return parents, nil
}

// ListCategories returns every leaf category.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetTree returns a parent category with its leaf categories.
func (s *CategoryService) GetTree(ctx context.Context, parentCategoryID string) (*CategoryTree, error) {
	parent, err := s.store.GetParentCategory(ctx, parentCategoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("parent category not found")
		}
		return nil, fmt.Errorf("get parent category: %w", err)
	}

	categories, err := s.store.ListCategoriesByParent(ctx, parentCategoryID)
	if err != nil {
		return nil, fmt.Errorf("list categories by parent: %w", err)
	}

	return &CategoryTree{
		Parent:     parent,
		Categories: categories,
	}, nil
}

// ListTrees returns the full two-level tree.
func (s *CategoryService) ListTrees(ctx context.Context) ([]*CategoryTree, error) {
	parents, err := s.store.ListParentCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parent categories: %w", err)
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	byParent := make(map[string][]*domain.Category, len(parents))
	for _, c := range categories {
		byParent[c.ParentCategoryID] = append(byParent[c.ParentCategoryID], c)
	}

	trees := make([]*CategoryTree, 0, len(parents))
	for _, p := range parents {
		trees = append(trees, &CategoryTree{
			Parent:     p,
			Categories: byParent[p.ID],
		})
	}
	return trees, nil
}
