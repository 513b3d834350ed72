package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategoryTrees",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/trees",
		Summary:     "List category trees",
		Description: "Returns every parent category with its leaf categories attached",
		Tags:        []string{"Categories"},
	}, s.handleListCategoryTrees)

	huma.Register(s.api, huma.Operation{
		OperationID: "listParentCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/parents",
		Summary:     "List parent categories",
		Description: "Returns the top-level categories users can select as interests",
		Tags:        []string{"Categories"},
	}, s.handleListParentCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategoryTree",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/parents/{parentCategoryID}/tree",
		Summary:     "Get one category tree",
		Description: "Returns a single parent category with its leaf categories",
		Tags:        []string{"Categories"},
	}, s.handleGetCategoryTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "createParentCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/parents",
		Summary:     "Create parent category",
		Description: "Adds a new top-level category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateParentCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create leaf category",
		Description: "Adds a new leaf category under an existing parent",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)
}

// === DTOs ===

// CategoryTreeResponse is a parent category with its leaf categories.
type CategoryTreeResponse struct {
	Parent     *domain.ParentCategory `json:"parent" doc:"Parent category"`
	Categories []*domain.Category     `json:"categories" doc:"Leaf categories under the parent"`
}

// CategoryTreesOutput wraps the tree list for Huma.
type CategoryTreesOutput struct {
	Body struct {
		Trees []CategoryTreeResponse `json:"trees" doc:"All category trees"`
	}
}

// CategoryTreeOutput wraps a single tree for Huma.
type CategoryTreeOutput struct {
	Body CategoryTreeResponse
}

// ParentCategoriesOutput wraps the parent category list for Huma.
type ParentCategoriesOutput struct {
	Body struct {
		Parents []*domain.ParentCategory `json:"parents" doc:"Top-level categories"`
	}
}

// CategoryTreeInput identifies a parent category by path.
type CategoryTreeInput struct {
	ParentCategoryID string `path:"parentCategoryID" doc:"Parent category ID"`
}

// CreateParentCategoryRequest is the request body for parent creation.
type CreateParentCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80" doc:"Display name"`
	Icon string `json:"icon,omitempty" validate:"omitempty,max=80" doc:"Icon identifier"`
}

// CreateParentCategoryInput wraps the request for Huma.
type CreateParentCategoryInput struct {
	Body CreateParentCategoryRequest
}

// ParentCategoryOutput wraps a single parent category for Huma.
type ParentCategoryOutput struct {
	Body *domain.ParentCategory
}

// CreateCategoryRequest is the request body for leaf creation.
type CreateCategoryRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=80" doc:"Display name"`
	ParentCategoryID string `json:"parent_category_id" validate:"required" doc:"Owning parent category"`
}

// CreateCategoryInput wraps the request for Huma.
type CreateCategoryInput struct {
	Body CreateCategoryRequest
}

// CategoryOutput wraps a single leaf category for Huma.
type CategoryOutput struct {
	Body *domain.Category
}

// === Handlers ===

func (s *Server) handleListCategoryTrees(ctx context.Context, _ *struct{}) (*CategoryTreesOutput, error) {
	trees, err := s.services.Category.ListTrees(ctx)
	if err != nil {
		return nil, err
	}

	out := &CategoryTreesOutput{}
	out.Body.Trees = make([]CategoryTreeResponse, 0, len(trees))
	for _, tree := range trees {
		out.Body.Trees = append(out.Body.Trees, CategoryTreeResponse{
			Parent:     tree.Parent,
			Categories: tree.Categories,
		})
	}
	return out, nil
}

func (s *Server) handleListParentCategories(ctx context.Context, _ *struct{}) (*ParentCategoriesOutput, error) {
	parents, err := s.services.Category.ListParentCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := &ParentCategoriesOutput{}
	out.Body.Parents = parents
	return out, nil
}

func (s *Server) handleGetCategoryTree(ctx context.Context, input *CategoryTreeInput) (*CategoryTreeOutput, error) {
	tree, err := s.services.Category.GetTree(ctx, input.ParentCategoryID)
	if err != nil {
		return nil, err
	}

	return &CategoryTreeOutput{
		Body: CategoryTreeResponse{
			Parent:     tree.Parent,
			Categories: tree.Categories,
		},
	}, nil
}

func (s *Server) handleCreateParentCategory(ctx context.Context, input *CreateParentCategoryInput) (*ParentCategoryOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	parent, err := s.services.Category.CreateParentCategory(ctx, service.CreateParentCategoryRequest{
		Name: input.Body.Name,
		Icon: input.Body.Icon,
	})
	if err != nil {
		return nil, err
	}

	return &ParentCategoryOutput{Body: parent}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	category, err := s.services.Category.CreateCategory(ctx, service.CreateCategoryRequest{
		Name:             input.Body.Name,
		ParentCategoryID: input.Body.ParentCategoryID,
	})
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: category}, nil
}
