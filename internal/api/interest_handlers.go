package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/service"
)

func (s *Server) registerInterestRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getParentInterests",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/interests",
		Summary:     "Get selected interests",
		Description: "Returns the parent categories the user picked to seed their feed",
		Tags:        []string{"Interests"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetParentInterests)

	huma.Register(s.api, huma.Operation{
		OperationID: "setParentInterests",
		Method:      http.MethodPut,
		Path:        "/api/v1/me/interests",
		Summary:     "Replace selected interests",
		Description: "Replaces the user's parent-category selection. An empty list is allowed.",
		Tags:        []string{"Interests"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetParentInterests)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategoryInterests",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/interests/categories",
		Summary:     "Get accrued category interests",
		Description: "Returns per-category interest scores accrued from watches and likes",
		Tags:        []string{"Interests"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCategoryInterests)
}

// === DTOs ===

// ParentInterestsOutput wraps the selected parent categories for Huma.
type ParentInterestsOutput struct {
	Body struct {
		Parents []*domain.ParentCategory `json:"parents" doc:"Selected parent categories"`
	}
}

// SetParentInterestsRequest is the request body for replacing interests.
type SetParentInterestsRequest struct {
	ParentCategoryIDs []string `json:"parent_category_ids" validate:"max=20" doc:"Parent category IDs; empty clears the selection"`
}

// SetParentInterestsInput wraps the request for Huma.
type SetParentInterestsInput struct {
	Body SetParentInterestsRequest
}

// CategoryInterestsOutput wraps accrued interest scores for Huma.
type CategoryInterestsOutput struct {
	Body struct {
		Interests []*domain.CategoryInterest `json:"interests" doc:"Accrued per-category interest scores"`
	}
}

// === Handlers ===

func (s *Server) handleGetParentInterests(ctx context.Context, _ *struct{}) (*ParentInterestsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	parents, err := s.services.Interest.GetParentInterests(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ParentInterestsOutput{}
	out.Body.Parents = parents
	return out, nil
}

func (s *Server) handleSetParentInterests(ctx context.Context, input *SetParentInterestsInput) (*ParentInterestsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	err = s.services.Interest.SetParentInterests(ctx, userID, service.SetParentInterestsRequest{
		ParentCategoryIDs: input.Body.ParentCategoryIDs,
	})
	if err != nil {
		return nil, err
	}

	parents, err := s.services.Interest.GetParentInterests(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ParentInterestsOutput{}
	out.Body.Parents = parents
	return out, nil
}

func (s *Server) handleGetCategoryInterests(ctx context.Context, _ *struct{}) (*CategoryInterestsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	interests, err := s.services.Interest.GetCategoryInterests(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &CategoryInterestsOutput{}
	out.Body.Interests = interests
	return out, nil
}
