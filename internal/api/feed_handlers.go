package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/service"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Get feed",
		Description: "Returns a feed page. Scope home is personalized and ranked; following and category are chronological.",
		Tags:        []string{"Feed"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFeed)
}

// GetFeedInput carries the feed scope and pagination.
type GetFeedInput struct {
	Scope            string `query:"scope" enum:"home,following,category" default:"home" doc:"Feed scope"`
	ParentCategoryID string `query:"parent_category_id" doc:"Parent category, required for scope category"`
	Page             int    `query:"page" doc:"1-based page number"`
	PerPage          int    `query:"per_page" doc:"Items per page (max 100)"`
}

// FeedOutput wraps one feed page for Huma.
type FeedOutput struct {
	Body domain.FeedPage
}

func (s *Server) handleGetFeed(ctx context.Context, input *GetFeedInput) (*FeedOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Feed.GetFeed(ctx, userID, service.FeedRequest{
		Scope:            domain.FeedScope(input.Scope),
		ParentCategoryID: input.ParentCategoryID,
		Page: store.PageParams{
			Page:    input.Page,
			PerPage: input.PerPage,
		},
	})
	if err != nil {
		return nil, err
	}

	return &FeedOutput{Body: *page}, nil
}
