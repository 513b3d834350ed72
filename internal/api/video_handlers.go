package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/search"
	"github.com/reelfeedapp/reelfeed-server/internal/service"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

func (s *Server) registerVideoRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createVideo",
		Method:      http.MethodPost,
		Path:        "/api/v1/videos",
		Summary:     "Create video",
		Description: "Registers uploaded video metadata with at least one category tag",
		Tags:        []string{"Videos"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateVideo)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVideo",
		Method:      http.MethodGet,
		Path:        "/api/v1/videos/{videoID}",
		Summary:     "Get video",
		Description: "Returns video metadata. Private videos are visible to their creator only.",
		Tags:        []string{"Videos"},
	}, s.handleGetVideo)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateVideo",
		Method:      http.MethodPatch,
		Path:        "/api/v1/videos/{videoID}",
		Summary:     "Update video",
		Description: "Updates mutable video metadata. Creator only.",
		Tags:        []string{"Videos"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateVideo)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteVideo",
		Method:      http.MethodDelete,
		Path:        "/api/v1/videos/{videoID}",
		Summary:     "Delete video",
		Description: "Removes a video and its search index entry. Creator only.",
		Tags:        []string{"Videos"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteVideo)

	huma.Register(s.api, huma.Operation{
		OperationID: "setVideoCategories",
		Method:      http.MethodPut,
		Path:        "/api/v1/videos/{videoID}/categories",
		Summary:     "Replace video categories",
		Description: "Replaces a video's leaf tags and re-derives its parent categories. Creator only.",
		Tags:        []string{"Videos"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetVideoCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCreatorVideos",
		Method:      http.MethodGet,
		Path:        "/api/v1/creators/{creatorID}/videos",
		Summary:     "List creator videos",
		Description: "Lists a creator's videos, newest first. Private videos show for the creator only.",
		Tags:        []string{"Videos"},
	}, s.handleListCreatorVideos)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchVideos",
		Method:      http.MethodGet,
		Path:        "/api/v1/videos/search",
		Summary:     "Search videos",
		Description: "Full-text search over video titles and descriptions with filters",
		Tags:        []string{"Videos"},
	}, s.handleSearchVideos)
}

// === DTOs ===

// CreateVideoRequest is the request body for video creation.
type CreateVideoRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=200" doc:"Video title"`
	Description  string   `json:"description,omitempty" validate:"omitempty,max=2000" doc:"Video description"`
	DurationSecs int      `json:"duration_secs" validate:"required,gt=0" doc:"Duration in seconds"`
	IsPublic     bool     `json:"is_public" doc:"Whether the video is publicly visible"`
	IsPremium    bool     `json:"is_premium" doc:"Whether the video is premium content"`
	CategoryIDs  []string `json:"category_ids" validate:"required,min=1,max=10" doc:"Leaf category tags"`
}

// CreateVideoInput wraps the request for Huma.
type CreateVideoInput struct {
	Body CreateVideoRequest
}

// VideoOutput wraps a single video for Huma.
type VideoOutput struct {
	Body *domain.Video
}

// VideoIDInput identifies a video by path.
type VideoIDInput struct {
	VideoID string `path:"videoID" doc:"Video ID"`
}

// UpdateVideoRequest is the request body for metadata updates. Absent
// fields are left unchanged.
type UpdateVideoRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200" doc:"New title"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000" doc:"New description"`
	IsPublic    *bool   `json:"is_public,omitempty" doc:"New visibility"`
	IsPremium   *bool   `json:"is_premium,omitempty" doc:"New premium flag"`
}

// UpdateVideoInput wraps the update request for Huma.
type UpdateVideoInput struct {
	VideoID string `path:"videoID" doc:"Video ID"`
	Body    UpdateVideoRequest
}

// SetVideoCategoriesRequest is the request body for retagging.
type SetVideoCategoriesRequest struct {
	CategoryIDs []string `json:"category_ids" validate:"required,min=1,max=10" doc:"Replacement leaf category tags"`
}

// SetVideoCategoriesInput wraps the retag request for Huma.
type SetVideoCategoriesInput struct {
	VideoID string `path:"videoID" doc:"Video ID"`
	Body    SetVideoCategoriesRequest
}

// ListCreatorVideosInput carries the creator ID and pagination.
type ListCreatorVideosInput struct {
	CreatorID string `path:"creatorID" doc:"Creator user ID"`
	Page      int    `query:"page" doc:"1-based page number"`
	PerPage   int    `query:"per_page" doc:"Items per page (max 100)"`
}

// VideoPageOutput wraps one page of videos for Huma.
type VideoPageOutput struct {
	Body store.PagedResult[*domain.Video]
}

// SearchVideosInput carries full-text search parameters.
type SearchVideosInput struct {
	Query            string `query:"q" doc:"Search query"`
	ParentCategoryID string `query:"parent_category_id" doc:"Restrict to a parent category"`
	CreatorID        string `query:"creator_id" doc:"Restrict to a creator"`
	MinDurationSecs  int    `query:"min_duration" doc:"Minimum duration in seconds"`
	MaxDurationSecs  int    `query:"max_duration" doc:"Maximum duration in seconds"`
	Limit            int    `query:"limit" doc:"Maximum hits to return"`
	Offset           int    `query:"offset" doc:"Hits to skip"`
	SortBy           string `query:"sort" enum:"relevance,recent,views,duration" default:"relevance" doc:"Sort order"`
}

// SearchVideosOutput wraps search results for Huma.
type SearchVideosOutput struct {
	Body *search.Result
}

// === Handlers ===

func (s *Server) handleCreateVideo(ctx context.Context, input *CreateVideoInput) (*VideoOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	video, err := s.services.Video.CreateVideo(ctx, userID, service.CreateVideoRequest{
		Title:        input.Body.Title,
		Description:  input.Body.Description,
		DurationSecs: input.Body.DurationSecs,
		IsPublic:     input.Body.IsPublic,
		IsPremium:    input.Body.IsPremium,
		CategoryIDs:  input.Body.CategoryIDs,
	})
	if err != nil {
		return nil, err
	}

	return &VideoOutput{Body: video}, nil
}

func (s *Server) handleGetVideo(ctx context.Context, input *VideoIDInput) (*VideoOutput, error) {
	// Viewer may be anonymous; private videos then present as absent.
	viewerID, _ := ctx.Value(userIDKey).(string)

	video, err := s.services.Video.GetVideo(ctx, viewerID, input.VideoID)
	if err != nil {
		return nil, err
	}

	return &VideoOutput{Body: video}, nil
}

func (s *Server) handleUpdateVideo(ctx context.Context, input *UpdateVideoInput) (*VideoOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	video, err := s.services.Video.UpdateVideo(ctx, userID, input.VideoID, service.UpdateVideoRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		IsPublic:    input.Body.IsPublic,
		IsPremium:   input.Body.IsPremium,
	})
	if err != nil {
		return nil, err
	}

	return &VideoOutput{Body: video}, nil
}

func (s *Server) handleDeleteVideo(ctx context.Context, input *VideoIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Video.DeleteVideo(ctx, userID, input.VideoID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Video deleted"}}, nil
}

func (s *Server) handleSetVideoCategories(ctx context.Context, input *SetVideoCategoriesInput) (*VideoOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	video, err := s.services.Video.SetVideoCategories(ctx, userID, input.VideoID, input.Body.CategoryIDs)
	if err != nil {
		return nil, err
	}

	return &VideoOutput{Body: video}, nil
}

func (s *Server) handleListCreatorVideos(ctx context.Context, input *ListCreatorVideosInput) (*VideoPageOutput, error) {
	viewerID, _ := ctx.Value(userIDKey).(string)

	result, err := s.services.Video.ListByCreator(ctx, viewerID, input.CreatorID, store.PageParams{
		Page:    input.Page,
		PerPage: input.PerPage,
	})
	if err != nil {
		return nil, err
	}

	return &VideoPageOutput{Body: *result}, nil
}

func (s *Server) handleSearchVideos(ctx context.Context, input *SearchVideosInput) (*SearchVideosOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.ParentCategoryID = input.ParentCategoryID
	params.CreatorID = input.CreatorID
	params.MinDurationSecs = input.MinDurationSecs
	params.MaxDurationSecs = input.MaxDurationSecs
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}

	result, err := s.services.Video.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchVideosOutput{Body: result}, nil
}
