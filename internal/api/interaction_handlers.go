package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/service"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

func (s *Server) registerInteractionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recordWatch",
		Method:      http.MethodPost,
		Path:        "/api/v1/watches",
		Summary:     "Record watch",
		Description: "Records playback progress. Views and interest scores move only past the qualifying threshold, views at most once per playback session.",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordWatch)

	huma.Register(s.api, huma.Operation{
		OperationID: "listWatchHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/watches",
		Summary:     "List watch history",
		Description: "Lists the user's recorded watches, newest first",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListWatchHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/videos/{videoID}/like",
		Summary:     "Toggle like",
		Description: "Likes the video, or removes an existing like",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLikeStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/videos/{videoID}/like",
		Summary:     "Get like status",
		Description: "Reports whether the user has liked the video",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLikeStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFollow",
		Method:      http.MethodPost,
		Path:        "/api/v1/creators/{creatorID}/follow",
		Summary:     "Toggle follow",
		Description: "Follows the creator, or removes an existing follow",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleFollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFollowStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/creators/{creatorID}/follow",
		Summary:     "Get follow status",
		Description: "Reports whether the user follows the creator",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFollowStatus)
}

// === DTOs ===

// RecordWatchRequest is the request body for recording playback.
type RecordWatchRequest struct {
	VideoID      string  `json:"video_id" validate:"required" doc:"Watched video ID"`
	WatchTime    float64 `json:"watch_time" doc:"Fraction of the video watched, 0 to 1"`
	SessionToken string  `json:"session_token" validate:"required,max=128" doc:"Client playback session token for view dedup"`
}

// RecordWatchInput wraps the watch request for Huma.
type RecordWatchInput struct {
	Body RecordWatchRequest
}

// WatchResponse is the outcome of a recorded watch.
type WatchResponse struct {
	Watch        *domain.Watch `json:"watch" doc:"Stored watch record"`
	ViewCounted  bool          `json:"view_counted" doc:"Whether this watch counted a view"`
	MaxWatchTime float64       `json:"max_watch_time" doc:"Furthest fraction recorded for this video across all sessions"`
}

// WatchOutput wraps the watch response for Huma.
type WatchOutput struct {
	Body WatchResponse
}

// WatchHistoryInput carries pagination for watch history.
type WatchHistoryInput struct {
	Page    int `query:"page" doc:"1-based page number"`
	PerPage int `query:"per_page" doc:"Items per page (max 100)"`
}

// WatchHistoryOutput wraps one page of watches for Huma.
type WatchHistoryOutput struct {
	Body store.PagedResult[*domain.Watch]
}

// LikeStatusResponse reports a like toggle outcome or current status.
type LikeStatusResponse struct {
	VideoID string `json:"video_id" doc:"Video ID"`
	Liked   bool   `json:"liked" doc:"Whether the user likes the video"`
	Likes   int64  `json:"likes" doc:"The video's like count after the operation"`
}

// LikeStatusOutput wraps the like status for Huma.
type LikeStatusOutput struct {
	Body LikeStatusResponse
}

// CreatorIDInput identifies a creator by path.
type CreatorIDInput struct {
	CreatorID string `path:"creatorID" doc:"Creator user ID"`
}

// FollowStatusResponse reports a follow toggle outcome or current status.
type FollowStatusResponse struct {
	CreatorID string `json:"creator_id" doc:"Creator user ID"`
	Following bool   `json:"following" doc:"Whether the user follows the creator"`
	Followers int    `json:"followers" doc:"The creator's follower count after the operation"`
}

// FollowStatusOutput wraps the follow status for Huma.
type FollowStatusOutput struct {
	Body FollowStatusResponse
}

// === Handlers ===

func (s *Server) handleRecordWatch(ctx context.Context, input *RecordWatchInput) (*WatchOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Interaction.RecordWatch(ctx, userID, service.RecordWatchRequest{
		VideoID:      input.Body.VideoID,
		WatchTime:    input.Body.WatchTime,
		SessionToken: input.Body.SessionToken,
	})
	if err != nil {
		return nil, err
	}

	return &WatchOutput{
		Body: WatchResponse{
			Watch:        resp.Watch,
			ViewCounted:  resp.ViewCounted,
			MaxWatchTime: resp.MaxWatchTime,
		},
	}, nil
}

func (s *Server) handleListWatchHistory(ctx context.Context, input *WatchHistoryInput) (*WatchHistoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Interaction.ListWatchHistory(ctx, userID, store.PageParams{
		Page:    input.Page,
		PerPage: input.PerPage,
	})
	if err != nil {
		return nil, err
	}

	return &WatchHistoryOutput{Body: *result}, nil
}

func (s *Server) handleToggleLike(ctx context.Context, input *VideoIDInput) (*LikeStatusOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Interaction.ToggleLike(ctx, userID, input.VideoID)
	if err != nil {
		return nil, err
	}

	return &LikeStatusOutput{
		Body: LikeStatusResponse{VideoID: resp.VideoID, Liked: resp.Liked, Likes: resp.Likes},
	}, nil
}

func (s *Server) handleGetLikeStatus(ctx context.Context, input *VideoIDInput) (*LikeStatusOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Interaction.LikeStatus(ctx, userID, input.VideoID)
	if err != nil {
		return nil, err
	}

	return &LikeStatusOutput{
		Body: LikeStatusResponse{VideoID: resp.VideoID, Liked: resp.Liked, Likes: resp.Likes},
	}, nil
}

func (s *Server) handleToggleFollow(ctx context.Context, input *CreatorIDInput) (*FollowStatusOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Interaction.ToggleFollow(ctx, userID, input.CreatorID)
	if err != nil {
		return nil, err
	}

	return &FollowStatusOutput{
		Body: FollowStatusResponse{CreatorID: resp.CreatorID, Following: resp.Following, Followers: resp.Followers},
	}, nil
}

func (s *Server) handleGetFollowStatus(ctx context.Context, input *CreatorIDInput) (*FollowStatusOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Interaction.FollowStatus(ctx, userID, input.CreatorID)
	if err != nil {
		return nil, err
	}

	return &FollowStatusOutput{
		Body: FollowStatusResponse{CreatorID: resp.CreatorID, Following: resp.Following, Followers: resp.Followers},
	}, nil
}
