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
	"github.com/reelfeedapp/reelfeed-server/internal/search"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// VideoService manages video metadata, tagging, and the search index.
type VideoService struct {
	store  store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewVideoService creates a new video service. The search index is optional;
// when nil, indexing is skipped and Search returns an upstream error.
func NewVideoService(store store.Store, index *search.Index, logger *slog.Logger) *VideoService {
	return &VideoService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// CreateVideoRequest contains new video metadata. CategoryIDs are the leaf
// tags; parent tags are derived and never supplied by the client.
type CreateVideoRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=200"`
	Description  string   `json:"description" validate:"max=2000"`
	DurationSecs int      `json:"duration_secs" validate:"required,gt=0"`
	IsPublic     bool     `json:"is_public"`
	IsPremium    bool     `json:"is_premium"`
	CategoryIDs  []string `json:"category_ids" validate:"required,min=1,max=10,dive,required"`
}

// UpdateVideoRequest contains mutable video metadata. Nil fields are left
// unchanged.
type UpdateVideoRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"is_public"`
	IsPremium   *bool   `json:"is_premium"`
}

// CreateVideo registers a new video owned by creatorID.
func (s *VideoService) CreateVideo(ctx context.Context, creatorID string, req CreateVideoRequest) (*domain.Video, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	categories, err := s.resolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	videoID, err := id.Generate("vid")
	if err != nil {
		return nil, fmt.Errorf("generate video ID: %w", err)
	}

	now := time.Now()
	video := &domain.Video{
		ID:                videoID,
		CreatorID:         creatorID,
		Title:             req.Title,
		Description:       req.Description,
		DurationSecs:      req.DurationSecs,
		IsPublic:          req.IsPublic,
		IsPremium:         req.IsPremium,
		CategoryIDs:       req.CategoryIDs,
		ParentCategoryIDs: domain.ParentIDsOf(categories),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.CreateVideo(ctx, video); err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}

	s.indexVideo(ctx, video, categories)

	if s.logger != nil {
		s.logger.Info("Video created",
			"video_id", videoID,
			"creator_id", creatorID,
			"categories", len(req.CategoryIDs),
		)
	}

	return video, nil
}

// GetVideo returns a video, hiding private videos from everyone but their
// creator. viewerID may be empty for anonymous access.
func (s *VideoService) GetVideo(ctx context.Context, viewerID, videoID string) (*domain.Video, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("video not found")
		}
		return nil, fmt.Errorf("get video: %w", err)
	}

	if !video.IsPublic && video.CreatorID != viewerID {
		// Present as absent rather than forbidden.
		return nil, domainerrors.NotFound("video not found")
	}

	return video, nil
}

// UpdateVideo applies metadata changes. Only the creator may update.
func (s *VideoService) UpdateVideo(ctx context.Context, userID, videoID string, req UpdateVideoRequest) (*domain.Video, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("video not found")
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	if video.CreatorID != userID {
		return nil, domainerrors.Forbidden("only the creator may update a video")
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.IsPublic != nil {
		video.IsPublic = *req.IsPublic
	}
	if req.IsPremium != nil {
		video.IsPremium = *req.IsPremium
	}

	if err := s.store.UpdateVideo(ctx, video); err != nil {
		return nil, fmt.Errorf("update video: %w", err)
	}

	s.reindexVideo(ctx, video)

	return video, nil
}

// SetVideoCategories replaces a video's leaf tags and re-derives its parent
// tags. Only the creator may retag.
func (s *VideoService) SetVideoCategories(ctx context.Context, userID, videoID string, categoryIDs []string) (*domain.Video, error) {
	if len(categoryIDs) == 0 {
		return nil, domainerrors.Validation("category_ids must not be empty")
	}

	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("video not found")
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	if video.CreatorID != userID {
		return nil, domainerrors.Forbidden("only the creator may retag a video")
	}

	categories, err := s.resolveCategories(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	parentIDs := domain.ParentIDsOf(categories)
	if err := s.store.SetVideoCategories(ctx, videoID, categoryIDs, parentIDs); err != nil {
		return nil, fmt.Errorf("set video categories: %w", err)
	}

	video.CategoryIDs = categoryIDs
	video.ParentCategoryIDs = parentIDs

	s.indexVideo(ctx, video, categories)

	return video, nil
}

// DeleteVideo removes a video and its index entry. Only the creator may
// delete.
func (s *VideoService) DeleteVideo(ctx context.Context, userID, videoID string) error {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("video not found")
		}
		return fmt.Errorf("get video: %w", err)
	}
	if video.CreatorID != userID {
		return domainerrors.Forbidden("only the creator may delete a video")
	}

	if err := s.store.DeleteVideo(ctx, videoID); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if s.index != nil {
		if err := s.index.DeleteVideo(videoID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to remove video from search index",
				"video_id", videoID,
				"error", err,
			)
		}
	}

	return nil
}

// ListByCreator returns a creator's videos, newest first. Private videos
// are included only when the creator is viewing their own list.
func (s *VideoService) ListByCreator(ctx context.Context, viewerID, creatorID string, params store.PageParams) (*store.PagedResult[*domain.Video], error) {
	params.Validate()

	result, err := s.store.ListVideosByCreator(ctx, creatorID, params)
	if err != nil {
		return nil, fmt.Errorf("list videos by creator: %w", err)
	}

	if viewerID != creatorID {
		visible := result.Items[:0]
		for _, v := range result.Items {
			if v.IsPublic {
				visible = append(visible, v)
			}
		}
		result.Items = visible
	}

	return result, nil
}

// Search runs a full-text query against the video index.
func (s *VideoService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.index == nil {
		return nil, domainerrors.UpstreamUnavailable("search is not available")
	}
	if params.Query == "" {
		return nil, domainerrors.Validation("query must not be empty")
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}
	return result, nil
}

// SearchDocumentCount reports the number of indexed videos.
func (s *VideoService) SearchDocumentCount() (uint64, error) {
	if s.index == nil {
		return 0, domainerrors.UpstreamUnavailable("search is not available")
	}
	return s.index.DocumentCount()
}

// resolveCategories loads the given leaf categories and rejects the request
// if any ID is unknown.
func (s *VideoService) resolveCategories(ctx context.Context, categoryIDs []string) ([]*domain.Category, error) {
	categories, err := s.store.GetCategoriesByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	if len(categories) != len(categoryIDs) {
		found := make(map[string]bool, len(categories))
		for _, c := range categories {
			found[c.ID] = true
		}
		for _, cid := range categoryIDs {
			if !found[cid] {
				return nil, domainerrors.Validationf("unknown category: %s", cid)
			}
		}
	}
	return categories, nil
}

// indexVideo adds or replaces the video's search document. Index failures
// are logged, not returned; search lags rather than blocking writes.
func (s *VideoService) indexVideo(ctx context.Context, video *domain.Video, categories []*domain.Category) {
	if s.index == nil {
		return
	}

	creatorName := ""
	if creator, err := s.store.GetUser(ctx, video.CreatorID); err == nil {
		creatorName = creator.Username
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}

	doc := search.VideoToDocument(video, creatorName, names)
	if err := s.index.IndexVideo(doc); err != nil && s.logger != nil {
		s.logger.Warn("Failed to index video",
			"video_id", video.ID,
			"error", err,
		)
	}
}

// reindexVideo refreshes the index entry after a metadata change.
func (s *VideoService) reindexVideo(ctx context.Context, video *domain.Video) {
	if s.index == nil {
		return
	}
	categories, err := s.store.GetCategoriesByIDs(ctx, video.CategoryIDs)
	if err != nil {
		categories = nil
	}
	s.indexVideo(ctx, video, categories)
}
