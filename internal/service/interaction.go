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

// ScoreInvalidator drops cached similarity scores after an interaction
// shifts a user's interest profile.
type ScoreInvalidator interface {
	Invalidate(userID, videoID string) error
}

// InteractionService records watches, likes, and follows, and applies the
// interest-accrual rules they trigger.
type InteractionService struct {
	store       store.Store
	invalidator ScoreInvalidator
	logger      *slog.Logger
}

// NewInteractionService creates a new interaction service. The invalidator
// is optional.
func NewInteractionService(store store.Store, invalidator ScoreInvalidator, logger *slog.Logger) *InteractionService {
	return &InteractionService{
		store:       store,
		invalidator: invalidator,
		logger:      logger,
	}
}

// RecordWatchRequest reports a viewing interaction. WatchTime is the
// fraction of the video watched; SessionToken identifies the playback
// session so repeated reports never double-count a view.
type RecordWatchRequest struct {
	VideoID      string  `json:"video_id" validate:"required"`
	WatchTime    float64 `json:"watch_time"`
	SessionToken string  `json:"session_token" validate:"required,max=128"`
}

// WatchResponse is the outcome of a recorded watch. MaxWatchTime is the
// furthest fraction the user has recorded for the video across all
// sessions, so clients can resume playback from it.
type WatchResponse struct {
	Watch        *domain.Watch `json:"watch"`
	ViewCounted  bool          `json:"view_counted"`
	MaxWatchTime float64       `json:"max_watch_time"`
}

// LikeResponse is the outcome of a like toggle or a status query. Likes is
// the video's counter after the operation.
type LikeResponse struct {
	VideoID string `json:"video_id"`
	Liked   bool   `json:"liked"`
	Likes   int64  `json:"likes"`
}

// FollowResponse is the outcome of a follow toggle or a status query.
// Followers is the creator's follower count after the operation.
type FollowResponse struct {
	CreatorID string `json:"creator_id"`
	Following bool   `json:"following"`
	Followers int    `json:"followers"`
}

// RecordWatch stores a watch and applies its engagement effects. The watch
// row is always written; the view counter and interest scores move only
// when the watch fraction reaches the qualifying threshold, and the view
// at most once per playback session.
func (s *InteractionService) RecordWatch(ctx context.Context, userID string, req RecordWatchRequest) (*WatchResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if domain.InvalidWatchTime(req.WatchTime) {
		return nil, domainerrors.Validation("watch_time is not a valid fraction")
	}

	video, err := s.visibleVideo(ctx, userID, req.VideoID)
	if err != nil {
		return nil, err
	}

	watchID, err := id.Generate("wat")
	if err != nil {
		return nil, fmt.Errorf("generate watch ID: %w", err)
	}

	now := time.Now()
	watch := domain.NewWatch(watchID, userID, video.ID, req.WatchTime, video.DurationSecs, now)

	if err := s.store.CreateWatch(ctx, watch); err != nil {
		return nil, fmt.Errorf("create watch: %w", err)
	}

	maxWatch, err := s.store.MaxWatchTime(ctx, userID, video.ID)
	if err != nil {
		return nil, fmt.Errorf("max watch time: %w", err)
	}

	resp := &WatchResponse{Watch: watch, MaxWatchTime: maxWatch}

	if !domain.QualifiesForInterest(watch.WatchTime) {
		return resp, nil
	}

	counted, err := s.store.RecordWatchSession(ctx, userID, video.ID, req.SessionToken, now)
	if err != nil {
		return nil, fmt.Errorf("record watch session: %w", err)
	}
	if counted {
		if err := s.store.IncrementVideoViews(ctx, video.ID); err != nil {
			return nil, fmt.Errorf("increment views: %w", err)
		}
		resp.ViewCounted = true
	}

	delta := domain.WatchInterestDelta(watch.WatchTime)
	if err := s.store.AccrueCategoryInterest(ctx, userID, video.CategoryIDs, delta, now); err != nil {
		return nil, fmt.Errorf("accrue interest: %w", err)
	}

	s.invalidateScore(userID, video.ID)

	return resp, nil
}

// ToggleLike likes an unliked video and unlikes a liked one. Row existence
// is authoritative under concurrent toggles: create-then-delete races
// resolve to whichever write landed, and the counter moves only alongside
// a successful row change. Unlikes never subtract interest.
func (s *InteractionService) ToggleLike(ctx context.Context, userID, videoID string) (*LikeResponse, error) {
	video, err := s.visibleVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	like := &domain.Like{
		UserID:    userID,
		VideoID:   video.ID,
		CreatedAt: now,
	}

	err = s.store.CreateLike(ctx, like)
	if err == nil {
		likes, err := s.store.AdjustVideoLikes(ctx, video.ID, 1)
		if err != nil {
			return nil, fmt.Errorf("adjust likes: %w", err)
		}
		if err := s.store.AccrueCategoryInterest(ctx, userID, video.CategoryIDs, domain.LikeInterestDelta(), now); err != nil {
			return nil, fmt.Errorf("accrue interest: %w", err)
		}
		s.invalidateScore(userID, video.ID)
		return &LikeResponse{VideoID: video.ID, Liked: true, Likes: likes}, nil
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		return nil, fmt.Errorf("create like: %w", err)
	}

	// Already liked: this toggle is an unlike.
	if err := s.store.DeleteLike(ctx, userID, video.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A concurrent toggle removed it first; report the counter as
			// that writer left it.
			current, err := s.store.GetVideo(ctx, video.ID)
			if err != nil {
				return nil, fmt.Errorf("get video: %w", err)
			}
			return &LikeResponse{VideoID: video.ID, Liked: false, Likes: current.Likes}, nil
		}
		return nil, fmt.Errorf("delete like: %w", err)
	}
	likes, err := s.store.AdjustVideoLikes(ctx, video.ID, -1)
	if err != nil {
		return nil, fmt.Errorf("adjust likes: %w", err)
	}

	return &LikeResponse{VideoID: video.ID, Liked: false, Likes: likes}, nil
}

// LikeStatus reports whether the user currently likes the video, along
// with the video's like counter.
func (s *InteractionService) LikeStatus(ctx context.Context, userID, videoID string) (*LikeResponse, error) {
	video, err := s.visibleVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	liked, err := s.store.IsLiked(ctx, userID, video.ID)
	if err != nil {
		return nil, fmt.Errorf("check like: %w", err)
	}
	return &LikeResponse{VideoID: video.ID, Liked: liked, Likes: video.Likes}, nil
}

// ToggleFollow follows an unfollowed creator and unfollows a followed one.
func (s *InteractionService) ToggleFollow(ctx context.Context, userID, creatorID string) (*FollowResponse, error) {
	if userID == creatorID {
		return nil, domainerrors.Validation("cannot follow yourself")
	}

	if _, err := s.store.GetUser(ctx, creatorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	follow := &domain.Follow{
		FollowerID: userID,
		FolloweeID: creatorID,
		CreatedAt:  time.Now(),
	}

	err := s.store.CreateFollow(ctx, follow)
	if err == nil {
		return s.followResponse(ctx, creatorID, true)
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		return nil, fmt.Errorf("create follow: %w", err)
	}

	if err := s.store.DeleteFollow(ctx, userID, creatorID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("delete follow: %w", err)
	}

	return s.followResponse(ctx, creatorID, false)
}

// FollowStatus reports whether userID follows creatorID, along with the
// creator's follower count.
func (s *InteractionService) FollowStatus(ctx context.Context, userID, creatorID string) (*FollowResponse, error) {
	if _, err := s.store.GetUser(ctx, creatorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	following, err := s.store.IsFollowing(ctx, userID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}
	return s.followResponse(ctx, creatorID, following)
}

func (s *InteractionService) followResponse(ctx context.Context, creatorID string, following bool) (*FollowResponse, error) {
	followers, err := s.store.CountFollowers(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	return &FollowResponse{CreatorID: creatorID, Following: following, Followers: followers}, nil
}

// ListWatchHistory returns the user's watch history, newest first.
func (s *InteractionService) ListWatchHistory(ctx context.Context, userID string, params store.PageParams) (*store.PagedResult[*domain.Watch], error) {
	params.Validate()

	result, err := s.store.ListWatchesForUser(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list watches: %w", err)
	}
	return result, nil
}

// visibleVideo loads a video the user may interact with.
func (s *InteractionService) visibleVideo(ctx context.Context, userID, videoID string) (*domain.Video, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("video not found")
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	if !video.IsPublic && video.CreatorID != userID {
		return nil, domainerrors.NotFound("video not found")
	}
	return video, nil
}

func (s *InteractionService) invalidateScore(userID, videoID string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(userID, videoID); err != nil && s.logger != nil {
		s.logger.Warn("Failed to invalidate similarity score",
			"user_id", userID,
			"video_id", videoID,
			"error", err,
		)
	}
}
