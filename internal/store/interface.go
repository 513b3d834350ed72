// Package store defines the persistence interface for the ReelFeed server.
package store

import (
	"context"
	"time"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	SetUserParentInterests(ctx context.Context, userID string, parentCategoryIDs []string) error
	GetUserParentInterests(ctx context.Context, userID string) ([]string, error)

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Categories
	CreateParentCategory(ctx context.Context, pc *domain.ParentCategory) error
	GetParentCategory(ctx context.Context, id string) (*domain.ParentCategory, error)
	ListParentCategories(ctx context.Context) ([]*domain.ParentCategory, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoriesByIDs(ctx context.Context, ids []string) ([]*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListCategoriesByParent(ctx context.Context, parentCategoryID string) ([]*domain.Category, error)

	// Videos
	CreateVideo(ctx context.Context, video *domain.Video) error
	GetVideo(ctx context.Context, id string) (*domain.Video, error)
	GetVideosByIDs(ctx context.Context, ids []string) ([]*domain.Video, error)
	UpdateVideo(ctx context.Context, video *domain.Video) error
	DeleteVideo(ctx context.Context, id string) error
	SetVideoCategories(ctx context.Context, videoID string, categoryIDs, parentCategoryIDs []string) error
	ListVideosByCreator(ctx context.Context, creatorID string, params PageParams) (*PagedResult[*domain.Video], error)
	IncrementVideoViews(ctx context.Context, videoID string) error
	AdjustVideoLikes(ctx context.Context, videoID string, delta int64) (int64, error)

	// Candidate selection
	ListInterestCandidates(ctx context.Context, userID string, parentCategoryIDs []string, limit int) ([]*domain.Video, error)
	ListPopularCandidates(ctx context.Context, userID string, limit int) ([]*domain.Video, error)
	ListCreatorCandidates(ctx context.Context, creatorIDs []string, limit int) ([]*domain.Video, error)
	ListCategoryCandidates(ctx context.Context, parentCategoryID string, limit int) ([]*domain.Video, error)

	// Watches
	CreateWatch(ctx context.Context, watch *domain.Watch) error
	RecordWatchSession(ctx context.Context, userID, videoID, sessionToken string, now time.Time) (bool, error)
	ListWatchesForUser(ctx context.Context, userID string, params PageParams) (*PagedResult[*domain.Watch], error)
	MaxWatchTime(ctx context.Context, userID, videoID string) (float64, error)

	// Likes
	CreateLike(ctx context.Context, like *domain.Like) error
	DeleteLike(ctx context.Context, userID, videoID string) error
	IsLiked(ctx context.Context, userID, videoID string) (bool, error)

	// Follows
	CreateFollow(ctx context.Context, follow *domain.Follow) error
	DeleteFollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFolloweeIDs(ctx context.Context, followerID string) ([]string, error)
	CountFollowers(ctx context.Context, userID string) (int, error)

	// Category interests
	AccrueCategoryInterest(ctx context.Context, userID string, categoryIDs []string, delta float64, now time.Time) error
	GetCategoryInterests(ctx context.Context, userID string) ([]*domain.CategoryInterest, error)
	GetInterestScores(ctx context.Context, userID string) (map[string]float64, error)
}
