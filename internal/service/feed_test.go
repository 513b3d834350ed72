package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"

	apperrors "github.com/reelfeedapp/reelfeed-server/internal/errors"
)

func setupTestFeedService(t *testing.T) (*FeedService, store.Store) {
	t.Helper()
	s := setupTestStore(t)
	rec := NewRecommender(s, nil, RecommenderOptions{Alpha: 1}, testLogger())
	return NewFeedService(s, rec, testLogger()), s
}

func seedFeedFixture(t *testing.T, s store.Store, videoCount int) {
	t.Helper()
	ctx := context.Background()

	createTestUser(t, s, "usr-viewer")
	createTestUser(t, s, "usr-creator")
	createTestCategoryTree(t, s, "pcat-music", "cat-guitar")
	require.NoError(t, s.SetUserParentInterests(ctx, "usr-viewer", []string{"pcat-music"}))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range videoCount {
		id := fmt.Sprintf("vid-%03d", i)
		createTestVideo(t, s, id, "usr-creator", []string{"cat-guitar"}, []string{"pcat-music"}, base.Add(time.Duration(i)*time.Minute))
	}
}

func TestFeedService_HomeFeed_PaginationWalk(t *testing.T) {
	svc, s := setupTestFeedService(t)
	seedFeedFixture(t, s, 7)
	ctx := context.Background()

	// Walk all pages: no duplicates, no gaps, HasMore flips on the last page.
	seen := make(map[string]bool)
	var order []string
	for page := 1; ; page++ {
		feed, err := svc.GetFeed(ctx, "usr-viewer", FeedRequest{
			Scope: domain.FeedScopeHome,
			Page:  store.PageParams{Page: page, PerPage: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, page, feed.Page)

		for _, rv := range feed.Videos {
			assert.False(t, seen[rv.Video.ID], "duplicate video %s", rv.Video.ID)
			seen[rv.Video.ID] = true
			order = append(order, rv.Video.ID)
		}
		if !feed.HasMore {
			break
		}
	}
	require.Len(t, order, 7)

	// With no accrued interest everything ties at zero: newest first.
	assert.Equal(t, "vid-006", order[0])
	assert.Equal(t, "vid-000", order[6])
}

func TestFeedService_HomeFeed_Deterministic(t *testing.T) {
	svc, s := setupTestFeedService(t)
	seedFeedFixture(t, s, 5)
	ctx := context.Background()

	req := FeedRequest{
		Scope: domain.FeedScopeHome,
		Page:  store.PageParams{Page: 1, PerPage: 5},
	}

	first, err := svc.GetFeed(ctx, "usr-viewer", req)
	require.NoError(t, err)
	second, err := svc.GetFeed(ctx, "usr-viewer", req)
	require.NoError(t, err)

	require.Len(t, second.Videos, len(first.Videos))
	for i := range first.Videos {
		assert.Equal(t, first.Videos[i].Video.ID, second.Videos[i].Video.ID)
		assert.Equal(t, first.Videos[i].Score, second.Videos[i].Score)
	}
}

func TestFeedService_HomeFeed_PastEnd(t *testing.T) {
	svc, s := setupTestFeedService(t)
	seedFeedFixture(t, s, 2)

	feed, err := svc.GetFeed(context.Background(), "usr-viewer", FeedRequest{
		Scope: domain.FeedScopeHome,
		Page:  store.PageParams{Page: 5, PerPage: 10},
	})
	require.NoError(t, err)
	assert.Empty(t, feed.Videos)
	assert.False(t, feed.HasMore)
}

func TestFeedService_FollowingFeed(t *testing.T) {
	svc, s := setupTestFeedService(t)
	seedFeedFixture(t, s, 3)
	ctx := context.Background()

	createTestUser(t, s, "usr-other")
	createTestVideo(t, s, "vid-other", "usr-other", []string{"cat-guitar"}, []string{"pcat-music"},
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{
		FollowerID: "usr-viewer",
		FolloweeID: "usr-creator",
		CreatedAt:  time.Now(),
	}))

	feed, err := svc.GetFeed(ctx, "usr-viewer", FeedRequest{
		Scope: domain.FeedScopeFollowing,
		Page:  store.DefaultPageParams(),
	})
	require.NoError(t, err)
	require.Len(t, feed.Videos, 3)

	// Newest first, only followed creators.
	assert.Equal(t, "vid-002", feed.Videos[0].Video.ID)
	for _, rv := range feed.Videos {
		assert.Equal(t, "usr-creator", rv.Video.CreatorID)
	}
}

func TestFeedService_CategoryFeed(t *testing.T) {
	svc, s := setupTestFeedService(t)
	seedFeedFixture(t, s, 3)

	feed, err := svc.GetFeed(context.Background(), "usr-viewer", FeedRequest{
		Scope:            domain.FeedScopeCategory,
		ParentCategoryID: "pcat-music",
		Page:             store.DefaultPageParams(),
	})
	require.NoError(t, err)
	require.Len(t, feed.Videos, 3)
	assert.Equal(t, "vid-002", feed.Videos[0].Video.ID)
}

func TestFeedService_FollowingFeed_RankedByInterest(t *testing.T) {
	svc, s := setupTestFeedService(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-viewer")
	createTestUser(t, s, "usr-creator")
	createTestCategoryTree(t, s, "pcat-music", "cat-guitar")
	createTestCategoryTree(t, s, "pcat-sports", "cat-tennis")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createTestVideo(t, s, "vid-old-guitar", "usr-creator", []string{"cat-guitar"}, []string{"pcat-music"}, base)
	createTestVideo(t, s, "vid-new-tennis", "usr-creator", []string{"cat-tennis"}, []string{"pcat-sports"}, base.Add(time.Hour))

	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{
		FollowerID: "usr-viewer",
		FolloweeID: "usr-creator",
		CreatedAt:  time.Now(),
	}))
	require.NoError(t, s.AccrueCategoryInterest(ctx, "usr-viewer", []string{"cat-guitar"}, 0.5, time.Now()))

	feed, err := svc.GetFeed(ctx, "usr-viewer", FeedRequest{
		Scope: domain.FeedScopeFollowing,
		Page:  store.DefaultPageParams(),
	})
	require.NoError(t, err)
	require.Len(t, feed.Videos, 2)

	// Accrued interest outranks recency.
	assert.Equal(t, "vid-old-guitar", feed.Videos[0].Video.ID)
	assert.InDelta(t, 0.5, feed.Videos[0].Score, 1e-9)
	assert.Equal(t, "vid-new-tennis", feed.Videos[1].Video.ID)
}

func TestFeedService_FollowingFeed_NobodyFollowed(t *testing.T) {
	svc, s := setupTestFeedService(t)
	seedFeedFixture(t, s, 2)

	feed, err := svc.GetFeed(context.Background(), "usr-viewer", FeedRequest{
		Scope: domain.FeedScopeFollowing,
		Page:  store.DefaultPageParams(),
	})
	require.NoError(t, err)
	assert.Empty(t, feed.Videos)
	assert.False(t, feed.HasMore)
}

func TestFeedService_CategoryFeed_RankedByInterest(t *testing.T) {
	svc, s := setupTestFeedService(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-viewer")
	createTestUser(t, s, "usr-creator")
	createTestCategoryTree(t, s, "pcat-music", "cat-guitar")
	now := time.Now()
	require.NoError(t, s.CreateCategory(ctx, &domain.Category{
		ID:               "cat-piano",
		Name:             "cat-piano",
		ParentCategoryID: "pcat-music",
		CreatedAt:        now,
		UpdatedAt:        now,
	}))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createTestVideo(t, s, "vid-old-guitar", "usr-creator", []string{"cat-guitar"}, []string{"pcat-music"}, base)
	createTestVideo(t, s, "vid-new-piano", "usr-creator", []string{"cat-piano"}, []string{"pcat-music"}, base.Add(time.Hour))

	require.NoError(t, s.AccrueCategoryInterest(ctx, "usr-viewer", []string{"cat-guitar"}, 0.5, time.Now()))

	feed, err := svc.GetFeed(ctx, "usr-viewer", FeedRequest{
		Scope:            domain.FeedScopeCategory,
		ParentCategoryID: "pcat-music",
		Page:             store.DefaultPageParams(),
	})
	require.NoError(t, err)
	require.Len(t, feed.Videos, 2)
	assert.Equal(t, "vid-old-guitar", feed.Videos[0].Video.ID)
	assert.InDelta(t, 0.5, feed.Videos[0].Score, 1e-9)
}

func TestFeedService_CategoryFeed_UnknownParent(t *testing.T) {
	svc, s := setupTestFeedService(t)
	seedFeedFixture(t, s, 1)

	_, err := svc.GetFeed(context.Background(), "usr-viewer", FeedRequest{
		Scope:            domain.FeedScopeCategory,
		ParentCategoryID: "pcat-missing",
		Page:             store.DefaultPageParams(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestFeedService_CategoryFeed_MissingParentID(t *testing.T) {
	svc, s := setupTestFeedService(t)
	seedFeedFixture(t, s, 1)

	_, err := svc.GetFeed(context.Background(), "usr-viewer", FeedRequest{
		Scope: domain.FeedScopeCategory,
		Page:  store.DefaultPageParams(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestFeedService_InvalidScope(t *testing.T) {
	svc, s := setupTestFeedService(t)
	seedFeedFixture(t, s, 1)

	_, err := svc.GetFeed(context.Background(), "usr-viewer", FeedRequest{
		Scope: domain.FeedScope("trending"),
		Page:  store.DefaultPageParams(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}
