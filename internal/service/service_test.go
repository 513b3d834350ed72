package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reelfeedapp/reelfeed-server/internal/auth"
	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
	"github.com/reelfeedapp/reelfeed-server/internal/store/sqlite"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func setupTestStore(t *testing.T) store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)
	return ts
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func createTestUser(t *testing.T, s store.Store, id string) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		ID:           id,
		Username:     id,
		Email:        id + "@example.com",
		PasswordHash: "$argon2id$fakehashfortest",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func createTestCategoryTree(t *testing.T, s store.Store, parentID, categoryID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.CreateParentCategory(ctx, &domain.ParentCategory{
		ID:        parentID,
		Name:      parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, s.CreateCategory(ctx, &domain.Category{
		ID:               categoryID,
		Name:             categoryID,
		ParentCategoryID: parentID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}))
}

func createTestVideo(t *testing.T, s store.Store, id, creatorID string, categoryIDs, parentIDs []string, createdAt time.Time) *domain.Video {
	t.Helper()
	video := &domain.Video{
		ID:                id,
		CreatorID:         creatorID,
		Title:             "video " + id,
		DurationSecs:      120,
		IsPublic:          true,
		CategoryIDs:       categoryIDs,
		ParentCategoryIDs: parentIDs,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
	require.NoError(t, s.CreateVideo(context.Background(), video))
	return video
}
