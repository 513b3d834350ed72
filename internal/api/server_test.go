package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/reelfeedapp/reelfeed-server/internal/auth"
	"github.com/reelfeedapp/reelfeed-server/internal/config"
	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/search"
	"github.com/reelfeedapp/reelfeed-server/internal/service"
	"github.com/reelfeedapp/reelfeed-server/internal/store/sqlite"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
}

// setupTestServer creates a test server with all dependencies on a temp
// SQLite database and a real search index.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	index, err := search.NewIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name: "Test Server",
			Port: "8080",
		},
		Auth: config.AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 30 * 24 * time.Hour,
		},
		Recommend: config.RecommendConfig{
			CandidateLimit: 200,
			Alpha:          1.0,
		},
	}

	tokenService, err := auth.NewTokenService(testKeyHex, cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
	require.NoError(t, err)

	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, logger)
	categoryService := service.NewCategoryService(st, logger)
	videoService := service.NewVideoService(st, index, logger)
	interactionService := service.NewInteractionService(st, nil, logger)
	interestService := service.NewInterestService(st, logger)
	recommender := service.NewRecommender(st, nil, service.RecommenderOptions{
		CandidateLimit: cfg.Recommend.CandidateLimit,
		Alpha:          cfg.Recommend.Alpha,
	}, logger)
	feedService := service.NewFeedService(st, recommender, logger)

	services := &Services{
		Auth:        authService,
		Session:     sessionService,
		Category:    categoryService,
		Video:       videoService,
		Interaction: interactionService,
		Interest:    interestService,
		Feed:        feedService,
		Recommender: recommender,
	}

	server := NewServer(cfg, st, services, logger)

	return &testServer{
		Server:       server,
		api:          humatest.Wrap(t, server.api),
		tokenService: tokenService,
	}
}

// registerTestUser registers a user through the API and returns the auth payload.
func (ts *testServer) registerTestUser(t *testing.T, username string, parentInterests ...string) AuthResponse {
	t.Helper()

	body := map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "SecurePassword123!",
	}
	if len(parentInterests) > 0 {
		body["parent_interests"] = parentInterests
	}

	resp := ts.api.Post("/api/v1/auth/register", body)
	require.Equal(t, 200, resp.Code, "register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

// authHeader formats a Bearer header value for humatest requests.
func authHeader(token string) string {
	return "Authorization: Bearer " + token
}

// seedCategoryTree inserts a parent category and one leaf directly in the store.
func (ts *testServer) seedCategoryTree(t *testing.T, parentID, categoryID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, ts.store.CreateParentCategory(ctx, &domain.ParentCategory{
		ID:        parentID,
		Name:      parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, ts.store.CreateCategory(ctx, &domain.Category{
		ID:               categoryID,
		Name:             categoryID,
		ParentCategoryID: parentID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}))
}

// seedVideo inserts a public video directly in the store.
func (ts *testServer) seedVideo(t *testing.T, id, creatorID string, categoryIDs, parentIDs []string) *domain.Video {
	t.Helper()
	now := time.Now()
	video := &domain.Video{
		ID:                id,
		CreatorID:         creatorID,
		Title:             "video " + id,
		DurationSecs:      120,
		IsPublic:          true,
		CategoryIDs:       categoryIDs,
		ParentCategoryIDs: parentIDs,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, ts.store.CreateVideo(context.Background(), video))
	return video
}

// createStoreUser inserts a user directly in the store, bypassing auth.
func (ts *testServer) createStoreUser(t *testing.T, id string) *domain.User {
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
	require.NoError(t, ts.store.CreateUser(context.Background(), user))
	return user
}
