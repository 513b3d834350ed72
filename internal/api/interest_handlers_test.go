package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
)

type parentsBody struct {
	Parents []*domain.ParentCategory `json:"parents"`
}

func TestParentInterests_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	ts.seedCategoryTree(t, "pcat-music", "cat-guitar")
	auth := ts.registerTestUser(t, "alice", "pcat-sports")

	resp := ts.api.Get("/api/v1/me/interests", authHeader(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[parentsBody]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Parents, 1)
	assert.Equal(t, "pcat-sports", envelope.Data.Parents[0].ID)

	// Replace the selection.
	resp = ts.api.Put("/api/v1/me/interests", authHeader(auth.AccessToken), map[string]any{
		"parent_category_ids": []string{"pcat-music"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Parents, 1)
	assert.Equal(t, "pcat-music", envelope.Data.Parents[0].ID)

	// Clearing is allowed.
	resp = ts.api.Put("/api/v1/me/interests", authHeader(auth.AccessToken), map[string]any{
		"parent_category_ids": []string{},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Parents)
}

func TestSetParentInterests_UnknownParent(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.registerTestUser(t, "bob")

	resp := ts.api.Put("/api/v1/me/interests", authHeader(auth.AccessToken), map[string]any{
		"parent_category_ids": []string{"pcat-nope"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestCategoryInterests_AccrueFromWatches(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	creator := ts.createStoreUser(t, "usr-creator")
	ts.seedVideo(t, "vid-1", creator.ID, []string{"cat-tennis"}, []string{"pcat-sports"})

	auth := ts.registerTestUser(t, "viewer")

	resp := ts.api.Post("/api/v1/watches", authHeader(auth.AccessToken), map[string]any{
		"video_id":      "vid-1",
		"watch_time":    0.5,
		"session_token": "sess-abc",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/me/interests/categories", authHeader(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[struct {
		Interests []*domain.CategoryInterest `json:"interests"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Interests, 1)
	assert.Equal(t, "cat-tennis", envelope.Data.Interests[0].CategoryID)
	assert.InDelta(t, 0.3, envelope.Data.Interests[0].Score, 1e-9)
}

func TestCategoryTrees_List(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	ts.seedCategoryTree(t, "pcat-music", "cat-guitar")

	resp := ts.api.Get("/api/v1/categories/trees")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[struct {
		Trees []CategoryTreeResponse `json:"trees"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Trees, 2)
}

func TestCreateCategory_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")

	resp := ts.api.Post("/api/v1/categories", map[string]any{
		"name":               "padel",
		"parent_category_id": "pcat-sports",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())

	auth := ts.registerTestUser(t, "admin")
	resp = ts.api.Post("/api/v1/categories", authHeader(auth.AccessToken), map[string]any{
		"name":               "padel",
		"parent_category_id": "pcat-sports",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Category]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "padel", envelope.Data.Name)
	assert.Equal(t, "pcat-sports", envelope.Data.ParentCategoryID)
}
