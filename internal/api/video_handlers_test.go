package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/search"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

func createVideoViaAPI(t *testing.T, ts *testServer, token, title string, categoryIDs []string, public bool) domain.Video {
	t.Helper()

	resp := ts.api.Post("/api/v1/videos", authHeader(token), map[string]any{
		"title":         title,
		"duration_secs": 120,
		"is_public":     public,
		"is_premium":    false,
		"category_ids":  categoryIDs,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Video]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCreateVideo_DerivesParents(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	ts.seedCategoryTree(t, "pcat-music", "cat-guitar")
	auth := ts.registerTestUser(t, "creator")

	video := createVideoViaAPI(t, ts, auth.AccessToken, "Morning rally", []string{"cat-tennis", "cat-guitar"}, true)

	assert.Equal(t, auth.User.ID, video.CreatorID)
	assert.ElementsMatch(t, []string{"cat-tennis", "cat-guitar"}, video.CategoryIDs)
	assert.ElementsMatch(t, []string{"pcat-sports", "pcat-music"}, video.ParentCategoryIDs)
}

func TestCreateVideo_UnknownCategory(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.registerTestUser(t, "creator")

	resp := ts.api.Post("/api/v1/videos", authHeader(auth.AccessToken), map[string]any{
		"title":         "Nope",
		"duration_secs": 60,
		"is_public":     true,
		"is_premium":    false,
		"category_ids":  []string{"cat-nope"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestGetVideo_PrivatePresentsAsAbsent(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	creator := ts.registerTestUser(t, "creator")
	other := ts.registerTestUser(t, "other")

	video := createVideoViaAPI(t, ts, creator.AccessToken, "Private drills", []string{"cat-tennis"}, false)

	// Creator can read it.
	resp := ts.api.Get("/api/v1/videos/"+video.ID, authHeader(creator.AccessToken))
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Everyone else gets a 404, not a 403.
	resp = ts.api.Get("/api/v1/videos/"+video.ID, authHeader(other.AccessToken))
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/videos/" + video.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestUpdateVideo_OwnershipEnforced(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	creator := ts.registerTestUser(t, "creator")
	other := ts.registerTestUser(t, "other")

	video := createVideoViaAPI(t, ts, creator.AccessToken, "Original", []string{"cat-tennis"}, true)

	resp := ts.api.Patch("/api/v1/videos/"+video.ID, authHeader(other.AccessToken), map[string]any{
		"title": "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code, resp.Body.String())

	resp = ts.api.Patch("/api/v1/videos/"+video.ID, authHeader(creator.AccessToken), map[string]any{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Video]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Renamed", envelope.Data.Title)
}

func TestDeleteVideo(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	creator := ts.registerTestUser(t, "creator")

	video := createVideoViaAPI(t, ts, creator.AccessToken, "Doomed", []string{"cat-tennis"}, true)

	resp := ts.api.Delete("/api/v1/videos/"+video.ID, authHeader(creator.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/videos/"+video.ID, authHeader(creator.AccessToken))
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestSetVideoCategories_RederivesParents(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	ts.seedCategoryTree(t, "pcat-music", "cat-guitar")
	creator := ts.registerTestUser(t, "creator")

	video := createVideoViaAPI(t, ts, creator.AccessToken, "Retagged", []string{"cat-tennis"}, true)

	resp := ts.api.Put("/api/v1/videos/"+video.ID+"/categories", authHeader(creator.AccessToken), map[string]any{
		"category_ids": []string{"cat-guitar"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Video]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"cat-guitar"}, envelope.Data.CategoryIDs)
	assert.Equal(t, []string{"pcat-music"}, envelope.Data.ParentCategoryIDs)
}

func TestSearchVideos(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-music", "cat-guitar")
	creator := ts.registerTestUser(t, "creator")

	createVideoViaAPI(t, ts, creator.AccessToken, "Beginner guitar lesson", []string{"cat-guitar"}, true)
	createVideoViaAPI(t, ts, creator.AccessToken, "Morning yoga flow", []string{"cat-guitar"}, true)

	resp := ts.api.Get("/api/v1/videos/search?q=guitar")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[search.Result]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Hits, 1)
	assert.Equal(t, "Beginner guitar lesson", envelope.Data.Hits[0].Title)
}

func TestSearchVideos_EmptyQuery(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/videos/search")
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestListCreatorVideos_HidesPrivateFromOthers(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	creator := ts.registerTestUser(t, "creator")
	other := ts.registerTestUser(t, "other")

	createVideoViaAPI(t, ts, creator.AccessToken, "Public clip", []string{"cat-tennis"}, true)
	createVideoViaAPI(t, ts, creator.AccessToken, "Private clip", []string{"cat-tennis"}, false)

	resp := ts.api.Get("/api/v1/creators/"+creator.User.ID+"/videos", authHeader(other.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[store.PagedResult[*domain.Video]]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Items, 1)
	assert.Equal(t, "Public clip", envelope.Data.Items[0].Title)

	resp = ts.api.Get("/api/v1/creators/"+creator.User.ID+"/videos", authHeader(creator.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Items, 2)
}
