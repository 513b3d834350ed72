package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

func TestRecordWatch_CountsViewOncePerSession(t *testing.T) {
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

	var envelope testEnvelope[WatchResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.ViewCounted)
	require.NotNil(t, envelope.Data.Watch)
	assert.InDelta(t, 0.5, envelope.Data.Watch.WatchTime, 1e-9)

	// Same playback session records the watch but not another view.
	resp = ts.api.Post("/api/v1/watches", authHeader(auth.AccessToken), map[string]any{
		"video_id":      "vid-1",
		"watch_time":    0.9,
		"session_token": "sess-abc",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.ViewCounted)
}

func TestRecordWatch_SubThresholdSkim(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	creator := ts.createStoreUser(t, "usr-creator")
	ts.seedVideo(t, "vid-1", creator.ID, []string{"cat-tennis"}, []string{"pcat-sports"})

	auth := ts.registerTestUser(t, "viewer")

	resp := ts.api.Post("/api/v1/watches", authHeader(auth.AccessToken), map[string]any{
		"video_id":      "vid-1",
		"watch_time":    0.1,
		"session_token": "sess-abc",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[WatchResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.ViewCounted)
}

func TestRecordWatch_UnknownVideo(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.registerTestUser(t, "viewer")

	resp := ts.api.Post("/api/v1/watches", authHeader(auth.AccessToken), map[string]any{
		"video_id":      "vid-nope",
		"watch_time":    0.5,
		"session_token": "sess-abc",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestToggleLike_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	creator := ts.createStoreUser(t, "usr-creator")
	ts.seedVideo(t, "vid-1", creator.ID, []string{"cat-tennis"}, []string{"pcat-sports"})

	auth := ts.registerTestUser(t, "viewer")

	resp := ts.api.Post("/api/v1/videos/vid-1/like", authHeader(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[LikeStatusResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Liked)
	assert.Equal(t, int64(1), envelope.Data.Likes)

	resp = ts.api.Get("/api/v1/videos/vid-1/like", authHeader(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Liked)
	assert.Equal(t, int64(1), envelope.Data.Likes)

	// Second toggle removes the like.
	resp = ts.api.Post("/api/v1/videos/vid-1/like", authHeader(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Liked)
	assert.Zero(t, envelope.Data.Likes)
}

func TestToggleFollow_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	creator := ts.createStoreUser(t, "usr-creator")
	auth := ts.registerTestUser(t, "viewer")

	resp := ts.api.Post("/api/v1/creators/"+creator.ID+"/follow", authHeader(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[FollowStatusResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Following)
	assert.Equal(t, 1, envelope.Data.Followers)

	resp = ts.api.Post("/api/v1/creators/"+creator.ID+"/follow", authHeader(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Following)
	assert.Zero(t, envelope.Data.Followers)
}

func TestToggleFollow_Self(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.registerTestUser(t, "loner")

	resp := ts.api.Post("/api/v1/creators/"+auth.User.ID+"/follow", authHeader(auth.AccessToken))
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestListWatchHistory(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")
	creator := ts.createStoreUser(t, "usr-creator")
	ts.seedVideo(t, "vid-1", creator.ID, []string{"cat-tennis"}, []string{"pcat-sports"})
	ts.seedVideo(t, "vid-2", creator.ID, []string{"cat-tennis"}, []string{"pcat-sports"})

	auth := ts.registerTestUser(t, "viewer")

	for i, videoID := range []string{"vid-1", "vid-2"} {
		resp := ts.api.Post("/api/v1/watches", authHeader(auth.AccessToken), map[string]any{
			"video_id":      videoID,
			"watch_time":    0.5,
			"session_token": "sess-" + string(rune('a'+i)),
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Get("/api/v1/me/watches", authHeader(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[store.PagedResult[*domain.Watch]]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Items, 2)
}
