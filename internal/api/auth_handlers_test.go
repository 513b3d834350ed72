package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCategoryTree(t, "pcat-sports", "cat-tennis")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         "SecurePassword123!",
		"bio":              "hi there",
		"parent_interests": []string{"pcat-sports"},
	})

	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Positive(t, envelope.Data.ExpiresIn)
	assert.Equal(t, "alice", envelope.Data.User.Username)
	assert.Equal(t, "alice@example.com", envelope.Data.User.Email)
	assert.Equal(t, []string{"pcat-sports"}, envelope.Data.User.ParentInterests)
}

func TestRegister_UnknownParentInterest(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username":         "bob",
		"email":            "bob@example.com",
		"password":         "SecurePassword123!",
		"parent_interests": []string{"pcat-nope"},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "carol")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "carol",
		"email":    "carol2@example.com",
		"password": "SecurePassword123!",
	})

	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())
}

func TestLogin_ByUsernameAndEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "dave")

	for _, identifier := range []string{"dave", "dave@example.com"} {
		resp := ts.api.Post("/api/v1/auth/login", map[string]any{
			"identifier": identifier,
			"password":   "SecurePassword123!",
		})
		assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var envelope testEnvelope[AuthResponse]
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		assert.Equal(t, "dave", envelope.Data.User.Username)
		assert.NotEmpty(t, envelope.Data.AccessToken)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "erin")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"identifier": "erin",
		"password":   "WrongPassword123!",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Error)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.registerTestUser(t, "frank")

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": auth.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.NotEqual(t, auth.RefreshToken, envelope.Data.RefreshToken)

	// The spent token no longer refreshes.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": auth.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
}

func TestLogout_Idempotent(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.registerTestUser(t, "grace")

	resp := ts.api.Post("/api/v1/auth/logout", map[string]any{
		"refresh_token": auth.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Logging out again with the same token is not an error.
	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"refresh_token": auth.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The revoked token no longer refreshes.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": auth.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
}

func TestProtectedRoute_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/me/interests")
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/me/interests", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
}
