package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/arhub/ar-hub-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPagination(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	for i := 0; i < 15; i++ {
		env.createProject(t, owner, fmt.Sprintf("Scene %02d", i), models.VisibilityPublic)
	}

	rec := env.do(t, http.MethodGet, "/api/search?page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	decodeEnvelope(t, rec, true, &resp)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, int64(15), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.False(t, resp.Pagination.HasNextPage)
	assert.True(t, resp.Pagination.HasPrevPage)
}

func TestSearchTextMatch(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	env.createProject(t, owner, "Dragon Hunt", models.VisibilityPublic)
	env.createProject(t, owner, "Cat Cafe", models.VisibilityPublic)
	env.createProject(t, owner, "Dragon Lair", models.VisibilityPrivate)

	rec := env.do(t, http.MethodGet, "/api/search?q=dragon", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	decodeEnvelope(t, rec, true, &resp)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Dragon Hunt", resp.Results[0].Title)
	assert.Contains(t, resp.Suggestions, "Dragon Hunt")
}

func TestSearchPopularityOrder(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	quiet := env.createProject(t, owner, "Quiet", models.VisibilityPublic)
	popular := env.createProject(t, owner, "Popular", models.VisibilityPublic)
	for i := 0; i < 3; i++ {
		require.NoError(t, env.db.Create(&models.Download{ProjectID: popular.ID}).Error)
	}
	require.NoError(t, env.db.Create(&models.Download{ProjectID: quiet.ID}).Error)

	rec := env.do(t, http.MethodGet, "/api/search?sortBy=popularity", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	decodeEnvelope(t, rec, true, &resp)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Popular", resp.Results[0].Title)
}

func TestSearchSuggestsTagsOfMatchedProjects(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Dragon Hunt", models.VisibilityPublic)
	// The tag shares nothing with the query text; it is suggested because
	// its project matched.
	require.NoError(t, env.repos.ProjectTagRepo().AttachToProject(project.ID, []string{"Outdoor"}))

	rec := env.do(t, http.MethodGet, "/api/search?q=dragon", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	decodeEnvelope(t, rec, true, &resp)
	assert.Contains(t, resp.Suggestions, "Dragon Hunt")
	assert.Contains(t, resp.Suggestions, "Outdoor")
}

func TestSearchNoSuggestionsWithoutQuery(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	env.createProject(t, owner, "Scene", models.VisibilityPublic)

	rec := env.do(t, http.MethodGet, "/api/search", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	decodeEnvelope(t, rec, true, &resp)
	assert.Empty(t, resp.Suggestions)
	assert.NotNil(t, resp.Suggestions)
}

func TestSearchInvalidParams(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/search?sortBy=alphabetical", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/search?page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
