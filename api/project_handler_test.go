package api

import (
	"net/http"
	"testing"

	"github.com/arhub/ar-hub-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectPublicAnonymous(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Public Scene", models.VisibilityPublic)

	rec := env.do(t, http.MethodGet, "/api/projects/"+project.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail ProjectDetail
	decodeEnvelope(t, rec, true, &detail)
	assert.Equal(t, "Public Scene", detail.Project.Title)
	assert.Equal(t, "Alice", detail.Owner.Name)
}

func TestGetProjectPrivateAnonymous(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Secret", models.VisibilityPrivate)

	rec := env.do(t, http.MethodGet, "/api/projects/"+project.ID.String(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProjectPrivateNonOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Secret", models.VisibilityPrivate)

	rec := env.do(t, http.MethodGet, "/api/projects/"+project.ID.String(), "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetProjectPrivateOwnerAndAdmin(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Secret", models.VisibilityPrivate)

	rec := env.do(t, http.MethodGet, "/api/projects/"+project.ID.String(), "alice-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/projects/"+project.ID.String(), "admin-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetProjectInvalidID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/projects/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProjectMissing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/projects/00000000-0000-0000-0000-000000000001", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProjectResolvesAssetURLs(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "With Assets", models.VisibilityPublic)
	require.NoError(t, env.db.Create(&models.Asset{
		ProjectID: project.ID,
		Kind:      models.AssetKindModel,
		FileKey:   "projects/k/model/scene.glb",
		FileName:  "scene.glb",
		Mime:      "model/gltf-binary",
		SizeBytes: 2048,
	}).Error)

	rec := env.do(t, http.MethodGet, "/api/projects/"+project.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail ProjectDetail
	decodeEnvelope(t, rec, true, &detail)
	require.Len(t, detail.Assets, 1)
	require.NotNil(t, detail.Assets[0].URL)
	assert.Contains(t, *detail.Assets[0].URL, "/api/files?token=")
}

func TestCreateProjectRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/projects/", "", map[string]any{"title": "X"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProjectWithTags(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/projects/", "alice-token", map[string]any{
		"title":       "New Scene",
		"description": "A scene",
		"category":    "games",
		"tags":        []string{"AR", "Markerless"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var detail ProjectDetail
	decodeEnvelope(t, rec, true, &detail)
	assert.Equal(t, "New Scene", detail.Project.Title)
	assert.Equal(t, models.VisibilityPublic, detail.Project.Visibility)
	assert.ElementsMatch(t, []string{"AR", "Markerless"}, detail.Tags)
}

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/projects/", "alice-token", map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/projects/", "alice-token", map[string]any{
		"title":      "Valid",
		"visibility": "SHARED",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOwnProjects(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	bob := env.user(t, "bob@example.com", "Bob", models.RoleUser)
	env.createProject(t, alice, "Mine", models.VisibilityPrivate)
	env.createProject(t, bob, "Theirs", models.VisibilityPublic)

	rec := env.do(t, http.MethodGet, "/api/projects/", "alice-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var collection ProjectCollection
	decodeEnvelope(t, rec, true, &collection)
	require.Len(t, collection.Projects, 1)
	assert.Equal(t, "Mine", collection.Projects[0].Title)
}

func TestUpdateProjectNonOwnerLeavesRecordUnchanged(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Original", models.VisibilityPublic)

	rec := env.do(t, http.MethodPatch, "/api/projects/"+project.ID.String(), "bob-token", map[string]any{
		"title": "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := env.repos.ProjectRepo().FindByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Title)
}

func TestUpdateProjectPartial(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Original", models.VisibilityPublic)

	rec := env.do(t, http.MethodPatch, "/api/projects/"+project.ID.String(), "alice-token", map[string]any{
		"visibility": models.VisibilityUnlisted,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var detail ProjectDetail
	decodeEnvelope(t, rec, true, &detail)
	assert.Equal(t, "Original", detail.Project.Title)
	assert.Equal(t, models.VisibilityUnlisted, detail.Project.Visibility)
}

func TestUpdateProjectReplacesTags(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Tagged", models.VisibilityPublic)
	require.NoError(t, env.repos.ProjectTagRepo().AttachToProject(project.ID, []string{"a", "b"}))

	rec := env.do(t, http.MethodPatch, "/api/projects/"+project.ID.String(), "alice-token", map[string]any{
		"tags": []string{"b", "c"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var detail ProjectDetail
	decodeEnvelope(t, rec, true, &detail)
	assert.ElementsMatch(t, []string{"b", "c"}, detail.Tags)
}

func TestUpdateProjectTitleValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Original", models.VisibilityPublic)

	rec := env.do(t, http.MethodPatch, "/api/projects/"+project.ID.String(), "alice-token", map[string]any{
		"title": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProjectByAdmin(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Original", models.VisibilityPublic)

	rec := env.do(t, http.MethodPatch, "/api/projects/"+project.ID.String(), "admin-token", map[string]any{
		"title": "Moderated",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteProject(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Doomed", models.VisibilityPublic)

	rec := env.do(t, http.MethodDelete, "/api/projects/"+project.ID.String(), "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/projects/"+project.ID.String(), "alice-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/projects/"+project.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordDownload(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Downloadable", models.VisibilityPublic)

	// Anonymous and authenticated downloads both count.
	rec := env.do(t, http.MethodPost, "/api/projects/"+project.ID.String()+"/download", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/projects/"+project.ID.String()+"/download", "bob-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	count, err := env.repos.ProjectRepo().DownloadCount(project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRecordDownloadPrivateProject(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	project := env.createProject(t, owner, "Secret", models.VisibilityPrivate)

	rec := env.do(t, http.MethodPost, "/api/projects/"+project.ID.String()+"/download", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/projects/"+project.ID.String()+"/download", "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	count, err := env.repos.ProjectRepo().DownloadCount(project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
