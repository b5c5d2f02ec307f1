package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/arhub/ar-hub-backend/database"
	"github.com/arhub/ar-hub-backend/errs"
	"github.com/arhub/ar-hub-backend/models"
	"github.com/arhub/ar-hub-backend/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type projectHandler struct {
	responder      Responder
	logger         zerolog.Logger
	projectRepo    *database.ProjectRepo
	projectTagRepo *database.ProjectTagRepo
	downloadRepo   *database.DownloadRepo
	urls           services.AssetURLResolver
}

func newProjectHandler(projectRepo *database.ProjectRepo, projectTagRepo *database.ProjectTagRepo, downloadRepo *database.DownloadRepo, urls services.AssetURLResolver) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		projectRepo:    projectRepo,
		projectTagRepo: projectTagRepo,
		downloadRepo:   downloadRepo,
		urls:           urls,
	}
}

// AssetWithURL is an asset plus its resolved retrieval URL. The URL is
// null when resolution failed; the response still succeeds.
type AssetWithURL struct {
	models.Asset
	URL *string `json:"url"`
}

// ProjectDetail is the full project representation returned by GET
type ProjectDetail struct {
	Project models.Project      `json:"project"`
	Owner   models.OwnerSummary `json:"owner"`
	Tags    []string            `json:"tags"`
	Assets  []AssetWithURL      `json:"assets"`
}

// ProjectCollection represents multiple projects
type ProjectCollection struct {
	Projects []ProjectSummary `json:"projects"`
	Total    int              `json:"total,omitempty"`
}

// ProjectSummary is the list/search representation of a project
type ProjectSummary struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Visibility  string              `json:"visibility"`
	Owner       models.OwnerSummary `json:"owner"`
	Tags        []string            `json:"tags"`
	CreatedAt   string              `json:"created_at"`
}

func summarize(p *models.Project) ProjectSummary {
	return ProjectSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Visibility:  p.Visibility,
		Owner:       p.Owner.Summary(),
		Tags:        p.TagNames(),
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h projectHandler) detail(r *http.Request, project *models.Project) ProjectDetail {
	assets := make([]AssetWithURL, 0, len(project.Assets))
	for _, asset := range project.Assets {
		entry := AssetWithURL{Asset: asset}
		if h.urls != nil {
			if url, err := h.urls.ResolveURL(r.Context(), asset.FileKey); err == nil {
				entry.URL = &url
			} else {
				// URL resolution is best-effort; a null URL beats a failed response.
				h.logger.Warn().Err(err).Str("fileKey", asset.FileKey).Msg("asset URL resolution failed")
			}
		}
		assets = append(assets, entry)
	}

	return ProjectDetail{
		Project: *project,
		Owner:   project.Owner.Summary(),
		Tags:    project.TagNames(),
		Assets:  assets,
	}
}

// getOwnProjects retrieves the caller's projects with their tags
// @Summary Get own projects
// @Description Retrieves all projects owned by the authenticated user
// @Tags Projects
// @Accept json
// @Produce json
// @Success 200 {object} ProjectCollection "List of projects"
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing or invalid session"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching projects"
// @Router /api/projects [get]
func (h projectHandler) getOwnProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())
		if user == nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projects, err := h.projectRepo.FindByOwner(user.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find projects", "projects", err))
			return
		}

		summaries := make([]ProjectSummary, 0, len(projects))
		for _, project := range projects {
			project.Owner = *user
			summaries = append(summaries, summarize(project))
		}

		h.responder.WriteJSON(w, ProjectCollection{Projects: summaries, Total: len(summaries)})
	}
}

// getProject retrieves a specific project by ID with tags and asset URLs
// @Summary Get project
// @Description Retrieves a project with owner summary, tags and resolved asset URLs
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectDetail "Project details"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 401 {object} ErrorResponse "Unauthorized - Private project, anonymous caller"
// @Failure 403 {object} ErrorResponse "Forbidden - Private project, caller is not the owner"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, apiErr := h.loadProject(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		user := ctxGetUser(r.Context())
		if !project.VisibleTo(user) {
			if user == nil {
				h.responder.WriteError(w, errs.Unauthorized)
			} else {
				h.responder.WriteError(w, errs.NewForbiddenError("project is private"))
			}
			return
		}

		h.responder.WriteJSON(w, h.detail(r, project))
	}
}

type createProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Visibility  string   `json:"visibility"`
	Tags        []string `json:"tags"`
}

// createProject creates a new project owned by the caller
// @Summary Create project
// @Description Creates a new project with optional initial tags
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body createProjectRequest true "Project data"
// @Success 201 {object} ProjectDetail "Created project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing or invalid session"
// @Router /api/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())
		if user == nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req createProjectRequest
		if apiErr := decodeBody(r, &req, h.logger); apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		if strings.TrimSpace(req.Title) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("title"))
			return
		}
		if req.Visibility == "" {
			req.Visibility = models.VisibilityPublic
		}
		if !models.ValidVisibility(req.Visibility) {
			h.responder.WriteError(w, errs.NewInvalidFieldError("visibility", "must be one of PUBLIC, UNLISTED, PRIVATE"))
			return
		}

		project := models.Project{
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Category:    req.Category,
			Visibility:  req.Visibility,
			OwnerID:     user.ID,
		}
		if err := h.projectRepo.Add(&project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create project", "project", err))
			return
		}

		if len(req.Tags) > 0 {
			if err := h.projectTagRepo.AttachToProject(project.ID, req.Tags); err != nil {
				// Project row exists; tag attachment failure is reported but not rolled back
				h.logger.Error().Err(err).Str("projectID", project.ID.String()).Msg("failed to attach initial tags")
			}
		}

		created, err := h.projectRepo.FindByID(project.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find created project", "project", err))
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, h.detail(r, created))
	}
}

type updateProjectRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Visibility  *string   `json:"visibility"`
	Tags        *[]string `json:"tags"`
}

// updateProject applies a partial update to a project
// @Summary Update project
// @Description Partially updates a project; a supplied tag list replaces the tag set atomically
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param project body updateProjectRequest true "Partial project data"
// @Success 200 {object} ProjectDetail "Updated project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 403 {object} ErrorResponse "Forbidden - Caller is not owner or admin"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{projectID} [patch]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, apiErr := h.loadProject(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		user := ctxGetUser(r.Context())
		if !project.EditableBy(user) {
			h.responder.WriteError(w, errs.NewNotResourceOwnerError("project"))
			return
		}

		var req updateProjectRequest
		if apiErr := decodeBody(r, &req, h.logger); apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		fields := map[string]interface{}{}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" || len(title) > 200 {
				h.responder.WriteError(w, errs.NewInvalidFieldError("title", "must be 1-200 characters"))
				return
			}
			fields["title"] = title
		}
		if req.Description != nil {
			fields["description"] = *req.Description
		}
		if req.Category != nil {
			fields["category"] = *req.Category
		}
		if req.Visibility != nil {
			if !models.ValidVisibility(*req.Visibility) {
				h.responder.WriteError(w, errs.NewInvalidFieldError("visibility", "must be one of PUBLIC, UNLISTED, PRIVATE"))
				return
			}
			fields["visibility"] = *req.Visibility
		}

		if err := h.projectRepo.UpdateFields(project.ID, fields); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update project", "project", err))
			return
		}

		// Tag replacement is all-or-nothing: delete, upsert, re-insert
		// inside one transaction.
		if req.Tags != nil {
			if err := h.projectTagRepo.ReplaceForProject(project.ID, *req.Tags); err != nil {
				h.responder.WriteError(w, errs.NewTransactionFailedError("tag replacement", err))
				return
			}
		}

		updated, err := h.projectRepo.FindByID(project.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find updated project", "project", err))
			return
		}

		h.responder.WriteJSON(w, h.detail(r, updated))
	}
}

// deleteProject deletes a project by ID
// @Summary Delete project
// @Description Deletes a project; assets, tag links and downloads cascade at the storage layer
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} map[string]string "Success message"
// @Failure 403 {object} ErrorResponse "Forbidden - Caller is not owner or admin"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, apiErr := h.loadProject(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		user := ctxGetUser(r.Context())
		if !project.EditableBy(user) {
			h.responder.WriteError(w, errs.NewNotResourceOwnerError("project"))
			return
		}

		if err := h.projectRepo.Delete(project.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete project", "project", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "project deleted successfully",
		})
	}
}

// recordDownload appends a download event and returns asset URLs
// @Summary Record download
// @Description Appends a download record for the project and resolves its asset URLs
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectDetail "Project with asset URLs"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{projectID}/download [post]
func (h projectHandler) recordDownload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, apiErr := h.loadProject(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		user := ctxGetUser(r.Context())
		if !project.VisibleTo(user) {
			if user == nil {
				h.responder.WriteError(w, errs.Unauthorized)
			} else {
				h.responder.WriteError(w, errs.NewForbiddenError("project is private"))
			}
			return
		}

		download := models.Download{ProjectID: project.ID}
		if user != nil {
			download.UserID = &user.ID
		}
		if err := h.downloadRepo.Add(&download); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("record download", "download", err))
			return
		}

		h.responder.WriteJSON(w, h.detail(r, project))
	}
}

// loadProject parses the projectID route param and fetches the project.
func (h projectHandler) loadProject(r *http.Request) (*models.Project, *errs.ApiErr) {
	projectIDStr := chi.URLParam(r, "projectID")
	if projectIDStr == "" {
		return nil, errs.NewBadRequestError("missing projectID")
	}

	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		return nil, errs.NewBadRequestError("invalid projectID")
	}

	project, err := h.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("project")
		}
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	return project, nil
}

// decodeBody reads and decodes a JSON request body.
func decodeBody(r *http.Request, dst any, logger zerolog.Logger) *errs.ApiErr {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		logger.Error().Err(err).Msg("Failed to read request body")
		return errs.NewBadRequestError("failed to read request body")
	}

	if err := json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(dst); err != nil {
		logger.Error().Err(err).Str("body", string(bodyBytes)).Msg("Failed to decode request body")
		return errs.NewInvalidJSONError(err)
	}
	return nil
}
