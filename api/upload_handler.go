package api

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/arhub/ar-hub-backend/database"
	"github.com/arhub/ar-hub-backend/errs"
	"github.com/arhub/ar-hub-backend/models"
	"github.com/arhub/ar-hub-backend/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// uploadRoute describes one negotiable upload slot: the asset kind it
// produces, the hard size cap enforced before signing, and the mime
// prefixes advertised to the client's file picker.
type uploadRoute struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	MaxBytes     int64    `json:"maxBytes"`
	MimePrefixes []string `json:"mimePrefixes"`
}

// Upload routes and their size caps. These mirror the client-side file
// pickers, so changing a cap here changes what the frontend offers.
var uploadRoutes = []uploadRoute{
	{
		Name:         "model",
		Kind:         models.AssetKindModel,
		MaxBytes:     64 * 1024 * 1024,
		MimePrefixes: []string{"model/", "application/octet-stream"},
	},
	{
		Name:         "script",
		Kind:         models.AssetKindScript,
		MaxBytes:     4 * 1024 * 1024,
		MimePrefixes: []string{"text/javascript", "application/javascript"},
	},
	{
		Name:         "config",
		Kind:         models.AssetKindConfig,
		MaxBytes:     1 * 1024 * 1024,
		MimePrefixes: []string{"application/json"},
	},
}

func routeByName(name string) (uploadRoute, bool) {
	for _, r := range uploadRoutes {
		if r.Name == name {
			return r, true
		}
	}
	return uploadRoute{}, false
}

type uploadHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	assetRepo   *database.AssetRepo
	signer      services.UploadSigner
}

func newUploadHandler(projectRepo *database.ProjectRepo, assetRepo *database.AssetRepo, signer services.UploadSigner) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		assetRepo:   assetRepo,
		signer:      signer,
	}
}

// listRoutes advertises the available upload routes
// @Summary List upload routes
// @Description Lists the upload routes with their asset kinds and size caps
// @Tags Uploads
// @Accept json
// @Produce json
// @Success 200 {array} uploadRoute "Available routes"
// @Router /api/uploadthing [get]
func (h uploadHandler) listRoutes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, uploadRoutes)
	}
}

type negotiateRequest struct {
	Route     string    `json:"route"`
	ProjectID uuid.UUID `json:"projectId"`
	FileName  string    `json:"fileName"`
	FileSize  int64     `json:"fileSize"`
	MimeType  string    `json:"mimeType"`
}

// NegotiatedUpload is the signed upload grant returned to the client.
type NegotiatedUpload struct {
	FileKey   string `json:"fileKey"`
	UploadURL string `json:"uploadUrl"`
}

// negotiate validates an upload request and returns a signed upload URL
// @Summary Negotiate upload
// @Description Checks route, ownership and size cap, records the asset and returns a signed upload URL
// @Tags Uploads
// @Accept json
// @Produce json
// @Param upload body negotiateRequest true "Upload intent"
// @Success 200 {object} NegotiatedUpload "Signed upload grant"
// @Failure 400 {object} ErrorResponse "Bad Request - Unknown route or file too large"
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing or invalid session"
// @Failure 403 {object} ErrorResponse "Forbidden - Caller does not own the project"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/uploadthing [post]
func (h uploadHandler) negotiate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())
		if user == nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req negotiateRequest
		if apiErr := decodeBody(r, &req, h.logger); apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		route, ok := routeByName(req.Route)
		if !ok {
			h.responder.WriteError(w, errs.NewUploadRouteUnknownError(req.Route))
			return
		}
		if strings.TrimSpace(req.FileName) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("fileName"))
			return
		}
		if req.FileSize <= 0 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("fileSize", "must be a positive byte count"))
			return
		}
		if req.FileSize > route.MaxBytes {
			h.responder.WriteError(w, errs.NewFileTooLargeError(route.Name, req.FileSize, route.MaxBytes))
			return
		}
		if req.ProjectID == uuid.Nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("projectId"))
			return
		}

		project, err := h.projectRepo.FindByID(req.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				h.responder.WriteError(w, errs.NewNotFound("project"))
			} else {
				h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			}
			return
		}
		if !project.EditableBy(user) {
			h.responder.WriteError(w, errs.NewNotResourceOwnerError("project"))
			return
		}

		fileKey := buildFileKey(project.ID, route.Name, req.FileName)

		uploadURL, err := h.signer.SignUpload(r.Context(), fileKey, req.MimeType, req.FileSize)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		asset := models.Asset{
			ProjectID: project.ID,
			Kind:      route.Kind,
			FileKey:   fileKey,
			FileName:  req.FileName,
			Mime:      req.MimeType,
			SizeBytes: req.FileSize,
		}
		if err := h.assetRepo.Add(&asset); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("record", "asset", err))
			return
		}

		h.responder.WriteJSON(w, NegotiatedUpload{
			FileKey:   fileKey,
			UploadURL: uploadURL,
		})
	}
}

// buildFileKey derives a collision-free storage key. The random segment
// keeps re-uploads of the same file name from overwriting each other.
func buildFileKey(projectID uuid.UUID, route, fileName string) string {
	base := strings.ReplaceAll(path.Base(fileName), " ", "_")
	return fmt.Sprintf("projects/%s/%s/%s-%s", projectID, route, uuid.NewString()[:8], base)
}
