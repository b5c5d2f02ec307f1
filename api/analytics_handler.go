package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arhub/ar-hub-backend/database"
	"github.com/arhub/ar-hub-backend/errs"
	"github.com/arhub/ar-hub-backend/models"
	"github.com/arhub/ar-hub-backend/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Ingestion limits: event name length and the per-IP request budget.
const (
	maxEventNameLen    = 100
	trackLimitEvents   = 1000
	trackLimitWindow   = 60 * time.Second
	maxTrackBodyLength = 64 * 1024
)

type analyticsHandler struct {
	responder     Responder
	logger        zerolog.Logger
	analyticsRepo *database.AnalyticsRepo
	limiter       *services.RateLimiter
}

func newAnalyticsHandler(analyticsRepo *database.AnalyticsRepo) analyticsHandler {
	logger := log.With().Str("handlerName", "analyticsHandler").Logger()

	return analyticsHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		analyticsRepo: analyticsRepo,
		limiter:       services.NewRateLimiter(trackLimitEvents, trackLimitWindow),
	}
}

type trackRequest struct {
	Name       string          `json:"name"`
	Properties json.RawMessage `json:"properties"`
	SessionID  string          `json:"sessionId"`
	UserID     string          `json:"userId"`
	URL        string          `json:"url"`
	Timestamp  string          `json:"timestamp"`
}

// track ingests one analytics event
// @Summary Track analytics event
// @Description Stores a raw analytics event and updates the matching side table for known event names
// @Tags Analytics
// @Accept json
// @Produce json
// @Param event body trackRequest true "Event data"
// @Success 200 {object} map[string]string "Acknowledgement"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid event"
// @Failure 429 {object} ErrorResponse "Too Many Requests - Rate limit exceeded"
// @Router /api/analytics/track [post]
func (h analyticsHandler) track() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxTrackBodyLength)

		var req trackRequest
		if apiErr := decodeBody(r, &req, h.logger); apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}
		if len(req.Name) > maxEventNameLen {
			h.responder.WriteError(w, errs.NewInvalidFieldError("name", "must be at most 100 characters"))
			return
		}
		if req.URL != "" {
			parsed, err := url.Parse(req.URL)
			if err != nil || !parsed.IsAbs() {
				h.responder.WriteError(w, errs.NewInvalidFieldError("url", "must be an absolute URL"))
				return
			}
		}

		// Client-supplied timestamp overrides CreatedAt; absence means now.
		var occurredAt time.Time
		if req.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, req.Timestamp)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("timestamp", "must be RFC3339"))
				return
			}
			occurredAt = parsed
		}

		event := models.AnalyticsEvent{
			Name:       req.Name,
			Properties: datatypes.JSON(req.Properties),
			SessionID:  req.SessionID,
			UserID:     req.UserID,
			URL:        req.URL,
			IP:         clientIP(r),
			UserAgent:  r.UserAgent(),
			CreatedAt:  occurredAt,
		}
		if err := h.analyticsRepo.AddEvent(&event); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("store", "analytics event", err))
			return
		}

		// Side tables are advisory. Their failures are logged, never
		// surfaced: the raw event is already stored.
		h.applySideEffects(&req)

		h.responder.WriteJSON(w, map[string]string{"status": "recorded"})
	}
}

// applySideEffects routes known event names to their aggregate tables.
func (h analyticsHandler) applySideEffects(req *trackRequest) {
	props, err := models.DecodeEventProps(req.Name, req.Properties)
	if err != nil {
		h.logger.Warn().Err(err).Str("event", req.Name).Msg("undecodable event properties, side tables skipped")
		return
	}

	switch p := props.(type) {
	case *models.PageViewProps:
		path := p.Path
		if path == "" {
			path = pathFromURL(req.URL)
		}
		if err := h.analyticsRepo.IncrementPageView(path); err != nil {
			h.logger.Warn().Err(err).Str("path", path).Msg("page view increment failed")
		}
	case *models.ProjectInteractionProps:
		if p.ProjectID == uuid.Nil || p.Action == "" {
			h.logger.Warn().Str("event", req.Name).Msg("interaction event missing projectId or action, skipped")
			return
		}
		if err := h.analyticsRepo.IncrementProjectInteraction(p.ProjectID, p.Action); err != nil {
			h.logger.Warn().Err(err).Str("projectID", p.ProjectID.String()).Msg("interaction increment failed")
		}
	case *models.SearchProps:
		if err := h.analyticsRepo.AddSearchQuery(p.Query, p.ResultCount); err != nil {
			h.logger.Warn().Err(err).Msg("search log append failed")
		}
	case *models.FileUploadProps:
		if err := h.analyticsRepo.AddUploadStat(p.FileName, p.SizeBytes, p.MimeType, p.Success); err != nil {
			h.logger.Warn().Err(err).Msg("upload stat append failed")
		}
	case *models.ErrorProps:
		if err := h.analyticsRepo.AddErrorLog(p.Message, p.Context); err != nil {
			h.logger.Warn().Err(err).Msg("error log append failed")
		}
	}
}

// pathFromURL extracts the path component of an event URL, defaulting "/".
func pathFromURL(raw string) string {
	if raw == "" {
		return "/"
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Path == "" {
		return "/"
	}
	return parsed.Path
}
