package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arhub/ar-hub-backend/errs"
	"github.com/rs/zerolog"
)

// envelope is the JSON response convention: success flag, data or error,
// and a timestamp.
type envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// WriteJSON writes a success envelope.
func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	jsonData, err := json.Marshal(envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Responses above 10MB indicate a query gone wrong; refuse them.
	const maxResponseSize = 10 * 1024 * 1024
	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		r.writeRaw(w, envelope{
			Success:   false,
			Error:     errorBody{Message: "response too large"},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) writeRaw(w http.ResponseWriter, env envelope) {
	jsonData, err := json.Marshal(env)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling error envelope")
		return
	}
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteError maps the error onto the taxonomy status code and writes a
// failure envelope. Unexpected error types become opaque 500s.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Msg(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		r.writeRaw(w, envelope{
			Success:   false,
			Error:     errorBody{Message: "An unexpected error occurred"},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	if apiErr.Cause != nil {
		r.logger.Warn().Int("status", apiErr.StatusCode).Msg(apiErr.GetFullError())
	}

	w.WriteHeader(apiErr.StatusCode)
	r.writeRaw(w, envelope{
		Success: false,
		Error: errorBody{
			Message: apiErr.Error(),
			Field:   apiErr.Field,
			Details: apiErr.Details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
