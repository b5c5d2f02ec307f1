package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Typed property payloads for the known event names. Ingestion decodes the
// free-form properties blob into exactly one of these based on the event
// name, so side-table updates never reach into an untyped map.

type PageViewProps struct {
	Path string `json:"path"`
}

type ProjectInteractionProps struct {
	ProjectID uuid.UUID `json:"projectId"`
	Action    string    `json:"action"`
}

type SearchProps struct {
	Query       string `json:"query"`
	ResultCount int    `json:"resultCount"`
}

type FileUploadProps struct {
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"fileSize"`
	MimeType  string `json:"fileType"`
	Success   bool   `json:"success"`
}

type ErrorProps struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

// DecodeEventProps decodes raw properties into the variant matching name.
// Unknown names return (nil, nil): the raw event is still stored, there is
// just no side table to update.
func DecodeEventProps(name string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch name {
	case EventPageView:
		var p PageViewProps
		return &p, json.Unmarshal(raw, &p)
	case EventProjectInteraction:
		var p ProjectInteractionProps
		return &p, json.Unmarshal(raw, &p)
	case EventSearch:
		var p SearchProps
		return &p, json.Unmarshal(raw, &p)
	case EventFileUpload:
		var p FileUploadProps
		return &p, json.Unmarshal(raw, &p)
	case EventError:
		var p ErrorProps
		return &p, json.Unmarshal(raw, &p)
	default:
		return nil, nil
	}
}
