package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Known analytics event names. Events with other names are stored raw with
// no side-table update.
const (
	EventPageView           = "page_view"
	EventProjectInteraction = "project_interaction"
	EventSearch             = "search"
	EventFileUpload         = "file_upload"
	EventError              = "error"
)

// Truncation limits applied before side-table appends.
const (
	MaxSearchQueryLen  = 255
	MaxUploadFileLen   = 255
	MaxErrorMessageLen = 500
)

// AnalyticsEvent is the raw append-only ingestion record. Writing this row
// is the authoritative part of ingestion; side tables are advisory.
type AnalyticsEvent struct {
	ID         uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name       string         `json:"name" db:"name" gorm:"type:text;not null;index"`
	Properties datatypes.JSON `json:"properties,omitempty" db:"properties"`
	SessionID  string         `json:"session_id,omitempty" db:"session_id" gorm:"type:text"`
	UserID     string         `json:"user_id,omitempty" db:"user_id" gorm:"type:text"`
	URL        string         `json:"url,omitempty" db:"url" gorm:"type:text"`
	IP         string         `json:"ip,omitempty" db:"ip" gorm:"type:text"`
	UserAgent  string         `json:"user_agent,omitempty" db:"user_agent" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

func (e *AnalyticsEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// PageView is a per-path view counter, created at 1 and incremented by
// upsert on each further page_view event.
type PageView struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Path      string    `json:"path" db:"path" gorm:"type:text;not null;uniqueIndex"`
	Count     int64     `json:"count" db:"count" gorm:"not null;default:1"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p *PageView) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProjectInteraction counts interactions per (project, action) pair.
type ProjectInteraction struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_interaction_unique"`
	Action    string    `json:"action" db:"action" gorm:"type:text;not null;uniqueIndex:idx_project_interaction_unique"`
	Count     int64     `json:"count" db:"count" gorm:"not null;default:1"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p *ProjectInteraction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// SearchQuery is an append-only log of search events.
type SearchQuery struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Query       string    `json:"query" db:"query" gorm:"type:varchar(255);not null"`
	ResultCount int       `json:"result_count" db:"result_count" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (s *SearchQuery) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// UploadStat is an append-only log of file_upload events.
type UploadStat struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	FileName  string    `json:"file_name" db:"file_name" gorm:"type:varchar(255);not null"`
	SizeBytes int64     `json:"size_bytes" db:"size_bytes"`
	Mime      string    `json:"mime" db:"mime" gorm:"type:text"`
	Success   bool      `json:"success" db:"success"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (u *UploadStat) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ErrorLog is an append-only log of client-reported error events.
type ErrorLog struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Message   string    `json:"message" db:"message" gorm:"type:varchar(500);not null"`
	Context   string    `json:"context" db:"context" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (e *ErrorLog) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Truncate clips s to at most max bytes without splitting a rune, used
// before side-table appends. Cutting mid-rune would hand Postgres invalid
// UTF-8 and fail the insert.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
