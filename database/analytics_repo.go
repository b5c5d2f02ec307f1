package database

import (
	"errors"
	"time"

	"github.com/arhub/ar-hub-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsRepo struct {
	db *gorm.DB
}

func NewAnalyticsRepo(db *gorm.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *AnalyticsRepo) GetDB() *gorm.DB {
	return r.db
}

// AddEvent appends the raw event row. This write is authoritative for
// ingestion; everything below is advisory.
func (r *AnalyticsRepo) AddEvent(event *models.AnalyticsEvent) error {
	return r.db.Create(event).Error
}

// CountEvents returns the total number of raw events stored
func (r *AnalyticsRepo) CountEvents() (int64, error) {
	var count int64
	err := r.db.Model(&models.AnalyticsEvent{}).Count(&count).Error
	return count, err
}

// IncrementPageView upserts the per-path view counter: created at 1 on
// first occurrence, incremented atomically thereafter. Safe under
// concurrent writers for the same path.
func (r *AnalyticsRepo) IncrementPageView(path string) error {
	pv := models.PageView{Path: path, Count: 1}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("page_views.count + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&pv).Error
}

// IncrementProjectInteraction upserts the (project, action) counter with
// the same create-at-1-else-increment semantics.
func (r *AnalyticsRepo) IncrementProjectInteraction(projectID uuid.UUID, action string) error {
	pi := models.ProjectInteraction{ProjectID: projectID, Action: action, Count: 1}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "action"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("project_interactions.count + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&pi).Error
}

// AddSearchQuery appends a search log row, truncating the query.
func (r *AnalyticsRepo) AddSearchQuery(query string, resultCount int) error {
	row := models.SearchQuery{
		Query:       models.Truncate(query, models.MaxSearchQueryLen),
		ResultCount: resultCount,
	}
	return r.db.Create(&row).Error
}

// AddUploadStat appends an upload log row, truncating the file name.
func (r *AnalyticsRepo) AddUploadStat(fileName string, sizeBytes int64, mime string, success bool) error {
	row := models.UploadStat{
		FileName:  models.Truncate(fileName, models.MaxUploadFileLen),
		SizeBytes: sizeBytes,
		Mime:      mime,
		Success:   success,
	}
	return r.db.Create(&row).Error
}

// AddErrorLog appends an error log row, truncating the message.
func (r *AnalyticsRepo) AddErrorLog(message, context string) error {
	row := models.ErrorLog{
		Message: models.Truncate(message, models.MaxErrorMessageLen),
		Context: context,
	}
	return r.db.Create(&row).Error
}

// PageViewCount returns the current counter for a path, 0 when absent.
func (r *AnalyticsRepo) PageViewCount(path string) (int64, error) {
	var pv models.PageView
	err := r.db.Where("path = ?", path).First(&pv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return pv.Count, nil
}
