package database

import (
	"github.com/arhub/ar-hub-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DownloadRepo struct {
	db *gorm.DB
}

func NewDownloadRepo(db *gorm.DB) *DownloadRepo {
	return &DownloadRepo{db}
}

// Add appends a download record. Download rows are never updated or
// deleted by the application.
func (r *DownloadRepo) Add(download *models.Download) error {
	return r.db.Create(download).Error
}

// CountForProject returns the number of downloads recorded for a project
func (r *DownloadRepo) CountForProject(projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Download{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}
