package database

import (
	"github.com/arhub/ar-hub-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetRepo struct {
	db *gorm.DB
}

func NewAssetRepo(db *gorm.DB) *AssetRepo {
	return &AssetRepo{db}
}

// FindByProject returns all assets belonging to a project
func (r *AssetRepo) FindByProject(projectID uuid.UUID) ([]*models.Asset, error) {
	var assets []*models.Asset
	err := r.db.Where("project_id = ?", projectID).Order("created_at").Find(&assets).Error
	return assets, err
}

// Add inserts a new asset into the database
func (r *AssetRepo) Add(asset *models.Asset) error {
	return r.db.Create(asset).Error
}

// Delete removes an asset from the database by id
func (r *AssetRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Asset{}, "id = ?", id).Error
}
