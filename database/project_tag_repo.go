package database

import (
	"strings"

	"github.com/arhub/ar-hub-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectTagRepo struct {
	db *gorm.DB
}

func NewProjectTagRepo(db *gorm.DB) *ProjectTagRepo {
	return &ProjectTagRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectTagRepo) GetDB() *gorm.DB {
	return r.db
}

// FindByProject returns all tag associations for a project with tags loaded
func (r *ProjectTagRepo) FindByProject(projectID uuid.UUID) ([]*models.ProjectTag, error) {
	var projectTags []*models.ProjectTag
	err := r.db.Preload("Tag").Where("project_id = ?", projectID).Find(&projectTags).Error
	return projectTags, err
}

// ReplaceForProject rewrites a project's tag set inside a single
// transaction: existing associations are deleted, each named tag is
// upserted by slug, and fresh association rows are inserted with duplicates
// skipped. Either every step commits or none does.
func (r *ProjectTagRepo) ReplaceForProject(projectID uuid.UUID, names []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error; err != nil {
			return err
		}
		return attachTags(tx, projectID, names)
	})
}

// AttachToProject adds tag associations without touching existing ones,
// upserting tags by slug. Used on project creation.
func (r *ProjectTagRepo) AttachToProject(projectID uuid.UUID, names []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return attachTags(tx, projectID, names)
	})
}

func attachTags(tx *gorm.DB, projectID uuid.UUID, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		slug := models.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag := models.Tag{Slug: slug, Name: name}
		if err := tx.Where(models.Tag{Slug: slug}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.ProjectTag{}).
			Where("project_id = ? AND tag_id = ?", projectID, tag.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			continue
		}

		if err := tx.Create(&models.ProjectTag{ProjectID: projectID, TagID: tag.ID}).Error; err != nil {
			return err
		}
	}
	return nil
}
