package database

import (
	"strings"

	"github.com/arhub/ar-hub-backend/models"
	"github.com/arhub/ar-hub-backend/search"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// downloadCount is the correlated subquery used for popularity ordering.
const downloadCount = "(SELECT COUNT(*) FROM downloads WHERE downloads.project_id = projects.id)"

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectRepo) GetDB() *gorm.DB {
	return r.db
}

// FindByID returns a project with its owner, tags and assets preloaded
func (r *ProjectRepo) FindByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("Owner").Preload("Tags.Tag").Preload("Assets").First(&project, "projects.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByOwner returns all projects owned by the given user
func (r *ProjectRepo) FindByOwner(ownerID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.Preload("Tags.Tag").Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(project *models.Project) error {
	return r.db.Create(project).Error
}

// UpdateFields applies a partial update to the project row
func (r *ProjectRepo) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&models.Project{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a project from the database by id. Assets, tag associations
// and downloads go with it via the FK cascade.
func (r *ProjectRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Project{}, "id = ?", id).Error
}

// applyFilter translates the search predicate into WHERE clauses. Only
// PUBLIC projects are ever eligible for search.
func (r *ProjectRepo) applyFilter(f search.Filter) *gorm.DB {
	q := r.db.Model(&models.Project{}).Where("projects.visibility = ?", models.VisibilityPublic)

	if f.Text != "" {
		pattern := "%" + strings.ToLower(f.Text) + "%"
		tagged := r.db.Model(&models.ProjectTag{}).
			Select("project_tags.project_id").
			Joins("JOIN tags ON tags.id = project_tags.tag_id").
			Where("LOWER(tags.name) LIKE ?", pattern)
		q = q.Where("(LOWER(projects.title) LIKE ? OR LOWER(projects.description) LIKE ? OR projects.id IN (?))",
			pattern, pattern, tagged)
	}

	if f.Category != "" {
		q = q.Where("projects.category = ?", f.Category)
	}

	if len(f.TagNames) > 0 {
		names := make([]string, len(f.TagNames))
		for i, n := range f.TagNames {
			names[i] = strings.ToLower(n)
		}
		sub := r.db.Model(&models.ProjectTag{}).
			Select("project_tags.project_id").
			Joins("JOIN tags ON tags.id = project_tags.tag_id").
			Where("LOWER(tags.name) IN ?", names)
		q = q.Where("projects.id IN (?)", sub)
	}

	if !f.CreatedAfter.IsZero() {
		q = q.Where("projects.created_at >= ?", f.CreatedAfter)
	}

	return q
}

// Search returns one page of projects matching the filter, ordered per the
// directive.
func (r *ProjectRepo) Search(f search.Filter, order search.Order, offset, limit int) ([]*models.Project, error) {
	q := r.applyFilter(f).Preload("Owner").Preload("Tags.Tag")

	switch order {
	case search.OrderNewest:
		q = q.Order("projects.created_at DESC")
	case search.OrderPopularity:
		q = q.Order(downloadCount + " DESC")
	default:
		q = q.Order(downloadCount + " DESC").Order("projects.created_at DESC")
	}

	var projects []*models.Project
	err := q.Offset(offset).Limit(limit).Find(&projects).Error
	return projects, err
}

// CountSearch returns the total number of projects matching the filter.
func (r *ProjectRepo) CountSearch(f search.Filter) (int64, error) {
	var total int64
	err := r.applyFilter(f).Count(&total).Error
	return total, err
}

// Suggest returns up to limit PUBLIC projects whose title or description
// matches text, ignoring every other filter. Feeds autocomplete only.
func (r *ProjectRepo) Suggest(text string, limit int) ([]*models.Project, error) {
	pattern := "%" + strings.ToLower(text) + "%"
	var projects []*models.Project
	err := r.db.Model(&models.Project{}).
		Where("projects.visibility = ?", models.VisibilityPublic).
		Where("(LOWER(projects.title) LIKE ? OR LOWER(projects.description) LIKE ?)", pattern, pattern).
		Preload("Tags.Tag").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// DownloadCount returns the number of download rows recorded for a project.
func (r *ProjectRepo) DownloadCount(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Download{}).Where("project_id = ?", id).Count(&count).Error
	return count, err
}
