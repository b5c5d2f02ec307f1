package database

import (
	"testing"

	"github.com/arhub/ar-hub-backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a fresh in-memory database with the full schema migrated.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: "Test User", Role: models.RoleUser}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProject(t *testing.T, db *gorm.DB, owner *models.User, title, visibility string) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:      title,
		Category:   "demo",
		Visibility: visibility,
		OwnerID:    owner.ID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func seedDownloads(t *testing.T, db *gorm.DB, projectID uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.Download{ProjectID: projectID}).Error)
	}
}
