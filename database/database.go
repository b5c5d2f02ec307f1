package database

import (
	"gorm.io/gorm"
)

type Database struct {
	userRepo       *UserRepo
	projectRepo    *ProjectRepo
	projectTagRepo *ProjectTagRepo
	assetRepo      *AssetRepo
	downloadRepo   *DownloadRepo
	analyticsRepo  *AnalyticsRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		userRepo:       NewUserRepo(db),
		projectRepo:    NewProjectRepo(db),
		projectTagRepo: NewProjectTagRepo(db),
		assetRepo:      NewAssetRepo(db),
		downloadRepo:   NewDownloadRepo(db),
		analyticsRepo:  NewAnalyticsRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) ProjectTagRepo() *ProjectTagRepo {
	return d.projectTagRepo
}

func (d Database) AssetRepo() *AssetRepo {
	return d.assetRepo
}

func (d Database) DownloadRepo() *DownloadRepo {
	return d.downloadRepo
}

func (d Database) AnalyticsRepo() *AnalyticsRepo {
	return d.analyticsRepo
}
