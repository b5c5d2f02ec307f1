package api

import (
	"github.com/arhub/ar-hub-backend/database"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, ext ExternalServices) *routeHandlers {
	return &routeHandlers{
		projectHandler:   newProjectHandler(database.ProjectRepo(), database.ProjectTagRepo(), database.DownloadRepo(), ext.URLs),
		searchHandler:    newSearchHandler(database.ProjectRepo()),
		analyticsHandler: newAnalyticsHandler(database.AnalyticsRepo()),
		uploadHandler:    newUploadHandler(database.ProjectRepo(), database.AssetRepo(), ext.Uploads),
	}
}
