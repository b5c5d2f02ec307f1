package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler   projectHandler
	searchHandler    searchHandler
	analyticsHandler analyticsHandler
	uploadHandler    uploadHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error" example:"Internal Server Error"`
	Field     string `json:"field,omitempty" example:"title"`
	Details   string `json:"details,omitempty" example:"Additional error details"`
	Timestamp string `json:"timestamp,omitempty"`
}
