package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/arhub/ar-hub-backend/database"
	"github.com/arhub/ar-hub-backend/models"
	"github.com/arhub/ar-hub-backend/search"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Suggestions pull from at most suggestSourceRows matching projects and cap
// at maxSuggestions distinct strings.
const (
	suggestSourceRows = 5
	maxSuggestions    = 8
)

type searchHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
}

func newSearchHandler(projectRepo *database.ProjectRepo) searchHandler {
	logger := log.With().Str("handlerName", "searchHandler").Logger()

	return searchHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
	}
}

// SearchResponse is the search result page plus pagination metadata and
// autocomplete suggestions.
type SearchResponse struct {
	Results     []ProjectSummary  `json:"results"`
	Pagination  search.Pagination `json:"pagination"`
	Suggestions []string          `json:"suggestions"`
}

// search runs the public project search
// @Summary Search projects
// @Description Searches PUBLIC projects by text, category, tags and date range, with pagination and suggestions
// @Tags Search
// @Accept json
// @Produce json
// @Param q query string false "Free-text query matched against title, description and tag names"
// @Param category query string false "Exact category filter"
// @Param tags query string false "Comma-separated tag names"
// @Param sortBy query string false "Sort mode" Enums(relevance, date, popularity)
// @Param dateRange query string false "Creation date window" Enums(all, week, month, year)
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size, capped at 50"
// @Success 200 {object} SearchResponse "Search results"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid query parameter"
// @Router /api/search [get]
func (h searchHandler) search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := search.ParseParams(r.URL.Query())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		filter, order := search.Build(params, time.Now())

		var (
			projects []*models.Project
			total    int64
		)

		// Page fetch and total count hit independent queries; run them
		// concurrently.
		var g errgroup.Group
		g.Go(func() error {
			var err error
			projects, err = h.projectRepo.Search(filter, order, params.Offset(), params.Limit)
			return err
		})
		g.Go(func() error {
			var err error
			total, err = h.projectRepo.CountSearch(filter)
			return err
		})
		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("search", "projects", err))
			return
		}

		results := make([]ProjectSummary, 0, len(projects))
		for _, project := range projects {
			results = append(results, summarize(project))
		}

		h.responder.WriteJSON(w, SearchResponse{
			Results:     results,
			Pagination:  search.Paginate(total, params.Page, params.Limit),
			Suggestions: h.suggestions(params.Query),
		})
	}
}

// suggestions collects up to maxSuggestions distinct titles and tag names
// matching the query. Failures degrade to an empty list.
func (h searchHandler) suggestions(query string) []string {
	suggestions := []string{}
	if query == "" {
		return suggestions
	}

	projects, err := h.projectRepo.Suggest(query, suggestSourceRows)
	if err != nil {
		h.logger.Warn().Err(err).Str("query", query).Msg("suggestion lookup failed")
		return suggestions
	}

	seen := map[string]bool{}
	add := func(s string) {
		if len(suggestions) >= maxSuggestions || s == "" {
			return
		}
		key := strings.ToLower(s)
		if seen[key] {
			return
		}
		seen[key] = true
		suggestions = append(suggestions, s)
	}

	// Titles first, then every matched project's tag names: a project that
	// matched the query makes all of its tags worth suggesting.
	for _, project := range projects {
		add(project.Title)
	}
	for _, project := range projects {
		for _, name := range project.TagNames() {
			add(name)
		}
	}

	return suggestions
}
