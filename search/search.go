// Package search maps validated query parameters onto a database-agnostic
// filter predicate and ordering directive. It never touches gorm, so the
// whole translation is unit-testable without a live database.
package search

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arhub/ar-hub-backend/errs"
)

// Sort modes accepted by the search endpoint.
const (
	SortRelevance  = "relevance"
	SortDate       = "date"
	SortPopularity = "popularity"
)

// Date range windows accepted by the search endpoint.
const (
	RangeAll   = "all"
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

const (
	DefaultLimit = 12
	MaxLimit     = 50
)

// Params are the validated inputs of a search request.
type Params struct {
	Query     string
	Category  string
	Tags      []string
	SortBy    string
	DateRange string
	Page      int
	Limit     int
}

// Filter is the predicate over projects. Zero-value fields mean "no
// constraint"; visibility PUBLIC is always implied and not represented here.
type Filter struct {
	Text         string
	Category     string
	TagNames     []string
	CreatedAfter time.Time
}

// Order is the ordering directive derived from the sort mode.
type Order int

const (
	// OrderPopularityNewest sorts by download count desc, createdAt desc.
	// Used for "relevance": no text scoring is computed.
	OrderPopularityNewest Order = iota
	// OrderNewest sorts by createdAt desc.
	OrderNewest
	// OrderPopularity sorts by download count desc.
	OrderPopularity
)

// ParseParams validates raw query-string values. Errors carry the offending
// field name.
func ParseParams(values url.Values) (Params, error) {
	p := Params{
		Query:     strings.TrimSpace(values.Get("q")),
		Category:  strings.TrimSpace(values.Get("category")),
		SortBy:    SortRelevance,
		DateRange: RangeAll,
		Page:      1,
		Limit:     DefaultLimit,
	}

	if raw := values.Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				p.Tags = append(p.Tags, t)
			}
		}
	}

	if s := values.Get("sortBy"); s != "" {
		switch s {
		case SortRelevance, SortDate, SortPopularity:
			p.SortBy = s
		default:
			return p, errs.NewInvalidFieldError("sortBy", "must be one of relevance, date, popularity")
		}
	}

	if d := values.Get("dateRange"); d != "" {
		switch d {
		case RangeAll, RangeWeek, RangeMonth, RangeYear:
			p.DateRange = d
		default:
			return p, errs.NewInvalidFieldError("dateRange", "must be one of all, week, month, year")
		}
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, errs.NewInvalidFieldError("page", "must be a positive integer")
		}
		p.Page = page
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return p, errs.NewInvalidFieldError("limit", "must be a positive integer")
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		p.Limit = limit
	}

	return p, nil
}

// Build derives the filter predicate and ordering directive from validated
// params. now anchors the date-range lower bound.
func Build(p Params, now time.Time) (Filter, Order) {
	f := Filter{
		Text:     p.Query,
		Category: p.Category,
		TagNames: p.Tags,
	}

	switch p.DateRange {
	case RangeWeek:
		f.CreatedAfter = now.AddDate(0, 0, -7)
	case RangeMonth:
		f.CreatedAfter = now.AddDate(0, 0, -30)
	case RangeYear:
		f.CreatedAfter = now.AddDate(0, 0, -365)
	}

	switch p.SortBy {
	case SortDate:
		return f, OrderNewest
	case SortPopularity:
		return f, OrderPopularity
	default:
		return f, OrderPopularityNewest
	}
}

// Offset returns the row offset for the params' page and limit.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the metadata block attached to search responses.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Paginate computes pagination metadata for a total row count.
func Paginate(total int64, page, limit int) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
