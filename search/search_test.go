package search

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParamsDefaults(t *testing.T) {
	p, err := ParseParams(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, "", p.Query)
	assert.Equal(t, SortRelevance, p.SortBy)
	assert.Equal(t, RangeAll, p.DateRange)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Empty(t, p.Tags)
}

func TestParseParamsFull(t *testing.T) {
	values := url.Values{}
	values.Set("q", "  dragon ")
	values.Set("category", "games")
	values.Set("tags", "ar, markerless , ,ar")
	values.Set("sortBy", "popularity")
	values.Set("dateRange", "month")
	values.Set("page", "3")
	values.Set("limit", "20")

	p, err := ParseParams(values)
	require.NoError(t, err)

	assert.Equal(t, "dragon", p.Query)
	assert.Equal(t, "games", p.Category)
	assert.Equal(t, []string{"ar", "markerless", "ar"}, p.Tags)
	assert.Equal(t, SortPopularity, p.SortBy)
	assert.Equal(t, RangeMonth, p.DateRange)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 40, p.Offset())
}

func TestParseParamsLimitCap(t *testing.T) {
	values := url.Values{}
	values.Set("limit", "500")

	p, err := ParseParams(values)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestParseParamsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad sort", "sortBy", "alphabetical"},
		{"bad range", "dateRange", "decade"},
		{"zero page", "page", "0"},
		{"negative page", "page", "-1"},
		{"non-numeric page", "page", "two"},
		{"zero limit", "limit", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := url.Values{}
			values.Set(tc.key, tc.value)
			_, err := ParseParams(values)
			assert.Error(t, err)
		})
	}
}

func TestBuildDateRanges(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	f, _ := Build(Params{DateRange: RangeWeek}, now)
	assert.Equal(t, now.AddDate(0, 0, -7), f.CreatedAfter)

	f, _ = Build(Params{DateRange: RangeMonth}, now)
	assert.Equal(t, now.AddDate(0, 0, -30), f.CreatedAfter)

	f, _ = Build(Params{DateRange: RangeYear}, now)
	assert.Equal(t, now.AddDate(0, 0, -365), f.CreatedAfter)

	f, _ = Build(Params{DateRange: RangeAll}, now)
	assert.True(t, f.CreatedAfter.IsZero())
}

func TestBuildOrdering(t *testing.T) {
	now := time.Now()

	_, order := Build(Params{SortBy: SortRelevance}, now)
	assert.Equal(t, OrderPopularityNewest, order)

	_, order = Build(Params{SortBy: SortDate}, now)
	assert.Equal(t, OrderNewest, order)

	_, order = Build(Params{SortBy: SortPopularity}, now)
	assert.Equal(t, OrderPopularity, order)
}

func TestPaginate(t *testing.T) {
	// 15 rows at 12 per page: page 2 holds the trailing 3.
	p := Paginate(15, 2, 12)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, int64(15), p.Total)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	p = Paginate(15, 1, 12)
	assert.True(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)

	p = Paginate(0, 1, 12)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
}
