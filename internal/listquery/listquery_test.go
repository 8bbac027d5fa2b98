package listquery

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	params, err := Parse(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, "id", params.SortKey)
	assert.Equal(t, "asc", params.SortOrder)
	assert.Empty(t, params.Search)
	assert.False(t, params.Paginate)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.PerPage)
	assert.False(t, params.WithEmployee)
}

func TestParseAllFields(t *testing.T) {
	params, err := Parse(url.Values{
		"sortKey":      {"email"},
		"sortOrder":    {"desc"},
		"search":       {"doe"},
		"paginate":     {"true"},
		"page":         {"3"},
		"perPage":      {"50"},
		"withEmployee": {"true"},
	})
	require.NoError(t, err)

	assert.Equal(t, "email", params.SortKey)
	assert.Equal(t, "desc", params.SortOrder)
	assert.Equal(t, "doe", params.Search)
	assert.True(t, params.Paginate)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 50, params.PerPage)
	assert.True(t, params.WithEmployee)
	assert.Equal(t, 100, params.Offset())
}

func TestParseRejectsUnknownSortKey(t *testing.T) {
	_, err := Parse(url.Values{"sortKey": {"password_hash; DROP TABLE users"}})
	require.Error(t, err)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "sortKey", fieldErr.Field)
}

func TestParseRejectsBadSortOrder(t *testing.T) {
	_, err := Parse(url.Values{"sortOrder": {"sideways"}})
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "sortOrder", fieldErr.Field)
}

func TestParseRejectsNonPositivePerPage(t *testing.T) {
	for _, value := range []string{"0", "-5"} {
		_, err := Parse(url.Values{"perPage": {value}})
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr, "perPage=%s", value)
		assert.Equal(t, "perPage", fieldErr.Field)
	}
}

func TestParseClampsNonPositivePage(t *testing.T) {
	params, err := Parse(url.Values{"page": {"-3"}})
	require.NoError(t, err)
	assert.Equal(t, 1, params.Page)
}

func TestParseRejectsBadPaginate(t *testing.T) {
	_, err := Parse(url.Values{"paginate": {"maybe"}})
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "paginate", fieldErr.Field)
}

func TestOrderBy(t *testing.T) {
	params := Params{SortKey: "name", SortOrder: "desc"}
	assert.Equal(t, "u.name DESC, u.id ASC", params.OrderBy("u."))

	params = Params{SortKey: "id", SortOrder: "asc"}
	assert.Equal(t, "id ASC", params.OrderBy(""))
}

func TestNewPaginationMiddlePage(t *testing.T) {
	// total=45, perPage=20, page=3: the last page holds rows 41..45.
	params := Params{Paginate: true, Page: 3, PerPage: 20}
	pg := NewPagination(params, 45, 5)

	assert.Equal(t, 3, pg.Page)
	assert.Equal(t, 20, pg.PerPage)
	assert.Equal(t, 3, pg.LastPage)
	assert.Equal(t, 41, pg.Start)
	assert.Equal(t, 45, pg.End)
	assert.Equal(t, 45, pg.Total)
}

func TestNewPaginationEmptySet(t *testing.T) {
	params := Params{Paginate: true, Page: 1, PerPage: 20}
	pg := NewPagination(params, 0, 0)

	assert.Equal(t, 0, pg.LastPage)
	assert.Equal(t, 0, pg.Start)
	assert.Equal(t, 0, pg.End)
	assert.Equal(t, 0, pg.Total)
}

func TestNewPaginationPageBeyondLast(t *testing.T) {
	params := Params{Paginate: true, Page: 99, PerPage: 10}
	pg := NewPagination(params, 25, 0)

	assert.Equal(t, 3, pg.LastPage)
	assert.Equal(t, 0, pg.Start)
	assert.Equal(t, 0, pg.End)
	assert.Equal(t, 25, pg.Total)
}

// For every page of every (total, perPage) combination, either the page is in
// range and end-start+1 equals the returned count, or start and end are zero.
func TestPaginationWindowIdentity(t *testing.T) {
	cases := []struct{ total, perPage int }{
		{0, 20}, {1, 1}, {5, 2}, {19, 20}, {20, 20}, {21, 20}, {45, 20}, {100, 7},
	}
	for _, tc := range cases {
		lastPage := (tc.total + tc.perPage - 1) / tc.perPage
		for page := 1; page <= lastPage+2; page++ {
			params := Params{Paginate: true, Page: page, PerPage: tc.perPage}

			returned := tc.total - params.Offset()
			if returned < 0 {
				returned = 0
			}
			if returned > tc.perPage {
				returned = tc.perPage
			}

			pg := NewPagination(params, tc.total, returned)
			name := fmt.Sprintf("total=%d perPage=%d page=%d", tc.total, tc.perPage, page)

			assert.Equal(t, lastPage, pg.LastPage, name)
			if page <= lastPage {
				assert.Equal(t, returned, pg.End-pg.Start+1, name)
				assert.Equal(t, params.Offset()+1, pg.Start, name)
			} else {
				assert.Zero(t, pg.Start, name)
				assert.Zero(t, pg.End, name)
			}
		}
	}
}
