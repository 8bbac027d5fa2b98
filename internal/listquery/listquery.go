// Package listquery turns raw listing query parameters into a validated,
// deterministic sort/search/pagination plan plus the pagination metadata
// returned alongside a result page.
package listquery

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	DefaultSortKey = "id"
)

// sortColumns is the allow-list of sortable keys. Anything else is rejected
// before a query is built, so a sort key can never reach SQL uninterpreted.
var sortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"email":      "email",
	"username":   "username",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// FieldError reports a single invalid query parameter.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Params is the parsed form of a listing request.
type Params struct {
	SortKey      string
	SortOrder    string
	Search       string
	Paginate     bool
	Page         int
	PerPage      int
	WithEmployee bool
}

// Parse reads listing parameters from a query string, applying defaults and
// validating each field. The returned error is always a *FieldError.
func Parse(query url.Values) (Params, error) {
	p := Params{
		SortKey:   DefaultSortKey,
		SortOrder: "asc",
		Page:      DefaultPage,
		PerPage:   DefaultPerPage,
	}

	if v := strings.TrimSpace(query.Get("sortKey")); v != "" {
		if _, ok := sortColumns[v]; !ok {
			return p, &FieldError{Field: "sortKey", Message: "The selected sortKey is invalid."}
		}
		p.SortKey = v
	}

	if v := strings.ToLower(strings.TrimSpace(query.Get("sortOrder"))); v != "" {
		if v != "asc" && v != "desc" {
			return p, &FieldError{Field: "sortOrder", Message: "The selected sortOrder is invalid."}
		}
		p.SortOrder = v
	}

	p.Search = strings.TrimSpace(query.Get("search"))

	if v := strings.TrimSpace(query.Get("paginate")); v != "" {
		paginate, err := strconv.ParseBool(v)
		if err != nil {
			return p, &FieldError{Field: "paginate", Message: "The paginate field must be true or false."}
		}
		p.Paginate = paginate
	}

	if v := strings.TrimSpace(query.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return p, &FieldError{Field: "page", Message: "The page must be an integer."}
		}
		if page < 1 {
			page = 1
		}
		p.Page = page
	}

	if v := strings.TrimSpace(query.Get("perPage")); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil {
			return p, &FieldError{Field: "perPage", Message: "The perPage must be an integer."}
		}
		if perPage < 1 {
			return p, &FieldError{Field: "perPage", Message: "The perPage must be at least 1."}
		}
		p.PerPage = perPage
	}

	if v := strings.TrimSpace(query.Get("withEmployee")); v != "" {
		withEmployee, err := strconv.ParseBool(v)
		if err != nil {
			return p, &FieldError{Field: "withEmployee", Message: "The withEmployee field must be true or false."}
		}
		p.WithEmployee = withEmployee
	}

	return p, nil
}

// Offset is the zero-based skip count for the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// OrderBy returns the ORDER BY expression for the validated sort key and
// direction, with id appended as a tie-break so paging is reproducible even
// when the sort column has duplicates. The prefix qualifies columns when the
// query joins other tables (e.g. "u.").
func (p Params) OrderBy(prefix string) string {
	column := prefix + sortColumns[p.SortKey]
	direction := "ASC"
	if p.SortOrder == "desc" {
		direction = "DESC"
	}
	if p.SortKey == "id" {
		return column + " " + direction
	}
	return fmt.Sprintf("%s %s, %sid ASC", column, direction, prefix)
}

// Pagination is the metadata block returned next to a result page. Start and
// end are one-based positions of the first and last returned row within the
// filtered set; both are zero when the requested page is past the last one.
type Pagination struct {
	Page     int `json:"page"`
	PerPage  int `json:"perPage"`
	LastPage int `json:"lastPage"`
	Start    int `json:"start"`
	End      int `json:"end"`
	Total    int `json:"total"`
}

// NewPagination computes the metadata for a slice of `returned` rows taken at
// the params' offset from a filtered set of `total` rows. For an empty set
// lastPage is 0, so any requested page lands past it and start = end = 0.
func NewPagination(p Params, total, returned int) Pagination {
	lastPage := (total + p.PerPage - 1) / p.PerPage

	pg := Pagination{
		Page:     p.Page,
		PerPage:  p.PerPage,
		LastPage: lastPage,
		Total:    total,
	}
	if p.Page > lastPage {
		return pg
	}
	pg.Start = p.Offset() + 1
	pg.End = p.Offset() + returned
	return pg
}
