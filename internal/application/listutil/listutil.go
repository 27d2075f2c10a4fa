package listutil

import (
	"net/url"
	"strconv"
)

// ListParams holds everything a list page parses from its query string:
// pagination, sorting, free-text search and exact-match filters
// (e.g. category=postre on the dish list, role=empleado on the account list).
type ListParams struct {
	Page    int // 1-indexed
	PerPage int
	Sort    string // column name, empty when unsorted
	Dir     string // "asc" or "desc"
	Search  string
	Filters map[string]string
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// DefaultPerPage is the number of rows per page when none is requested.
const DefaultPerPage = 20

// PerPageOptions are the accepted per_page values.
var PerPageOptions = []int{10, 20, 50, 100}

// ParseListParams reads page, per_page, sort, dir, q and the named filter
// keys from query values. Unknown sort columns and filter keys are dropped,
// out-of-range values replaced with defaults.
func ParseListParams(q url.Values, allowedSortCols []string, filterKeys []string) ListParams {
	lp := ListParams{
		Page:    1,
		PerPage: DefaultPerPage,
		Dir:     "asc",
		Search:  q.Get("q"),
		Filters: make(map[string]string),
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 1 {
		lp.Page = page
	}
	if perPage, err := strconv.Atoi(q.Get("per_page")); err == nil && contains(PerPageOptions, perPage) {
		lp.PerPage = perPage
	}
	if sort := q.Get("sort"); containsStr(allowedSortCols, sort) {
		lp.Sort = sort
	}
	if q.Get("dir") == "desc" {
		lp.Dir = "desc"
	}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			lp.Filters[key] = v
		}
	}
	return lp
}

// NewPageInfo computes pagination metadata, clamping the page into range.
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row on the current page, 0 when empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row on the current page.
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// PageNumbers returns at most 5 page numbers centered on the current page,
// for pagination controls.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := p.Page - maxButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - maxButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination reports whether pagination controls are needed at all.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

func contains(opts []int, n int) bool {
	for _, o := range opts {
		if n == o {
			return true
		}
	}
	return false
}

func containsStr(opts []string, s string) bool {
	if s == "" {
		return false
	}
	for _, o := range opts {
		if s == o {
			return true
		}
	}
	return false
}
