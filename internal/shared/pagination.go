package shared

import "math"

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PageRequest is a normalized page/per_page pair taken from a query string.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest clamps page and perPage to sane bounds.
func NewPageRequest(page, perPage int) PageRequest {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page <= 0 {
		page = 1
	}
	// Keeps (page-1)*perPage inside int.
	page = min(page, math.MaxInt/perPage)
	return PageRequest{Page: page, PerPage: perPage}
}

// Limit returns the SQL LIMIT for the page.
func (p PageRequest) Limit() int {
	return p.PerPage
}

// Offset returns the SQL OFFSET for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	req := NewPageRequest(page, perPage)
	totalPages := int(math.Ceil(float64(total) / float64(req.PerPage)))
	return Pagination{Page: req.Page, PerPage: req.PerPage, Total: total, TotalPages: totalPages}
}

// Page is one page of a listing plus its metadata.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage builds a Page, never returning a nil Data slice.
func NewPage[T any](items []T, req PageRequest, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, Pagination: NewPagination(req.Page, req.PerPage, total)}
}
