package service

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPageSize applies when the caller does not specify one.
	DefaultPageSize = 20

	// MaxPageSize caps caller-supplied page sizes.
	MaxPageSize = 100
)

// Pagination describes one page of a listing. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize clamps the pagination into valid bounds: page at least 1,
// size defaulted and capped.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Limit returns the row limit for the page.
func (p Pagination) Limit() int {
	return p.Normalize().PageSize
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// ParsePagination reads "page" and "page_size" from query values.
// Unparseable or missing values fall back to defaults.
func ParsePagination(values url.Values) Pagination {
	p := Pagination{}
	if v, err := strconv.Atoi(values.Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(values.Get("page_size")); err == nil {
		p.PageSize = v
	}
	return p.Normalize()
}

// Page wraps a page of results with the total row count.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	PageNumber int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

// NewPage builds a Page from items, total count, and the pagination that
// produced it.
func NewPage[T any](items []T, total int64, p Pagination) Page[T] {
	n := p.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		PageNumber: n.Page,
		PageSize:   n.PageSize,
	}
}
