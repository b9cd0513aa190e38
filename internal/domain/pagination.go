// Package domain defines the back-office records exchanged with the remote API.
package domain

import (
	"net/url"
	"strconv"
)

// Pagination mirrors the pagination object nested in list responses.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// DefaultPagination is the state a list view falls back to on load or failure.
func DefaultPagination(perPage int) Pagination {
	return Pagination{CurrentPage: 1, LastPage: 1, PerPage: perPage, Total: 0}
}

// HasNext reports whether a page after the current one exists.
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.LastPage
}

// HasPrev reports whether a page before the current one exists.
func (p Pagination) HasPrev() bool {
	return p.CurrentPage > 1
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Rows       []T
	Pagination Pagination
}

// PageRequest selects a page of a list endpoint.
type PageRequest struct {
	Page    int
	PerPage int
}

// Apply writes page and per_page into values, skipping unset fields.
func (r PageRequest) Apply(values url.Values) {
	if r.Page > 0 {
		values.Set("page", strconv.Itoa(r.Page))
	}
	if r.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(r.PerPage))
	}
}
