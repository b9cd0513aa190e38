// Package listview holds the filter and pagination state of one list view.
//
// Filter edits only touch the draft. Search, Clear, PageChange and
// RowsPerPageChange are the only operations that fetch; page and rows
// changes reuse the last searched filter. Each fetch carries a sequence
// number and only the latest issued response is applied.
package listview

import (
	"context"
	"sync"

	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/logging"
)

// FetchFunc loads one page for filter.
type FetchFunc[F, R any] func(ctx context.Context, filter F, page domain.PageRequest) (domain.Page[R], error)

// Controller is the state of one list view. Safe for concurrent use.
type Controller[F, R any] struct {
	fetch          FetchFunc[F, R]
	defaults       func() F
	defaultPerPage int
	logger         logging.Logger

	mu         sync.Mutex
	draft      F
	active     F
	rows       []R
	pagination domain.Pagination
	seq        uint64
	loading    bool
	err        error
}

// Snapshot is a consistent copy of the controller state.
type Snapshot[F, R any] struct {
	Draft      F
	Active     F
	Rows       []R
	Pagination domain.Pagination
	Loading    bool
	Err        error
}

// New creates a controller whose draft and active filters start at defaults().
func New[F, R any](fetch FetchFunc[F, R], defaults func() F, perPage int, logger logging.Logger) *Controller[F, R] {
	if fetch == nil {
		panic("listview.New: fetch must not be nil")
	}
	if defaults == nil {
		defaults = func() F {
			var zero F
			return zero
		}
	}
	if perPage <= 0 {
		perPage = 10
	}
	if logger == nil {
		logger = logging.Nop()
	}
	initial := defaults()
	return &Controller[F, R]{
		fetch:          fetch,
		defaults:       defaults,
		defaultPerPage: perPage,
		logger:         logger.With("component", "listview"),
		draft:          initial,
		active:         initial,
		rows:           []R{},
		pagination:     domain.DefaultPagination(perPage),
	}
}

// Snapshot returns the current state.
func (c *Controller[F, R]) Snapshot() Snapshot[F, R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[F, R]{
		Draft:      c.draft,
		Active:     c.active,
		Rows:       c.copyRows(),
		Pagination: c.pagination,
		Loading:    c.loading,
		Err:        c.err,
	}
}

// Draft returns the filter being edited.
func (c *Controller[F, R]) Draft() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Rows returns the rows of the current page.
func (c *Controller[F, R]) Rows() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyRows()
}

func (c *Controller[F, R]) copyRows() []R {
	rows := make([]R, len(c.rows))
	copy(rows, c.rows)
	return rows
}

// Pagination returns the current pagination.
func (c *Controller[F, R]) Pagination() domain.Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination
}

// Edit changes the draft filter. It never fetches.
func (c *Controller[F, R]) Edit(fn func(*F)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.draft)
}

// Load fetches the first page with the active filter, for view mount.
func (c *Controller[F, R]) Load(ctx context.Context) error {
	c.mu.Lock()
	filter, perPage := c.active, c.pagination.PerPage
	c.mu.Unlock()
	return c.load(ctx, filter, 1, perPage)
}

// Search makes the draft active and fetches page 1.
func (c *Controller[F, R]) Search(ctx context.Context) error {
	c.mu.Lock()
	c.active = c.draft
	filter, perPage := c.active, c.pagination.PerPage
	c.mu.Unlock()
	return c.load(ctx, filter, 1, perPage)
}

// Clear resets both filters to the view default and fetches page 1.
func (c *Controller[F, R]) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.draft = c.defaults()
	c.active = c.draft
	filter, perPage := c.active, c.pagination.PerPage
	c.mu.Unlock()
	return c.load(ctx, filter, 1, perPage)
}

// PageChange fetches page n of the active filter.
func (c *Controller[F, R]) PageChange(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	filter, perPage := c.active, c.pagination.PerPage
	c.mu.Unlock()
	return c.load(ctx, filter, n, perPage)
}

// RowsPerPageChange fetches page 1 of the active filter with n rows per page.
func (c *Controller[F, R]) RowsPerPageChange(ctx context.Context, n int) error {
	if n < 1 {
		n = c.defaultPerPage
	}
	c.mu.Lock()
	filter := c.active
	c.mu.Unlock()
	return c.load(ctx, filter, 1, n)
}

func (c *Controller[F, R]) load(ctx context.Context, filter F, page, perPage int) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.mu.Unlock()

	result, err := c.fetch(ctx, filter, domain.PageRequest{Page: page, PerPage: perPage})

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.logger.Debug("dropping stale response", "seq", seq, "latest", c.seq)
		return nil
	}
	c.loading = false
	if err != nil {
		c.rows = []R{}
		c.pagination = domain.DefaultPagination(c.defaultPerPage)
		c.err = err
		c.logger.Error("list fetch failed", "page", page, "per_page", perPage, "error", err.Error())
		return err
	}
	c.err = nil
	c.rows = result.Rows
	if c.rows == nil {
		c.rows = []R{}
	}
	c.pagination = result.Pagination
	if c.pagination.PerPage <= 0 {
		c.pagination.PerPage = perPage
	}
	if c.pagination.CurrentPage <= 0 {
		c.pagination.CurrentPage = page
	}
	if c.pagination.LastPage < c.pagination.CurrentPage {
		c.pagination.LastPage = c.pagination.CurrentPage
	}
	return nil
}
