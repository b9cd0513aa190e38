package listview

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machibo/backoffice/internal/domain"
)

type call struct {
	filter domain.WithdrawalFilter
	page   domain.PageRequest
	query  url.Values
}

type recorder struct {
	mu    sync.Mutex
	calls []call
	err   error
	total int
}

func (r *recorder) fetch(_ context.Context, f domain.WithdrawalFilter, p domain.PageRequest) (domain.Page[domain.Withdrawal], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := f.Values()
	p.Apply(q)
	r.calls = append(r.calls, call{filter: f, page: p, query: q})
	if r.err != nil {
		return domain.Page[domain.Withdrawal]{}, r.err
	}
	last := (r.total + p.PerPage - 1) / p.PerPage
	if last < 1 {
		last = 1
	}
	return domain.Page[domain.Withdrawal]{
		Rows:       []domain.Withdrawal{{ID: int64(p.Page)}},
		Pagination: domain.Pagination{CurrentPage: p.Page, LastPage: last, PerPage: p.PerPage, Total: r.total},
	}, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func defaults() domain.WithdrawalFilter {
	return domain.DefaultWithdrawalFilter(time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))
}

func newController(r *recorder) *Controller[domain.WithdrawalFilter, domain.Withdrawal] {
	return New(r.fetch, defaults, 10, nil)
}

func TestEditDoesNotFetch(t *testing.T) {
	r := &recorder{total: 30}
	c := newController(r)

	c.Edit(func(f *domain.WithdrawalFilter) { f.Username = "dave" })
	c.Edit(func(f *domain.WithdrawalFilter) { f.Status = domain.WithdrawalPending })

	assert.Equal(t, 0, r.count())
	assert.Equal(t, "dave", c.Draft().Username)
	assert.Empty(t, c.Snapshot().Active.Username)
}

func TestSearchFetchesOnceWithEditedFilter(t *testing.T) {
	r := &recorder{total: 30}
	c := newController(r)
	require.NoError(t, c.PageChange(context.Background(), 3))

	c.Edit(func(f *domain.WithdrawalFilter) { f.Username = "dave" })
	require.NoError(t, c.Search(context.Background()))

	require.Equal(t, 2, r.count())
	last := r.calls[1]
	assert.Equal(t, "dave", last.query.Get("username"))
	assert.Equal(t, "1", last.query.Get("page"))
	assert.Equal(t, "10", last.query.Get("per_page"))
	assert.Equal(t, "2026-05-07", last.query.Get("from"))
	assert.Equal(t, 1, c.Pagination().CurrentPage)
}

func TestPageChangeUsesActiveNotDraft(t *testing.T) {
	r := &recorder{total: 30}
	c := newController(r)
	c.Edit(func(f *domain.WithdrawalFilter) { f.Username = "searched" })
	require.NoError(t, c.Search(context.Background()))

	c.Edit(func(f *domain.WithdrawalFilter) { f.Username = "unsaved" })
	require.NoError(t, c.PageChange(context.Background(), 2))

	assert.Equal(t, "searched", r.calls[1].filter.Username)
	assert.Equal(t, 2, r.calls[1].page.Page)
	assert.Equal(t, 2, c.Pagination().CurrentPage)
}

func TestRowsPerPageChangeResetsToFirstPage(t *testing.T) {
	r := &recorder{total: 30}
	c := newController(r)
	require.NoError(t, c.PageChange(context.Background(), 3))

	require.NoError(t, c.RowsPerPageChange(context.Background(), 25))

	assert.Equal(t, domain.PageRequest{Page: 1, PerPage: 25}, r.calls[1].page)
	assert.Equal(t, domain.Pagination{CurrentPage: 1, LastPage: 2, PerPage: 25, Total: 30}, c.Pagination())

	require.NoError(t, c.PageChange(context.Background(), 2))
	assert.Equal(t, 25, r.calls[2].page.PerPage)
}

func TestClearRestoresDefaults(t *testing.T) {
	r := &recorder{total: 5}
	c := newController(r)
	c.Edit(func(f *domain.WithdrawalFilter) { f.Username = "x"; f.From = "2020-01-01" })
	require.NoError(t, c.Search(context.Background()))

	require.NoError(t, c.Clear(context.Background()))

	assert.Equal(t, defaults(), c.Draft())
	assert.Equal(t, defaults(), r.calls[1].filter)
	assert.Equal(t, 1, r.calls[1].page.Page)
}

func TestFailureResetsRowsAndPagination(t *testing.T) {
	r := &recorder{total: 50}
	c := newController(r)
	require.NoError(t, c.RowsPerPageChange(context.Background(), 20))
	require.NoError(t, c.PageChange(context.Background(), 2))
	require.NotEmpty(t, c.Rows())

	r.err = errors.New("500")
	err := c.PageChange(context.Background(), 3)

	assert.Error(t, err)
	assert.Equal(t, domain.Pagination{CurrentPage: 1, LastPage: 1, PerPage: 10, Total: 0}, c.Pagination())
	assert.Equal(t, []domain.Withdrawal{}, c.Rows())
	assert.Error(t, c.Snapshot().Err)
}

func TestStaleResponseIsDropped(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	fetch := func(_ context.Context, _ domain.WithdrawalFilter, p domain.PageRequest) (domain.Page[domain.Withdrawal], error) {
		if p.Page == 2 {
			close(slowStarted)
			<-releaseSlow
		}
		return domain.Page[domain.Withdrawal]{
			Rows:       []domain.Withdrawal{{ID: int64(p.Page)}},
			Pagination: domain.Pagination{CurrentPage: p.Page, LastPage: 5, PerPage: p.PerPage, Total: 50},
		}, nil
	}
	c := New(fetch, defaults, 10, nil)

	done := make(chan error, 1)
	go func() { done <- c.PageChange(context.Background(), 2) }()
	<-slowStarted
	require.NoError(t, c.PageChange(context.Background(), 3))
	close(releaseSlow)
	require.NoError(t, <-done)

	assert.Equal(t, 3, c.Pagination().CurrentPage)
	assert.Equal(t, []domain.Withdrawal{{ID: 3}}, c.Rows())
}

func TestInitialState(t *testing.T) {
	c := newController(&recorder{})

	snap := c.Snapshot()
	assert.Equal(t, domain.DefaultPagination(10), snap.Pagination)
	assert.Empty(t, snap.Rows)
	assert.Equal(t, defaults(), snap.Active)
}
