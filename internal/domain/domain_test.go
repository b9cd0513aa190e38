package domain

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateWindowEndsToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

	from, to := DateWindow(now, DefaultWindowDays)

	assert.Equal(t, "2026-02-25", from)
	assert.Equal(t, "2026-03-10", to)
	f, _ := time.Parse(DateLayout, from)
	tt, _ := time.Parse(DateLayout, to)
	assert.Equal(t, DefaultWindowDays, int(tt.Sub(f).Hours()/24)+1)
}

func TestDateWindowSingleDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	from, to := DateWindow(now, 1)
	assert.Equal(t, "2026-03-10", from)
	assert.Equal(t, to, from)

	from, _ = DateWindow(now, 0)
	assert.Equal(t, "2026-03-10", from)
}

func TestWithdrawalFilterValuesOmitEmpty(t *testing.T) {
	f := WithdrawalFilter{Status: "pending", Username: "  alice "}

	v := f.Values()

	assert.Equal(t, url.Values{"status": {"PENDING"}, "username": {"alice"}}, v)
}

func TestDefaultFiltersUseWindow(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, WithdrawalFilter{From: "2026-01-02", To: "2026-01-15"}, DefaultWithdrawalFilter(now))
	assert.Equal(t, MemberFilter{From: "2026-01-02", To: "2026-01-15"}, DefaultMemberFilter(now))
	assert.Equal(t, LogFilter{From: "2026-01-02", To: "2026-01-15"}, DefaultLogFilter(now))
}

func TestPageRequestApply(t *testing.T) {
	v := url.Values{}
	PageRequest{Page: 3, PerPage: 25}.Apply(v)
	assert.Equal(t, "3", v.Get("page"))
	assert.Equal(t, "25", v.Get("per_page"))

	empty := url.Values{}
	PageRequest{}.Apply(empty)
	assert.Empty(t, empty)
}

func TestPaginationNavigation(t *testing.T) {
	p := Pagination{CurrentPage: 2, LastPage: 3}
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrev())

	d := DefaultPagination(10)
	assert.Equal(t, Pagination{CurrentPage: 1, LastPage: 1, PerPage: 10, Total: 0}, d)
	assert.False(t, d.HasNext())
	assert.False(t, d.HasPrev())
}

func TestWithdrawalDetailDecodesEmbeddedFields(t *testing.T) {
	raw := `{"id":7,"username":"bob","amount":"150.50","status":"PENDING","member":{"id":3,"username":"bob","balance":12},"logs":[{"id":1,"withdrawal_id":7,"action":"CREATED"}]}`

	var d WithdrawalDetail
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	assert.Equal(t, int64(7), d.ID)
	assert.Equal(t, WithdrawalPending, d.Status)
	assert.Equal(t, json.Number("150.50"), d.Amount)
	require.NotNil(t, d.Member)
	assert.Equal(t, "bob", d.Member.Username)
	require.Len(t, d.Logs, 1)
	assert.Equal(t, "CREATED", d.Logs[0].Action)
}
