package domain

import (
	"net/url"
	"strings"
	"time"
)

// DateLayout is the date format the API expects in from/to filters.
const DateLayout = "2006-01-02"

// DefaultWindowDays is the length of the rolling window Clear resets to.
const DefaultWindowDays = 14

// DateWindow returns inclusive from/to dates covering the given number of
// days ending on now's date. Fewer than one day is treated as today only.
func DateWindow(now time.Time, days int) (from, to string) {
	if days < 1 {
		days = 1
	}
	return now.AddDate(0, 0, -(days - 1)).Format(DateLayout), now.Format(DateLayout)
}

// WithdrawalFilter holds withdrawal list criteria.
type WithdrawalFilter struct {
	Status   WithdrawalStatus
	Username string
	From     string
	To       string
}

// DefaultWithdrawalFilter is the two-week window ending today, any status.
func DefaultWithdrawalFilter(now time.Time) WithdrawalFilter {
	from, to := DateWindow(now, DefaultWindowDays)
	return WithdrawalFilter{From: from, To: to}
}

// Values serializes the filter into query parameters, omitting empty fields.
func (f WithdrawalFilter) Values() url.Values {
	v := url.Values{}
	setIf(v, "status", strings.ToUpper(string(f.Status)))
	setIf(v, "username", f.Username)
	setIf(v, "from", f.From)
	setIf(v, "to", f.To)
	return v
}

// MemberFilter holds member list criteria.
type MemberFilter struct {
	Username string
	Name     string
	Phone    string
	Status   string
	From     string
	To       string
}

// DefaultMemberFilter is the two-week registration window ending today.
func DefaultMemberFilter(now time.Time) MemberFilter {
	from, to := DateWindow(now, DefaultWindowDays)
	return MemberFilter{From: from, To: to}
}

// Values serializes the filter into query parameters, omitting empty fields.
func (f MemberFilter) Values() url.Values {
	v := url.Values{}
	setIf(v, "username", f.Username)
	setIf(v, "name", f.Name)
	setIf(v, "phone", f.Phone)
	setIf(v, "status", f.Status)
	setIf(v, "from", f.From)
	setIf(v, "to", f.To)
	return v
}

// LogFilter holds criteria shared by member and withdrawal log endpoints.
type LogFilter struct {
	Username string
	From     string
	To       string
}

// DefaultLogFilter is the two-week window ending today.
func DefaultLogFilter(now time.Time) LogFilter {
	from, to := DateWindow(now, DefaultWindowDays)
	return LogFilter{From: from, To: to}
}

// Values serializes the filter into query parameters, omitting empty fields.
func (f LogFilter) Values() url.Values {
	v := url.Values{}
	setIf(v, "username", f.Username)
	setIf(v, "from", f.From)
	setIf(v, "to", f.To)
	return v
}

func setIf(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}
