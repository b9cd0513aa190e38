package app

import (
	"context"
	"time"

	"github.com/machibo/backoffice/internal/detailcache"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/listview"
	"github.com/machibo/backoffice/internal/logging"
)

// WithdrawalViewClient is what the withdrawal views read from.
type WithdrawalViewClient interface {
	ListWithdrawals(ctx context.Context, filter domain.WithdrawalFilter, page domain.PageRequest) (domain.Page[domain.Withdrawal], error)
	WithdrawalLogs(ctx context.Context, filter domain.LogFilter, page domain.PageRequest) (domain.Page[domain.WithdrawalLog], error)
	WithdrawalDetail(ctx context.Context, id int64) (domain.WithdrawalDetail, error)
}

// MemberViewClient is what the member views read from.
type MemberViewClient interface {
	ListMembers(ctx context.Context, filter domain.MemberFilter, page domain.PageRequest) (domain.Page[domain.Member], error)
	MemberByUsername(ctx context.Context, username string) (domain.MemberDetail, error)
	MemberWalletLogs(ctx context.Context, filter domain.LogFilter, page domain.PageRequest) (domain.Page[domain.WalletLog], error)
	MemberPromotionLogs(ctx context.Context, filter domain.LogFilter, page domain.PageRequest) (domain.Page[domain.PromotionLog], error)
	MemberGameResults(ctx context.Context, filter domain.LogFilter, page domain.PageRequest) (domain.Page[domain.GameResult], error)
}

// Clock returns the current time; views use it for their default date window.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// WithdrawalList is the withdrawal list view state.
type WithdrawalList = listview.Controller[domain.WithdrawalFilter, domain.Withdrawal]

// NewWithdrawalList creates the withdrawal list view. Clear resets to the
// two-week window ending today.
func NewWithdrawalList(client WithdrawalViewClient, perPage int, clock Clock, logger logging.Logger) *WithdrawalList {
	return listview.New(client.ListWithdrawals, func() domain.WithdrawalFilter {
		return domain.DefaultWithdrawalFilter(clock.now())
	}, perPage, logger)
}

// NewWithdrawalLogList creates the withdrawal audit log view.
func NewWithdrawalLogList(client WithdrawalViewClient, perPage int, clock Clock, logger logging.Logger) *listview.Controller[domain.LogFilter, domain.WithdrawalLog] {
	return listview.New(client.WithdrawalLogs, logWindow(clock), perPage, logger)
}

// NewMemberList creates the member list view.
func NewMemberList(client MemberViewClient, perPage int, clock Clock, logger logging.Logger) *listview.Controller[domain.MemberFilter, domain.Member] {
	return listview.New(client.ListMembers, func() domain.MemberFilter {
		return domain.DefaultMemberFilter(clock.now())
	}, perPage, logger)
}

// NewWalletLogList creates a member wallet log view.
func NewWalletLogList(client MemberViewClient, perPage int, clock Clock, logger logging.Logger) *listview.Controller[domain.LogFilter, domain.WalletLog] {
	return listview.New(client.MemberWalletLogs, logWindow(clock), perPage, logger)
}

// NewPromotionLogList creates a member promotion log view.
func NewPromotionLogList(client MemberViewClient, perPage int, clock Clock, logger logging.Logger) *listview.Controller[domain.LogFilter, domain.PromotionLog] {
	return listview.New(client.MemberPromotionLogs, logWindow(clock), perPage, logger)
}

// NewGameResultList creates a member game result view.
func NewGameResultList(client MemberViewClient, perPage int, clock Clock, logger logging.Logger) *listview.Controller[domain.LogFilter, domain.GameResult] {
	return listview.New(client.MemberGameResults, logWindow(clock), perPage, logger)
}

func logWindow(clock Clock) func() domain.LogFilter {
	return func() domain.LogFilter { return domain.DefaultLogFilter(clock.now()) }
}

// NewWithdrawalDetailCache creates the detail cache owned by one withdrawal view.
// Repeated detail requests for the same withdrawal share one fetch.
func NewWithdrawalDetailCache(client WithdrawalViewClient) *detailcache.Cache[int64, domain.WithdrawalDetail] {
	return detailcache.New(client.WithdrawalDetail, detailcache.WithSingleFlight())
}

// NewMemberDetailCache creates the detail cache owned by one member view.
func NewMemberDetailCache(client MemberViewClient) *detailcache.Cache[string, domain.MemberDetail] {
	return detailcache.New(client.MemberByUsername)
}
