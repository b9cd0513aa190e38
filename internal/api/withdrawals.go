package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/machibo/backoffice/internal/domain"
)

// ListWithdrawals returns one page of GET /withdrawals.
func (c *Client) ListWithdrawals(ctx context.Context, filter domain.WithdrawalFilter, page domain.PageRequest) (domain.Page[domain.Withdrawal], error) {
	return getPage[domain.Withdrawal](ctx, c, "/withdrawals", listQuery(filter.Values(), page))
}

// WithdrawalLogs returns one page of GET /withdrawals/logs.
func (c *Client) WithdrawalLogs(ctx context.Context, filter domain.LogFilter, page domain.PageRequest) (domain.Page[domain.WithdrawalLog], error) {
	return getPage[domain.WithdrawalLog](ctx, c, "/withdrawals/logs", listQuery(filter.Values(), page))
}

// WithdrawalDetail returns GET /withdrawals/details/{id}.
func (c *Client) WithdrawalDetail(ctx context.Context, id int64) (domain.WithdrawalDetail, error) {
	var detail domain.WithdrawalDetail
	err := c.Do(ctx, Request{
		Method:      http.MethodGet,
		Endpoint:    "/withdrawals/details/" + strconv.FormatInt(id, 10),
		RequireAuth: true,
	}, &detail)
	return detail, err
}

// WithdrawalGameReports returns GET /withdrawals/game_reports/{id}.
func (c *Client) WithdrawalGameReports(ctx context.Context, id int64) ([]domain.GameReport, error) {
	return getRows[domain.GameReport](ctx, c, "/withdrawals/game_reports/"+strconv.FormatInt(id, 10), nil)
}

// ApproveWithdrawal posts to /withdrawals/approve and returns the server message.
func (c *Client) ApproveWithdrawal(ctx context.Context, decision domain.WithdrawalDecision) (string, error) {
	return c.decide(ctx, "/withdrawals/approve", decision)
}

// RejectWithdrawal posts to /withdrawals/reject and returns the server message.
func (c *Client) RejectWithdrawal(ctx context.Context, decision domain.WithdrawalDecision) (string, error) {
	return c.decide(ctx, "/withdrawals/reject", decision)
}

func (c *Client) decide(ctx context.Context, endpoint string, decision domain.WithdrawalDecision) (string, error) {
	env, err := c.Call(ctx, Request{Method: http.MethodPost, Endpoint: endpoint, Body: decision, RequireAuth: true})
	if err != nil {
		return "", err
	}
	return string(env.Message), nil
}
