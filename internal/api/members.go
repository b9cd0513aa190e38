package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/machibo/backoffice/internal/domain"
)

func listQuery(filter url.Values, page domain.PageRequest) url.Values {
	if filter == nil {
		filter = url.Values{}
	}
	page.Apply(filter)
	return filter
}

func getPage[T any](ctx context.Context, c *Client, endpoint string, query url.Values) (domain.Page[T], error) {
	env, err := c.Call(ctx, Request{Method: http.MethodGet, Endpoint: endpoint, Query: query, RequireAuth: true})
	if err != nil {
		return domain.Page[T]{}, err
	}
	return decodePage[T](env.Data)
}

func getRows[T any](ctx context.Context, c *Client, endpoint string, query url.Values) ([]T, error) {
	env, err := c.Call(ctx, Request{Method: http.MethodGet, Endpoint: endpoint, Query: query, RequireAuth: true})
	if err != nil {
		return nil, err
	}
	return decodeRows[T](env.Data)
}

// ListMembers returns one page of GET /members.
func (c *Client) ListMembers(ctx context.Context, filter domain.MemberFilter, page domain.PageRequest) (domain.Page[domain.Member], error) {
	return getPage[domain.Member](ctx, c, "/members", listQuery(filter.Values(), page))
}

// MemberByUsername returns GET /members/u/{username}.
func (c *Client) MemberByUsername(ctx context.Context, username string) (domain.MemberDetail, error) {
	var detail domain.MemberDetail
	err := c.Do(ctx, Request{
		Method:      http.MethodGet,
		Endpoint:    "/members/u/" + url.PathEscape(username),
		RequireAuth: true,
	}, &detail)
	return detail, err
}

// MemberGameWallets returns GET /members/game_wallets for username.
func (c *Client) MemberGameWallets(ctx context.Context, username string) ([]domain.GameWallet, error) {
	return getRows[domain.GameWallet](ctx, c, "/members/game_wallets", url.Values{"username": {username}})
}

// MemberWalletLogs returns one page of GET /members/wallet_logs.
func (c *Client) MemberWalletLogs(ctx context.Context, filter domain.LogFilter, page domain.PageRequest) (domain.Page[domain.WalletLog], error) {
	return getPage[domain.WalletLog](ctx, c, "/members/wallet_logs", listQuery(filter.Values(), page))
}

// MemberPromotionLogs returns one page of GET /members/promotion_logs.
func (c *Client) MemberPromotionLogs(ctx context.Context, filter domain.LogFilter, page domain.PageRequest) (domain.Page[domain.PromotionLog], error) {
	return getPage[domain.PromotionLog](ctx, c, "/members/promotion_logs", listQuery(filter.Values(), page))
}

// MemberGameResults returns one page of GET /members/game_results.
func (c *Client) MemberGameResults(ctx context.Context, filter domain.LogFilter, page domain.PageRequest) (domain.Page[domain.GameResult], error) {
	return getPage[domain.GameResult](ctx, c, "/members/game_results", listQuery(filter.Values(), page))
}

// MemberGameReports returns GET /members/game_reports.
func (c *Client) MemberGameReports(ctx context.Context, filter domain.LogFilter) ([]domain.GameReport, error) {
	return getRows[domain.GameReport](ctx, c, "/members/game_reports", filter.Values())
}
