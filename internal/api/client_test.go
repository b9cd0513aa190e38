package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machibo/backoffice/internal/api/apitest"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/session"
	"github.com/machibo/backoffice/internal/storage"
)

func newTestClient(t *testing.T, baseURL string) (*Client, *session.Store) {
	t.Helper()
	tokens := session.New(storage.NewMemoryStore(), nil)
	client, err := NewClient(ClientConfig{BaseURL: baseURL, Tokens: tokens})
	require.NoError(t, err)
	return client, tokens
}

func TestNewClientValidatesConfig(t *testing.T) {
	tokens := session.New(storage.NewMemoryStore(), nil)

	_, err := NewClient(ClientConfig{Tokens: tokens})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "not a url", Tokens: tokens})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "https://example.test"})
	assert.Error(t, err)

	c, err := NewClient(ClientConfig{BaseURL: "https://example.test/", Tokens: tokens})
	require.NoError(t, err)
	assert.Equal(t, "https://example.test", c.BaseURL())
}

func TestRequestCarriesBearerToken(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok-1")
	client, tokens := newTestClient(t, srv.URL)
	tokens.OnAuthStateChange(session.Authenticated, "tok-1")

	_, err := client.ListWithdrawals(context.Background(), domain.WithdrawalFilter{}, domain.PageRequest{})
	require.NoError(t, err)

	req, ok := srv.Last("/withdrawals")
	require.True(t, ok)
	assert.Equal(t, "Bearer tok-1", req.Authorization)
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Contains(t, req.Header.Get("User-Agent"), "backoffice/")
}

func TestRequireAuthWithoutTokenSkipsNetwork(t *testing.T) {
	srv := apitest.New(t)
	client, _ := newTestClient(t, srv.URL)

	_, err := client.ListWithdrawals(context.Background(), domain.WithdrawalFilter{}, domain.PageRequest{})

	assert.ErrorIs(t, err, ErrNoToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 0, srv.Count("/withdrawals"))
}

func TestRequestWithoutTokenIsStillSent(t *testing.T) {
	srv := apitest.New(t)
	client, _ := newTestClient(t, srv.URL)

	_, err := client.Request(context.Background(), http.MethodGet, "/withdrawals", nil, nil)

	assert.ErrorIs(t, err, ErrUnauthorized)
	req, ok := srv.Last("/withdrawals")
	require.True(t, ok)
	assert.Empty(t, req.Authorization)
}

func TestUnauthorizedClearsToken(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("fresh")
	client, tokens := newTestClient(t, srv.URL)
	tokens.OnAuthStateChange(session.Authenticated, "stale")

	_, err := client.ListMembers(context.Background(), domain.MemberFilter{}, domain.PageRequest{})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindUnauthorized, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthenticated.", apiErr.Message)
	assert.Empty(t, tokens.Token())
	assert.Equal(t, session.Unauthenticated, tokens.Status())
}

func TestNon2xxIsRequestFailed(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	srv.FailNext("/withdrawals", http.StatusInternalServerError)
	client, tokens := newTestClient(t, srv.URL)
	tokens.OnAuthStateChange(session.Authenticated, "tok")

	_, err := client.ListWithdrawals(context.Background(), domain.WithdrawalFilter{}, domain.PageRequest{})

	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "/withdrawals", apiErr.Endpoint)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "tok", tokens.Token())
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client, tokens := newTestClient(t, url)
	tokens.OnAuthStateChange(session.Authenticated, "tok")

	_, err := client.WithdrawalBanks(context.Background())

	assert.ErrorIs(t, err, ErrNetwork)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.NotNil(t, errors.Unwrap(apiErr))
	assert.Equal(t, "tok", tokens.Token())
}

func TestEnvelopeFailureOn2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"maintenance","data":null}`))
	}))
	t.Cleanup(srv.Close)
	client, tokens := newTestClient(t, srv.URL)
	tokens.OnAuthStateChange(session.Authenticated, "tok")

	_, err := client.WithdrawalBanks(context.Background())

	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "maintenance", ServerMessage(err))
}

func TestListQuerySerialization(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	client, tokens := newTestClient(t, srv.URL)
	tokens.OnAuthStateChange(session.Authenticated, "tok")

	_, err := client.ListWithdrawals(context.Background(),
		domain.WithdrawalFilter{Status: domain.WithdrawalPending, Username: "bob", From: "2026-01-01", To: "2026-01-15"},
		domain.PageRequest{Page: 2, PerPage: 5})
	require.NoError(t, err)

	req, _ := srv.Last("/withdrawals")
	assert.Equal(t, "PENDING", req.Query.Get("status"))
	assert.Equal(t, "bob", req.Query.Get("username"))
	assert.Equal(t, "2026-01-01", req.Query.Get("from"))
	assert.Equal(t, "2026-01-15", req.Query.Get("to"))
	assert.Equal(t, "2", req.Query.Get("page"))
	assert.Equal(t, "5", req.Query.Get("per_page"))
}

func TestListWithdrawalsPagination(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	srv.SetWithdrawals(
		domain.Withdrawal{ID: 1, Status: domain.WithdrawalPending, Amount: "10"},
		domain.Withdrawal{ID: 2, Status: domain.WithdrawalPending, Amount: "20"},
		domain.Withdrawal{ID: 3, Status: domain.WithdrawalApproved, Amount: "30"},
	)
	client, tokens := newTestClient(t, srv.URL)
	tokens.OnAuthStateChange(session.Authenticated, "tok")

	page, err := client.ListWithdrawals(context.Background(), domain.WithdrawalFilter{}, domain.PageRequest{Page: 2, PerPage: 2})
	require.NoError(t, err)

	require.Len(t, page.Rows, 1)
	assert.Equal(t, int64(3), page.Rows[0].ID)
	assert.Equal(t, domain.Pagination{CurrentPage: 2, LastPage: 2, PerPage: 2, Total: 3}, page.Pagination)
}

func TestApproveAndRejectReturnServerMessage(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	srv.SetWithdrawals(domain.Withdrawal{ID: 9, Status: domain.WithdrawalPending})
	client, tokens := newTestClient(t, srv.URL)
	tokens.OnAuthStateChange(session.Authenticated, "tok")
	ctx := context.Background()

	msg, err := client.ApproveWithdrawal(ctx, domain.WithdrawalDecision{ID: 9})
	require.NoError(t, err)
	assert.Equal(t, "Withdrawal approved", msg)

	_, err = client.RejectWithdrawal(ctx, domain.WithdrawalDecision{ID: 9, Remark: "dup"})
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "Withdrawal already processed", ServerMessage(err))

	req, _ := srv.Last("/withdrawals/reject")
	var body domain.WithdrawalDecision
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, domain.WithdrawalDecision{ID: 9, Remark: "dup"}, body)
}

func TestDetailEndpoints(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	srv.SetWithdrawals(domain.Withdrawal{ID: 4, Username: "carol", Status: domain.WithdrawalPending})
	srv.SetMembers(domain.Member{ID: 1, Username: "carol", Balance: "5.5"})
	srv.SetGameWallets("carol", domain.GameWallet{Provider: "pg", Balance: "1"})
	client, tokens := newTestClient(t, srv.URL)
	tokens.OnAuthStateChange(session.Authenticated, "tok")
	ctx := context.Background()

	detail, err := client.WithdrawalDetail(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "carol", detail.Username)
	assert.Len(t, detail.Logs, 1)

	member, err := client.MemberByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "5.5", member.Balance.String())

	wallets, err := client.MemberGameWallets(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []domain.GameWallet{{Provider: "pg", Balance: "1"}}, wallets)

	reports, err := client.WithdrawalGameReports(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, reports)

	banks, err := client.WithdrawalBanks(ctx)
	require.NoError(t, err)
	assert.Len(t, banks, 2)

	_, err = client.MemberByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestLogEndpointsDecodeLogsField(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	client, tokens := newTestClient(t, srv.URL)
	tokens.OnAuthStateChange(session.Authenticated, "tok")
	ctx := context.Background()

	logs, err := client.WithdrawalLogs(ctx, domain.LogFilter{}, domain.PageRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Empty(t, logs.Rows)
	assert.Equal(t, 20, logs.Pagination.PerPage)

	promos, err := client.MemberPromotionLogs(ctx, domain.LogFilter{Username: "x"}, domain.PageRequest{})
	require.NoError(t, err)
	assert.NotNil(t, promos.Rows)

	_, err = client.MemberWalletLogs(ctx, domain.LogFilter{}, domain.PageRequest{})
	require.NoError(t, err)
	_, err = client.MemberGameResults(ctx, domain.LogFilter{}, domain.PageRequest{})
	require.NoError(t, err)
	_, err = client.MemberGameReports(ctx, domain.LogFilter{})
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ops", "secret")
	client, _ := newTestClient(t, srv.URL)

	result, err := client.Login(context.Background(), domain.Credentials{Username: "ops", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "ops", result.Username)

	_, err = client.Login(context.Background(), domain.Credentials{Username: "ops", Password: "wrong"})
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "Invalid username or password", ServerMessage(err))
}
