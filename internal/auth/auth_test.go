package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machibo/backoffice/internal/api"
	"github.com/machibo/backoffice/internal/api/apitest"
	"github.com/machibo/backoffice/internal/session"
	"github.com/machibo/backoffice/internal/storage"
)

type fixture struct {
	srv      *apitest.Server
	kv       *storage.MemoryStore
	sessions *session.Store
	client   *api.Client
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("ops", "hunter2")
	kv := storage.NewMemoryStore()
	sessions := session.New(kv, nil)
	client, err := api.NewClient(api.ClientConfig{BaseURL: srv.URL, Tokens: sessions})
	require.NoError(t, err)
	return &fixture{
		srv:      srv,
		kv:       kv,
		sessions: sessions,
		client:   client,
		service:  NewService(client, sessions, kv, nil),
	}
}

func TestLoginAuthenticatesSession(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Login(context.Background(), "ops", "hunter2")
	require.NoError(t, err)

	snap := f.sessions.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.Equal(t, result.AccessToken, snap.Token)
	stored, ok, err := f.kv.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, result.AccessToken, stored)
}

func TestLoginFailureLeavesSessionUnauthenticated(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), "ops", "wrong")

	assert.ErrorIs(t, err, api.ErrRequestFailed)
	assert.Equal(t, session.Snapshot{Status: session.Unauthenticated}, f.sessions.Snapshot())
}

func TestLoginRequiresCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), "  ", "x")

	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, 0, f.srv.Count("/auth/login"))
}

func TestLogoutClearsTokenAndPendingIDs(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Login(context.Background(), "ops", "hunter2")
	require.NoError(t, err)
	require.NoError(t, f.kv.Set(storage.KeyPendingWithdrawalIDs, "[1,2]"))

	require.NoError(t, f.service.Logout())

	assert.Empty(t, f.sessions.Token())
	_, ok, _ := f.kv.Get(storage.KeyPendingWithdrawalIDs)
	assert.False(t, ok)
	_, ok, _ = f.kv.Get(storage.KeyAccessToken)
	assert.False(t, ok)
}

func TestRestoreValidPersistedToken(t *testing.T) {
	f := newFixture(t)
	f.srv.IssueToken("kept")
	require.NoError(t, f.kv.Set(storage.KeyAccessToken, "kept"))

	snap, err := f.service.Restore(context.Background())

	require.NoError(t, err)
	assert.Equal(t, session.Snapshot{Status: session.Authenticated, Token: "kept"}, snap)
}

func TestRestoreExpiredTokenSignsOut(t *testing.T) {
	f := newFixture(t)
	f.srv.IssueToken("other")
	require.NoError(t, f.kv.Set(storage.KeyAccessToken, "old"))

	snap, err := f.service.Restore(context.Background())

	require.NoError(t, err)
	assert.Equal(t, session.Unauthenticated, snap.Status)
	assert.Empty(t, snap.Token)
}

func TestRestoreWithoutTokenSkipsNetwork(t *testing.T) {
	f := newFixture(t)

	snap, err := f.service.Restore(context.Background())

	require.NoError(t, err)
	assert.Equal(t, session.Unauthenticated, snap.Status)
	assert.Empty(t, f.srv.Requests())
}

func TestRestoreServerErrorKeepsLoading(t *testing.T) {
	f := newFixture(t)
	f.srv.IssueToken("kept")
	f.srv.FailNext("/system/withdrawal_banks", http.StatusBadGateway)
	require.NoError(t, f.kv.Set(storage.KeyAccessToken, "kept"))

	snap, err := f.service.Restore(context.Background())

	assert.ErrorIs(t, err, api.ErrRequestFailed)
	assert.Equal(t, session.Snapshot{Status: session.Loading, Token: "kept"}, snap)
}
