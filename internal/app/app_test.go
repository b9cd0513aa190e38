package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machibo/backoffice/internal/api"
	"github.com/machibo/backoffice/internal/api/apitest"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/errors"
	"github.com/machibo/backoffice/internal/poller"
	"github.com/machibo/backoffice/internal/session"
	"github.com/machibo/backoffice/internal/settings"
	"github.com/machibo/backoffice/internal/storage"
)

func newTestRuntime(t *testing.T, srv *apitest.Server) *Runtime {
	t.Helper()
	rt, err := NewRuntimeWith(storage.NewMemoryStore(), srv.URL, nil)
	require.NoError(t, err)
	rt.Settings = settings.NewStore(filepath.Join(t.TempDir(), "preferences.toml"))
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func pending(id int64, username string) domain.Withdrawal {
	return domain.Withdrawal{ID: id, Username: username, Amount: "100000", Status: domain.WithdrawalPending, CreatedAt: "2026-10-18 09:00:00"}
}

func TestSessionLifecycleAgainstServer(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ops", "secret")
	srv.SetWithdrawals(pending(1, "alice"))
	rt := newTestRuntime(t, srv)
	ctx := context.Background()

	res, err := rt.Auth.Login(ctx, "ops", "secret")
	require.NoError(t, err)
	assert.Equal(t, session.Authenticated, rt.Sessions.Status())
	assert.Equal(t, res.AccessToken, rt.Sessions.Token())

	_, err = rt.Client.ListWithdrawals(ctx, domain.WithdrawalFilter{}, domain.PageRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	last, ok := srv.Last("/withdrawals")
	require.True(t, ok)
	assert.Equal(t, "Bearer "+res.AccessToken, last.Authorization)

	srv.ExpireToken()
	_, err = rt.Client.ListWithdrawals(ctx, domain.WithdrawalFilter{}, domain.PageRequest{Page: 1, PerPage: 10})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, session.Unauthenticated, rt.Sessions.Status())
	assert.Empty(t, rt.Sessions.Token())
	_, found, err := rt.KV.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, found)

	before := srv.Count("/withdrawals")
	_, err = rt.Client.ListWithdrawals(ctx, domain.WithdrawalFilter{}, domain.PageRequest{Page: 1, PerPage: 10})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, before, srv.Count("/withdrawals"), "no request without a token")
	wd, _ := srv.Withdrawal(1)
	assert.Equal(t, domain.WithdrawalPending, wd.Status)
}

func TestRuntimeRestoresPersistedToken(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("persisted")
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(storage.KeyAccessToken, "persisted"))

	rt, err := NewRuntimeWith(kv, srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "persisted", rt.Sessions.Token())

	snap, err := rt.Auth.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Authenticated())
}

func TestRestoredSessionStartsPolling(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("persisted")
	srv.SetWithdrawals(pending(3, "dora"))
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(storage.KeyAccessToken, "persisted"))
	rt, err := NewRuntimeWith(kv, srv.URL, nil)
	require.NoError(t, err)
	rt.Settings = settings.NewStore(filepath.Join(t.TempDir(), "preferences.toml"))
	t.Cleanup(func() { _ = rt.Close() })
	require.Equal(t, session.Loading, rt.Sessions.Status())

	snap, err := rt.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, snap.Authenticated())

	p := rt.NewPoller(nil, &poller.Gate{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx, rt.Sessions)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	assert.Eventually(t, func() bool { return p.State() == poller.Polling }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return srv.Count("/withdrawals") > 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRuntimeWithoutTokenSettlesSignedOut(t *testing.T) {
	srv := apitest.New(t)
	rt := newTestRuntime(t, srv)
	assert.Equal(t, session.Unauthenticated, rt.Sessions.Status())

	snap, err := rt.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.Unauthenticated, snap.Status)
	assert.Empty(t, srv.Requests())
}

func TestDecisionUseCaseToastsOutcome(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	srv.SetWithdrawals(pending(7, "bob"), pending(8, "carol"))
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(storage.KeyAccessToken, "tok"))
	rt, err := NewRuntimeWith(kv, srv.URL, nil)
	require.NoError(t, err)
	rt.Sessions.OnAuthStateChange(session.Authenticated, "tok")

	toasts := errors.NewTUIHandler(nil)
	uc := NewDecisionUseCase(rt.Client, toasts)
	ctx := context.Background()

	require.NoError(t, uc.Approve(ctx, 7, "ok"))
	msg, ok := toasts.Latest()
	require.True(t, ok)
	assert.Equal(t, errors.MessageTypeSuccess, msg.Type)
	assert.Equal(t, "Withdrawal approved", msg.Text)
	wd, _ := srv.Withdrawal(7)
	assert.Equal(t, domain.WithdrawalApproved, wd.Status)

	err = uc.Reject(ctx, 7, "again")
	require.Error(t, err)
	msg, _ = toasts.Latest()
	assert.Equal(t, errors.MessageTypeError, msg.Type)
	assert.Equal(t, "Withdrawal already processed", msg.Text)

	srv.FailNext("/withdrawals/reject", http.StatusUnauthorized)
	err = uc.Reject(ctx, 8, "")
	require.Error(t, err)
	msg, _ = toasts.Latest()
	assert.Equal(t, errors.MsgSessionExpired, msg.Text)
	assert.Equal(t, session.Unauthenticated, rt.Sessions.Status())
}

type recordedHook struct {
	point string
	env   map[string]string
}

type fakeHooks struct {
	calls []recordedHook
	err   error
}

func (f *fakeHooks) Run(_ context.Context, point string, env map[string]string) error {
	f.calls = append(f.calls, recordedHook{point, env})
	return f.err
}

func TestDecisionUseCaseRunsHooksOnlyOnSuccess(t *testing.T) {
	srv := apitest.New(t)
	srv.SetWithdrawals(pending(3, "dan"))
	rt := newTestRuntime(t, srv)
	srv.IssueToken("tok")
	rt.Sessions.OnAuthStateChange(session.Authenticated, "tok")

	hooks := &fakeHooks{}
	toasts := errors.NewTUIHandler(nil)
	uc := NewDecisionUseCase(rt.Client, toasts).WithHooks(hooks)

	require.NoError(t, uc.Reject(context.Background(), 3, "duplicate"))
	require.Len(t, hooks.calls, 1)
	assert.Equal(t, "post-decision", hooks.calls[0].point)
	assert.Equal(t, "3", hooks.calls[0].env["WITHDRAWAL_ID"])
	assert.Equal(t, "reject", hooks.calls[0].env["DECISION"])

	require.Error(t, uc.Approve(context.Background(), 3, ""))
	assert.Len(t, hooks.calls, 1)
}

func TestDecisionUseCaseWarnsOnHookFailure(t *testing.T) {
	srv := apitest.New(t)
	srv.SetWithdrawals(pending(4, "eve"))
	rt := newTestRuntime(t, srv)
	srv.IssueToken("tok")
	rt.Sessions.OnAuthStateChange(session.Authenticated, "tok")

	toasts := errors.NewTUIHandler(nil)
	uc := NewDecisionUseCase(rt.Client, toasts).WithHooks(&fakeHooks{err: assert.AnError})

	require.NoError(t, uc.Approve(context.Background(), 4, ""))
	msg, ok := toasts.Latest()
	require.True(t, ok)
	assert.Equal(t, errors.MessageTypeWarning, msg.Type)
}

func TestNewDecisionUseCasePanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewDecisionUseCase(nil, errors.NewTUIHandler(nil)) })
}

func TestWithdrawalListDefaultsAndClear(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	srv.SetWithdrawals(pending(1, "alice"), pending(2, "bob"), pending(3, "alice"))
	rt, err := NewRuntimeWith(storage.NewMemoryStore(), srv.URL, nil)
	require.NoError(t, err)
	rt.Sessions.OnAuthStateChange(session.Authenticated, "tok")

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	list := NewWithdrawalList(rt.Client, 2, func() time.Time { return now }, nil)
	assert.Equal(t, "2026-10-05", list.Draft().From)
	assert.Equal(t, "2026-10-18", list.Draft().To)

	ctx := context.Background()
	require.NoError(t, list.Load(ctx))
	assert.Len(t, list.Rows(), 2)
	assert.Equal(t, 2, list.Pagination().LastPage)

	list.Edit(func(f *domain.WithdrawalFilter) { f.Username = "bob" })
	require.NoError(t, list.Search(ctx))
	require.Len(t, list.Rows(), 1)
	assert.Equal(t, int64(2), list.Rows()[0].ID)
	last, _ := srv.Last("/withdrawals")
	assert.Equal(t, "bob", last.Query.Get("username"))

	require.NoError(t, list.Clear(ctx))
	assert.Empty(t, list.Draft().Username)
	assert.Len(t, list.Rows(), 2)
}

func TestWithdrawalDetailCacheFetchesOnce(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	srv.SetWithdrawals(pending(5, "dave"))
	rt, err := NewRuntimeWith(storage.NewMemoryStore(), srv.URL, nil)
	require.NoError(t, err)
	rt.Sessions.OnAuthStateChange(session.Authenticated, "tok")

	cache := NewWithdrawalDetailCache(rt.Client)
	ctx := context.Background()
	d1, err := cache.GetOrFetch(ctx, 5)
	require.NoError(t, err)
	d2, err := cache.GetOrFetch(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Equal(t, 1, srv.Count("/withdrawals/details/5"))
}

func TestStatusUseCase(t *testing.T) {
	srv := apitest.New(t)
	srv.SetWithdrawals(pending(1, "a"), pending(2, "b"))
	rt := newTestRuntime(t, srv)
	require.NoError(t, storage.SetJSON(rt.KV, storage.KeyPendingWithdrawalIDs, []int64{1}))
	uc := NewStatusUseCase(rt.Sessions, rt.Client, rt.KV, rt.Settings, srv.URL)

	info := uc.Collect(context.Background())
	assert.Equal(t, session.Unauthenticated, info.Session)
	assert.Nil(t, info.Pending)
	assert.Equal(t, 1, info.StoredPending)
	assert.Equal(t, 0, srv.Count("/withdrawals"))

	srv.IssueToken("tok")
	rt.Sessions.OnAuthStateChange(session.Authenticated, "tok")
	var buf bytes.Buffer
	require.NoError(t, uc.Execute(context.Background(), "json", &buf))
	var decoded StatusInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.NotNil(t, decoded.Pending)
	assert.Equal(t, 2, *decoded.Pending)
	assert.Equal(t, session.Authenticated, decoded.Session)

	buf.Reset()
	require.NoError(t, uc.Execute(context.Background(), "summary", &buf))
	assert.Contains(t, buf.String(), "Pending:  2")

	assert.Error(t, uc.Execute(context.Background(), "xml", &buf))
}

func TestValidateStatusFormat(t *testing.T) {
	assert.NoError(t, ValidateStatusFormat("summary"))
	assert.NoError(t, ValidateStatusFormat("json"))
	assert.Error(t, ValidateStatusFormat("table"))
}

func TestWatchPrintsUpdatesUntilSignal(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	srv.SetWithdrawals(pending(11, "erin"))
	rt := newTestRuntime(t, srv)
	rt.Sessions.OnAuthStateChange(session.Authenticated, "tok")

	ticks := make(chan time.Time)
	p := poller.New(poller.Config{Lister: rt.Client, Store: rt.KV, TickChan: ticks, Mute: rt.Settings})
	out := &syncBuffer{}
	sigs := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() {
		done <- NewWatchUseCase().Execute(context.Background(), WatchOptions{
			Poller: p, Sessions: rt.Sessions, Output: out, Armed: true, Signals: sigs,
		})
	}()

	assert.Eventually(t, func() bool { return bytes.Contains(out.Bytes(), []byte("new: #11")) }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, p.Gate().Satisfied())

	sigs <- os.Interrupt
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Equal(t, poller.Idle, p.State())
}

func TestWatchEndsWhenSessionEnds(t *testing.T) {
	srv := apitest.New(t)
	srv.IssueToken("tok")
	rt := newTestRuntime(t, srv)
	rt.Sessions.OnAuthStateChange(session.Authenticated, "tok")

	p := poller.New(poller.Config{Lister: rt.Client, Store: rt.KV, TickChan: make(chan time.Time)})
	done := make(chan error, 1)
	go func() {
		done <- NewWatchUseCase().Execute(context.Background(), WatchOptions{
			Poller: p, Sessions: rt.Sessions, Output: &syncBuffer{}, Signals: make(chan os.Signal),
		})
	}()
	assert.Eventually(t, func() bool { return p.State() == poller.Polling }, 2*time.Second, 10*time.Millisecond)

	rt.Sessions.Invalidate()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session ended")
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchArmsOnEnter(t *testing.T) {
	var out bytes.Buffer
	gate := &poller.Gate{}
	armOnEnter(bytes.NewBufferString("\n"), gate, &out)
	assert.True(t, gate.Satisfied())
	assert.Contains(t, out.String(), "armed")
}

func TestPrintWatchUpdate(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)
	printWatchUpdate(&buf, poller.Update{Badge: 3, At: at})
	assert.Equal(t, "[2026-10-18 08:30:00] pending: 3\n", buf.String())

	buf.Reset()
	printWatchUpdate(&buf, poller.Update{Badge: 4, Novel: []int64{9, 12}, Alerted: true, At: at})
	assert.Contains(t, buf.String(), "new: #9 #12  (alert)")
}
