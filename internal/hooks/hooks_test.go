package hooks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machibo/backoffice/internal/poller"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeScript(t *testing.T, dir, point, name, body string, mode os.FileMode) string {
	t.Helper()
	hookDir := filepath.Join(dir, point)
	require.NoError(t, os.MkdirAll(hookDir, 0o755))
	path := filepath.Join(hookDir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode))
	return path
}

func TestRunWithoutDirIsNoop(t *testing.T) {
	r := New(Options{})
	assert.NoError(t, r.Run(context.Background(), PointPendingNew, nil))

	var nilRunner *Runner
	assert.NoError(t, nilRunner.Run(context.Background(), PointPendingNew, nil))
	nilRunner.Wait()
}

func TestRunMissingPointDirIsNoop(t *testing.T) {
	r := New(Options{Dir: t.TempDir()})
	assert.NoError(t, r.Run(context.Background(), PointPostDecision, nil))
}

func TestRunExecutesScriptsInNameOrderWithEnv(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, PointPendingNew, "20-second.sh", `echo "second $NEW_IDS"`, 0o755)
	writeScript(t, dir, PointPendingNew, "10-first.sh", `echo "first $HOOK_POINT $PENDING_COUNT"`, 0o755)
	writeScript(t, dir, PointPendingNew, "30-disabled.sh", `echo disabled`, 0o644)

	var out lockedBuffer
	r := New(Options{Dir: dir, Output: &out})
	err := r.Run(context.Background(), PointPendingNew, PendingNewEnv(poller.Update{Badge: 3, Novel: []int64{9, 12}}))
	require.NoError(t, err)

	assert.Equal(t, "first pending-new 3\nsecond 9,12\n", out.String())
}

func TestRunFailureModes(t *testing.T) {
	tests := []struct {
		mode     string
		wantErr  bool
		wantWarn bool
		wantNext bool
	}{
		{FailureAbort, true, true, false},
		{FailureWarn, false, true, true},
		{FailureIgnore, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			dir := t.TempDir()
			writeScript(t, dir, PointPostDecision, "10-fail.sh", "exit 3", 0o755)
			writeScript(t, dir, PointPostDecision, "20-next.sh", "echo next", 0o755)

			var out lockedBuffer
			r := New(Options{Dir: dir, FailureMode: tt.mode, Output: &out})
			err := r.Run(context.Background(), PointPostDecision, PostDecisionEnv(5, "approve", ""))

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "hook 10-fail.sh failed")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantWarn, strings.Contains(out.String(), "warning: hook 10-fail.sh failed"))
			assert.Equal(t, tt.wantNext, strings.Contains(out.String(), "next"))
		})
	}
}

func TestRunSyncTimeout(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, PointPendingNew, "slow.sh", "exec sleep 5", 0o755)

	var out lockedBuffer
	r := New(Options{Dir: dir, FailureMode: FailureAbort, Timeout: 50 * time.Millisecond, Output: &out})
	start := time.Now()
	err := r.Run(context.Background(), PointPendingNew, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunAsyncWaitsOnWait(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(t.TempDir(), "done")
	writeScript(t, dir, PointPendingNew, "async.sh", "sleep 0.1; touch "+marker, 0o755)

	r := New(Options{Dir: dir, Async: true, Output: &lockedBuffer{}})
	require.NoError(t, r.Run(context.Background(), PointPendingNew, nil))
	r.Wait()

	assert.Equal(t, 0, r.Pending())
	_, err := os.Stat(marker)
	assert.NoError(t, err)
}

func TestRunAsyncRespectsMaxPending(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, PointPendingNew, "a.sh", "sleep 0.2", 0o755)
	writeScript(t, dir, PointPendingNew, "b.sh", "sleep 0.2", 0o755)

	r := New(Options{Dir: dir, Async: true, MaxAsync: 1, Output: &lockedBuffer{}})
	require.NoError(t, r.Run(context.Background(), PointPendingNew, nil))
	assert.Equal(t, 1, r.Pending())
	r.Wait()
	assert.Equal(t, 0, r.Pending())
}

func TestPollListenerSkipsUpdatesWithoutNovelty(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, PointPendingNew, "echo.sh", `echo "alert $NEW_IDS $ALERTED"`, 0o755)

	var out lockedBuffer
	listen := New(Options{Dir: dir, Output: &out}).PollListener()
	listen(poller.Update{Badge: 1, IDs: []int64{4}})
	assert.Empty(t, out.String())

	listen(poller.Update{Badge: 2, IDs: []int64{4, 7}, Novel: []int64{7}, Alerted: true})
	assert.Equal(t, "alert 7 true\n", out.String())
}

func TestPostDecisionEnv(t *testing.T) {
	env := PostDecisionEnv(42, "reject", "duplicate account")
	assert.Equal(t, map[string]string{
		"WITHDRAWAL_ID": "42",
		"DECISION":      "reject",
		"REMARK":        "duplicate account",
	}, env)
}
