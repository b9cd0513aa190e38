package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "state", "backoffice.db")
	s, err := NewStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s, dbPath
}

func TestSetGetDelete(t *testing.T) {
	s, _ := newTestStorage(t)

	_, ok, err := s.Get("access_token")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set("access_token", "tok-1"))
	require.NoError(t, s.Set("access_token", "tok-2"))

	v, ok, err := s.Get("access_token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok-2", v)

	require.NoError(t, s.Delete("access_token"))
	require.NoError(t, s.Delete("access_token"))
	_, ok, err = s.Get("access_token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValuesSurviveReopen(t *testing.T) {
	s, dbPath := newTestStorage(t)
	require.NoError(t, s.Set("pending_withdrawal_ids", "[1,2,3]"))

	reopened, err := NewStorage(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get("pending_withdrawal_ids")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[1,2,3]", v)
}

func TestEmptyKeyRejected(t *testing.T) {
	s, _ := newTestStorage(t)

	err := s.Set("", "x")
	require.True(t, errors.Is(err, ErrEmptyKey))
	_, _, err = s.Get("")
	require.True(t, errors.Is(err, ErrEmptyKey))
}

func TestEmptyPathRejected(t *testing.T) {
	_, err := NewStorage("  ")
	require.Error(t, err)
}
