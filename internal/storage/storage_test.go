package storage

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/machibo/backoffice/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	file, err := NewForBackend(BackendFile, filepath.Join(dir, "file"))
	require.NoError(t, err)
	db, err := NewForBackend(BackendSQLite, filepath.Join(dir, "db"))
	require.NoError(t, err)
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   file,
		"sqlite": db,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(KeyAccessToken, "abc"))
			require.NoError(t, s.Set(KeyPendingWithdrawalIDs, "[4]"))
			require.NoError(t, s.Set(KeyAccessToken, "def"))

			v, ok, err := s.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "def", v)

			require.NoError(t, s.Delete(KeyAccessToken))
			_, ok, err = s.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)

			v, ok, err = s.Get(KeyPendingWithdrawalIDs)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "[4]", v)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()

	var ids []int64
	ok, err := GetJSON(s, KeyPendingWithdrawalIDs, &ids)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(s, KeyPendingWithdrawalIDs, []int64{1, 2, 3}))
	ok, err = GetJSON(s, KeyPendingWithdrawalIDs, &ids)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	require.NoError(t, s.Set(KeyPendingWithdrawalIDs, "not json"))
	_, err = GetJSON(s, KeyPendingWithdrawalIDs, &ids)
	assert.Error(t, err)
}

func TestFileStoreSharedBetweenInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	a, err := NewFileStore(path)
	require.NoError(t, err)
	b, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, a.Set("one", "1"))
	require.NoError(t, b.Set("two", "2"))

	v, ok, err := a.Get("two")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	v, _, err = b.Get("one")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestFileStoreConcurrentWrites(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Set(string(rune('a'+i)), "v"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		_, ok, err := s.Get(string(rune('a' + i)))
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	_, _, err := s.Get("x")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set("x", "y"), ErrClosed)
}

func TestFactorySelectsBackend(t *testing.T) {
	dir := t.TempDir()

	s, err := NewForBackend(BackendFile, dir)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = NewForBackend("SQLite", dir)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Storage{}, s)
	require.NoError(t, s.Close())

	s, err = NewForBackend("redis", dir)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = NewForBackend(BackendFile, "")
	assert.Error(t, err)
}
