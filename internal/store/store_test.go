package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	require.NoError(t, s.Set("board", []byte("payload")))
	got, ok := s.Get("board")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)

	require.NoError(t, s.Delete("board"))
	_, ok = s.Get("board")
	assert.False(t, ok)
}

func TestMemStoreCopiesValue(t *testing.T) {
	s := NewMemStore()
	buf := []byte("original")
	require.NoError(t, s.Set("k", buf))
	buf[0] = 'X'

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), got)
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	require.NoError(t, s.Set("autosave", []byte(`{"schema_version":2}`)))
	got, ok := s.Get("autosave")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"schema_version":2}`), got)

	require.NoError(t, s.Delete("autosave"))
	_, ok = s.Get("autosave")
	assert.False(t, ok)

	// Deleting an absent key is fine.
	require.NoError(t, s.Delete("autosave"))
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("boards/main:latest", []byte("v")))
	got, ok := s.Get("boards/main:latest")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

// failStore rejects every write.
type failStore struct {
	MemStore
}

func (f *failStore) Set(key string, value []byte) error {
	return errors.New("disk full")
}

func TestFallbackDegradesToMemory(t *testing.T) {
	primary := &failStore{MemStore: *NewMemStore()}
	s := WithFallback(primary)

	// First write fails on the primary and lands in memory instead.
	require.NoError(t, s.Set("k", []byte("v1")))
	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	// Once degraded, all traffic stays in memory.
	require.NoError(t, s.Set("k2", []byte("v2")))
	got, ok = s.Get("k2")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Delete("k"))
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestFallbackUsesPrimaryWhileHealthy(t *testing.T) {
	primary := NewMemStore()
	s := WithFallback(primary)

	require.NoError(t, s.Set("k", []byte("v")))
	got, ok := primary.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}
