package board

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadJSON(t *testing.T) {
	b := populatedBoard(t)
	path := filepath.Join(t.TempDir(), "case.yb")

	require.NoError(t, SaveFile(b, path))
	got, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, b.Snapshot(), got.Snapshot())
}

func TestSaveLoadBinary(t *testing.T) {
	b := populatedBoard(t)
	path := filepath.Join(t.TempDir(), "case.ybb")

	require.NoError(t, SaveFile(b, path))
	got, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, b.Snapshot(), got.Snapshot())
}

func TestBinaryMatchesJSON(t *testing.T) {
	b := populatedBoard(t)
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "case.yb")
	binPath := filepath.Join(dir, "case.ybb")

	require.NoError(t, SaveFile(b, jsonPath))
	require.NoError(t, SaveFile(b, binPath))

	fromJSON, err := LoadFile(jsonPath)
	require.NoError(t, err)
	fromBin, err := LoadFile(binPath)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Snapshot(), fromBin.Snapshot())
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yb")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yb"))
	assert.Error(t, err)
}

func TestEncodeDecodeSnapshot(t *testing.T) {
	b := populatedBoard(t)
	data, err := EncodeSnapshot(b.Snapshot())
	require.NoError(t, err)

	s, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, b.Snapshot(), s)
}
