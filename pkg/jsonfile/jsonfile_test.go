package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	NextID int64    `json:"next_id"`
	Names  []string `json:"names"`
}

func TestRead_Missing(t *testing.T) {
	var d doc
	ok, err := Read(filepath.Join(t.TempDir(), "nope.json"), &d)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRead_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var d doc
	ok, err := Read(path, &d)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRead_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	var d doc
	_, err := Read(path, &d)
	assert.Error(t, err)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "doc.json")

	require.NoError(t, Write(path, doc{NextID: 3, Names: []string{"a", "b"}}))
	require.NoError(t, Write(path, doc{NextID: 4, Names: []string{"c"}}))

	var d doc
	ok, err := Read(path, &d)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc{NextID: 4, Names: []string{"c"}}, d)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWrite_UnencodableLeavesTargetIntact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, Write(path, doc{NextID: 1}))

	err := Write(path, map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	var d doc
	ok, err := Read(path, &d)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), d.NextID)
}

func TestDir_Ping(t *testing.T) {
	root := t.TempDir()
	dir := Dir(filepath.Join(root, "data"))

	require.NoError(t, dir.Ping(context.Background()), "missing directory is created")
	entries, err := os.ReadDir(string(dir))
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")

	file := filepath.Join(root, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	assert.Error(t, Dir(file).Ping(context.Background()), "a regular file is not a snapshot directory")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, dir.Ping(ctx), context.Canceled)
}
