package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreLifecycle(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	w, err := store.Create(ctx, "systems/a.dat")
	require.NoError(t, err)
	_, err = io.WriteString(w, "0 0 1.5\n1 1 2\n")
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	require.NoError(t, store.Put(ctx, "systems/b.dat", []byte("0 4\n1 9\n")))
	require.NoError(t, store.Put(ctx, "solutions/x.dat", []byte("0 2\n")))

	blob, err := store.Open(ctx, "systems/a.dat")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(14), blob.Size())

	buf := make([]byte, 3)
	n, err := blob.ReadAt(ctx, buf, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "1.5", string(buf))

	rc, err := blob.ReadRange(ctx, 8, 100)
	require.NoError(t, err)
	tail, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "1 1 2\n", string(tail))

	full, err := NewReader(ctx, blob)
	require.NoError(t, err)
	all, err := io.ReadAll(full)
	require.NoError(t, err)
	assert.Equal(t, "0 0 1.5\n1 1 2\n", string(all))

	names, err := store.List(ctx, "systems/")
	require.NoError(t, err)
	assert.Equal(t, []string{"systems/a.dat", "systems/b.dat"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 3)

	require.NoError(t, store.Delete(ctx, "systems/b.dat"))
	require.NoError(t, store.Delete(ctx, "systems/b.dat"))

	_, err = store.Open(ctx, "systems/b.dat")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestMemoryStore(t *testing.T) {
	testStoreLifecycle(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	testStoreLifecycle(t, NewLocalStore(dir))

	_, err := os.Stat(filepath.Join(dir, "systems", "a.dat"))
	assert.NoError(t, err)
}

func TestLocalStoreListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := []byte("0 1\n")
	require.NoError(t, store.Put(ctx, "v", data))
	data[0] = '9'

	blob, err := store.Open(ctx, "v")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "v", []byte("changed")))

	buf := make([]byte, blob.Size())
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "0 1\n", string(buf))
}

func TestNewReaderEmptyBlob(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "empty", nil))

	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	r, err := NewReader(ctx, blob)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, data)
}
