package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsela/blobstore"
)

var _ blobstore.BlobStore = (*Store)(nil)

// TestStore_Integration needs a MinIO server; set SPARSELA_MINIO_ENDPOINT
// (for example localhost:9000) to run it.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("SPARSELA_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("SPARSELA_MINIO_ENDPOINT not set")
	}

	ctx := context.Background()
	store, err := Dial(ctx, Config{
		Endpoint:     endpoint,
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Bucket:       "sparsela-test",
		Prefix:       "it/",
		CreateBucket: true,
	})
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	require.NoError(t, store.Put(ctx, "b.dat", []byte("0 4\n1 9\n")))

	w, err := store.Create(ctx, "a.dat")
	require.NoError(t, err)
	_, err = io.WriteString(w, "0 0 2\n1 1 3\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "b.dat")
	require.NoError(t, err)
	assert.Equal(t, int64(8), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 4)
	require.NoError(t, err)
	assert.Equal(t, "1 9\n", string(buf[:n]))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "a.dat")
	assert.Contains(t, names, "b.dat")

	require.NoError(t, store.Delete(ctx, "a.dat"))
	require.NoError(t, store.Delete(ctx, "b.dat"))

	_, err = store.Open(ctx, "a.dat")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
