package sparsela

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsela/blobstore"
	"github.com/hupe1980/sparsela/testutil"
)

func TestMatrixBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := fromCRS(t, testutil.NewRNG(8).SparseCRS(19, 11, 0.3), 2)

	for _, name := range []string{"sys/A.dat", "sys/A.dat.zst", "sys/A.dat.lz4"} {
		require.NoError(t, SaveMatrixBlob(ctx, store, name, m, 1))

		back, err := LoadMatrixBlob[float64](ctx, store, name, 1, WithLaneWidth(2))
		require.NoError(t, err)
		assert.True(t, back.Equal(m), name)
	}

	names, err := store.List(ctx, "sys/")
	require.NoError(t, err)
	assert.Equal(t, []string{"sys/A.dat", "sys/A.dat.lz4", "sys/A.dat.zst"}, names)
}

func TestVectorBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewLocalStore(t.TempDir())
	v := vec(t, []float64{1.25, 0, -7}, 4)

	require.NoError(t, SaveVectorBlob(ctx, store, "out/x.dat.zst", v, 0))
	back, err := LoadVectorBlob[float64](ctx, store, "out/x.dat.zst", 0, WithLaneWidth(4))
	require.NoError(t, err)
	assert.True(t, back.Equal(v))
}

func TestLoadSystem(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "A.dat", []byte("1 1 2\n2 2 3\n")))
	require.NoError(t, store.Put(ctx, "b.dat", []byte("1 4\n2 9\n")))
	require.NoError(t, store.Put(ctx, "short.dat", []byte("1 4\n")))

	a, b, err := LoadSystem[float64](ctx, store, "A.dat", "b.dat", 1, WithLaneWidth(2))
	require.NoError(t, err)
	assert.Equal(t, 2, a.Rows())
	assert.Equal(t, []float64{4, 9}, b.Elements())

	s := newTestSolver(t, a, b)
	require.NoError(t, s.Solve("CG", zeros(t, 2, 2)))
	assert.InDeltaSlice(t, []float64{2, 3}, solution(t, s), 1e-9)

	_, _, err = LoadSystem[float64](ctx, store, "A.dat", "short.dat", 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, _, err = LoadSystem[float64](ctx, store, "A.dat", "missing.dat", 1)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
