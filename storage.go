package sparsela

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sparsela/blobstore"
)

// LoadMatrixBlob reads a triplet matrix blob. Names ending in .zst, .zstd or
// .lz4 are decompressed.
func LoadMatrixBlob[T Float](ctx context.Context, store blobstore.BlobStore, name string, offset int, opts ...Option) (*Matrix[T], error) {
	var m *Matrix[T]
	err := readBlob(ctx, store, name, func(r io.Reader) error {
		var err error
		m, err = ReadMatrix[T](r, offset, opts...)
		return err
	})
	if err != nil {
		return nil, wrapOp("LoadMatrixBlob", err)
	}
	return m, nil
}

// SaveMatrixBlob writes m as a triplet blob.
func SaveMatrixBlob[T Float](ctx context.Context, store blobstore.BlobStore, name string, m *Matrix[T], offset int) error {
	return wrapOp("SaveMatrixBlob", writeBlob(ctx, store, name, func(w io.Writer) error {
		return m.Save(w, offset)
	}))
}

// LoadVectorBlob reads a vector blob.
func LoadVectorBlob[T Float](ctx context.Context, store blobstore.BlobStore, name string, offset int, opts ...Option) (*Vector[T], error) {
	var v *Vector[T]
	err := readBlob(ctx, store, name, func(r io.Reader) error {
		var err error
		v, err = ReadVector[T](r, offset, opts...)
		return err
	})
	if err != nil {
		return nil, wrapOp("LoadVectorBlob", err)
	}
	return v, nil
}

// SaveVectorBlob writes v as a vector blob.
func SaveVectorBlob[T Float](ctx context.Context, store blobstore.BlobStore, name string, v *Vector[T], offset int) error {
	return wrapOp("SaveVectorBlob", writeBlob(ctx, store, name, func(w io.Writer) error {
		return v.Save(w, offset)
	}))
}

// LoadSystem loads the matrix and right-hand side of a linear system
// concurrently.
func LoadSystem[T Float](ctx context.Context, store blobstore.BlobStore, matrixName, rhsName string, offset int, opts ...Option) (*Matrix[T], *Vector[T], error) {
	var (
		a *Matrix[T]
		b *Vector[T]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = LoadMatrixBlob[T](gctx, store, matrixName, offset, opts...)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = LoadVectorBlob[T](gctx, store, rhsName, offset, opts...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if a.Rows() != b.Len() {
		return nil, nil, opError("LoadSystem", ErrDimensionMismatch, "%s has %d rows, %s has %d elements",
			matrixName, a.Rows(), rhsName, b.Len())
	}
	return a, b, nil
}

func readBlob(ctx context.Context, store blobstore.BlobStore, name string, fn func(io.Reader) error) error {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer blob.Close()

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return err
	}
	defer rc.Close()

	return decode(name, rc, fn)
}

func writeBlob(ctx context.Context, store blobstore.BlobStore, name string, fn func(io.Writer) error) error {
	wb, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := encode(name, wb, fn); err != nil {
		return errors.Join(err, wb.Close())
	}
	if err := wb.Sync(); err != nil {
		return errors.Join(err, wb.Close())
	}
	return wb.Close()
}
