package sparsela

import (
	"errors"
	"io"
	"os"
	"unsafe"

	"github.com/hupe1980/sparsela/codec"
	"github.com/hupe1980/sparsela/internal/triplet"
)

// ReadMatrix parses a matrix from "row col value" lines. offset is
// subtracted from every index, so 1 reads 1-based files. The shape is one
// past the largest row and column index; Save writes a trailing zero
// element to keep the shape of matrices whose last element is zero.
func ReadMatrix[T Float](r io.Reader, offset int, opts ...Option) (*Matrix[T], error) {
	tm, err := triplet.ReadMatrix(r, offset)
	if err != nil {
		return nil, translateError("ReadMatrix", err)
	}

	rowPtr := make([]int, tm.Rows+1)
	for _, e := range tm.Entries {
		rowPtr[e.Row+1]++
	}
	for i := range tm.Rows {
		rowPtr[i+1] += rowPtr[i]
	}
	cursor := make([]int, tm.Rows)
	copy(cursor, rowPtr)
	colIdx := make([]int, len(tm.Entries))
	vals := make([]T, len(tm.Entries))
	for _, e := range tm.Entries {
		k := cursor[e.Row]
		cursor[e.Row]++
		colIdx[k] = e.Col
		vals[k] = T(e.Value)
	}
	return NewMatrixFromCRS(tm.Rows, tm.Cols, vals, colIdx, rowPtr, opts...)
}

// LoadMatrix reads a matrix file. Files ending in .zst, .zstd or .lz4 are
// decompressed.
func LoadMatrix[T Float](path string, offset int, opts ...Option) (*Matrix[T], error) {
	var m *Matrix[T]
	err := readFile(path, func(r io.Reader) error {
		var err error
		m, err = ReadMatrix[T](r, offset, opts...)
		return err
	})
	if err != nil {
		return nil, wrapOp("LoadMatrix", err)
	}
	return m, nil
}

// Save writes the non-zero elements of m as "row col value" lines with
// indices shifted by offset.
func (m *Matrix[T]) Save(w io.Writer, offset int) error {
	tw := triplet.NewWriter(w, offset, bitSize[T]())
	var err error
	m.Each(func(i, j int, v T) {
		if err == nil {
			err = tw.WriteEntry(i, j, float64(v))
		}
	})
	if err == nil && m.at(m.rows-1, m.cols-1) == 0 {
		err = tw.WriteEntry(m.rows-1, m.cols-1, 0)
	}
	if err == nil {
		err = tw.Flush()
	}
	return wrapOp("Save", err)
}

// SaveFile writes m to path, compressed according to the file suffix.
func (m *Matrix[T]) SaveFile(path string, offset int) error {
	return wrapOp("SaveFile", writeFile(path, func(w io.Writer) error {
		return m.Save(w, offset)
	}))
}

// ReadVector parses a vector from "index value" lines. The length is one
// past the largest index; missing indices are zero.
func ReadVector[T Float](r io.Reader, offset int, opts ...Option) (*Vector[T], error) {
	tv, err := triplet.ReadVector(r, offset)
	if err != nil {
		return nil, translateError("ReadVector", err)
	}
	v, err := NewVector[T](tv.Len, opts...)
	if err != nil {
		return nil, err
	}
	for _, e := range tv.Entries {
		v.values[e.Index] = T(e.Value)
	}
	return v, nil
}

// LoadVector reads a vector file. Files ending in .zst, .zstd or .lz4 are
// decompressed.
func LoadVector[T Float](path string, offset int, opts ...Option) (*Vector[T], error) {
	var v *Vector[T]
	err := readFile(path, func(r io.Reader) error {
		var err error
		v, err = ReadVector[T](r, offset, opts...)
		return err
	})
	if err != nil {
		return nil, wrapOp("LoadVector", err)
	}
	return v, nil
}

// Save writes every element of v as an "index value" line.
func (v *Vector[T]) Save(w io.Writer, offset int) error {
	tw := triplet.NewWriter(w, offset, bitSize[T]())
	for i, x := range v.values[:v.n] {
		if err := tw.WriteVectorEntry(i, float64(x)); err != nil {
			return wrapOp("Save", err)
		}
	}
	return wrapOp("Save", tw.Flush())
}

// SaveFile writes v to path, compressed according to the file suffix.
func (v *Vector[T]) SaveFile(path string, offset int) error {
	return wrapOp("SaveFile", writeFile(path, func(w io.Writer) error {
		return v.Save(w, offset)
	}))
}

func bitSize[T Float]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}

// decode runs fn on r, decompressed with the codec implied by name.
func decode(name string, r io.Reader, fn func(io.Reader) error) error {
	cr, err := codec.ForPath(name).NewReader(r)
	if err != nil {
		return err
	}
	defer cr.Close()
	return fn(cr)
}

// encode runs fn on a writer that compresses into w with the codec implied
// by name.
func encode(name string, w io.Writer, fn func(io.Writer) error) error {
	cw, err := codec.ForPath(name).NewWriter(w)
	if err != nil {
		return err
	}
	if err := fn(cw); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return decode(path, f, fn)
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return encode(path, f, fn)
}
