package sparsela

import (
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/sparsela/internal/pool"
	"github.com/hupe1980/sparsela/internal/simd"
)

func (m *Matrix[T]) checkSameShape(op string, b *Matrix[T]) error {
	if m.rows != b.rows || m.cols != b.cols {
		return opError(op, ErrDimensionMismatch, "%dx%d vs %dx%d", m.rows, m.cols, b.rows, b.cols)
	}
	if m.width != b.width {
		return opError(op, ErrLaneWidthMismatch, "%d vs %d", m.width, b.width)
	}
	return nil
}

type mergeMode int

const (
	mergeAdd mergeMode = iota
	mergeSub
	mergeMul
)

// merge walks the sorted lane columns of both operands row by row.
func (m *Matrix[T]) merge(b *Matrix[T], mode mergeMode) *Matrix[T] {
	return buildRows(m.rows, m.cols, m.width, func(i int, row *rowLanes[T]) {
		ka, ea := m.rowPtr[i], m.rowPtr[i+1]
		kb, eb := b.rowPtr[i], b.rowPtr[i+1]

		for ka < ea || kb < eb {
			switch {
			case kb >= eb || (ka < ea && m.laneCols[ka] < b.laneCols[kb]):
				if mode != mergeMul {
					row.push(m.laneCols[ka], m.lane(ka))
				}
				ka++
			case ka >= ea || b.laneCols[kb] < m.laneCols[ka]:
				switch mode {
				case mergeAdd:
					row.push(b.laneCols[kb], b.lane(kb))
				case mergeSub:
					dst := row.next()
					simd.Sub(dst, dst, b.lane(kb))
					row.commit(b.laneCols[kb])
				}
				kb++
			default:
				dst := row.next()
				switch mode {
				case mergeAdd:
					simd.Add(dst, m.lane(ka), b.lane(kb))
				case mergeSub:
					simd.Sub(dst, m.lane(ka), b.lane(kb))
				case mergeMul:
					simd.Mul(dst, m.lane(ka), b.lane(kb))
				}
				row.commit(m.laneCols[ka])
				ka++
				kb++
			}
		}
	})
}

// Add returns m + b.
func (m *Matrix[T]) Add(b *Matrix[T]) (*Matrix[T], error) {
	if err := m.checkSameShape("Add", b); err != nil {
		return nil, err
	}
	return m.merge(b, mergeAdd), nil
}

// Sub returns m - b.
func (m *Matrix[T]) Sub(b *Matrix[T]) (*Matrix[T], error) {
	if err := m.checkSameShape("Sub", b); err != nil {
		return nil, err
	}
	return m.merge(b, mergeSub), nil
}

// Hadamard returns the element-wise product of m and b.
func (m *Matrix[T]) Hadamard(b *Matrix[T]) (*Matrix[T], error) {
	if err := m.checkSameShape("Hadamard", b); err != nil {
		return nil, err
	}
	return m.merge(b, mergeMul), nil
}

// Scale returns s * m.
func (m *Matrix[T]) Scale(s T) *Matrix[T] {
	if s == 0 {
		return newZero[T](m.rows, m.cols, m.width)
	}
	return m.mapLanes(func(dst, src []T) { simd.Scale(dst, src, s) })
}

// DivScalar returns m / s.
func (m *Matrix[T]) DivScalar(s T) (*Matrix[T], error) {
	if s == 0 {
		return nil, opError("DivScalar", ErrDivisionByZero, "")
	}
	return m.mapLanes(func(dst, src []T) { simd.DivScalar(dst, src, s) }), nil
}

func (m *Matrix[T]) mapLanes(fn func(dst, src []T)) *Matrix[T] {
	return buildRows(m.rows, m.cols, m.width, func(i int, row *rowLanes[T]) {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			fn(row.next(), m.lane(k))
			row.commit(m.laneCols[k])
		}
	})
}

// rowLaneDot accumulates the lane products of row i of m and row j of b
// over their common lane columns into acc and returns the reduced sum.
func rowLaneDot[T Float](m *Matrix[T], i int, b *Matrix[T], j int, acc []T) T {
	simd.Clear(acc)
	ka, ea := m.rowPtr[i], m.rowPtr[i+1]
	kb, eb := b.rowPtr[j], b.rowPtr[j+1]
	for ka < ea && kb < eb {
		switch {
		case m.laneCols[ka] < b.laneCols[kb]:
			ka++
		case m.laneCols[ka] > b.laneCols[kb]:
			kb++
		default:
			simd.MulAdd(acc, m.lane(ka), b.lane(kb))
			ka++
			kb++
		}
	}
	return simd.Reduce(acc)
}

// MatMul returns the matrix product m * b. b is transposed once so that
// every output element is a merge of two rows.
func (m *Matrix[T]) MatMul(b *Matrix[T]) (*Matrix[T], error) {
	if m.cols != b.rows {
		return nil, opError("MatMul", ErrDimensionMismatch, "%dx%d * %dx%d", m.rows, m.cols, b.rows, b.cols)
	}
	if m.width != b.width {
		return nil, opError("MatMul", ErrLaneWidthMismatch, "%d vs %d", m.width, b.width)
	}
	bt := b.Transpose()

	return buildRows(m.rows, b.cols, m.width, func(i int, row *rowLanes[T]) {
		if m.rowPtr[i] == m.rowPtr[i+1] {
			return
		}
		acc := make([]T, m.width)
		var cols []int
		var vals []T
		for j := range bt.rows {
			if s := rowLaneDot(m, i, bt, j, acc); s != 0 {
				cols = append(cols, j)
				vals = append(vals, s)
			}
		}
		row.setElements(cols, vals)
	}), nil
}

// MulVec returns the matrix-vector product m * x.
func (m *Matrix[T]) MulVec(x *Vector[T]) (*Vector[T], error) {
	if m.cols != x.n {
		return nil, opError("MulVec", ErrDimensionMismatch, "%dx%d * %d", m.rows, m.cols, x.n)
	}
	if m.width != x.width {
		return nil, opError("MulVec", ErrLaneWidthMismatch, "%d vs %d", m.width, x.width)
	}
	y := newVector[T](m.rows, m.width)
	pool.Default().ParallelFor(m.rows, func(i int) {
		y.values[i] = m.rowDot(i, x, make([]T, m.width))
	})
	return y, nil
}

func (m *Matrix[T]) rowDot(i int, x *Vector[T], acc []T) T {
	simd.Clear(acc)
	w := m.width
	for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
		lc := m.laneCols[k]
		simd.MulAdd(acc, m.lane(k), x.values[lc*w:(lc+1)*w])
	}
	return simd.Reduce(acc)
}

// RowDot returns the dot product of row i of m with x.
func (m *Matrix[T]) RowDot(i int, x *Vector[T]) (T, error) {
	if i < 0 || i >= m.rows {
		return 0, opError("RowDot", ErrOutOfRange, "row %d of %d", i, m.rows)
	}
	if m.cols != x.n {
		return 0, opError("RowDot", ErrDimensionMismatch, "%d columns vs %d elements", m.cols, x.n)
	}
	if m.width != x.width {
		return 0, opError("RowDot", ErrLaneWidthMismatch, "%d vs %d", m.width, x.width)
	}
	return m.rowDot(i, x, make([]T, m.width)), nil
}

// AddRows returns the vertical concatenation of m and b.
func (m *Matrix[T]) AddRows(b *Matrix[T]) (*Matrix[T], error) {
	return Stack(m, b)
}

// Stack concatenates matrices with equal column counts vertically.
func Stack[T Float](ms ...*Matrix[T]) (*Matrix[T], error) {
	if len(ms) == 0 {
		return nil, opError("Stack", ErrInvalidShape, "no matrices")
	}
	first := ms[0]
	rows, lanes := 0, 0
	for _, b := range ms {
		if b.cols != first.cols {
			return nil, opError("Stack", ErrDimensionMismatch, "%d vs %d columns", first.cols, b.cols)
		}
		if b.width != first.width {
			return nil, opError("Stack", ErrLaneWidthMismatch, "%d vs %d", first.width, b.width)
		}
		rows += b.rows
		lanes += len(b.laneCols)
	}

	out := &Matrix[T]{
		rows:     rows,
		cols:     first.cols,
		width:    first.width,
		values:   make([]T, 0, lanes*first.width),
		laneCols: make([]int, 0, lanes),
		rowPtr:   make([]int, 1, rows+1),
	}
	for _, b := range ms {
		base := len(out.laneCols)
		out.values = append(out.values, b.values...)
		out.laneCols = append(out.laneCols, b.laneCols...)
		for _, p := range b.rowPtr[1:] {
			out.rowPtr = append(out.rowPtr, base+p)
		}
	}
	return out, nil
}

// Frobenius returns the Frobenius norm of m.
func (m *Matrix[T]) Frobenius() T {
	return T(math.Sqrt(float64(simd.SumSquares(m.values))))
}

// Each calls fn for every non-zero element in row-major order.
func (m *Matrix[T]) Each(fn func(i, j int, v T)) {
	w := m.width
	for i := range m.rows {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			base := m.laneCols[k] * w
			for e, v := range m.lane(k) {
				if v != 0 {
					fn(i, base+e, v)
				}
			}
		}
	}
}

// Pattern returns the positions i*cols+j of all non-zero elements.
func (m *Matrix[T]) Pattern() *roaring64.Bitmap {
	bm := roaring64.New()
	m.Each(func(i, j int, _ T) {
		bm.Add(uint64(i)*uint64(m.cols) + uint64(j))
	})
	return bm
}

// IsClose reports whether m and b have the same shape, the same non-zero
// pattern and element-wise differences of at most tol. Matrices with
// different patterns are never close.
func (m *Matrix[T]) IsClose(b *Matrix[T], tol T) bool {
	if m.rows != b.rows || m.cols != b.cols {
		return false
	}
	if !m.Pattern().Equals(b.Pattern()) {
		return false
	}
	ok := true
	m.Each(func(i, j int, v T) {
		if ok && math.Abs(float64(v-b.at(i, j))) > float64(tol) {
			ok = false
		}
	})
	return ok
}

// Equal reports whether m and b hold exactly the same elements.
func (m *Matrix[T]) Equal(b *Matrix[T]) bool {
	if m.width == b.width {
		return m.rows == b.rows && m.cols == b.cols &&
			slices.Equal(m.rowPtr, b.rowPtr) &&
			slices.Equal(m.laneCols, b.laneCols) &&
			slices.Equal(m.values, b.values)
	}
	return m.IsClose(b, 0)
}

// ScaleColumns returns m * diag(d): column j of m is multiplied by d[j].
func (m *Matrix[T]) ScaleColumns(d *Vector[T]) (*Matrix[T], error) {
	if m.cols != d.n {
		return nil, opError("ScaleColumns", ErrDimensionMismatch, "%d columns vs %d elements", m.cols, d.n)
	}
	if m.width != d.width {
		return nil, opError("ScaleColumns", ErrLaneWidthMismatch, "%d vs %d", m.width, d.width)
	}
	w := m.width
	return buildRows(m.rows, m.cols, w, func(i int, row *rowLanes[T]) {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			lc := m.laneCols[k]
			simd.Mul(row.next(), m.lane(k), d.values[lc*w:(lc+1)*w])
			row.commit(lc)
		}
	}), nil
}

// ScaleRows returns diag(d) * m: row i of m is multiplied by d[i].
func (m *Matrix[T]) ScaleRows(d *Vector[T]) (*Matrix[T], error) {
	if m.rows != d.n {
		return nil, opError("ScaleRows", ErrDimensionMismatch, "%d rows vs %d elements", m.rows, d.n)
	}
	return buildRows(m.rows, m.cols, m.width, func(i int, row *rowLanes[T]) {
		s := d.values[i]
		if s == 0 {
			return
		}
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			simd.Scale(row.next(), m.lane(k), s)
			row.commit(m.laneCols[k])
		}
	}), nil
}
