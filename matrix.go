package sparsela

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/sparsela/internal/simd"
)

// Float is the element type constraint of matrices, vectors and solvers.
type Float = simd.Float

// Matrix is a sparse matrix in compressed row storage whose values are
// packed into fixed-width lanes.
//
// Each row is split into ceil(cols/width) lane columns. Only lanes holding
// at least one non-zero element are stored: values holds the lanes back to
// back, laneCols the lane column of every stored lane, and rowPtr delimits
// the lanes of each row. Lane columns increase strictly within a row and the
// padding elements past the last column are always zero.
//
// Matrices have value semantics. Every operation returns a new matrix that
// shares no storage with its operands; only Place mutates the receiver.
// A Matrix is not safe for concurrent mutation.
type Matrix[T Float] struct {
	rows     int
	cols     int
	width    int
	values   []T
	laneCols []int
	rowPtr   []int
}

// NewMatrix returns a rows x cols zero matrix.
func NewMatrix[T Float](rows, cols int, opts ...Option) (*Matrix[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, opError("NewMatrix", ErrInvalidShape, "%dx%d", rows, cols)
	}
	o := resolveOptions[T](opts)
	return newZero[T](rows, cols, o.laneWidth), nil
}

func newZero[T Float](rows, cols, width int) *Matrix[T] {
	return &Matrix[T]{
		rows:   rows,
		cols:   cols,
		width:  width,
		rowPtr: make([]int, rows+1),
	}
}

// NewScaledIdentity returns a rows x cols matrix with s on the main diagonal.
func NewScaledIdentity[T Float](rows, cols int, s T, opts ...Option) (*Matrix[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, opError("NewScaledIdentity", ErrInvalidShape, "%dx%d", rows, cols)
	}
	o := resolveOptions[T](opts)
	w := o.laneWidth
	if s == 0 {
		return newZero[T](rows, cols, w), nil
	}

	parts := make([]rowLanes[T], rows)
	for i := range parts {
		parts[i].width = w
		if i < cols {
			parts[i].setElements([]int{i}, []T{s})
		}
	}
	return assemble(rows, cols, w, parts), nil
}

// NewDiagonal returns the square matrix with v on its main diagonal. The
// matrix uses the lane width of v.
func NewDiagonal[T Float](v *Vector[T]) *Matrix[T] {
	n, w := v.Len(), v.width
	parts := make([]rowLanes[T], n)
	for i := range parts {
		parts[i].width = w
		if x := v.values[i]; x != 0 {
			parts[i].setElements([]int{i}, []T{x})
		}
	}
	return assemble(n, n, w, parts)
}

// NewMatrixFromCRS builds a matrix from element-level compressed row
// storage: the entries of row i are values[rowPointers[i]:rowPointers[i+1]]
// at columns colIndexes[rowPointers[i]:rowPointers[i+1]].
//
// Entries of a row may appear in any column order; repeated columns keep
// the last value and zeros are not stored. This is the bulk construction
// path and runs in O(nnz log nnz) time.
func NewMatrixFromCRS[T Float](rows, cols int, values []T, colIndexes, rowPointers []int, opts ...Option) (*Matrix[T], error) {
	const op = "NewMatrixFromCRS"
	if rows <= 0 || cols <= 0 {
		return nil, opError(op, ErrInvalidShape, "%dx%d", rows, cols)
	}
	if len(rowPointers) != rows+1 {
		return nil, opError(op, ErrInvalidStructure, "%d row pointers for %d rows", len(rowPointers), rows)
	}
	if len(values) != len(colIndexes) {
		return nil, opError(op, ErrInvalidStructure, "%d values but %d column indexes", len(values), len(colIndexes))
	}
	if rowPointers[0] != 0 || rowPointers[rows] != len(values) {
		return nil, opError(op, ErrInvalidStructure, "row pointers must span [0, %d]", len(values))
	}
	for i := range rows {
		if rowPointers[i] > rowPointers[i+1] {
			return nil, opError(op, ErrInvalidStructure, "row pointers decrease at row %d", i)
		}
	}
	for k, c := range colIndexes {
		if c < 0 || c >= cols {
			return nil, opError(op, ErrOutOfRange, "column %d at position %d", c, k)
		}
	}

	o := resolveOptions[T](opts)
	return buildRows(rows, cols, o.laneWidth, func(i int, row *rowLanes[T]) {
		lo, hi := rowPointers[i], rowPointers[i+1]
		rc, rv := colIndexes[lo:hi], values[lo:hi]
		if !slices.IsSorted(rc) {
			rc, rv = sortRow(rc, rv)
		}
		row.setElements(rc, rv)
	}), nil
}

func sortRow[T Float](cols []int, vals []T) ([]int, []T) {
	idx := make([]int, len(cols))
	for k := range idx {
		idx[k] = k
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(cols[a], cols[b]) })

	sc := make([]int, len(cols))
	sv := make([]T, len(vals))
	for k, j := range idx {
		sc[k], sv[k] = cols[j], vals[j]
	}
	return sc, sv
}

// NewMatrixFromLanes builds a matrix directly from lane storage. The slices
// are copied and must satisfy every storage invariant.
func NewMatrixFromLanes[T Float](rows, cols, width int, values []T, laneCols, rowPtr []int) (*Matrix[T], error) {
	if rows <= 0 || cols <= 0 || width <= 0 {
		return nil, opError("NewMatrixFromLanes", ErrInvalidShape, "%dx%d width %d", rows, cols, width)
	}
	m := &Matrix[T]{
		rows:     rows,
		cols:     cols,
		width:    width,
		values:   slices.Clone(values),
		laneCols: slices.Clone(laneCols),
		rowPtr:   slices.Clone(rowPtr),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Clone returns a deep copy of m.
func (m *Matrix[T]) Clone() *Matrix[T] {
	return &Matrix[T]{
		rows:     m.rows,
		cols:     m.cols,
		width:    m.width,
		values:   slices.Clone(m.values),
		laneCols: slices.Clone(m.laneCols),
		rowPtr:   slices.Clone(m.rowPtr),
	}
}

// Rows returns the number of rows.
func (m *Matrix[T]) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix[T]) Cols() int { return m.cols }

// Dims returns the number of rows and columns.
func (m *Matrix[T]) Dims() (rows, cols int) { return m.rows, m.cols }

// LaneWidth returns the number of elements per lane.
func (m *Matrix[T]) LaneWidth() int { return m.width }

// LanesPerRow returns the number of lane columns of a row.
func (m *Matrix[T]) LanesPerRow() int { return simd.Lanes(m.cols, m.width) }

// NumLanes returns the number of stored lanes.
func (m *Matrix[T]) NumLanes() int { return len(m.laneCols) }

// NNZ returns the number of non-zero elements.
func (m *Matrix[T]) NNZ() int {
	n := 0
	for _, v := range m.values {
		if v != 0 {
			n++
		}
	}
	return n
}

// Values returns a copy of the lane-packed values.
func (m *Matrix[T]) Values() []T { return slices.Clone(m.values) }

// LaneColumns returns a copy of the lane column of every stored lane.
func (m *Matrix[T]) LaneColumns() []int { return slices.Clone(m.laneCols) }

// RowPointers returns a copy of the row pointer array.
func (m *Matrix[T]) RowPointers() []int { return slices.Clone(m.rowPtr) }

func (m *Matrix[T]) lane(k int) []T {
	return m.values[k*m.width : (k+1)*m.width]
}

// find returns the storage index of lane column lc in row i, or -1.
func (m *Matrix[T]) find(i, lc int) int {
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	k, ok := slices.BinarySearch(m.laneCols[lo:hi], lc)
	if !ok {
		return -1
	}
	return lo + k
}

func (m *Matrix[T]) at(i, j int) T {
	k := m.find(i, j/m.width)
	if k < 0 {
		return 0
	}
	return m.values[k*m.width+j%m.width]
}

func (m *Matrix[T]) checkIndex(op string, i, j int) error {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return opError(op, ErrOutOfRange, "(%d, %d) outside %dx%d", i, j, m.rows, m.cols)
	}
	return nil
}

// At returns the element at (i, j). Elements without a stored lane are zero.
func (m *Matrix[T]) At(i, j int) (T, error) {
	if err := m.checkIndex("At", i, j); err != nil {
		return 0, err
	}
	return m.at(i, j), nil
}

// Lane returns a copy of lane column lc of row i. Absent lanes are zero.
func (m *Matrix[T]) Lane(i, lc int) ([]T, error) {
	if i < 0 || i >= m.rows || lc < 0 || lc >= m.LanesPerRow() {
		return nil, opError("Lane", ErrOutOfRange, "row %d lane %d", i, lc)
	}
	out := make([]T, m.width)
	if k := m.find(i, lc); k >= 0 {
		copy(out, m.lane(k))
	}
	return out, nil
}

// Place sets the element at (i, j) in place.
//
// A non-zero value on an absent lane inserts a lane; zeroing the last
// non-zero element of a lane removes the lane; placing zero where no lane
// is stored does nothing. Insertion and removal shift the lanes after the
// row and run in O(nnz lanes + rows). Use NewMatrixFromCRS to build large
// matrices.
func (m *Matrix[T]) Place(i, j int, v T) error {
	if err := m.checkIndex("Place", i, j); err != nil {
		return err
	}
	w := m.width
	lc, off := j/w, j%w
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	pos, found := slices.BinarySearch(m.laneCols[lo:hi], lc)
	k := lo + pos

	if found {
		lane := m.lane(k)
		lane[off] = v
		if v == 0 && simd.IsZero(lane) {
			m.laneCols = slices.Delete(m.laneCols, k, k+1)
			m.values = slices.Delete(m.values, k*w, (k+1)*w)
			m.shiftRows(i, -1)
		}
		return nil
	}
	if v == 0 {
		return nil
	}

	m.laneCols = slices.Insert(m.laneCols, k, lc)
	m.values = slices.Insert(m.values, k*w, make([]T, w)...)
	m.values[k*w+off] = v
	m.shiftRows(i, 1)
	return nil
}

func (m *Matrix[T]) shiftRows(i, delta int) {
	for r := i + 1; r <= m.rows; r++ {
		m.rowPtr[r] += delta
	}
}

// Validate checks the storage invariants.
func (m *Matrix[T]) Validate() error {
	const op = "Validate"
	if len(m.rowPtr) != m.rows+1 {
		return opError(op, ErrInvalidStructure, "%d row pointers for %d rows", len(m.rowPtr), m.rows)
	}
	if m.rowPtr[0] != 0 || m.rowPtr[m.rows] != len(m.laneCols) {
		return opError(op, ErrInvalidStructure, "row pointers must span [0, %d]", len(m.laneCols))
	}
	if len(m.values) != len(m.laneCols)*m.width {
		return opError(op, ErrInvalidStructure, "%d values for %d lanes of width %d", len(m.values), len(m.laneCols), m.width)
	}

	lanes := m.LanesPerRow()
	pad := lanes*m.width - m.cols
	for i := range m.rows {
		lo, hi := m.rowPtr[i], m.rowPtr[i+1]
		if lo > hi {
			return opError(op, ErrInvalidStructure, "row pointers decrease at row %d", i)
		}
		for k := lo; k < hi; k++ {
			lc := m.laneCols[k]
			if lc < 0 || lc >= lanes {
				return opError(op, ErrInvalidStructure, "row %d: lane column %d outside [0, %d)", i, lc, lanes)
			}
			if k > lo && m.laneCols[k-1] >= lc {
				return opError(op, ErrInvalidStructure, "row %d: lane columns not strictly increasing", i)
			}
			lane := m.lane(k)
			if simd.IsZero(lane) {
				return opError(op, ErrInvalidStructure, "row %d: zero lane at lane column %d", i, lc)
			}
			if lc == lanes-1 && pad > 0 && !simd.IsZero(lane[m.width-pad:]) {
				return opError(op, ErrInvalidStructure, "row %d: non-zero padding", i)
			}
		}
	}
	return nil
}

// String renders m densely, one row per line.
func (m *Matrix[T]) String() string {
	var sb strings.Builder
	for i := range m.rows {
		for j := range m.cols {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", m.at(i, j))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
