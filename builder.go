package sparsela

import (
	"slices"

	"github.com/hupe1980/sparsela/internal/pool"
	"github.com/hupe1980/sparsela/internal/simd"
)

// rowLanes collects the lanes of one matrix row in increasing lane-column
// order. All-zero lanes are discarded on commit.
type rowLanes[T Float] struct {
	width  int
	values []T
	cols   []int
}

// next reserves a zeroed lane at the end of the row and returns it.
// The lane is kept only if commit is called.
func (r *rowLanes[T]) next() []T {
	n := len(r.values)
	r.values = slices.Grow(r.values, r.width)[:n+r.width]
	lane := r.values[n:]
	simd.Clear(lane)
	return lane
}

// commit keeps the lane returned by the last call to next unless it is zero.
func (r *rowLanes[T]) commit(laneCol int) {
	n := len(r.values) - r.width
	if simd.IsZero(r.values[n:]) {
		r.values = r.values[:n]
		return
	}
	r.cols = append(r.cols, laneCol)
}

// push copies a lane into the row.
func (r *rowLanes[T]) push(laneCol int, lane []T) {
	copy(r.next(), lane)
	r.commit(laneCol)
}

// setElements fills the row from (col, value) pairs sorted by column.
// Later pairs overwrite earlier ones with the same column.
func (r *rowLanes[T]) setElements(cols []int, vals []T) {
	cur := -1
	var lane []T
	for k, c := range cols {
		lc := c / r.width
		if lc != cur {
			if lane != nil {
				r.commit(cur)
			}
			lane = r.next()
			cur = lc
		}
		lane[c%r.width] = vals[k]
	}
	if lane != nil {
		r.commit(cur)
	}
}

func (r *rowLanes[T]) len() int { return len(r.cols) }

// assemble concatenates per-row lanes into a matrix.
func assemble[T Float](rows, cols, width int, parts []rowLanes[T]) *Matrix[T] {
	total := 0
	for i := range parts {
		total += parts[i].len()
	}

	m := &Matrix[T]{
		rows:     rows,
		cols:     cols,
		width:    width,
		values:   make([]T, 0, total*width),
		laneCols: make([]int, 0, total),
		rowPtr:   make([]int, rows+1),
	}
	for i := range parts {
		m.values = append(m.values, parts[i].values...)
		m.laneCols = append(m.laneCols, parts[i].cols...)
		m.rowPtr[i+1] = len(m.laneCols)
	}
	return m
}

// buildRows computes every row of a rows x cols matrix independently on the
// worker pool and assembles the result.
func buildRows[T Float](rows, cols, width int, fn func(i int, row *rowLanes[T])) *Matrix[T] {
	parts := make([]rowLanes[T], rows)
	pool.Default().ParallelFor(rows, func(i int) {
		parts[i].width = width
		fn(i, &parts[i])
	})
	return assemble(rows, cols, width, parts)
}
