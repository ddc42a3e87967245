package sparsela

// NaiveTranspose returns the transpose of m by looking up every element.
// It runs in O(rows * cols * log lanes) and serves as the reference for
// Transpose.
func (m *Matrix[T]) NaiveTranspose() *Matrix[T] {
	return buildRows(m.cols, m.rows, m.width, func(j int, row *rowLanes[T]) {
		var cols []int
		var vals []T
		for i := range m.rows {
			if v := m.at(i, j); v != 0 {
				cols = append(cols, i)
				vals = append(vals, v)
			}
		}
		row.setElements(cols, vals)
	})
}

// Transpose returns the transpose of m in O(nnz + cols) time.
//
// A first pass counts the lanes of every output row, a prefix sum turns
// the counts into row pointers, and a second pass scatters the elements.
// Input rows are visited in increasing order, so the lane columns of each
// output row come out sorted. Both passes track the last output lane
// column seen per input column, which needs O(cols) extra space.
func (m *Matrix[T]) Transpose() *Matrix[T] {
	w := m.width
	rows, cols := m.cols, m.rows

	last := make([]int, rows)
	for j := range last {
		last[j] = -1
	}
	rowPtr := make([]int, rows+1)
	m.Each(func(i, j int, _ T) {
		if lc := i / w; last[j] != lc {
			last[j] = lc
			rowPtr[j+1]++
		}
	})
	for j := range rows {
		rowPtr[j+1] += rowPtr[j]
	}

	lanes := rowPtr[rows]
	out := &Matrix[T]{
		rows:     rows,
		cols:     cols,
		width:    w,
		values:   make([]T, lanes*w),
		laneCols: make([]int, lanes),
		rowPtr:   rowPtr,
	}

	cursor := make([]int, rows)
	copy(cursor, rowPtr[:rows])
	for j := range last {
		last[j] = -1
	}
	m.Each(func(i, j int, v T) {
		lc := i / w
		if last[j] != lc {
			last[j] = lc
			out.laneCols[cursor[j]] = lc
			cursor[j]++
		}
		out.values[(cursor[j]-1)*w+i%w] = v
	})
	return out
}
