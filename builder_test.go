package sparsela

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowLanesSetElements(t *testing.T) {
	r := rowLanes[float64]{width: 4}
	r.setElements([]int{1, 3, 9, 9, 10}, []float64{1, 2, 5, 6, 7})

	assert.Equal(t, []int{0, 2}, r.cols)
	assert.Equal(t, []float64{0, 1, 0, 2, 0, 6, 7, 0}, r.values)
	assert.Equal(t, 2, r.len())
}

func TestRowLanesDropsZeroLanes(t *testing.T) {
	r := rowLanes[float64]{width: 2}
	r.push(0, []float64{0, 0})
	r.push(1, []float64{0, 3})
	r.setElements(nil, nil)

	assert.Equal(t, []int{1}, r.cols)
	assert.Equal(t, []float64{0, 3}, r.values)

	lane := r.next()
	lane[0] = 0
	r.commit(4)
	assert.Equal(t, 1, r.len())
	assert.Len(t, r.values, 2)
}

func TestBuildRows(t *testing.T) {
	// 200 rows to exercise the parallel path of the worker pool.
	const rows, cols, width = 200, 7, 3
	m := buildRows(rows, cols, width, func(i int, row *rowLanes[float32]) {
		if i%2 == 0 {
			row.setElements([]int{i % cols}, []float32{float32(i + 1)})
		}
	})
	require.NoError(t, m.Validate())

	assert.Equal(t, rows/2, m.NumLanes())
	for i := range rows {
		v, err := m.At(i, i%cols)
		require.NoError(t, err)
		if i%2 == 0 {
			assert.Equal(t, float32(i+1), v)
		} else {
			assert.Zero(t, v)
		}
	}
}
