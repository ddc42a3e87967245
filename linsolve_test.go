package sparsela

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinsolve(t *testing.T) {
	// [[4 1 0] [1 3 0] [0 0 2]] x = b with x = (1, 2, 3).
	values := []float64{1, 4, 1, 3, 2}
	colIdx := []int{1, 0, 0, 1, 2}
	rowPtr := []int{0, 2, 4, 5}
	rhs := []float64{6, 7, 6}

	for _, method := range []string{"CG", "cgnr", "IRLS"} {
		t.Run(method, func(t *testing.T) {
			x0 := []float64{0, 0, 0}
			err := Linsolve(3, 3, values, rowPtr, colIdx, rhs, x0, method, nil, WithLogger(NoopLogger()))
			require.NoError(t, err)
			assert.InDeltaSlice(t, []float64{1, 2, 3}, x0, 1e-3)
		})
	}
}

func TestLinsolveOverrides(t *testing.T) {
	x0 := []float64{0, 0}
	err := Linsolve(2, 2, []float64{2, 3}, []int{0, 1, 2}, []int{0, 1}, []float64{4, 9}, x0, "TCGNR",
		[]SolveOption{WithParam(1), WithTolerance(1e-20)}, WithLogger(NoopLogger()))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.6, 2.7}, x0, 1e-9)
}

func TestLinsolveErrorsLeaveGuess(t *testing.T) {
	tests := []struct {
		name   string
		rows   int
		cols   int
		rhs    []float64
		x0     []float64
		method string
		want   error
	}{
		{"rhs length", 2, 2, []float64{1}, []float64{7, 7}, "CG", ErrDimensionMismatch},
		{"guess length", 2, 2, []float64{1, 1}, []float64{7}, "CG", ErrDimensionMismatch},
		{"method", 2, 2, []float64{1, 1}, []float64{7, 7}, "lsqr", ErrUnknownMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := append([]float64(nil), tt.x0...)
			err := Linsolve(tt.rows, tt.cols, []float64{1, 1}, []int{0, 1, 2}, []int{0, 1}, tt.rhs, tt.x0, tt.method, nil, WithLogger(NoopLogger()))
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, tt.x0)
		})
	}

	x0 := []float64{7, 7}
	err := Linsolve(2, 2, []float64{1}, []int{0, 1, 1}, []int{5}, []float64{1, 1}, x0, "CG", nil, WithLogger(NoopLogger()))
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, []float64{7, 7}, x0)
}
