// Command clinsolve builds a C shared library exporting linsolve:
//
//	go build -buildmode=c-shared -o liblinsolve.so ./cmd/clinsolve
//
// The C signature is
//
//	void linsolve(int rows, int cols, int n_values, const double *values,
//	              const int *row_ptr, const int *col_idx,
//	              const double *rhs, double *x0, const char *method);
//
// values and col_idx hold n_values entries and row_ptr holds rows+1
// offsets into them; row_ptr[rows] must equal n_values. The solution
// overwrites x0. Failures are logged to stdout at error severity and leave
// x0 unchanged.
package main

import "C"

import (
	"os"
	"unsafe"

	"github.com/hupe1980/sparsela"
)

var logger = sparsela.NewTextLogger(os.Stdout, sparsela.LinsolveVerbosity)

//export linsolve
func linsolve(rows, cols, nValues C.int, values *C.double, rowPtr, colIdx *C.int, rhs, x0 *C.double, method *C.char) {
	r, c, n := int(rows), int(cols), int(nValues)
	if r <= 0 || c <= 0 || n < 0 || rowPtr == nil || rhs == nil || x0 == nil || method == nil {
		logger.Error("linsolve: invalid arguments", "rows", r, "cols", c, "values", n)
		return
	}

	var (
		vals []float64
		idx  []int
	)
	if n > 0 {
		if values == nil || colIdx == nil {
			logger.Error("linsolve: invalid arguments", "values", n)
			return
		}
		vals = unsafe.Slice((*float64)(unsafe.Pointer(values)), n)
		idx = toInts(unsafe.Slice((*int32)(unsafe.Pointer(colIdx)), n))
	}

	solve(r, c, n, vals,
		toInts(unsafe.Slice((*int32)(unsafe.Pointer(rowPtr)), r+1)),
		idx,
		unsafe.Slice((*float64)(unsafe.Pointer(rhs)), r),
		unsafe.Slice((*float64)(unsafe.Pointer(x0)), c),
		C.GoString(method))
}

func solve(rows, cols, nValues int, values []float64, rowPtr, colIdx []int, rhs, x0 []float64, method string) bool {
	if rowPtr[rows] != nValues {
		logger.Error("linsolve: value count mismatch", "values", nValues, "row_ptr_end", rowPtr[rows])
		return false
	}
	err := sparsela.Linsolve(rows, cols, values, rowPtr, colIdx, rhs, x0, method, nil, sparsela.WithLogger(logger))
	if err != nil {
		logger.Error("linsolve failed", "method", method, "error", err)
		return false
	}
	return true
}

func toInts(xs []int32) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = int(x)
	}
	return out
}

func main() {}
