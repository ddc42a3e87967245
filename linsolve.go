package sparsela

import (
	"os"
)

// Defaults of Linsolve.
const (
	LinsolveMaxIterations = 1000
	LinsolveTolerance     = 1e-7
	LinsolveParam         = 1.0
	LinsolveVerbosity     = 2
)

// Linsolve solves a system given as element-level compressed row storage
// and writes the solution into x0.
//
// The matrix has rows x cols elements; the entries of row i are
// values[rowPointers[i]:rowPointers[i+1]] at the matching colIndexes. rhs
// holds rows elements and x0 holds cols elements. The argument order
// follows the C entry point, rowPointers before colIndexes. The solve uses at most
// 1000 iterations, tolerance 1e-7 and parameter 1 unless opts override
// them. Warnings go to stdout unless WithLogger is passed through
// solverOpts. On error x0 is left unchanged.
func Linsolve(rows, cols int, values []float64, rowPointers, colIndexes []int, rhs, x0 []float64, method string, opts []SolveOption, solverOpts ...SolverOption) error {
	if len(rhs) != rows {
		return opError("Linsolve", ErrDimensionMismatch, "%d right-hand side elements for %d rows", len(rhs), rows)
	}
	if len(x0) != cols {
		return opError("Linsolve", ErrDimensionMismatch, "%d initial guess elements for %d columns", len(x0), cols)
	}

	a, err := NewMatrixFromCRS(rows, cols, values, colIndexes, rowPointers)
	if err != nil {
		return err
	}
	b, err := NewVectorFromSlice(rhs)
	if err != nil {
		return err
	}
	x, err := NewVectorFromSlice(x0)
	if err != nil {
		return err
	}

	solverOpts = append([]SolverOption{WithLogger(NewTextLogger(os.Stdout, LinsolveVerbosity))}, solverOpts...)
	solver, err := NewLinearSolver(a, b, solverOpts...)
	if err != nil {
		return err
	}

	opts = append([]SolveOption{
		WithMaxIterations(LinsolveMaxIterations),
		WithTolerance(LinsolveTolerance),
		WithParam(LinsolveParam),
	}, opts...)
	if err := solver.Solve(method, x, opts...); err != nil {
		return err
	}

	sol, err := solver.Solution()
	if err != nil {
		return err
	}
	copy(x0, sol.values[:cols])
	return nil
}
