// Package sparsela provides sparse linear algebra with SIMD lane packing.
//
// Matrices are stored in compressed row storage (CRS) where each stored unit
// is a lane: a run of LaneWidth consecutive elements of one row, aligned to a
// multiple of LaneWidth. Vectors are dense and padded to whole lanes. The lane
// width follows the widest vector instruction set of the CPU (see
// SPARSELA_SIMD) and can be set per matrix with WithLaneWidth.
//
// # Quick Start
//
//	a, _ := sparsela.LoadMatrix[float64]("A.dat", 1)
//	b, _ := sparsela.LoadVector[float64]("b.dat", 1)
//	x0, _ := sparsela.NewVector[float64](a.Cols())
//
//	solver, _ := sparsela.NewLinearSolver(a, b)
//	if err := solver.Solve("CGNR", x0, sparsela.WithTolerance(1e-10)); err != nil {
//	    return err
//	}
//	x, _ := solver.Solution()
//
// # Methods
//
//   - CG: conjugate gradient for symmetric positive definite systems
//   - CGNR: conjugate gradient on the normal equations, for least squares
//   - TCGNR: Tikhonov regularized CGNR, Param is the regularization weight
//   - IRLS: iteratively reweighted least squares for the p-norm, p = Param
//
// Reaching the iteration cap is not an error. The solver publishes the last
// iterate, logs a warning and reports StateExhausted.
//
// # Storage
//
// Matrices and vectors are read and written as triplet text ("row col value"
// and "index value"), from files (LoadMatrix, SaveFile) or from a
// blobstore.BlobStore (LoadMatrixBlob, SaveMatrixBlob, LoadSystem). Names
// ending in .zst or .lz4 are compressed.
//
// # Logging
//
// Solvers log through a Logger built on log/slog with an extra LowPriority
// level between Info and Debug. Verbosity 1 to 5 selects Error, Warning,
// Info, LowPriority or Debug. Per-iteration progress is logged at
// LowPriority every PrintFrequency iterations.
package sparsela
