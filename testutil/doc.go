// Package testutil provides testing utilities for sparsela.
//
// This package is intended for use in tests and benchmarks only.
// It generates reproducible sparse systems in element-level compressed row
// storage.
//
// # Random Systems
//
//	rng := testutil.NewRNG(seed)
//	a := rng.SparseCRS(50, 30, 0.2)   // values uniform in [-1, 1)
//	s := rng.SPDCRS(40, 0.1)          // symmetric positive definite
//	d := a.Dense()                    // reference dense form
package testutil
