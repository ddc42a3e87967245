// Package simd provides the lane abstraction used by the sparse matrix and
// dense vector types.
//
// A lane is a fixed window of Width[T]() consecutive elements inside a flat
// backing slice. The width is derived from the register size of the best
// instruction set detected at startup (AVX-512, AVX2, NEON) divided by the
// element size. Without SIMD support, or when built with the noasm tag, the
// width falls back to 1 and every lane is a single scalar.
//
// The detected ISA can be forced with the SPARSELA_SIMD environment variable
// (generic, neon, avx2, avx512). Unavailable ISAs are ignored.
//
// The kernels in this package operate on whole lanes. Callers guarantee that
// all slices passed to one call have the same length.
package simd
