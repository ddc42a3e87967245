package simd

import "unsafe"

// Float is the element constraint shared by all lane kernels.
type Float interface {
	~float32 | ~float64
}

// Width returns the number of T elements that fit into one register of the
// active ISA. It is at least 1.
func Width[T Float]() int {
	return WidthFor[T](activeISA)
}

// WidthFor returns the lane width of T for a given ISA.
func WidthFor[T Float](isa ISA) int {
	var zero T
	size := int(unsafe.Sizeof(zero))
	rb := isa.RegisterBytes()
	if rb < size {
		return 1
	}
	return rb / size
}

// Lanes returns the number of lanes needed to hold n elements at width w.
func Lanes(n, w int) int {
	if n <= 0 {
		return 0
	}
	return (n + w - 1) / w
}

// Add computes dst[i] = a[i] + b[i].
func Add[T Float](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

// Sub computes dst[i] = a[i] - b[i].
func Sub[T Float](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

// Mul computes dst[i] = a[i] * b[i].
func Mul[T Float](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

// Div computes dst[i] = a[i] / b[i] for the first n elements and leaves the
// remaining elements of dst at zero. n bounds the live (non-padding) part of
// the lane so that padding never divides 0 by 0.
func Div[T Float](dst, a, b []T, n int) {
	for i := range dst {
		if i < n {
			dst[i] = a[i] / b[i]
		} else {
			dst[i] = 0
		}
	}
}

// Scale computes dst[i] = a[i] * s.
func Scale[T Float](dst, a []T, s T) {
	for i := range dst {
		dst[i] = a[i] * s
	}
}

// DivScalar computes dst[i] = a[i] / s.
func DivScalar[T Float](dst, a []T, s T) {
	for i := range dst {
		dst[i] = a[i] / s
	}
}

// MulAdd computes acc[i] += a[i] * b[i].
func MulAdd[T Float](acc, a, b []T) {
	for i := range acc {
		acc[i] += a[i] * b[i]
	}
}

// Reduce returns the horizontal sum of a lane.
func Reduce[T Float](a []T) T {
	var sum T
	for _, v := range a {
		sum += v
	}
	return sum
}

// Dot returns the sum of a[i]*b[i].
func Dot[T Float](a, b []T) T {
	var sum T
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SumSquares returns the sum of a[i]*a[i].
func SumSquares[T Float](a []T) T {
	var sum T
	for _, v := range a {
		sum += v * v
	}
	return sum
}

// IsZero reports whether every element of the lane is zero.
func IsZero[T Float](a []T) bool {
	for _, v := range a {
		if v != 0 {
			return false
		}
	}
	return true
}

// Clear sets every element of the lane to zero.
func Clear[T Float](a []T) {
	for i := range a {
		a[i] = 0
	}
}

// AXPY computes dst[i] += alpha * x[i].
func AXPY[T Float](dst []T, alpha T, x []T) {
	for i := range dst {
		dst[i] += alpha * x[i]
	}
}

// XPAY computes dst[i] = x[i] + beta * dst[i].
func XPAY[T Float](dst []T, beta T, x []T) {
	for i := range dst {
		dst[i] = x[i] + beta*dst[i]
	}
}
