package sparsela

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/hupe1980/sparsela/internal/simd"
)

// Vector is a dense vector packed into fixed-width lanes. The backing slice
// always holds whole lanes; the padding after the last element stays zero.
//
// Vectors have value semantics: operations return new vectors and only Set
// mutates the receiver.
type Vector[T Float] struct {
	n      int
	width  int
	values []T
}

// NewVector returns a zero vector of length n.
func NewVector[T Float](n int, opts ...Option) (*Vector[T], error) {
	if n <= 0 {
		return nil, opError("NewVector", ErrInvalidShape, "length %d", n)
	}
	o := resolveOptions[T](opts)
	return newVector[T](n, o.laneWidth), nil
}

func newVector[T Float](n, width int) *Vector[T] {
	return &Vector[T]{
		n:      n,
		width:  width,
		values: make([]T, simd.Lanes(n, width)*width),
	}
}

// NewVectorFilled returns a vector of length n with every element set to v.
func NewVectorFilled[T Float](n int, v T, opts ...Option) (*Vector[T], error) {
	out, err := NewVector[T](n, opts...)
	if err != nil {
		return nil, err
	}
	for i := range n {
		out.values[i] = v
	}
	return out, nil
}

// NewVectorFromSlice returns a vector holding a copy of xs.
func NewVectorFromSlice[T Float](xs []T, opts ...Option) (*Vector[T], error) {
	out, err := NewVector[T](len(xs), opts...)
	if err != nil {
		return nil, err
	}
	copy(out.values, xs)
	return out, nil
}

// Clone returns a deep copy of v.
func (v *Vector[T]) Clone() *Vector[T] {
	return &Vector[T]{n: v.n, width: v.width, values: slices.Clone(v.values)}
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return v.n }

// LaneWidth returns the number of elements per lane.
func (v *Vector[T]) LaneWidth() int { return v.width }

// NumLanes returns the number of lanes including the padded last lane.
func (v *Vector[T]) NumLanes() int { return len(v.values) / v.width }

// Elements returns a copy of the elements without padding.
func (v *Vector[T]) Elements() []T { return slices.Clone(v.values[:v.n]) }

// Values returns a copy of the lane-packed storage including padding.
func (v *Vector[T]) Values() []T { return slices.Clone(v.values) }

// At returns element i.
func (v *Vector[T]) At(i int) (T, error) {
	if i < 0 || i >= v.n {
		return 0, opError("At", ErrOutOfRange, "index %d of %d", i, v.n)
	}
	return v.values[i], nil
}

// Set sets element i in place.
func (v *Vector[T]) Set(i int, x T) error {
	if i < 0 || i >= v.n {
		return opError("Set", ErrOutOfRange, "index %d of %d", i, v.n)
	}
	v.values[i] = x
	return nil
}

// Lane returns a copy of lane k.
func (v *Vector[T]) Lane(k int) ([]T, error) {
	if k < 0 || k >= v.NumLanes() {
		return nil, opError("Lane", ErrOutOfRange, "lane %d of %d", k, v.NumLanes())
	}
	return slices.Clone(v.values[k*v.width : (k+1)*v.width]), nil
}

func (v *Vector[T]) check(op string, b *Vector[T]) error {
	if v.n != b.n {
		return opError(op, ErrDimensionMismatch, "length %d vs %d", v.n, b.n)
	}
	if v.width != b.width {
		return opError(op, ErrLaneWidthMismatch, "%d vs %d", v.width, b.width)
	}
	return nil
}

func (v *Vector[T]) binary(op string, b *Vector[T], fn func(dst, x, y []T)) (*Vector[T], error) {
	if err := v.check(op, b); err != nil {
		return nil, err
	}
	out := newVector[T](v.n, v.width)
	fn(out.values, v.values, b.values)
	return out, nil
}

// Add returns v + b.
func (v *Vector[T]) Add(b *Vector[T]) (*Vector[T], error) {
	return v.binary("Add", b, simd.Add[T])
}

// Sub returns v - b.
func (v *Vector[T]) Sub(b *Vector[T]) (*Vector[T], error) {
	return v.binary("Sub", b, simd.Sub[T])
}

// Mul returns the element-wise product of v and b.
func (v *Vector[T]) Mul(b *Vector[T]) (*Vector[T], error) {
	return v.binary("Mul", b, simd.Mul[T])
}

// Div returns the element-wise quotient v / b. Every element of b must be
// non-zero.
func (v *Vector[T]) Div(b *Vector[T]) (*Vector[T], error) {
	if err := v.check("Div", b); err != nil {
		return nil, err
	}
	if i := slices.Index(b.values[:b.n], 0); i >= 0 {
		return nil, opError("Div", ErrDivisionByZero, "element %d", i)
	}
	out := newVector[T](v.n, v.width)
	simd.Div(out.values, v.values, b.values, v.n)
	return out, nil
}

// Scale returns s * v.
func (v *Vector[T]) Scale(s T) *Vector[T] {
	out := newVector[T](v.n, v.width)
	simd.Scale(out.values, v.values, s)
	return out
}

// DivScalar returns v / s.
func (v *Vector[T]) DivScalar(s T) (*Vector[T], error) {
	if s == 0 {
		return nil, opError("DivScalar", ErrDivisionByZero, "")
	}
	out := newVector[T](v.n, v.width)
	simd.DivScalar(out.values, v.values, s)
	return out, nil
}

// Dot returns the inner product of v and b.
func (v *Vector[T]) Dot(b *Vector[T]) (T, error) {
	if err := v.check("Dot", b); err != nil {
		return 0, err
	}
	return simd.Dot(v.values, b.values), nil
}

// Slice returns the elements in [start, end) as a new vector.
func (v *Vector[T]) Slice(start, end int) (*Vector[T], error) {
	if start < 0 || end > v.n || start >= end {
		return nil, opError("Slice", ErrOutOfRange, "[%d, %d) of %d", start, end, v.n)
	}
	out := newVector[T](end-start, v.width)
	copy(out.values, v.values[start:end])
	return out, nil
}

// Apply returns a new vector with f applied to every element. Padding is
// not passed to f.
func (v *Vector[T]) Apply(f func(T) T) *Vector[T] {
	out := newVector[T](v.n, v.width)
	for i, x := range v.values[:v.n] {
		out.values[i] = f(x)
	}
	return out
}

// PNorm returns the Minkowski p-norm (sum |x_i|^p)^(1/p). p must be at
// least 1; p = +Inf yields the maximum norm.
func (v *Vector[T]) PNorm(p float64) (T, error) {
	if math.IsNaN(p) || p < 1 {
		return 0, opError("PNorm", ErrInvalidParameter, "p = %g", p)
	}
	switch {
	case p == 2:
		return v.Norm(), nil
	case math.IsInf(p, 1):
		var m float64
		for _, x := range v.values[:v.n] {
			m = max(m, math.Abs(float64(x)))
		}
		return T(m), nil
	case p == 1:
		var s float64
		for _, x := range v.values[:v.n] {
			s += math.Abs(float64(x))
		}
		return T(s), nil
	}
	var s float64
	for _, x := range v.values[:v.n] {
		s += math.Pow(math.Abs(float64(x)), p)
	}
	return T(math.Pow(s, 1/p)), nil
}

// Norm returns the Euclidean norm.
func (v *Vector[T]) Norm() T {
	return T(math.Sqrt(float64(simd.SumSquares(v.values))))
}

// IsClose reports whether v and b have the same length and differ by at
// most tol element-wise.
func (v *Vector[T]) IsClose(b *Vector[T], tol T) bool {
	if v.n != b.n {
		return false
	}
	for i := range v.n {
		if math.Abs(float64(v.values[i]-b.values[i])) > float64(tol) {
			return false
		}
	}
	return true
}

// Equal reports whether v and b hold exactly the same elements.
func (v *Vector[T]) Equal(b *Vector[T]) bool {
	return v.n == b.n && slices.Equal(v.values[:v.n], b.values[:b.n])
}

// AddRows returns the concatenation of v and b. Elements of b follow the
// last element of v directly, whatever the lane alignment.
func (v *Vector[T]) AddRows(b *Vector[T]) (*Vector[T], error) {
	if v.width != b.width {
		return nil, opError("AddRows", ErrLaneWidthMismatch, "%d vs %d", v.width, b.width)
	}
	out := newVector[T](v.n+b.n, v.width)
	copy(out.values, v.values[:v.n])
	copy(out.values[v.n:], b.values[:b.n])
	return out, nil
}

// axpy updates v in place: v += alpha * x.
func (v *Vector[T]) axpy(alpha T, x *Vector[T]) {
	simd.AXPY(v.values, alpha, x.values)
}

// xpay updates v in place: v = x + beta * v.
func (v *Vector[T]) xpay(beta T, x *Vector[T]) {
	simd.XPAY(v.values, beta, x.values)
}

// dot is Dot without checks.
func (v *Vector[T]) dot(b *Vector[T]) T {
	return simd.Dot(v.values, b.values)
}

// String renders v as "[x0 x1 ...]".
func (v *Vector[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, x := range v.values[:v.n] {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g", x)
	}
	sb.WriteByte(']')
	return sb.String()
}
