package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
// Locks only once per call.
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*(maxVal-minVal)
	}
}

// CRS is a matrix in element-level compressed row storage. The entries of
// row i are Values[RowPointers[i]:RowPointers[i+1]] at the matching
// ColIndexes, sorted by column.
type CRS struct {
	Rows        int
	Cols        int
	Values      []float64
	ColIndexes  []int
	RowPointers []int
}

// NNZ returns the number of stored entries.
func (c CRS) NNZ() int { return len(c.Values) }

// Dense expands c into a row-major dense matrix.
func (c CRS) Dense() [][]float64 {
	d := make([][]float64, c.Rows)
	for i := range d {
		d[i] = make([]float64, c.Cols)
		for k := c.RowPointers[i]; k < c.RowPointers[i+1]; k++ {
			d[i][c.ColIndexes[k]] = c.Values[k]
		}
	}
	return d
}

// FromDense stores the non-zero elements of d.
func FromDense(d [][]float64) CRS {
	c := CRS{Rows: len(d), RowPointers: make([]int, 1, len(d)+1)}
	if len(d) > 0 {
		c.Cols = len(d[0])
	}
	for _, row := range d {
		for j, v := range row {
			if v != 0 {
				c.Values = append(c.Values, v)
				c.ColIndexes = append(c.ColIndexes, j)
			}
		}
		c.RowPointers = append(c.RowPointers, len(c.Values))
	}
	return c
}

// sparse draws every element with probability density and fills it with
// value().
func (r *RNG) sparse(rows, cols int, density float64, value func() float64) CRS {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := CRS{Rows: rows, Cols: cols, RowPointers: make([]int, 1, rows+1)}
	for range rows {
		for j := range cols {
			if r.rand.Float64() < density {
				c.Values = append(c.Values, value())
				c.ColIndexes = append(c.ColIndexes, j)
			}
		}
		c.RowPointers = append(c.RowPointers, len(c.Values))
	}
	return c
}

// SparseCRS returns a rows x cols matrix whose elements are non-zero with
// probability density, with values uniform in [-1, 1).
func (r *RNG) SparseCRS(rows, cols int, density float64) CRS {
	return r.sparse(rows, cols, density, func() float64 {
		for {
			if v := 2*r.rand.Float64() - 1; v != 0 {
				return v
			}
		}
	})
}

// IntegerCRS is SparseCRS with non-zero integer values in [-maxAbs, maxAbs].
// Products and sums of such matrices are exact in floating point.
func (r *RNG) IntegerCRS(rows, cols int, density float64, maxAbs int) CRS {
	return r.sparse(rows, cols, density, func() float64 {
		v := r.rand.Intn(maxAbs) + 1
		if r.rand.Intn(2) == 0 {
			v = -v
		}
		return float64(v)
	})
}

// SPDCRS returns a symmetric, strictly diagonally dominant n x n matrix with
// a positive diagonal, which makes it positive definite.
func (r *RNG) SPDCRS(n int, density float64) CRS {
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}

	r.mu.Lock()
	for i := range n {
		for j := i + 1; j < n; j++ {
			if r.rand.Float64() < density {
				v := 2*r.rand.Float64() - 1
				d[i][j], d[j][i] = v, v
			}
		}
	}
	r.mu.Unlock()

	for i := range n {
		sum := 0.0
		for j, v := range d[i] {
			if j != i {
				sum += math.Abs(v)
			}
		}
		d[i][i] = sum + 1
	}
	return FromDense(d)
}

// DenseMulVec returns d * x.
func DenseMulVec(d [][]float64, x []float64) []float64 {
	y := make([]float64, len(d))
	for i, row := range d {
		for j, v := range row {
			y[i] += v * x[j]
		}
	}
	return y
}
