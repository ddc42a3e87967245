package sparsela_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hupe1980/sparsela"
	"github.com/hupe1980/sparsela/blobstore"
)

// Example_conjugateGradient solves a small symmetric positive definite system.
func Example_conjugateGradient() {
	a, err := sparsela.NewMatrixFromCRS(2, 2,
		[]float64{2, 3}, // values
		[]int{0, 1},     // column indexes
		[]int{0, 1, 2},  // row pointers
	)
	if err != nil {
		log.Fatal(err)
	}
	b, _ := sparsela.NewVectorFromSlice([]float64{4, 9})
	x0, _ := sparsela.NewVector[float64](2)

	solver, err := sparsela.NewLinearSolver(a, b, sparsela.WithLogger(sparsela.NoopLogger()))
	if err != nil {
		log.Fatal(err)
	}
	if err := solver.Solve("CG", x0); err != nil {
		log.Fatal(err)
	}

	x, _ := solver.Solution()
	for _, v := range x.Elements() {
		fmt.Printf("%.3f\n", v)
	}
	fmt.Println(solver.State())
	// Output:
	// 2.000
	// 3.000
	// converged
}

// Example_place builds a matrix element by element.
func Example_place() {
	m, _ := sparsela.NewMatrix[float64](3, 3)
	_ = m.Place(0, 0, 5)
	_ = m.Place(2, 1, -1)

	fmt.Print(m.Transpose())
	fmt.Println(m.NNZ())
	// Output:
	// 5 0 0
	// 0 0 -1
	// 0 0 0
	// 2
}

// Example_blobStore loads a system from a blob store.
func Example_blobStore() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	_ = store.Put(ctx, "A.dat", []byte("1 1 1\n2 2 4\n"))
	_ = store.Put(ctx, "b.dat", []byte("1 3\n2 2\n"))

	a, b, err := sparsela.LoadSystem[float64](ctx, store, "A.dat", "b.dat", 1)
	if err != nil {
		log.Fatal(err)
	}

	var sb strings.Builder
	_ = a.Save(&sb, 1)
	fmt.Print(sb.String())
	fmt.Println(b)
	// Output:
	// 1 1 1
	// 2 2 4
	// [3 2]
}
