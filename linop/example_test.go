package linop_test

import (
	"fmt"

	"github.com/cwbudde/algo-cs/linop"
	"gonum.org/v1/gonum/mat"
)

func ExampleNormEst() {
	op := linop.NewDense(mat.NewDiagDense(2, []float64{1, 3}))

	norm, _ := linop.NormEst(op)
	fmt.Printf("%.4f\n", norm)

	// Output:
	// 3.0000
}

func ExamplePartialFourier() {
	f, err := linop.PartialFourier(8, []int{0, 1, 2})
	if err != nil {
		panic(err)
	}

	// Rows of an orthonormal basis: A·Aᵗ = I.
	y := f.Apply(f.ApplyAdjoint([]float64{1, 2, 3}))
	fmt.Printf("%.3f %.3f %.3f\n", y[0], y[1], y[2])

	// Output:
	// 1.000 2.000 3.000
}
