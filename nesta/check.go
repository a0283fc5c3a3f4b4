package nesta

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-cs/internal/vec"
	"github.com/cwbudde/algo-cs/linop"
)

// isometryTol bounds ‖A(Aᵗz) − z‖/‖z‖ for a partial isometry.
const isometryTol = 1e-8

// CheckProjection verifies that a is a partial isometry (A·Aᵗ = I) with a
// random Gaussian probe drawn from rng. It returns ErrInvalidOperator when
// the relative residual exceeds 1e-8.
func CheckProjection(a linop.Operator, rng *rand.Rand) error {
	m, _ := a.Dims()
	z := vec.RandN(rng, m)
	res := vec.RelResidual(a.Apply(a.ApplyAdjoint(z)), z)
	if res > isometryTol {
		return fmt.Errorf("%w: A must be a partial isometry (A·Aᵗ = I), relative residual %.3g", ErrInvalidOperator, res)
	}
	return nil
}
