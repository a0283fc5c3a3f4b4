package nesta

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-cs/internal/linalg"
	"github.com/cwbudde/algo-cs/internal/vec"
	"github.com/cwbudde/algo-cs/linop"
	"gonum.org/v1/gonum/mat"
)

const (
	// orthoTol bounds the probe residual of the orthogonal shortcut.
	orthoTol = 1e-8

	normEstTol     = 1e-3
	normEstMaxIter = 30

	machineEps = 0x1p-52
)

// largeDim marks dense operators whose exact norm is expensive.
var largeDim = 2000

// EstimateNorm returns ‖u‖ together with non-fatal warnings.
//
// Orthogonal operators (UᵗU = I or UUᵗ = I on a random probe) have norm 1.
// Dense operators use the smaller Gram matrix: its square-rooted largest
// diagonal entry when it is numerically diagonal, its largest eigenvalue
// otherwise. Other operators fall back to power iteration, which warns
// with ErrNormEstimationUnreliable when it hits its iteration cap.
func EstimateNorm(u linop.Operator, rng *rand.Rand) (float64, []error, error) {
	p, n := u.Dims()

	z := vec.RandN(rng, n)
	if vec.RelResidual(u.ApplyAdjoint(u.Apply(z)), z) < orthoTol {
		return 1, nil, nil
	}
	z = vec.RandN(rng, p)
	if vec.RelResidual(u.Apply(u.ApplyAdjoint(z)), z) < orthoTol {
		return 1, nil, nil
	}

	mx, ok := u.(linop.Matrixer)
	if !ok {
		est, cnt := linop.NormEst(u,
			linop.WithTolerance(normEstTol),
			linop.WithMaxIter(normEstMaxIter),
			linop.WithRand(rng))
		if cnt == normEstMaxIter {
			return est, []error{fmt.Errorf("%w: power iteration used all %d iterations", ErrNormEstimationUnreliable, cnt)}, nil
		}
		return est, nil, nil
	}

	gram := linalg.Gram(mx.Matrix())
	if offDiagonalNorm(gram) < 100*machineEps {
		maxDiag := 0.0
		for i := range gram.SymmetricDim() {
			maxDiag = math.Max(maxDiag, math.Abs(gram.At(i, i)))
		}
		return math.Sqrt(maxDiag), nil, nil
	}

	var warnings []error
	if min(p, n) > largeDim {
		warnings = append(warnings, fmt.Errorf("%w: exact norm of a %dx%d operator may be slow", ErrPrecision, p, n))
	}
	ev, err := linalg.MaxEigenSym(gram)
	if err != nil {
		return 0, warnings, err
	}
	return math.Sqrt(ev), warnings, nil
}

// offDiagonalNorm returns ‖G − diag(G)‖_F.
func offDiagonalNorm(g mat.Symmetric) float64 {
	n := g.SymmetricDim()
	var sum float64
	for i := range n {
		for j := range n {
			if i != j {
				v := g.At(i, j)
				sum += v * v
			}
		}
	}
	return math.Sqrt(sum)
}
