package linop

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-cs/internal/vec"
)

// Power-iteration defaults.
const (
	DefaultNormEstTol     = 1e-6
	DefaultNormEstMaxIter = 20
)

type normEstConfig struct {
	tol     float64
	maxIter int
	rng     *rand.Rand
}

// NormEstOption configures NormEst.
type NormEstOption func(*normEstConfig)

// WithTolerance sets the relative stopping tolerance.
func WithTolerance(tol float64) NormEstOption {
	return func(cfg *normEstConfig) {
		if tol > 0 {
			cfg.tol = tol
		}
	}
}

// WithMaxIter caps the number of power iterations.
func WithMaxIter(n int) NormEstOption {
	return func(cfg *normEstConfig) {
		if n > 0 {
			cfg.maxIter = n
		}
	}
}

// WithRand sets the random source used to restart from an all-zero image.
func WithRand(rng *rand.Rand) NormEstOption {
	return func(cfg *normEstConfig) {
		if rng != nil {
			cfg.rng = rng
		}
	}
}

// NormEst estimates the 2-norm ‖op‖ by power iteration on opᵗ·op.
//
// Iteration starts from the normalized all-ones vector. Each step applies
// op, records the image norm as the estimate, then applies the adjoint and
// renormalizes. An image that is exactly zero everywhere is replaced by a
// uniform random vector. Iteration stops when |e − e_prev| ≤ tol·e or after
// maxIter steps; the estimate and the number of steps taken are returned.
// Self-adjoint Func operators (nil adjoint) reuse the forward function.
func NormEst(op Operator, opts ...NormEstOption) (float64, int) {
	cfg := normEstConfig{
		tol:     DefaultNormEstTol,
		maxIter: DefaultNormEstMaxIter,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(1))
	}

	_, n := op.Dims()
	if n == 0 {
		return 0, 0
	}

	x := make([]float64, n)
	e := math.Sqrt(float64(n))
	for i := range x {
		x[i] = 1 / e
	}

	e0 := 0.0
	cnt := 0
	for math.Abs(e-e0) > cfg.tol*e && cnt < cfg.maxIter {
		e0 = e
		sx := op.Apply(x)
		if vec.IsZero(sx) {
			sx = vec.RandU(cfg.rng, len(sx))
		}
		e = vec.Norm(sx)
		x = op.ApplyAdjoint(sx)
		cnt++

		nx := vec.Norm(x)
		if nx == 0 {
			break
		}
		for i := range x {
			x[i] /= nx
		}
	}

	return e, cnt
}
