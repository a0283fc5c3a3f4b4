// Package vec provides the small dense-vector kernels shared by the
// operator and solver packages.
//
// Block scaling and accumulation go through algo-vecmath so they pick up
// the SIMD paths on supported CPUs; reductions use gonum/floats.
package vec

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// Clone returns a copy of x. A nil slice stays nil.
func Clone(x []float64) []float64 {
	if x == nil {
		return nil
	}
	out := make([]float64, len(x))
	copy(out, x)
	return out
}

// Norm returns the Euclidean norm of x.
func Norm(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, 2)
}

// MaxAbs returns max_i |x_i|, or 0 for an empty slice.
func MaxAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, math.Inf(1))
}

// Dot returns the inner product of a and b.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// Sub returns a - b in a new slice.
func Sub(a, b []float64) []float64 {
	return floats.SubTo(make([]float64, len(a)), a, b)
}

// Scaled returns alpha*x in a new slice.
func Scaled(alpha float64, x []float64) []float64 {
	out := make([]float64, len(x))
	vecmath.ScaleBlock(out, x, alpha)
	return out
}

// Axpy computes dst += alpha*x.
func Axpy(dst []float64, alpha float64, x []float64) {
	if alpha == 0 {
		return
	}
	tmp := make([]float64, len(x))
	vecmath.ScaleBlock(tmp, x, alpha)
	vecmath.AddBlockInPlace(dst, tmp)
}

// Combine returns alpha*x + beta*y in a new slice.
func Combine(alpha float64, x []float64, beta float64, y []float64) []float64 {
	out := Scaled(alpha, x)
	Axpy(out, beta, y)
	return out
}

// RelResidual returns ‖got − want‖ / ‖want‖. A zero reference yields the
// absolute residual.
func RelResidual(got, want []float64) float64 {
	d := Norm(Sub(got, want))
	ref := Norm(want)
	if ref == 0 {
		return d
	}
	return d / ref
}

// IsZero reports whether every element of x is exactly zero.
func IsZero(x []float64) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}

// RandN fills a new slice of length n with standard normal samples.
func RandN(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

// RandU fills a new slice of length n with uniform samples in [0, 1).
func RandU(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()
	}
	return out
}
