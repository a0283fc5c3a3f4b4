package linop

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-cs/internal/testutil"
	"gonum.org/v1/gonum/mat"
)

func diagFunc(d []float64) *Func {
	return NewFunc(len(d), len(d), func(x []float64) []float64 {
		out := make([]float64, len(x))
		for i := range x {
			out[i] = d[i] * x[i]
		}
		return out
	}, nil)
}

func TestNormEstDiagonal(t *testing.T) {
	tests := []struct {
		name string
		diag []float64
		want float64
	}{
		{"dominant last", []float64{1, 2, 5}, 5},
		{"negative entry", []float64{-4, 1, 0.5, 2}, 4},
		{"scalar", []float64{3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tol := 1e-6
			got, iters := NormEst(diagFunc(tt.diag), WithTolerance(tol), WithMaxIter(50))
			if math.Abs(got-tt.want) > 10*tol*tt.want {
				t.Fatalf("NormEst = %v, want %v", got, tt.want)
			}
			if iters < 1 || iters >= 50 {
				t.Fatalf("iterations = %d, expected convergence before the cap", iters)
			}
		})
	}
}

func TestNormEstDefaultsConvergeOnWellSeparatedSpectrum(t *testing.T) {
	// Ratio (2/10)^2 per step: 20 default iterations are plenty.
	got, iters := NormEst(diagFunc([]float64{1, 2, 10}))
	if math.Abs(got-10) > 1e-4 {
		t.Fatalf("NormEst = %v, want 10", got)
	}
	if iters > DefaultNormEstMaxIter {
		t.Fatalf("iterations %d exceed default cap", iters)
	}
}

func TestNormEstRespectsCap(t *testing.T) {
	// Nearly equal singular values converge slowly.
	_, iters := NormEst(diagFunc([]float64{1, 0.9999}), WithTolerance(1e-300), WithMaxIter(7))
	if iters != 7 {
		t.Fatalf("iterations = %d, want the cap 7", iters)
	}
}

func TestNormEstZeroImageRestart(t *testing.T) {
	// The all-ones start lies in the null space of this operator.
	m := mat.NewDense(2, 2, []float64{1, -1, -1, 1})
	got, _ := NormEst(NewDense(m), WithRand(testutil.Rand(4)), WithMaxIter(100))
	if math.Abs(got-2) > 1e-4 {
		t.Fatalf("NormEst = %v, want 2", got)
	}
}

func TestNormEstRectangularDense(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{3, 0, 0, 0, 1, 0})
	got, _ := NormEst(NewDense(m), WithMaxIter(100))
	if math.Abs(got-3) > 1e-4 {
		t.Fatalf("NormEst = %v, want 3", got)
	}
}
