package vec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-cs/internal/testutil"
)

func TestNormAndMaxAbs(t *testing.T) {
	x := []float64{3, -4}
	if got := Norm(x); math.Abs(got-5) > 1e-15 {
		t.Fatalf("Norm = %v, want 5", got)
	}
	if got := MaxAbs(x); got != 4 {
		t.Fatalf("MaxAbs = %v, want 4", got)
	}
	if Norm(nil) != 0 || MaxAbs(nil) != 0 {
		t.Fatal("empty slice should have zero norm")
	}
}

func TestCombineAndAxpy(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{4, 5, 6}

	got := Combine(2, x, -1, y)
	testutil.RequireSliceNearlyEqual(t, got, []float64{-2, -1, 0}, 1e-15)

	dst := Clone(x)
	Axpy(dst, 0.5, y)
	testutil.RequireSliceNearlyEqual(t, dst, []float64{3, 4.5, 6}, 1e-15)

	// x must be untouched
	testutil.RequireSliceNearlyEqual(t, x, []float64{1, 2, 3}, 0)
}

func TestSubAndRelResidual(t *testing.T) {
	a := []float64{1, 1}
	b := []float64{1, 0}
	testutil.RequireSliceNearlyEqual(t, Sub(a, b), []float64{0, 1}, 0)

	if r := RelResidual(a, b); math.Abs(r-1) > 1e-15 {
		t.Fatalf("RelResidual = %v, want 1", r)
	}
	if r := RelResidual(a, []float64{0, 0}); math.Abs(r-math.Sqrt2) > 1e-15 {
		t.Fatalf("RelResidual against zero = %v, want sqrt(2)", r)
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero([]float64{0, 0, 0}) {
		t.Fatal("all-zero slice reported non-zero")
	}
	if IsZero([]float64{0, 1e-300, 0}) {
		t.Fatal("tiny non-zero entry must count as non-zero")
	}
}

func TestRandDeterministic(t *testing.T) {
	a := RandN(rand.New(rand.NewSource(7)), 16)
	b := RandN(rand.New(rand.NewSource(7)), 16)
	testutil.RequireSliceNearlyEqual(t, a, b, 0)

	u := RandU(rand.New(rand.NewSource(3)), 64)
	for i, v := range u {
		if v < 0 || v >= 1 {
			t.Fatalf("RandU[%d] = %v outside [0, 1)", i, v)
		}
	}
}
