package linop

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-cs/internal/testutil"
	"github.com/cwbudde/algo-cs/internal/vec"
	"gonum.org/v1/gonum/mat"
)

func TestDenseApplyAndAdjoint(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	op := NewDense(m)

	if r, c := op.Dims(); r != 2 || c != 3 {
		t.Fatalf("Dims = %dx%d, want 2x3", r, c)
	}

	testutil.RequireSliceNearlyEqual(t, op.Apply([]float64{1, 0, -1}), []float64{-2, -2}, 1e-15)
	testutil.RequireSliceNearlyEqual(t, op.ApplyAdjoint([]float64{1, 1}), []float64{5, 7, 9}, 1e-15)

	if _, ok := Operator(op).(Matrixer); !ok {
		t.Fatal("Dense should expose its matrix")
	}
}

func TestDenseDoesNotAliasInput(t *testing.T) {
	op := NewDense(mat.NewDense(2, 2, []float64{2, 0, 0, 2}))
	x := []float64{1, 2}
	y := op.Apply(x)
	y[0] = 100
	testutil.RequireSliceNearlyEqual(t, x, []float64{1, 2}, 0)
}

func TestFuncSelfAdjoint(t *testing.T) {
	diag := []float64{1, 2, 3}
	op := NewFunc(3, 3, func(x []float64) []float64 {
		out := make([]float64, len(x))
		for i := range x {
			out[i] = diag[i] * x[i]
		}
		return out
	}, nil)

	testutil.RequireSliceNearlyEqual(t, op.ApplyAdjoint([]float64{1, 1, 1}), diag, 0)
}

func TestFuncSelfAdjointMustBeSquare(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-square self-adjoint operator")
		}
	}()
	NewFunc(2, 3, func(x []float64) []float64 { return x[:2] }, nil)
}

func TestApplyLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on length mismatch")
		}
	}()
	NewDense(mat.NewDense(2, 2, nil)).Apply([]float64{1, 2, 3})
}

func TestIdentity(t *testing.T) {
	id := Identity(3)
	if !IsIdentity(id) {
		t.Fatal("IsIdentity(Identity(3)) = false")
	}
	if IsIdentity(NewDense(mat.NewDense(1, 1, []float64{1}))) {
		t.Fatal("dense operator reported as identity")
	}
	x := []float64{1, 2, 3}
	y := id.Apply(x)
	y[0] = 7
	testutil.RequireSliceNearlyEqual(t, x, []float64{1, 2, 3}, 0)
}

func TestAdjointView(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	dense := NewDense(m)

	adj := Adjoint(dense)
	if r, c := adj.Dims(); r != 3 || c != 2 {
		t.Fatalf("adjoint Dims = %dx%d, want 3x2", r, c)
	}
	if _, ok := adj.(Matrixer); !ok {
		t.Fatal("adjoint of a dense operator should stay dense")
	}
	testutil.RequireSliceNearlyEqual(t, adj.Apply([]float64{1, 1}), []float64{5, 7, 9}, 1e-15)

	fn := NewFunc(2, 3, dense.Apply, dense.ApplyAdjoint)
	fadj := Adjoint(fn)
	testutil.RequireSliceNearlyEqual(t, fadj.Apply([]float64{1, 1}), []float64{5, 7, 9}, 1e-15)
	if Adjoint(fadj) != Operator(fn) {
		t.Fatal("adjoint of adjoint should return the original operator")
	}
}

func TestPair(t *testing.T) {
	fwd := NewDense(mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 0}))
	// Deliberately not the transpose, to check which side is used.
	adj := NewDense(mat.NewDense(3, 2, []float64{2, 0, 0, 2, 0, 0}))

	p, err := Pair(fwd, adj)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, p.Apply([]float64{1, 2, 3}), []float64{1, 2}, 0)
	testutil.RequireSliceNearlyEqual(t, p.ApplyAdjoint([]float64{1, 1}), []float64{2, 2, 0}, 0)

	if _, err := Pair(fwd, fwd); err == nil {
		t.Fatal("expected shape error for non-transposed adjoint")
	}
}

func TestDenseAdjointIdentity(t *testing.T) {
	rng := testutil.Rand(5)
	m := mat.NewDense(4, 6, nil)
	for i := range 4 {
		for j := range 6 {
			m.Set(i, j, rng.NormFloat64())
		}
	}
	op := NewDense(m)
	x := vec.RandN(rng, 6)
	y := vec.RandN(rng, 4)

	lhs := vec.Dot(op.Apply(x), y)
	rhs := vec.Dot(x, op.ApplyAdjoint(y))
	if math.Abs(lhs-rhs) > 1e-12*math.Max(1, math.Abs(lhs)) {
		t.Fatalf("<Ax,y> = %v, <x,Aᵗy> = %v", lhs, rhs)
	}
}
