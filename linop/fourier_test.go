package linop

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-cs/internal/testutil"
	"github.com/cwbudde/algo-cs/internal/vec"
)

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func TestPartialFourierFullBasisIsOrthogonal(t *testing.T) {
	for _, n := range []int{8, 16, 64} {
		f, err := PartialFourier(n, allRows(n))
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		x := testutil.DeterministicNoise(int64(n), 1, n)

		c := f.Apply(x)
		if math.Abs(vec.Norm(c)-vec.Norm(x)) > 1e-10 {
			t.Fatalf("n=%d: norm not preserved: %v vs %v", n, vec.Norm(c), vec.Norm(x))
		}
		testutil.RequireSliceNearlyEqual(t, f.ApplyAdjoint(c), x, 1e-10)
	}
}

func TestPartialFourierIsProjection(t *testing.T) {
	n := 32
	rows := []int{0, 3, 4, 9, 17, 22, 31}
	f, err := PartialFourier(n, rows)
	if err != nil {
		t.Fatal(err)
	}
	if m, nn := f.Dims(); m != len(rows) || nn != n {
		t.Fatalf("Dims = %dx%d", m, nn)
	}

	z := testutil.DeterministicNoise(2, 1, len(rows))
	testutil.RequireSliceNearlyEqual(t, f.Apply(f.ApplyAdjoint(z)), z, 1e-10)
}

func TestPartialFourierAdjointIdentity(t *testing.T) {
	n := 16
	f, err := PartialFourier(n, []int{1, 2, 5, 6, 15})
	if err != nil {
		t.Fatal(err)
	}
	x := testutil.DeterministicNoise(3, 1, n)
	y := testutil.DeterministicNoise(4, 1, 5)

	lhs := vec.Dot(f.Apply(x), y)
	rhs := vec.Dot(x, f.ApplyAdjoint(y))
	if math.Abs(lhs-rhs) > 1e-10 {
		t.Fatalf("<Ax,y> = %v, <x,Aᵗy> = %v", lhs, rhs)
	}
}

func TestPartialFourierRowsMatchBasis(t *testing.T) {
	n := 8
	f, err := PartialFourier(n, []int{0, 1, 2, 7})
	if err != nil {
		t.Fatal(err)
	}
	x := testutil.DeterministicNoise(9, 1, n)
	got := f.Apply(x)

	var dc, cos1, sin1, nyq float64
	for tt, v := range x {
		th := 2 * math.Pi * float64(tt) / float64(n)
		dc += v / math.Sqrt(float64(n))
		cos1 += v * math.Sqrt(2/float64(n)) * math.Cos(th)
		sin1 += v * math.Sqrt(2/float64(n)) * math.Sin(th)
		nyq += v * math.Pow(-1, float64(tt)) / math.Sqrt(float64(n))
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{dc, cos1, sin1, nyq}, 1e-12)
}

func TestPartialFourierInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		n    int
		rows []int
	}{
		{"empty", 8, nil},
		{"negative", 8, []int{-1}},
		{"out of range", 8, []int{8}},
		{"repeated", 8, []int{1, 1}},
		{"zero length", 0, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PartialFourier(tt.n, tt.rows)
			if !errors.Is(err, ErrInvalidRows) {
				t.Fatalf("err = %v, want ErrInvalidRows", err)
			}
		})
	}
}
