package synthesis

import (
	"testing"

	"github.com/cwbudde/algo-cs/analysis"
	"github.com/cwbudde/algo-cs/internal/testutil"
	"github.com/cwbudde/algo-cs/sensing"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOracleLeastSquaresOnSupport(t *testing.T) {
	d := mat.NewDense(3, 4, []float64{
		1, 0, 0, 1,
		0, 1, 0, 1,
		0, 0, 1, 0,
	})
	y := mat.NewDense(3, 2, []float64{
		2, 0,
		3, 1,
		0, 0,
	})
	truth := analysis.SynthesisTruth{Support: [][]int{{0, 1}, {3}}}

	c, err := Oracle{}.Solve(y, d, truth)
	require.NoError(t, err)

	want := mat.NewDense(4, 2, []float64{
		2, 0,
		3, 0,
		0, 0,
		0, 0.5,
	})
	testutil.RequireMatrixNearlyEqual(t, c, want, 1e-12)
}

func TestOracleErrors(t *testing.T) {
	d := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 1})
	y := mat.NewDense(2, 1, []float64{1, 1})

	_, err := Oracle{}.Solve(y, d, analysis.SynthesisTruth{})
	require.ErrorIs(t, err, ErrMissingSupport)

	_, err = Oracle{}.Solve(y, d, analysis.SynthesisTruth{Support: [][]int{{0, 1, 2}}})
	require.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Oracle{}.Solve(mat.NewDense(3, 1, nil), d, analysis.SynthesisTruth{Support: [][]int{{0}}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNESTARecoversSparseCoefficients(t *testing.T) {
	g := sensing.NewGenerator(sensing.WithSeed(21))
	d, err := g.Gaussian(30, 60)
	require.NoError(t, err)

	x := mat.NewDense(60, 2, nil)
	for j := range 2 {
		col, _, err := g.Sparse(60, 4)
		require.NoError(t, err)
		x.SetCol(j, col)
	}
	y, err := g.Measure(d, x, 0)
	require.NoError(t, err)
	// A zero instance is passed through.
	zero := mat.NewDense(30, 1, nil)
	var full mat.Dense
	full.Augment(y, zero)

	s := NewNESTA(1e-5)
	s.Options.TolVar = 1e-8

	c, err := s.Solve(&full, d, analysis.SynthesisTruth{})
	require.NoError(t, err)

	r, cols := c.Dims()
	require.Equal(t, 60, r)
	require.Equal(t, 3, cols)

	for j := range 2 {
		got := mat.Col(nil, j, c)
		want := mat.Col(nil, j, x)
		require.Less(t, testutil.RelErr(got, want), 1e-2, "instance %d", j)
	}
	testutil.RequireSliceNearlyEqual(t, mat.Col(nil, 2, c), make([]float64, 60), 0)
}

func TestNESTABehindAnalysis(t *testing.T) {
	g := sensing.NewGenerator(sensing.WithSeed(8))
	op, err := g.TightFrame(24, 16)
	require.NoError(t, err)
	acq, err := g.Gaussian(14, 16)
	require.NoError(t, err)
	truth, err := g.Cosparse(op, 12, 1)
	require.NoError(t, err)
	y, err := g.Measure(acq, truth.Data, 0)
	require.NoError(t, err)

	abs, err := analysis.New(NewNESTA(1e-5))
	require.NoError(t, err)
	xhat, err := abs.Solve(y, acq, op, truth)
	require.NoError(t, err)

	// The estimate must explain the measurements.
	var ax mat.Dense
	ax.Mul(acq, xhat)
	require.Less(t, testutil.RelErr(mat.Col(nil, 0, &ax), mat.Col(nil, 0, y)), 1e-6)
}
