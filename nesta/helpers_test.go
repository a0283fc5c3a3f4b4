package nesta

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// orthoRows returns an m×n matrix with orthonormal rows.
func orthoRows(rng *rand.Rand, m, n int) *mat.Dense {
	g := mat.NewDense(n, m, nil)
	for i := range n {
		for j := range m {
			g.Set(i, j, rng.NormFloat64())
		}
	}
	var qr mat.QR
	qr.Factorize(g)
	var q mat.Dense
	qr.QTo(&q)

	out := mat.NewDense(m, n, nil)
	out.Copy(q.Slice(0, n, 0, m).T())
	return out
}

// gaussian returns an m×n matrix of standard normal entries.
func gaussian(rng *rand.Rand, m, n int) *mat.Dense {
	g := mat.NewDense(m, n, nil)
	for i := range m {
		for j := range n {
			g.Set(i, j, rng.NormFloat64())
		}
	}
	return g
}

// sparse returns a length-n vector with k entries of magnitude in [1, 2)
// and random signs.
func sparse(rng *rand.Rand, n, k int) []float64 {
	x := make([]float64, n)
	for _, i := range rng.Perm(n)[:k] {
		v := 1 + rng.Float64()
		if rng.Intn(2) == 0 {
			v = -v
		}
		x[i] = v
	}
	return x
}
