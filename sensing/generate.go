// Package sensing generates deterministic compressed-sensing test problems:
// measurement matrices, sparse and cosparse signals, analysis operators.
package sensing

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/cwbudde/algo-cs/analysis"
	"github.com/cwbudde/algo-cs/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// Generator creates random problems from a seeded source. Successive calls
// draw fresh samples; two generators with the same seed produce the same
// sequence.
type Generator struct {
	seed int64
	rng  *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the random seed. The default is 1.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured problem generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.rng = rand.New(rand.NewSource(g.seed))
	return g
}

// Seed returns the generator seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Gaussian returns an m×n matrix with independent N(0, 1/m) entries, so
// columns have unit expected norm.
func (g *Generator) Gaussian(m, n int) (*mat.Dense, error) {
	if m <= 0 || n <= 0 {
		return nil, fmt.Errorf("gaussian matrix dimensions must be > 0: %dx%d", m, n)
	}
	scale := 1 / math.Sqrt(float64(m))
	out := mat.NewDense(m, n, nil)
	for i := range m {
		for j := range n {
			out.Set(i, j, scale*g.rng.NormFloat64())
		}
	}
	return out, nil
}

// OrthonormalRows returns an m×n matrix A with A·Aᵗ = I, the orthonormal
// basis of the row space of a Gaussian matrix.
func (g *Generator) OrthonormalRows(m, n int) (*mat.Dense, error) {
	if m <= 0 || m > n {
		return nil, fmt.Errorf("orthonormal rows need 0 < m <= n: %dx%d", m, n)
	}
	gauss, err := g.Gaussian(n, m)
	if err != nil {
		return nil, err
	}
	var qr mat.QR
	qr.Factorize(gauss)
	var q mat.Dense
	qr.QTo(&q)

	out := mat.NewDense(m, n, nil)
	out.Copy(q.Slice(0, n, 0, m).T())
	return out, nil
}

// TightFrame returns a p×n analysis operator Ω with orthonormal columns
// (ΩᵗΩ = I), p >= n.
func (g *Generator) TightFrame(p, n int) (*mat.Dense, error) {
	if n <= 0 || p < n {
		return nil, fmt.Errorf("tight frame needs p >= n > 0: %dx%d", p, n)
	}
	rows, err := g.OrthonormalRows(n, p)
	if err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(rows.T()), nil
}

// Sparse returns a length-n vector with k non-zero standard normal entries
// and its sorted support.
func (g *Generator) Sparse(n, k int) ([]float64, []int, error) {
	if n <= 0 || k < 0 || k > n {
		return nil, nil, fmt.Errorf("sparse signal needs 0 <= k <= n, n > 0: n=%d k=%d", n, k)
	}
	support := g.Subset(n, k)
	x := make([]float64, n)
	for _, i := range support {
		x[i] = g.rng.NormFloat64()
	}
	return x, support, nil
}

// Cosparse draws count signals (as columns) that are orthogonal to l
// randomly chosen rows of the p×n operator, l < n. The returned ground
// truth holds the signals, Ω·x and the cosupports.
func (g *Generator) Cosparse(operator mat.Matrix, l, count int) (analysis.GroundTruth, error) {
	p, n := operator.Dims()
	if l < 0 || l >= n || l > p {
		return analysis.GroundTruth{}, fmt.Errorf("cosparsity must satisfy 0 <= l < n and l <= p: l=%d, operator %dx%d", l, p, n)
	}
	if count <= 0 {
		return analysis.GroundTruth{}, fmt.Errorf("cosparse count must be > 0: %d", count)
	}

	data := mat.NewDense(n, count, nil)
	cosupports := make([][]int, count)
	for j := range count {
		cos := g.Subset(p, l)
		cosupports[j] = cos

		var basis *mat.Dense
		if l == 0 {
			basis = identity(n)
		} else {
			sub := mat.NewDense(l, n, nil)
			for k, row := range cos {
				sub.SetRow(k, mat.Row(nil, row, operator))
			}
			var err error
			basis, err = linalg.TrailingRightSingular(sub, n-l)
			if err != nil {
				return analysis.GroundTruth{}, err
			}
		}

		coef := mat.NewVecDense(n-l, nil)
		for i := range n - l {
			coef.SetVec(i, g.rng.NormFloat64())
		}
		var x mat.VecDense
		x.MulVec(basis.T(), coef)
		data.SetCol(j, x.RawVector().Data)
	}

	gamma := new(mat.Dense)
	gamma.Mul(operator, data)
	return analysis.GroundTruth{Data: data, Gamma: gamma, Cosupport: cosupports}, nil
}

// Noise returns n samples of N(0, sigma²).
func (g *Generator) Noise(sigma float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = sigma * g.rng.NormFloat64()
	}
	return out
}

// Measure returns a·data plus Gaussian noise with standard deviation sigma.
func (g *Generator) Measure(a, data mat.Matrix, sigma float64) (*mat.Dense, error) {
	_, an := a.Dims()
	dn, _ := data.Dims()
	if an != dn {
		return nil, fmt.Errorf("measure: operator has %d columns, data has %d rows", an, dn)
	}
	if sigma < 0 {
		return nil, fmt.Errorf("measure: noise sigma must be >= 0: %f", sigma)
	}
	out := new(mat.Dense)
	out.Mul(a, data)
	if sigma > 0 {
		r, c := out.Dims()
		for i := range r {
			for j := range c {
				out.Set(i, j, out.At(i, j)+sigma*g.rng.NormFloat64())
			}
		}
	}
	return out, nil
}

// Subset returns k distinct sorted indices from [0, n). It panics unless
// 0 <= k <= n.
func (g *Generator) Subset(n, k int) []int {
	s := g.rng.Perm(n)[:k]
	slices.Sort(s)
	return s
}

func identity(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := range n {
		out.Set(i, i, 1)
	}
	return out
}
