package nesta

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-cs/internal/vec"
	"github.com/cwbudde/algo-cs/linop"
	"gonum.org/v1/gonum/mat"
)

const (
	newtonMaxIter = 70
	newtonTol     = 1e-12
	// lambdaWarm scales the previous Lagrange multiplier to seed Newton.
	lambdaWarm = 0.999
)

// projector computes argmin_x Lmu/2·‖x − cp‖² subject to ‖b − A·x‖ ≤ delta.
type projector interface {
	// project receives cp and A·cp and returns the projected point with
	// its image under A.
	project(cp, acp []float64, lmu float64) (x, ax []float64)
}

// newProjector picks the projection for the configured operator
// knowledge.
func newProjector(a linop.Operator, b []float64, delta float64, opts Options) (projector, error) {
	switch {
	case opts.USV != nil:
		m, _ := a.Dims()
		if r, _ := opts.USV.Q.Dims(); r != m {
			return nil, fmt.Errorf("%w: USV.U has %d rows, A has %d", ErrDimensionMismatch, r, m)
		}
		return newUSVProjector(a, b, delta, opts.USV), nil
	case opts.AAtInv != nil:
		if delta > 0 {
			return nil, fmt.Errorf("%w: delta must be zero for non-projections without USV", ErrUnsupportedConfiguration)
		}
		aatb := opts.AAtInv.Apply(b)
		return &pinvProjector{a: a, b: b, aatinv: opts.AAtInv, atbAAtb: a.ApplyAdjoint(aatb)}, nil
	}
	return &isometryProjector{a: a, b: b, delta: delta, atb: a.ApplyAdjoint(b)}, nil
}

// isometryProjector handles A·Aᵗ = I.
type isometryProjector struct {
	a     linop.Operator
	b     []float64
	delta float64
	atb   []float64
}

func (p *isometryProjector) project(cp, acp []float64, lmu float64) ([]float64, []float64) {
	if p.delta == 0 {
		// x = cp + Aᵗ(b − A·cp), A·x = b
		x := vec.Combine(1, cp, 1, p.atb)
		vec.Axpy(x, -1, p.a.ApplyAdjoint(acp))
		return x, vec.Clone(p.b)
	}

	lambda := math.Max(0, lmu*(vec.Norm(vec.Sub(p.b, acp))/p.delta-1))
	gamma := lambda / (lambda + lmu)

	x := vec.Combine(lambda/lmu*(1-gamma), p.atb, 1, cp)
	vec.Axpy(x, -gamma, p.a.ApplyAdjoint(acp))

	ax := vec.Combine(lambda/lmu*(1-gamma), p.b, 1-gamma, acp)
	return x, ax
}

// pinvProjector handles the equality constraint A·x = b with a supplied
// (A·Aᵗ)⁻¹.
type pinvProjector struct {
	a       linop.Operator
	b       []float64
	aatinv  linop.Operator
	atbAAtb []float64
}

func (p *pinvProjector) project(cp, acp []float64, _ float64) ([]float64, []float64) {
	x := vec.Combine(1, p.atbAAtb, 1, cp)
	vec.Axpy(x, -1, p.a.ApplyAdjoint(p.aatinv.Apply(acp)))
	return x, vec.Clone(p.b)
}

// usvProjector solves the inequality-constrained projection through the
// factorization A = Q·diag(S)·Vᵗ. The multiplier is found by Newton's
// method on the secular equation Σ(r_i/(1+λ·s_i²))² = δ².
type usvProjector struct {
	a      linop.Operator
	b      []float64
	delta  float64
	q      *mat.Dense
	s2     []float64
	qtb    []float64
	lambda float64
}

func newUSVProjector(a linop.Operator, b []float64, delta float64, usv *USV) *usvProjector {
	s2 := make([]float64, len(usv.S))
	for i, s := range usv.S {
		s2[i] = s * s
	}
	return &usvProjector{
		a:     a,
		b:     b,
		delta: delta,
		q:     usv.Q,
		s2:    s2,
		qtb:   mulQt(usv.Q, b),
	}
}

func (p *usvProjector) project(cp, acp []float64, _ float64) ([]float64, []float64) {
	if p.delta > 0 && vec.Norm(vec.Sub(acp, p.b)) <= p.delta {
		return vec.Clone(cp), vec.Clone(acp)
	}

	r := vec.Sub(p.qtb, mulQt(p.q, acp))

	var coef []float64
	if p.delta == 0 {
		// λ → ∞: λr/(1+λs²) → r/s²
		coef = make([]float64, len(r))
		for i := range r {
			coef[i] = r[i] / p.s2[i]
		}
	} else {
		p.lambda = p.secular(r, lambdaWarm*p.lambda)
		coef = make([]float64, len(r))
		for i := range r {
			coef[i] = p.lambda * r[i] / (1 + p.lambda*p.s2[i])
		}
	}

	x := vec.Combine(1, cp, 1, p.a.ApplyAdjoint(mulQ(p.q, coef)))
	return x, p.a.Apply(x)
}

// secular runs Newton's method for λ ≥ 0 from the warm start lambda.
func (p *usvProjector) secular(r []float64, lambda float64) float64 {
	d2 := p.delta * p.delta
	for range newtonMaxIter {
		var f, df float64
		for i, ri := range r {
			den := 1 + lambda*p.s2[i]
			t := ri / den
			f += t * t
			df -= 2 * t * t * p.s2[i] / den
		}
		f -= d2
		if df == 0 {
			break
		}
		next := math.Max(0, lambda-f/df)
		if math.Abs(next-lambda) <= newtonTol*math.Max(1, lambda) {
			return next
		}
		lambda = next
	}
	return lambda
}

func mulQt(q *mat.Dense, x []float64) []float64 {
	r, c := q.Dims()
	out := mat.NewVecDense(c, nil)
	out.MulVec(q.T(), mat.NewVecDense(r, vec.Clone(x)))
	return out.RawVector().Data
}

func mulQ(q *mat.Dense, x []float64) []float64 {
	r, c := q.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(q, mat.NewVecDense(c, vec.Clone(x)))
	return out.RawVector().Data
}
