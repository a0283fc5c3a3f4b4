package nesta

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-cs/internal/vec"
	"github.com/cwbudde/algo-cs/linop"
	"go.uber.org/zap"
)

const (
	// fmeanLen is the number of recent objective values the relative
	// change test averages over.
	fmeanLen = 10
	// refreshEvery is the period at which A·x_k is recomputed instead of
	// being combined from A·y_k and A·z_k.
	refreshEvery = 10
	realMin      = 2.2250738585072014e-308
)

// Nesterov is the reference inner solver: Nesterov's accelerated method
// applied to the mu-smoothed ℓ1 norm of U·x over the constraint set
// ‖b − A·x‖ ≤ delta.
type Nesterov struct {
	logger *zap.Logger
}

// NewNesterov returns the reference inner solver. A nil logger discards
// output.
func NewNesterov(logger *zap.Logger) *Nesterov {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Nesterov{logger: logger}
}

// Solve runs one continuation stage.
func (s *Nesterov) Solve(a linop.Operator, b []float64, mu, delta float64, opts Options) (Stage, error) {
	if !(mu > 0) {
		return Stage{}, fmt.Errorf("%w: mu must be positive, got %v", ErrInvalidArgument, mu)
	}
	if _, err := opts.isL1(); err != nil {
		return Stage{}, err
	}
	m, n := a.Dims()
	if len(b) != m {
		return Stage{}, fmt.Errorf("%w: b has %d entries, A has %d rows", ErrDimensionMismatch, len(b), m)
	}
	if len(opts.XPlug) != n {
		return Stage{}, fmt.Errorf("%w: xplug has %d entries, A has %d columns", ErrDimensionMismatch, len(opts.XPlug), n)
	}
	u, err := opts.analysis(n)
	if err != nil {
		return Stage{}, err
	}
	normU := opts.NormU
	if normU == 0 {
		normU = 1
	}
	proj, err := newProjector(a, b, delta, opts)
	if err != nil {
		return Stage{}, err
	}

	lmu := normU * normU / mu
	maxIter := opts.MaxIter
	if maxIter < 1 {
		maxIter = DefaultOptions().MaxIter
	}

	xplug := opts.XPlug
	xk := vec.Clone(xplug)
	axk := a.Apply(xk)
	wk := make([]float64, n)

	fmean := []float64{realMin / fmeanLen}
	ok := false

	st := Stage{
		Residuals: make([]Residual, 0, min(maxIter, 1024)),
	}

	k := 0
	for ; k < maxIter; k++ {
		df, fx := smoothL1(u, xk, mu)

		qp := math.Abs(fx-mean(fmean)) / mean(fmean)

		// y_k: gradient step projected onto the constraint set.
		cp := vec.Combine(1, xk, -1/lmu, df)
		acp := vec.Combine(1, axk, -1/lmu, a.Apply(df))
		yk, ayk := proj.project(cp, acp, lmu)

		// z_k: weighted gradient history around the prox center.
		wk = vec.Combine(1, wk, 0.5*float64(k+1), df)
		cp = vec.Combine(1, xplug, -1/lmu, wk)
		acp = a.Apply(cp)
		zk, azk := proj.project(cp, acp, lmu)

		tauk := 2 / float64(k+3)
		xold := xk
		xk = vec.Combine(tauk, zk, 1-tauk, yk)
		if k%refreshEvery == 0 {
			axk = a.Apply(xk)
		} else {
			axk = vec.Combine(tauk, azk, 1-tauk, ayk)
		}

		st.Residuals = append(st.Residuals, Residual{
			Norm:      vec.Norm(vec.Sub(b, axk)),
			Objective: fx,
		})
		if opts.OutFcn != nil {
			st.Output = append(st.Output, opts.OutFcn(vec.Clone(xk)))
		}

		if opts.Verbose > 0 && k%opts.Verbose == 0 {
			fields := []zap.Field{
				zap.Int("iter", k+1),
				zap.Float64("fmu", fx),
				zap.Float64("relChange", qp),
				zap.Float64("residual", st.Residuals[k].Norm),
			}
			if opts.ErrFcn != nil {
				fields = append(fields, zap.Float64("error", opts.ErrFcn(xk)))
			}
			s.logger.Debug("iteration", fields...)
		}

		var done bool
		switch opts.StopTest {
		case StopIterateChange:
			done = vec.MaxAbs(vec.Sub(xk, xold)) < opts.TolVar
		default:
			if qp <= opts.TolVar {
				done = ok
				ok = true
			}
		}
		if done {
			break
		}

		fmean = append([]float64{fx}, fmean...)
		if len(fmean) > fmeanLen {
			fmean = fmean[:fmeanLen]
		}
	}

	st.X = xk
	st.Iterations = min(k+1, maxIter)
	st.Options = opts.Clone()
	return st, nil
}

// smoothL1 returns the gradient and value of the Huber-smoothed ℓ1 norm
// f_mu(x) = max_{‖u‖∞≤1} ⟨u, U·x⟩ − mu/2·‖u‖².
func smoothL1(u linop.Operator, x []float64, mu float64) ([]float64, float64) {
	ux := u.Apply(x)
	uk := make([]float64, len(ux))
	for i, v := range ux {
		uk[i] = v / math.Max(mu, math.Abs(v))
	}
	fx := vec.Dot(uk, ux) - mu/2*vec.Dot(uk, uk)
	return u.ApplyAdjoint(uk), fx
}

func mean(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}
