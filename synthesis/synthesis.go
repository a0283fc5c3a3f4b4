// Package synthesis provides solvers for synthesis-sparse problems
// Y ≈ D·C, usable on their own or behind analysis.BySynthesis.
package synthesis

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-cs/analysis"
	"github.com/cwbudde/algo-cs/internal/vec"
	"github.com/cwbudde/algo-cs/linop"
	"github.com/cwbudde/algo-cs/nesta"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMissingSupport is returned by Oracle when the ground truth carries
	// no support sets.
	ErrMissingSupport = errors.New("synthesis: oracle needs the true support")
	// ErrDimensionMismatch reports incompatible measurement and dictionary
	// shapes.
	ErrDimensionMismatch = errors.New("synthesis: dimension mismatch")
)

var (
	_ analysis.SynthesisSolver = Oracle{}
	_ analysis.SynthesisSolver = (*NESTA)(nil)
)

// Oracle solves least squares restricted to the true support of every
// instance. Coefficients off the support are zero.
type Oracle struct{}

// String names the solver.
func (Oracle) String() string { return "oracle" }

// Solve implements analysis.SynthesisSolver.
func (Oracle) Solve(measurements, dictionary *mat.Dense, truth analysis.SynthesisTruth) (*mat.Dense, error) {
	m, p := dictionary.Dims()
	ym, l := measurements.Dims()
	if ym != m {
		return nil, fmt.Errorf("%w: measurements have %d rows, dictionary has %d", ErrDimensionMismatch, ym, m)
	}
	if len(truth.Support) != l {
		return nil, fmt.Errorf("%w: %d support sets for %d instances", ErrMissingSupport, len(truth.Support), l)
	}

	out := mat.NewDense(p, l, nil)
	for j, support := range truth.Support {
		if len(support) == 0 {
			continue
		}
		if len(support) > m {
			return nil, fmt.Errorf("%w: support of instance %d has %d atoms, only %d equations", ErrDimensionMismatch, j, len(support), m)
		}

		sub := mat.NewDense(m, len(support), nil)
		for k, atom := range support {
			if atom < 0 || atom >= p {
				return nil, fmt.Errorf("%w: atom %d outside dictionary of %d columns", ErrDimensionMismatch, atom, p)
			}
			sub.SetCol(k, mat.Col(nil, atom, dictionary))
		}

		var qr mat.QR
		qr.Factorize(sub)
		var c mat.VecDense
		if err := qr.SolveVecTo(&c, false, measurements.ColView(j)); err != nil {
			return nil, fmt.Errorf("synthesis: instance %d: %w", j, err)
		}
		for k, atom := range support {
			out.Set(atom, j, c.AtVec(k))
		}
	}
	return out, nil
}

// NESTA recovers each instance by min ‖c‖₁ subject to ‖y − D·c‖ ≤ Delta,
// using the dictionary's SVD for the projections.
type NESTA struct {
	// Muf is the final smoothing parameter.
	Muf float64
	// Delta is the constraint radius.
	Delta float64
	// Options are passed to every run; XPlug and USV are overwritten.
	Options nesta.Options
	// Solver runs the continuation; nil uses nesta.NewSolver().
	Solver *nesta.Solver
	Logger *zap.Logger
}

// NewNESTA returns a NESTA synthesis solver with default options.
func NewNESTA(muf float64) *NESTA {
	opts := nesta.DefaultOptions()
	opts.Verbose = 0
	return &NESTA{Muf: muf, Options: opts}
}

// String names the solver.
func (s *NESTA) String() string { return fmt.Sprintf("nesta(muf=%g)", s.Muf) }

// Solve implements analysis.SynthesisSolver. Instances with all-zero
// measurements yield zero coefficients.
func (s *NESTA) Solve(measurements, dictionary *mat.Dense, _ analysis.SynthesisTruth) (*mat.Dense, error) {
	m, p := dictionary.Dims()
	ym, l := measurements.Dims()
	if ym != m {
		return nil, fmt.Errorf("%w: measurements have %d rows, dictionary has %d", ErrDimensionMismatch, ym, m)
	}

	usv, err := nesta.FactorizeUSV(dictionary)
	if err != nil {
		return nil, err
	}
	solver := s.Solver
	if solver == nil {
		solver = nesta.NewSolver(nesta.WithLogger(s.Logger))
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := linop.NewDense(dictionary)
	out := mat.NewDense(p, l, nil)
	for j := range l {
		y := mat.Col(nil, j, measurements)
		if vec.IsZero(y) {
			continue
		}

		opts := s.Options.Clone()
		opts.USV = usv
		opts.XPlug = nil

		res, err := solver.Solve(a, y, s.Muf, s.Delta, opts)
		if err != nil {
			return nil, fmt.Errorf("synthesis: instance %d: %w", j, err)
		}
		logger.Debug("instance recovered",
			zap.Int("instance", j),
			zap.Int("iterations", res.Iterations))
		out.SetCol(j, res.X)
	}
	return out, nil
}
