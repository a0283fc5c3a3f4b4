package nesta

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-cs/internal/vec"
	"github.com/cwbudde/algo-cs/linop"
	"go.uber.org/zap"
)

// initialTolVar anchors the tolerance schedule of the first stage.
const initialTolVar = 0.1

// Residual is one inner-iteration record.
type Residual struct {
	// Norm is ‖b − A·x_k‖.
	Norm float64
	// Objective is the smoothed objective f_mu(x_k).
	Objective float64
}

// Stage is the outcome of one inner solve.
type Stage struct {
	X          []float64
	Iterations int
	Residuals  []Residual
	Output     [][]float64
	Options    Options
}

// InnerSolver solves one continuation stage, i.e. the problem smoothed
// with parameter mu, starting from opts.XPlug with tolerance opts.TolVar.
type InnerSolver interface {
	Solve(a linop.Operator, b []float64, mu, delta float64, opts Options) (Stage, error)
}

// InnerSolverFunc adapts a function to InnerSolver.
type InnerSolverFunc func(a linop.Operator, b []float64, mu, delta float64, opts Options) (Stage, error)

// Solve calls f.
func (f InnerSolverFunc) Solve(a linop.Operator, b []float64, mu, delta float64, opts Options) (Stage, error) {
	return f(a, b, mu, delta, opts)
}

// StageParams records the parameters a stage ran with.
type StageParams struct {
	Mu         float64
	TolVar     float64
	Iterations int
}

// Result is the outcome of a NESTA run.
type Result struct {
	X          []float64
	Iterations int
	// Residuals and Output concatenate the per-iteration records of all
	// stages in order.
	Residuals []Residual
	Output    [][]float64
	// Options is the option set returned by the last inner solve.
	Options  Options
	Mu0      float64
	Schedule []StageParams
	// Warnings holds non-fatal conditions (ErrNormEstimationUnreliable,
	// ErrPrecision).
	Warnings []error
}

// Solver runs the NESTA continuation.
type Solver struct {
	inner  InnerSolver
	rng    *rand.Rand
	logger *zap.Logger
}

// SolverOption configures a Solver.
type SolverOption func(*Solver)

// WithInner replaces the inner solver.
func WithInner(inner InnerSolver) SolverOption {
	return func(s *Solver) {
		if inner != nil {
			s.inner = inner
		}
	}
}

// WithRand sets the random source for the isometry and orthogonality
// probes.
func WithRand(rng *rand.Rand) SolverOption {
	return func(s *Solver) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSeed seeds the probe random source.
func WithSeed(seed int64) SolverOption {
	return func(s *Solver) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger for stage progress and warnings.
func WithLogger(logger *zap.Logger) SolverOption {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSolver returns a Solver using the reference Nesterov inner solver, a
// seeded random source and a no-op logger unless configured otherwise.
func NewSolver(opts ...SolverOption) *Solver {
	s := &Solver{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(1))
	}
	if s.inner == nil {
		s.inner = NewNesterov(s.logger)
	}
	return s
}

// Solve runs NESTA with a default Solver.
func Solve(a linop.Operator, b []float64, muf, delta float64, opts Options) (Result, error) {
	return NewSolver().Solve(a, b, muf, delta, opts)
}

// Solve recovers x from b ≈ A·x by continuation down to smoothing
// parameter muf under the constraint ‖b − A·x‖ ≤ delta.
//
// The schedule has opts.MaxIntIter stages with
//
//	mu_k     = mu0 · (muf/mu0)^(k/K)
//	TolVar_k = 0.1 · (TolVar/0.1)^(k/K)
//
// so the last stage runs exactly at muf and the target TolVar. A muf above
// mu0 or a target TolVar of at least 0.1 is still run as given, with an
// ErrScheduleNotDecreasing warning. Each stage
// receives its own copy of the options with TolVar and XPlug set; the
// caller's opts are never modified. Errors from the inner solver are
// returned as is.
func (s *Solver) Solve(a linop.Operator, b []float64, muf, delta float64, opts Options) (Result, error) {
	if !(muf > 0) {
		return Result{}, fmt.Errorf("%w: muf must be positive, got %v", ErrInvalidArgument, muf)
	}
	if !(delta >= 0) {
		return Result{}, fmt.Errorf("%w: delta must be non-negative, got %v", ErrInvalidArgument, delta)
	}
	if opts.MaxIntIter < 1 {
		return Result{}, fmt.Errorf("%w: %s is %d, should be at least 1", ErrOutOfBounds, OptMaxIntIter, opts.MaxIntIter)
	}
	if !(opts.TolVar > 0) {
		return Result{}, fmt.Errorf("%w: %s is %v, should be positive", ErrOutOfBounds, OptTolVar, opts.TolVar)
	}
	if m, _ := a.Dims(); len(b) != m {
		return Result{}, fmt.Errorf("%w: b has %d entries, A has %d rows", ErrDimensionMismatch, len(b), m)
	}

	opts = opts.Clone()

	if opts.AAtInv == nil && opts.USV == nil {
		if err := CheckProjection(a, s.rng); err != nil {
			return Result{}, err
		}
	}

	guess, err := InitialGuess(a, b, delta, opts)
	if err != nil {
		return Result{}, err
	}

	var warnings []error
	if opts.U != nil && opts.NormU == 0 {
		_, n := a.Dims()
		u, err := opts.analysis(n)
		if err != nil {
			return Result{}, err
		}
		normU, warns, err := EstimateNorm(u, s.rng)
		if err != nil {
			return Result{}, err
		}
		for _, w := range warns {
			s.logger.Warn("norm of U", zap.Error(w), zap.Float64("normU", normU))
		}
		warnings = append(warnings, warns...)
		opts.NormU = normU
	}

	k := opts.MaxIntIter
	target := opts.TolVar
	gamma := math.Pow(muf/guess.Mu0, 1/float64(k))
	gammat := math.Pow(target/initialTolVar, 1/float64(k))

	if gamma >= 1 || gammat >= 1 {
		w := fmt.Errorf("%w: mu %.4g -> %.4g, TolVar %.4g -> %.4g",
			ErrScheduleNotDecreasing, guess.Mu0, muf, initialTolVar, target)
		s.logger.Warn("continuation schedule", zap.Error(w))
		warnings = append(warnings, w)
	}

	res := Result{
		Mu0:      guess.Mu0,
		Schedule: make([]StageParams, 0, k),
		Warnings: warnings,
	}

	mu := guess.Mu0
	tolVar := initialTolVar
	xplug := guess.XPlug
	var last Stage

	for stage := range k {
		mu *= gamma
		tolVar *= gammat
		if stage == k-1 {
			mu, tolVar = muf, target
		}

		stageOpts := opts.Clone()
		stageOpts.TolVar = tolVar
		stageOpts.XPlug = vec.Clone(xplug)

		if opts.Verbose > 0 {
			s.logger.Info("beginning minimization",
				zap.String("type", opts.TypeMin),
				zap.Int("stage", stage+1),
				zap.Float64("mu", mu),
				zap.Float64("tolVar", tolVar))
		}

		last, err = s.inner.Solve(a, b, mu, delta, stageOpts)
		if err != nil {
			s.logger.Debug("inner solve failed", zap.Int("stage", stage+1), zap.Error(err))
			return Result{}, err
		}
		if last.X == nil {
			return Result{}, errors.New("nesta: inner solver returned no iterate")
		}

		xplug = vec.Clone(last.X)
		res.Iterations += last.Iterations
		res.Residuals = append(res.Residuals, last.Residuals...)
		res.Output = append(res.Output, last.Output...)
		res.Schedule = append(res.Schedule, StageParams{Mu: mu, TolVar: tolVar, Iterations: last.Iterations})
	}

	res.X = last.X
	res.Options = last.Options.Clone()
	return res, nil
}
