package analysis

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/algo-cs/internal/linalg"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// MultiplierMode selects how the null-space multiplier is derived from the
// base value.
type MultiplierMode string

const (
	// MultiplierValue uses the base value as is.
	MultiplierValue MultiplierMode = "value"
	// MultiplierNormalizedRow scales the base value by the ratio of the
	// per-row Frobenius norms of A·Ω⁺ and N.
	MultiplierNormalizedRow MultiplierMode = "normalized_row"
)

// GroundTruth describes the analysis-domain reference of a batch of
// instances. Data and Gamma may be nil when unknown.
type GroundTruth struct {
	// Data holds the signals as columns (n×L).
	Data *mat.Dense
	// Gamma holds Ω·x per instance (p×L).
	Gamma *mat.Dense
	// Cosupport lists, per instance, the rows of Ω on which Ω·x vanishes.
	Cosupport [][]int
}

// SynthesisTruth is GroundTruth mapped to the reduced problem.
type SynthesisTruth struct {
	// Data is GroundTruth.Data padded with p−n zero rows.
	Data  *mat.Dense
	Gamma *mat.Dense
	// Support lists, per instance, the sorted complement of the cosupport
	// in [0, p).
	Support [][]int
}

// SynthesisSolver recovers coefficients C (columns per instance) from
// measurements ≈ dictionary·C.
type SynthesisSolver interface {
	Solve(measurements, dictionary *mat.Dense, truth SynthesisTruth) (*mat.Dense, error)
}

// SynthesisSolverFunc adapts a function to SynthesisSolver.
type SynthesisSolverFunc func(measurements, dictionary *mat.Dense, truth SynthesisTruth) (*mat.Dense, error)

// Solve calls f.
func (f SynthesisSolverFunc) Solve(measurements, dictionary *mat.Dense, truth SynthesisTruth) (*mat.Dense, error) {
	return f(measurements, dictionary, truth)
}

// Reduction is the synthesis-form problem built from an analysis problem.
type Reduction struct {
	// Dictionary is D̃ = [A·Ω⁺; λ·N], (m+p−n)×p.
	Dictionary *mat.Dense
	// Measurements is Ỹ = [Y; 0], (m+p−n)×L.
	Measurements *mat.Dense
	// Pinv is Ω⁺, n×p.
	Pinv *mat.Dense
	// NullSpace is N, (p−n)×p with orthonormal rows.
	NullSpace  *mat.Dense
	Multiplier float64
	Truth      SynthesisTruth
}

// Option configures a BySynthesis.
type Option func(*BySynthesis)

// WithMultiplier sets the base multiplier c. The default is 1.
func WithMultiplier(c float64) Option {
	return func(b *BySynthesis) {
		b.multiplier = c
	}
}

// WithMode sets the multiplier mode. The default is
// MultiplierNormalizedRow.
func WithMode(mode MultiplierMode) Option {
	return func(b *BySynthesis) {
		b.mode = mode
	}
}

// WithLogger sets a logger for the reduction details.
func WithLogger(logger *zap.Logger) Option {
	return func(b *BySynthesis) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// BySynthesis solves analysis-sparse problems through a synthesis solver.
type BySynthesis struct {
	solver     SynthesisSolver
	multiplier float64
	mode       MultiplierMode
	logger     *zap.Logger
}

// New returns a BySynthesis delegating to solver.
func New(solver SynthesisSolver, opts ...Option) (*BySynthesis, error) {
	if solver == nil {
		return nil, ErrNilSolver
	}
	b := &BySynthesis{
		solver:     solver,
		multiplier: 1,
		mode:       MultiplierNormalizedRow,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	switch b.mode {
	case MultiplierValue, MultiplierNormalizedRow:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMultiplierMode, b.mode)
	}
	return b, nil
}

// String describes the solver and its base multiplier.
func (b *BySynthesis) String() string {
	name := fmt.Sprintf("%T", b.solver)
	if s, ok := b.solver.(fmt.Stringer); ok {
		name = s.String()
	}
	return "AbS (" + name + ", " + strconv.FormatFloat(b.multiplier, 'g', -1, 64) + ")"
}

// Solve recovers the signals (n×L) whose measurements through acquisition
// (m×n) are the columns of measurements (m×L). A single 1×m row is taken
// as one instance. The analysis operator (p×n) must have p > n.
func (b *BySynthesis) Solve(measurements, acquisition, operator mat.Matrix, truth GroundTruth) (*mat.Dense, error) {
	red, err := b.Reduce(measurements, acquisition, operator, truth)
	if err != nil {
		return nil, err
	}
	return b.SolveReduced(red)
}

// SolveReduced runs the synthesis solver on a reduction from Reduce and
// maps the coefficients back to signals.
func (b *BySynthesis) SolveReduced(red Reduction) (*mat.Dense, error) {
	coeffs, err := b.solver.Solve(red.Measurements, red.Dictionary, red.Truth)
	if err != nil {
		return nil, err
	}
	_, p := red.Pinv.Dims()
	_, l := red.Measurements.Dims()
	if r, c := coeffs.Dims(); r != p || c != l {
		return nil, fmt.Errorf("%w: synthesis solver returned %dx%d coefficients, want %dx%d", ErrDimensionMismatch, r, c, p, l)
	}

	var out mat.Dense
	out.Mul(red.Pinv, coeffs)
	return &out, nil
}

// Reduce builds the synthesis-form problem without solving it.
func (b *BySynthesis) Reduce(measurements, acquisition, operator mat.Matrix, truth GroundTruth) (Reduction, error) {
	p, n := operator.Dims()
	if p <= n {
		return Reduction{}, fmt.Errorf("%w: operator is %dx%d", ErrNoNullSpace, p, n)
	}
	m, an := acquisition.Dims()
	if an != n {
		return Reduction{}, fmt.Errorf("%w: acquisition has %d columns, operator has %d", ErrDimensionMismatch, an, n)
	}

	y := asColumns(measurements, m)
	ym, l := y.Dims()
	if ym != m {
		return Reduction{}, fmt.Errorf("%w: measurements have %d rows, acquisition has %d", ErrDimensionMismatch, ym, m)
	}

	pinv, null, ap, err := nullSpace(acquisition, operator)
	if err != nil {
		return Reduction{}, err
	}
	lambda := b.multiplierFrom(ap, null, m)

	var scaled mat.Dense
	scaled.Scale(lambda, null)
	dict, err := linalg.Stack(ap, &scaled)
	if err != nil {
		return Reduction{}, err
	}
	ytilde, err := linalg.Stack(y, mat.NewDense(p-n, l, nil))
	if err != nil {
		return Reduction{}, err
	}

	st, err := mapTruth(truth, n, p, l)
	if err != nil {
		return Reduction{}, err
	}

	dr, dc := dict.Dims()
	b.logger.Debug("analysis by synthesis",
		zap.String("mode", string(b.mode)),
		zap.Float64("multiplier", lambda),
		zap.Int("dictRows", dr),
		zap.Int("dictCols", dc),
		zap.Int("instances", l))

	return Reduction{
		Dictionary:   dict,
		Measurements: ytilde,
		Pinv:         pinv,
		NullSpace:    null,
		Multiplier:   lambda,
		Truth:        st,
	}, nil
}

// Multiplier returns λ for the given acquisition and analysis operators.
func (b *BySynthesis) Multiplier(acquisition, operator mat.Matrix) (float64, error) {
	p, n := operator.Dims()
	if p <= n {
		return 0, fmt.Errorf("%w: operator is %dx%d", ErrNoNullSpace, p, n)
	}
	m, an := acquisition.Dims()
	if an != n {
		return 0, fmt.Errorf("%w: acquisition has %d columns, operator has %d", ErrDimensionMismatch, an, n)
	}
	if b.mode == MultiplierValue {
		return b.multiplier, nil
	}
	_, null, ap, err := nullSpace(acquisition, operator)
	if err != nil {
		return 0, err
	}
	return b.multiplierFrom(ap, null, m), nil
}

func (b *BySynthesis) multiplierFrom(ap, null *mat.Dense, m int) float64 {
	if b.mode == MultiplierValue {
		return b.multiplier
	}
	k, _ := null.Dims()
	return b.multiplier * (linalg.Frobenius(ap) / float64(m)) / (linalg.Frobenius(null) / float64(k))
}

// nullSpace returns Ω⁺, the null-space basis N of Ω⁺ and A·Ω⁺.
func nullSpace(acquisition, operator mat.Matrix) (pinv, null, ap *mat.Dense, err error) {
	p, n := operator.Dims()
	pinv, err = linalg.Pinv(operator)
	if err != nil {
		return nil, nil, nil, err
	}
	null, err = linalg.TrailingRightSingular(pinv, p-n)
	if err != nil {
		return nil, nil, nil, err
	}
	ap = new(mat.Dense)
	ap.Mul(acquisition, pinv)
	return pinv, null, ap, nil
}

// asColumns returns measurements with instances as columns. A 1×m row is
// transposed into one m×1 instance.
func asColumns(measurements mat.Matrix, m int) *mat.Dense {
	r, c := measurements.Dims()
	if r == 1 && c == m && m > 1 {
		return mat.DenseCopyOf(measurements.T())
	}
	return mat.DenseCopyOf(measurements)
}

func mapTruth(truth GroundTruth, n, p, l int) (SynthesisTruth, error) {
	st := SynthesisTruth{Gamma: truth.Gamma}

	if truth.Data != nil {
		r, c := truth.Data.Dims()
		if r != n || c != l {
			return SynthesisTruth{}, fmt.Errorf("%w: ground-truth data is %dx%d, want %dx%d", ErrDimensionMismatch, r, c, n, l)
		}
		data, err := linalg.Stack(truth.Data, mat.NewDense(p-n, l, nil))
		if err != nil {
			return SynthesisTruth{}, err
		}
		st.Data = data
	}

	if truth.Cosupport == nil {
		return st, nil
	}
	if len(truth.Cosupport) != l {
		return SynthesisTruth{}, fmt.Errorf("%w: %d cosupport sets for %d instances", ErrInvalidCosupport, len(truth.Cosupport), l)
	}
	st.Support = make([][]int, l)
	for i, cos := range truth.Cosupport {
		s, err := Support(cos, p)
		if err != nil {
			return SynthesisTruth{}, fmt.Errorf("instance %d: %w", i, err)
		}
		st.Support[i] = s
	}
	return st, nil
}

// Support returns the sorted complement of cosupport in [0, rows).
func Support(cosupport []int, rows int) ([]int, error) {
	in := make([]bool, rows)
	for _, i := range cosupport {
		if i < 0 || i >= rows {
			return nil, fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidCosupport, i, rows)
		}
		if in[i] {
			return nil, fmt.Errorf("%w: index %d repeated", ErrInvalidCosupport, i)
		}
		in[i] = true
	}
	out := make([]int, 0, rows-len(cosupport))
	for i, skip := range in {
		if !skip {
			out = append(out, i)
		}
	}
	return out, nil
}
