package nesta

import (
	"fmt"

	"github.com/cwbudde/algo-cs/internal/vec"
	"github.com/cwbudde/algo-cs/linop"
)

// xplugZeroNorm is the norm below which a supplied xplug is treated as
// absent when computing the reference point.
const xplugZeroNorm = 1e-12

// Guess is the starting point of a NESTA run.
type Guess struct {
	// XPlug is the initial iterate and prox center of the first stage.
	XPlug []float64
	// XRef is the least-squares point Aᵗ(AAᵗ)⁻¹b, or the supplied xplug.
	XRef []float64
	// UXRef is U applied to XRef.
	UXRef []float64
	// Mu0 is the calibrated initial smoothing parameter.
	Mu0 float64
}

// InitialGuess computes the starting iterate and mu0 for measurements b.
//
// When opts.USV is given without opts.AAtInv, (AAᵗ)⁻¹ is derived from the
// factorization. A pseudo-inverse without a factorization only supports
// delta == 0. A supplied xplug with norm ≥ 1e-12 doubles as the reference
// point; otherwise x_ref = Aᵗ(AAᵗ)⁻¹b (Aᵗb for projections) and a missing
// xplug is set to it.
func InitialGuess(a linop.Operator, b []float64, delta float64, opts Options) (Guess, error) {
	m, n := a.Dims()
	if len(b) != m {
		return Guess{}, fmt.Errorf("%w: b has %d entries, A has %d rows", ErrDimensionMismatch, len(b), m)
	}
	if opts.XPlug != nil && len(opts.XPlug) != n {
		return Guess{}, fmt.Errorf("%w: xplug has %d entries, A has %d columns", ErrDimensionMismatch, len(opts.XPlug), n)
	}

	aatinv := opts.AAtInv
	if opts.USV != nil && aatinv == nil {
		aatinv = opts.USV.AAtInv()
	}
	if aatinv != nil && delta > 0 && opts.USV == nil {
		return Guess{}, fmt.Errorf("%w: delta must be zero for non-projections without USV", ErrUnsupportedConfiguration)
	}

	xplug := vec.Clone(opts.XPlug)
	var xref []float64
	if xplug == nil || vec.Norm(xplug) < xplugZeroNorm {
		if aatinv != nil {
			xref = a.ApplyAdjoint(aatinv.Apply(b))
		} else {
			xref = a.ApplyAdjoint(b)
		}
		if xplug == nil {
			xplug = vec.Clone(xref)
		}
	} else {
		xref = vec.Clone(xplug)
	}

	u, err := opts.analysis(n)
	if err != nil {
		return Guess{}, err
	}
	uxref := u.Apply(xref)

	if _, err := opts.isL1(); err != nil {
		return Guess{}, err
	}
	mu0 := 0.9 * vec.MaxAbs(uxref)
	if mu0 == 0 {
		return Guess{}, fmt.Errorf("%w: U·x_ref is zero, cannot calibrate mu0", ErrDegenerateProblem)
	}

	return Guess{XPlug: xplug, XRef: xref, UXRef: uxref, Mu0: mu0}, nil
}
