package analysis

import "errors"

var (
	// ErrNoNullSpace is returned when the analysis operator has no more
	// rows than columns, so Ω⁺ has a trivial null space.
	ErrNoNullSpace = errors.New("analysis: operator has no null space (rows must exceed columns)")
	// ErrDimensionMismatch reports incompatible measurement, acquisition
	// and operator shapes.
	ErrDimensionMismatch = errors.New("analysis: dimension mismatch")
	// ErrInvalidCosupport reports a cosupport set with out-of-range or
	// repeated indices, or a count that does not match the instances.
	ErrInvalidCosupport = errors.New("analysis: invalid cosupport")
	// ErrNilSolver is returned by New without a synthesis solver.
	ErrNilSolver = errors.New("analysis: nil synthesis solver")
	// ErrUnknownMultiplierMode is returned for a mode other than
	// MultiplierValue and MultiplierNormalizedRow.
	ErrUnknownMultiplierMode = errors.New("analysis: unknown multiplier mode")
)
