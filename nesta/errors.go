package nesta

import "errors"

// Errors returned by the NESTA driver and option resolution.
var (
	ErrInvalidOperator          = errors.New("nesta: invalid measurement operator")
	ErrOutOfBounds              = errors.New("nesta: option out of bounds")
	ErrUnknownOption            = errors.New("nesta: unknown option")
	ErrInvalidOption            = errors.New("nesta: invalid option value")
	ErrUnsupportedConfiguration = errors.New("nesta: unsupported configuration")
	ErrDimensionMismatch        = errors.New("nesta: dimension mismatch")
	ErrInvalidArgument          = errors.New("nesta: invalid argument")
	ErrDegenerateProblem        = errors.New("nesta: degenerate problem")
)

// Warnings. These are never returned as errors; they are logged and
// collected in Result.Warnings.
var (
	ErrNormEstimationUnreliable = errors.New("nesta: norm estimate may be inaccurate")
	ErrPrecision                = errors.New("nesta: expensive norm computation")
	ErrScheduleNotDecreasing    = errors.New("nesta: continuation schedule does not decrease")
)
