package nesta

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/cwbudde/algo-cs/linop"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/mat"
)

// Canonical option names accepted by Resolve. Lookups are case-insensitive.
const (
	OptVerbose    = "Verbose"
	OptMaxIntIter = "MaxIntIter"
	OptTypeMin    = "TypeMin"
	OptTolVar     = "TolVar"
	OptU          = "U"
	OptUt         = "Ut"
	OptXPlug      = "xplug"
	OptNormU      = "normU"
	OptAAtInv     = "AAtinv"
	OptUSV        = "USV"
	OptMaxIter    = "maxiter"
	OptStopTest   = "stopTest"
	OptOutFcn     = "outFcn"
	OptErrFcn     = "errFcn"
)

var canonicalNames = []string{
	OptVerbose, OptMaxIntIter, OptTypeMin, OptTolVar, OptU, OptUt, OptXPlug,
	OptNormU, OptAAtInv, OptUSV, OptMaxIter, OptStopTest, OptOutFcn, OptErrFcn,
}

// Minimization types.
const (
	TypeL1 = "L1"
	TypeTV = "TV"
)

// Stopping tests of the inner solver.
const (
	// StopRelativeChange stops when the relative change of the smoothed
	// objective against its recent mean drops below TolVar.
	StopRelativeChange = 1
	// StopIterateChange stops when ‖x_k − x_{k−1}‖∞ drops below TolVar.
	StopIterateChange = 2
)

// Options is the canonical NESTA option set.
//
// The zero values of the optional fields mean "not supplied": a nil U is
// the identity, NormU == 0 asks the driver to compute ‖U‖, a nil XPlug
// starts from the least-squares point.
type Options struct {
	// Verbose > 0 logs every stage; the inner solver logs every Verbose-th
	// iteration at debug level.
	Verbose    int
	MaxIntIter int
	TypeMin    string
	// TolVar is the target tolerance reached at the last stage.
	TolVar float64

	U  linop.Operator
	Ut linop.Operator

	XPlug  []float64
	NormU  float64
	AAtInv linop.Operator
	USV    *USV

	MaxIter  int
	StopTest int
	// OutFcn, when set, is evaluated at every inner iteration and its
	// result is stored as one diagnostic row.
	OutFcn func(x []float64) []float64
	// ErrFcn, when set, is evaluated and logged with verbose iterations.
	ErrFcn func(x []float64) float64

	userSet map[string]bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Verbose:    1,
		MaxIntIter: 5,
		TypeMin:    TypeL1,
		TolVar:     1e-5,
		MaxIter:    10000,
		StopTest:   StopRelativeChange,
	}
}

// Clone returns a copy of o that shares operators but no slices or maps.
func (o Options) Clone() Options {
	c := o
	c.XPlug = cloneVec(o.XPlug)
	if o.userSet != nil {
		c.userSet = maps.Clone(o.userSet)
	}
	return c
}

// IsUserSet reports whether the named option was supplied by the caller
// when the options were produced by Resolve. Options built directly in Go
// report U, xplug, normU, AAtinv and USV as user-set when non-zero.
func (o Options) IsUserSet(name string) bool {
	canon, ok := lookupCanonical(name)
	if !ok {
		return false
	}
	if o.userSet != nil {
		return o.userSet[canon]
	}
	switch canon {
	case OptU:
		return o.U != nil
	case OptUt:
		return o.Ut != nil
	case OptXPlug:
		return o.XPlug != nil
	case OptNormU:
		return o.NormU != 0
	case OptAAtInv:
		return o.AAtInv != nil
	case OptUSV:
		return o.USV != nil
	}
	return false
}

// analysis returns the U operator for signals of length n, applying the Ut
// override when present.
func (o Options) analysis(n int) (linop.Operator, error) {
	if o.U == nil {
		if o.Ut != nil {
			return nil, fmt.Errorf("%w: Ut given without U", ErrInvalidOption)
		}
		return linop.Identity(n), nil
	}
	if _, un := o.U.Dims(); un != n {
		return nil, fmt.Errorf("%w: U has %d columns, signal has %d entries", ErrDimensionMismatch, un, n)
	}
	if o.Ut == nil {
		return o.U, nil
	}
	u, err := linop.Pair(o.U, o.Ut)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}
	return u, nil
}

func (o Options) isL1() (bool, error) {
	switch strings.ToUpper(o.TypeMin) {
	case TypeL1:
		return true, nil
	case TypeTV:
		return false, fmt.Errorf("%w: TV minimization is not implemented", ErrUnsupportedConfiguration)
	}
	return false, fmt.Errorf("%w: TypeMin %q", ErrInvalidOption, o.TypeMin)
}

// SetOpt resolves a single option in raw.
//
// If field is not a key of raw, the keys are scanned in sorted order for a
// case-insensitive match, which is moved to the canonical name; any other
// case variants of field are removed. A present, non-empty value overrides
// def and is reported as user-set. With bounds (min[, max]) the resolved
// value must be numeric and inside them, else ErrOutOfBounds. The resolved
// value is always written back to raw[field].
func SetOpt(raw map[string]any, field string, def any, bounds ...float64) (any, bool, error) {
	if _, ok := raw[field]; !ok {
		for _, k := range slices.Sorted(maps.Keys(raw)) {
			if strings.EqualFold(k, field) {
				raw[field] = raw[k]
				delete(raw, k)
				break
			}
		}
	}
	for k := range raw {
		if k != field && strings.EqualFold(k, field) {
			delete(raw, k)
		}
	}

	value, userSet := def, false
	if v, ok := raw[field]; ok && !isEmpty(v) {
		value, userSet = v, true
	}

	if len(bounds) > 0 {
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s is %v, expected a number", ErrInvalidOption, field, value)
		}
		if f < bounds[0] {
			return nil, false, fmt.Errorf("%w: %s is %v, should be at least %v", ErrOutOfBounds, field, value, bounds[0])
		}
		if len(bounds) > 1 && f > bounds[1] {
			return nil, false, fmt.Errorf("%w: %s is %v, should be at most %v", ErrOutOfBounds, field, value, bounds[1])
		}
	}

	raw[field] = value
	return value, userSet, nil
}

// Resolve converts a loosely typed option map into Options.
//
// Keys match the canonical names case-insensitively; unknown keys are
// rejected with ErrUnknownOption. Scalars are coerced (numbers given as
// strings or floats, booleans for Verbose). Operators may be given as
// linop.Operator, gonum matrices or [][]float64; vectors as []float64,
// mat.Vector or []any. The input map is not modified.
func Resolve(raw map[string]any) (Options, error) {
	m := make(map[string]any, len(raw))
	maps.Copy(m, raw)

	for _, k := range slices.Sorted(maps.Keys(m)) {
		if _, ok := lookupCanonical(k); !ok {
			return Options{}, fmt.Errorf("%w: %q", ErrUnknownOption, k)
		}
	}

	opts := DefaultOptions()
	opts.userSet = make(map[string]bool, len(canonicalNames))

	var err error
	set := func(field string, def any, bounds ...float64) any {
		if err != nil {
			return nil
		}
		v, userSet, e := SetOpt(m, field, def, bounds...)
		if e != nil {
			err = e
			return nil
		}
		opts.userSet[field] = userSet
		return v
	}

	if v := set(OptVerbose, opts.Verbose, 0); err == nil {
		opts.Verbose, err = toInt(OptVerbose, v)
	}
	if v := set(OptMaxIntIter, opts.MaxIntIter, 1); err == nil {
		opts.MaxIntIter, err = toInt(OptMaxIntIter, v)
	}
	if v := set(OptTypeMin, opts.TypeMin); err == nil {
		opts.TypeMin, err = toTypeMin(v)
	}
	if v := set(OptTolVar, opts.TolVar, 0); err == nil {
		opts.TolVar, err = toPositive(OptTolVar, v)
	}
	if v := set(OptU, nil); err == nil && v != nil {
		opts.U, err = toOperator(OptU, v)
	}
	if v := set(OptUt, nil); err == nil && v != nil {
		opts.Ut, err = toOperator(OptUt, v)
	}
	if v := set(OptXPlug, nil); err == nil && v != nil {
		opts.XPlug, err = toVector(OptXPlug, v)
	}
	if v := set(OptNormU, nil); err == nil && v != nil {
		opts.NormU, err = toPositive(OptNormU, v)
	}
	if v := set(OptAAtInv, nil); err == nil && v != nil {
		opts.AAtInv, err = toOperator(OptAAtInv, v)
	}
	if v := set(OptUSV, nil); err == nil && v != nil {
		opts.USV, err = toUSV(v)
	}
	if v := set(OptMaxIter, opts.MaxIter, 1); err == nil {
		opts.MaxIter, err = toInt(OptMaxIter, v)
	}
	if v := set(OptStopTest, opts.StopTest, StopRelativeChange, StopIterateChange); err == nil {
		opts.StopTest, err = toInt(OptStopTest, v)
	}
	if v := set(OptOutFcn, nil); err == nil && v != nil {
		f, ok := v.(func([]float64) []float64)
		if !ok {
			err = fmt.Errorf("%w: %s must be func([]float64) []float64, got %T", ErrInvalidOption, OptOutFcn, v)
		}
		opts.OutFcn = f
	}
	if v := set(OptErrFcn, nil); err == nil && v != nil {
		f, ok := v.(func([]float64) float64)
		if !ok {
			err = fmt.Errorf("%w: %s must be func([]float64) float64, got %T", ErrInvalidOption, OptErrFcn, v)
		}
		opts.ErrFcn = f
	}

	if err != nil {
		return Options{}, err
	}
	return opts, nil
}

func lookupCanonical(name string) (string, bool) {
	for _, c := range canonicalNames {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func toInt(field string, v any) (int, error) {
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is %v, expected an integer", ErrInvalidOption, field, v)
	}
	return n, nil
}

func toPositive(field string, v any) (float64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is %v, expected a number", ErrInvalidOption, field, v)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%w: %s is %v, should be positive", ErrOutOfBounds, field, v)
	}
	return f, nil
}

func toTypeMin(v any) (string, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: %s is %v, expected a string", ErrInvalidOption, OptTypeMin, v)
	}
	switch up := strings.ToUpper(strings.TrimSpace(s)); up {
	case TypeL1, TypeTV:
		return up, nil
	}
	return "", fmt.Errorf("%w: %s is %q, expected L1 or TV", ErrInvalidOption, OptTypeMin, s)
}

func toOperator(field string, v any) (linop.Operator, error) {
	switch o := v.(type) {
	case linop.Operator:
		return o, nil
	case mat.Matrix:
		return linop.NewDense(o), nil
	case [][]float64:
		d, err := denseFromRows(o)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOption, field, err)
		}
		return linop.NewDense(d), nil
	}
	return nil, fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidOption, field, v)
}

func toVector(field string, v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return cloneVec(x), nil
	case mat.Vector:
		out := make([]float64, x.Len())
		for i := range out {
			out[i] = x.AtVec(i)
		}
		return out, nil
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, err := cast.ToFloat64E(e)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d] is %v, expected a number", ErrInvalidOption, field, i, e)
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidOption, field, v)
}

func toUSV(v any) (*USV, error) {
	switch u := v.(type) {
	case *USV:
		return u, nil
	case USV:
		return &u, nil
	case map[string]any:
		var q, s any
		for k, e := range u {
			switch strings.ToLower(k) {
			case "u", "q":
				q = e
			case "s":
				s = e
			}
		}
		qm, ok := q.(mat.Matrix)
		if !ok {
			return nil, fmt.Errorf("%w: USV.U must be a matrix, got %T", ErrInvalidOption, q)
		}
		return NewUSV(qm, s)
	}
	return nil, fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidOption, OptUSV, v)
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("empty matrix")
	}
	c := len(rows[0])
	d := mat.NewDense(len(rows), c, nil)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("row %d has %d entries, want %d", i, len(row), c)
		}
		d.SetRow(i, row)
	}
	return d, nil
}

func cloneVec(x []float64) []float64 {
	if x == nil {
		return nil
	}
	return append([]float64(nil), x...)
}
