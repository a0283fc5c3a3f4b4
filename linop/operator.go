package linop

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Operator is a linear map R^n -> R^m together with its adjoint.
//
// Apply takes a vector of length n and returns one of length m;
// ApplyAdjoint maps length m back to length n. Implementations return
// freshly allocated slices and never modify their input. Passing a slice
// of the wrong length is a programmer error and panics.
type Operator interface {
	Dims() (m, n int)
	Apply(x []float64) []float64
	ApplyAdjoint(y []float64) []float64
}

// Matrixer is implemented by operators backed by an explicit matrix.
type Matrixer interface {
	Matrix() mat.Matrix
}

// Dense is an Operator backed by a gonum matrix.
type Dense struct {
	m mat.Matrix
}

// NewDense wraps m as an Operator.
func NewDense(m mat.Matrix) *Dense {
	return &Dense{m: m}
}

// Dims returns the matrix shape.
func (d *Dense) Dims() (int, int) { return d.m.Dims() }

// Matrix returns the wrapped matrix.
func (d *Dense) Matrix() mat.Matrix { return d.m }

// Apply returns M·x.
func (d *Dense) Apply(x []float64) []float64 {
	return mulVec(d.m, x)
}

// ApplyAdjoint returns Mᵗ·y.
func (d *Dense) ApplyAdjoint(y []float64) []float64 {
	return mulVec(d.m.T(), y)
}

func mulVec(m mat.Matrix, x []float64) []float64 {
	r, c := m.Dims()
	checkLen("linop", c, len(x))
	out := mat.NewVecDense(r, nil)
	out.MulVec(m, mat.NewVecDense(c, x))
	return out.RawVector().Data
}

// Func is an Operator defined by a forward/adjoint function pair.
type Func struct {
	M, N    int
	Forward func(x []float64) []float64
	// Adjoint may be nil, in which case the operator is assumed
	// self-adjoint and Forward is used for both directions.
	Adjoint func(y []float64) []float64
}

// NewFunc returns an m×n Operator from a forward and adjoint function.
func NewFunc(m, n int, forward, adjoint func([]float64) []float64) *Func {
	if forward == nil {
		panic("linop: nil forward function")
	}
	if adjoint == nil && m != n {
		panic(fmt.Sprintf("linop: self-adjoint operator must be square, got %dx%d", m, n))
	}
	return &Func{M: m, N: n, Forward: forward, Adjoint: adjoint}
}

// Dims returns the operator shape.
func (f *Func) Dims() (int, int) { return f.M, f.N }

// Apply evaluates the forward function.
func (f *Func) Apply(x []float64) []float64 {
	checkLen("linop", f.N, len(x))
	return f.Forward(x)
}

// ApplyAdjoint evaluates the adjoint function, or the forward function for
// self-adjoint operators.
func (f *Func) ApplyAdjoint(y []float64) []float64 {
	checkLen("linop", f.M, len(y))
	if f.Adjoint == nil {
		return f.Forward(y)
	}
	return f.Adjoint(y)
}

type identity int

// Identity returns the n×n identity operator.
func Identity(n int) Operator { return identity(n) }

// IsIdentity reports whether op was created by Identity.
func IsIdentity(op Operator) bool {
	_, ok := op.(identity)
	return ok
}

func (id identity) Dims() (int, int) { return int(id), int(id) }

func (id identity) Apply(x []float64) []float64 {
	checkLen("linop", int(id), len(x))
	out := make([]float64, len(x))
	copy(out, x)
	return out
}

func (id identity) ApplyAdjoint(y []float64) []float64 { return id.Apply(y) }

type adjoint struct {
	op Operator
}

// Adjoint returns the adjoint of op as an Operator. Dense operators stay
// dense; the adjoint of an adjoint view is the original operator.
func Adjoint(op Operator) Operator {
	switch o := op.(type) {
	case *Dense:
		return NewDense(o.m.T())
	case identity:
		return o
	case adjoint:
		return o.op
	}
	return adjoint{op: op}
}

func (a adjoint) Dims() (int, int) {
	m, n := a.op.Dims()
	return n, m
}

func (a adjoint) Apply(x []float64) []float64        { return a.op.ApplyAdjoint(x) }
func (a adjoint) ApplyAdjoint(y []float64) []float64 { return a.op.Apply(y) }

type pair struct {
	fwd, adj Operator
}

// Pair returns an operator that applies forward and uses adjoint.Apply as
// its adjoint. adjoint must have the transposed shape of forward.
func Pair(forward, adjoint Operator) (Operator, error) {
	m, n := forward.Dims()
	am, an := adjoint.Dims()
	if am != n || an != m {
		return nil, fmt.Errorf("linop: adjoint shape %dx%d does not match %dx%d operator", am, an, m, n)
	}
	return pair{fwd: forward, adj: adjoint}, nil
}

func (p pair) Dims() (int, int)                   { return p.fwd.Dims() }
func (p pair) Apply(x []float64) []float64        { return p.fwd.Apply(x) }
func (p pair) ApplyAdjoint(y []float64) []float64 { return p.adj.Apply(y) }

func checkLen(pkg string, want, got int) {
	if want != got {
		panic(fmt.Sprintf("%s: vector length %d, operator expects %d", pkg, got, want))
	}
}
