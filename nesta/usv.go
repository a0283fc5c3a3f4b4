package nesta

import (
	"fmt"

	"github.com/cwbudde/algo-cs/linop"
	"gonum.org/v1/gonum/mat"
)

// USV is a factorization A = Q·diag(S)·Vᵗ of a full-row-rank measurement
// matrix. Only Q (m×m, orthonormal) and the m singular values are kept;
// products with V are recovered through A itself.
type USV struct {
	Q *mat.Dense
	S []float64
}

// NewUSV builds a USV record. s may be a []float64, a mat.Vector, or a
// matrix whose diagonal holds the singular values.
func NewUSV(q mat.Matrix, s any) (*USV, error) {
	m, c := q.Dims()
	if m != c {
		return nil, fmt.Errorf("%w: USV.U must be square, got %dx%d", ErrInvalidOption, m, c)
	}

	var sv []float64
	switch v := s.(type) {
	case []float64:
		sv = cloneVec(v)
	case mat.Vector:
		sv = make([]float64, v.Len())
		for i := range sv {
			sv[i] = v.AtVec(i)
		}
	case mat.Matrix:
		r, cc := v.Dims()
		sv = make([]float64, min(r, cc))
		for i := range sv {
			sv[i] = v.At(i, i)
		}
	default:
		return nil, fmt.Errorf("%w: USV.S has unsupported type %T", ErrInvalidOption, s)
	}

	if len(sv) != m {
		return nil, fmt.Errorf("%w: USV has %d singular values for %d rows", ErrInvalidOption, len(sv), m)
	}
	for i, v := range sv {
		if v <= 0 {
			return nil, fmt.Errorf("%w: singular value %d is %v, A must have full row rank", ErrInvalidOption, i, v)
		}
	}

	return &USV{Q: mat.DenseCopyOf(q), S: sv}, nil
}

// FactorizeUSV computes the USV record of a wide or square matrix a.
func FactorizeUSV(a mat.Matrix) (*USV, error) {
	r, c := a.Dims()
	if r > c {
		return nil, fmt.Errorf("%w: USV needs rows <= columns, got %dx%d", ErrInvalidOption, r, c)
	}
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD did not converge", ErrInvalidOption)
	}
	var u mat.Dense
	svd.UTo(&u)
	return NewUSV(&u, svd.Values(nil))
}

// AAtInv returns (A·Aᵗ)⁻¹ = Q·diag(S⁻²)·Qᵗ as a dense operator.
func (u *USV) AAtInv() *linop.Dense {
	m := len(u.S)
	scaled := mat.NewDense(m, m, nil)
	scaled.Copy(u.Q)
	for j, s := range u.S {
		w := 1 / (s * s)
		for i := range m {
			scaled.Set(i, j, scaled.At(i, j)*w)
		}
	}
	var out mat.Dense
	out.Mul(scaled, u.Q.T())
	return linop.NewDense(&out)
}
