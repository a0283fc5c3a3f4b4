// Package linalg collects the dense factorization helpers used by the
// recovery packages: pseudo-inverse, null-space bases and spectral norms,
// all computed through gonum's SVD.
package linalg

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrSVDFailed is returned when gonum's SVD does not converge.
var ErrSVDFailed = errors.New("linalg: SVD factorization failed")

// pinvRcond matches the relative singular value cutoff commonly used for
// pseudo-inverses (numpy, MATLAB): s_i <= rcond*max(s) is treated as zero.
const pinvRcond = 1e-15

// Pinv returns the Moore-Penrose pseudo-inverse of a.
func Pinv(a mat.Matrix) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrSVDFailed
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	cutoff := 0.0
	if len(s) > 0 {
		cutoff = pinvRcond * s[0]
	}

	// V * diag(1/s) scales the columns of V.
	_, k := v.Dims()
	for j := range k {
		inv := 0.0
		if s[j] > cutoff {
			inv = 1 / s[j]
		}
		col := mat.Col(nil, j, &v)
		for i := range col {
			col[i] *= inv
		}
		v.SetCol(j, col)
	}

	var pinv mat.Dense
	pinv.Mul(&v, u.T())
	return &pinv, nil
}

// TrailingRightSingular returns a k×c matrix whose rows are the last k
// right singular vectors of the r×c matrix a (singular values sorted in
// decreasing order). The rows are orthonormal; when rank(a) = c-k they
// span the null space of a.
func TrailingRightSingular(a mat.Matrix, k int) (*mat.Dense, error) {
	_, c := a.Dims()
	if k <= 0 || k > c {
		return nil, fmt.Errorf("linalg: trailing count %d out of range [1, %d]", k, c)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, ErrSVDFailed
	}
	var v mat.Dense
	svd.VTo(&v)

	out := mat.NewDense(k, c, nil)
	for i := range k {
		out.SetRow(i, mat.Col(nil, c-k+i, &v))
	}
	return out, nil
}

// Frobenius returns the Frobenius norm of a.
func Frobenius(a mat.Matrix) float64 {
	// gonum's matrix 2-norm is the Frobenius norm.
	return mat.Norm(a, 2)
}

// Gram returns the smaller of a·aᵗ and aᵗ·a as a symmetric matrix.
func Gram(a mat.Matrix) *mat.SymDense {
	r, c := a.Dims()
	var g mat.SymDense
	if r < c {
		g.SymOuterK(1, a)
	} else {
		g.SymOuterK(1, a.T())
	}
	return &g
}

// MaxEigenSym returns the largest eigenvalue of the symmetric matrix s.
func MaxEigenSym(s mat.Symmetric) (float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(s, false); !ok {
		return 0, errors.New("linalg: symmetric eigendecomposition failed")
	}
	vals := es.Values(nil)
	return vals[len(vals)-1], nil
}

// Stack returns the rows of a followed by the rows of b.
func Stack(a, b mat.Matrix) (*mat.Dense, error) {
	_, ac := a.Dims()
	_, bc := b.Dims()
	if ac != bc {
		return nil, fmt.Errorf("linalg: cannot stack %d and %d columns", ac, bc)
	}
	var out mat.Dense
	out.Stack(a, b)
	return &out, nil
}
