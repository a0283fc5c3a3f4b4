// Package linop provides a single capability for linear operators used by
// the recovery algorithms: apply the operator, or apply its adjoint.
//
// Two representations are unified behind [Operator]:
//
//   - Dense: an explicit gonum matrix; the adjoint is the transpose multiply.
//   - Func: a forward/adjoint function pair for fast implicit operators
//     (transforms, convolutions); a nil adjoint marks a self-adjoint operator.
//
// Helpers build identities, adjoint views, forward/adjoint pairs stitched
// from two operators, and PartialFourier, a randomly subsampled real
// orthonormal DFT whose rows satisfy A·Aᵗ = I.
//
// # Usage
//
//	a := linop.NewDense(matrix)
//	y := a.Apply(x)
//	xt := a.ApplyAdjoint(y)
//	norm, iters := linop.NormEst(a, linop.WithTolerance(1e-3))
package linop
