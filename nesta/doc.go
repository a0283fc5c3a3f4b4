// Package nesta solves smoothed L1 recovery problems
//
//	min_x ‖U x‖₁  s.t.  ‖b − A x‖₂ ≤ δ
//
// with the NESTA continuation scheme: a short geometric schedule of
// smoothing parameters mu0 > … > muf and tolerances 0.1 > … > TolVar, each
// stage solved by an accelerated (Nesterov) inner solver seeded with the
// previous stage's answer.
//
// Before the schedule starts the driver
//
//   - checks that A is a partial isometry (A·Aᵗ = I) unless a pseudo-inverse
//     (AAtInv) or an SVD (USV) of A is supplied,
//   - builds the least-squares starting point x_ref = Aᵗ(AAᵗ)⁻¹b and
//     calibrates mu0 = 0.9·max|U x_ref|,
//   - computes or estimates ‖U‖ when an analysis operator is given.
//
// Options come either as a typed [Options] value (start from
// [DefaultOptions]) or from a loosely typed map resolved by [Resolve], whose
// keys are matched case-insensitively against the canonical option names.
//
// # Usage
//
//	opts := nesta.DefaultOptions()
//	opts.MaxIntIter = 5
//	opts.TolVar = 1e-8
//	res, err := nesta.Solve(a, b, 1e-6, 0, opts)
//
// The inner solver is pluggable through [InnerSolver]; [Nesterov] is the
// reference implementation.
package nesta
