// Package analysis reduces analysis-sparse recovery problems to synthesis
// form.
//
// A signal x is cosparse under an analysis operator Ω (p×n, p > n) when
// Ω·x vanishes on a large index set, its cosupport. With Ω⁺ the
// pseudo-inverse of Ω and N an orthonormal basis of its null space, the
// coefficients γ = Ω·x solve the synthesis problem
//
//	[ A·Ω⁺ ]       [ y ]
//	[ λ·N  ] · γ = [ 0 ]
//
// and are sparse on the complement of the cosupport. [BySynthesis] builds
// that problem, hands it to a [SynthesisSolver] and maps the coefficients
// back through Ω⁺.
//
// The multiplier λ weighs the null-space rows against the data rows. In
// [MultiplierNormalizedRow] mode (the default) the base value c is scaled
// so both blocks have comparable per-row Frobenius mass:
//
//	λ = c · (‖A·Ω⁺‖_F / m) / (‖N‖_F / (p − n))
package analysis
