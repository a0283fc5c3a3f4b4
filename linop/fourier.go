package linop

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// ErrInvalidRows is returned when PartialFourier row indices are out of
// range or repeated.
var ErrInvalidRows = errors.New("linop: invalid partial Fourier rows")

// Fourier is a partial real orthonormal DFT: the selected rows of the n×n
// orthogonal matrix whose rows are, in order,
//
//	1/√n,  √(2/n)·cos(2πkt/n), √(2/n)·sin(2πkt/n) for 0 < k < n/2,  (−1)ᵗ/√n (n even).
//
// Because the full basis is orthonormal, any row subset satisfies
// A·Aᵗ = I, which makes it a valid measurement operator for NESTA.
type Fourier struct {
	n    int
	rows []int
	plan *algofft.Plan[complex128]

	// scratch buffers, reused across calls
	in, out []complex128
}

// PartialFourier returns the operator selecting rows of the real
// orthonormal DFT basis of length n.
func PartialFourier(n int, rows []int) (*Fourier, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: length must be positive, got %d", ErrInvalidRows, n)
	}
	if len(rows) == 0 || len(rows) > n {
		return nil, fmt.Errorf("%w: %d rows for length %d", ErrInvalidRows, len(rows), n)
	}

	seen := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("%w: row %d out of range [0, %d)", ErrInvalidRows, r, n)
		}
		if seen[r] {
			return nil, fmt.Errorf("%w: row %d repeated", ErrInvalidRows, r)
		}
		seen[r] = true
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("linop: failed to create FFT plan: %w", err)
	}

	f := &Fourier{
		n:    n,
		rows: append([]int(nil), rows...),
		plan: plan,
		in:   make([]complex128, n),
		out:  make([]complex128, n),
	}
	return f, nil
}

// Dims returns (len(rows), n).
func (f *Fourier) Dims() (int, int) { return len(f.rows), f.n }

// Rows returns a copy of the selected basis indices.
func (f *Fourier) Rows() []int { return append([]int(nil), f.rows...) }

// Apply returns the selected real DFT coefficients of x.
func (f *Fourier) Apply(x []float64) []float64 {
	checkLen("linop", f.n, len(x))
	for i, v := range x {
		f.in[i] = complex(v, 0)
	}
	if err := f.plan.Forward(f.out, f.in); err != nil {
		panic(fmt.Sprintf("linop: forward FFT failed: %v", err))
	}

	out := make([]float64, len(f.rows))
	for i, r := range f.rows {
		out[i] = f.coefficient(r)
	}
	return out
}

// ApplyAdjoint synthesizes the signal whose basis coefficients are y on
// the selected rows and zero elsewhere.
func (f *Fourier) ApplyAdjoint(y []float64) []float64 {
	checkLen("linop", len(f.rows), len(y))
	n := f.n
	for i := range f.in {
		f.in[i] = 0
	}

	// Hermitian spectrum Z with x = Re(IDFT(Z)); filled conjugated so that
	// the inverse transform can be computed with the forward plan.
	sqrtN := math.Sqrt(float64(n))
	half := math.Sqrt(float64(n) / 2)
	for i, r := range f.rows {
		k, isSin := f.bin(r)
		switch {
		case k == 0 || 2*k == n:
			f.in[k] += complex(sqrtN*y[i], 0)
		case isSin:
			// Z_k gets -i·b, conj(Z_k) gets +i·b
			f.in[k] += complex(0, half*y[i])
			f.in[n-k] += complex(0, -half*y[i])
		default:
			f.in[k] += complex(half*y[i], 0)
			f.in[n-k] += complex(half*y[i], 0)
		}
	}

	if err := f.plan.Forward(f.out, f.in); err != nil {
		panic(fmt.Sprintf("linop: forward FFT failed: %v", err))
	}

	out := make([]float64, n)
	scale := 1 / float64(n)
	for t := range out {
		out[t] = real(f.out[t]) * scale
	}
	return out
}

// bin maps a basis row to its DFT bin and whether it is a sine row.
func (f *Fourier) bin(row int) (k int, isSin bool) {
	if row == 0 {
		return 0, false
	}
	if f.n%2 == 0 && row == f.n-1 {
		return f.n / 2, false
	}
	return (row + 1) / 2, row%2 == 0
}

// coefficient reads basis row r from the current spectrum in f.out.
func (f *Fourier) coefficient(r int) float64 {
	n := float64(f.n)
	k, isSin := f.bin(r)
	switch {
	case k == 0 || 2*k == f.n:
		return real(f.out[k]) / math.Sqrt(n)
	case isSin:
		return -imag(f.out[k]) * math.Sqrt(2/n)
	default:
		return real(f.out[k]) * math.Sqrt(2/n)
	}
}
