package testutil

import (
	"math/rand"
)

// Rand returns a deterministic random source for the given seed.
func Rand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// DeterministicNoise generates Gaussian noise with a fixed seed and the
// given standard deviation.
func DeterministicNoise(seed int64, sigma float64, length int) []float64 {
	out := make([]float64, length)
	rng := Rand(seed)
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

// Unit returns the pos-th canonical basis vector of length n.
func Unit(n, pos int) []float64 {
	out := make([]float64, n)
	if pos >= 0 && pos < n {
		out[pos] = 1
	}
	return out
}

// Const returns a slice of length n filled with value.
func Const(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return Const(1.0, n)
}
