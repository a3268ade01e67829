// Package testutil provides deterministic signals and tolerance helpers for
// package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave with zero starting phase.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicChirp generates a linear sweep from startHz to endHz.
func DeterministicChirp(startHz, endHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rate := (endHz - startHz) / float64(length)
	for i := range out {
		n := float64(i)
		out[i] = amplitude * math.Sin(2*math.Pi*(startHz*n+0.5*rate*n*n)/sampleRate)
	}

	return out
}

// DeterministicNoise generates seeded white noise in [-amplitude, amplitude].
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse generates a unit impulse at pos.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Silence generates an all-zero signal.
func Silence(length int) []float64 {
	return make([]float64, length)
}

// ToFloat32 converts a float64 slice to float32.
func ToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}

	return out
}

// ToFloat64 converts a float32 slice to float64.
func ToFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}

	return out
}
