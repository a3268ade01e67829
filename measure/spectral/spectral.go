// Package spectral measures spectral shape descriptors of time-domain
// signals: centroid, spread and rolloff of the magnitude spectrum, plus the
// zero-crossing rate. The morph tests and the CLI analyze mode use these to
// characterise morphing results.
package spectral

import (
	"fmt"
	"math"

	"github.com/RichardJohnn/audio-transport/dsp/core"
	"github.com/RichardJohnn/audio-transport/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Descriptors holds spectral shape measurements in Hz.
type Descriptors struct {
	Centroid float64 // magnitude-weighted mean frequency
	Spread   float64 // magnitude-weighted standard deviation around the centroid
	Rolloff  float64 // frequency below which 85% of the energy lies
	Peak     float64 // frequency of the strongest bin
}

const rolloffFraction = 0.85

// Analyze windows the whole signal with a Hann window, transforms it and
// computes magnitude-weighted descriptors. A silent signal returns zeroed
// descriptors.
func Analyze(signal []float64, sampleRate float64) (Descriptors, error) {
	if len(signal) < 2 {
		return Descriptors{}, fmt.Errorf("spectral: need at least 2 samples, got %d", len(signal))
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Descriptors{}, fmt.Errorf("spectral: sample rate must be positive and finite: %f", sampleRate)
	}

	fftSize := core.NextPow2(len(signal))

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Descriptors{}, fmt.Errorf("spectral: failed to create FFT plan: %w", err)
	}

	win := window.Generate(window.TypeHann, len(signal))

	in := make([]complex128, fftSize)
	for i, v := range signal {
		in[i] = complex(v*win[i], 0)
	}

	out := make([]complex128, fftSize)

	err = plan.Forward(out, in)
	if err != nil {
		return Descriptors{}, fmt.Errorf("spectral: forward FFT failed: %w", err)
	}

	bins := fftSize/2 + 1
	mags := make([]float64, bins)
	freqs := make([]float64, bins)

	for i := range bins {
		mags[i] = math.Hypot(real(out[i]), imag(out[i]))
		freqs[i] = float64(i) * sampleRate / float64(fftSize)
	}

	total := floats.Sum(mags)
	if total == 0 {
		return Descriptors{}, nil
	}

	peak := floats.MaxIdx(mags)

	d := Descriptors{
		Centroid: stat.Mean(freqs, mags),
		Spread:   stat.StdDev(freqs, mags),
		Peak:     freqs[peak],
	}

	// Rolloff works on energy rather than magnitude.
	energy := make([]float64, bins)
	for i, m := range mags {
		energy[i] = m * m
	}

	target := rolloffFraction * floats.Sum(energy)

	cum := 0.0
	for i, e := range energy {
		cum += e
		if cum >= target {
			d.Rolloff = freqs[i]

			break
		}
	}

	return d, nil
}

// ZeroCrossingRate returns sign changes per second.
func ZeroCrossingRate(signal []float64, sampleRate float64) float64 {
	if len(signal) < 2 || sampleRate <= 0 {
		return 0
	}

	count := 0
	for i := 1; i < len(signal); i++ {
		if (signal[i-1] < 0) != (signal[i] < 0) {
			count++
		}
	}

	return float64(count) * sampleRate / float64(len(signal))
}
