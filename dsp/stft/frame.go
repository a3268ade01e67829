package stft

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// FrameSpectrum holds the analysis result for one frame: the one-sided
// complex spectrum plus per-bin centre and reassigned frequencies in
// radians per second. TimeReassigned is the reassigned time offset in
// seconds relative to the frame centre; it is only meaningful for
// reassignment analysis.
type FrameSpectrum struct {
	Values         []complex128
	Freq           []float64
	FreqReassigned []float64
	TimeReassigned []float64
}

// NewFrameSpectrum allocates a spectrum with the given bin count.
func NewFrameSpectrum(bins int) *FrameSpectrum {
	return &FrameSpectrum{
		Values:         make([]complex128, bins),
		Freq:           make([]float64, bins),
		FreqReassigned: make([]float64, bins),
		TimeReassigned: make([]float64, bins),
	}
}

// Bins returns the number of spectrum bins.
func (s *FrameSpectrum) Bins() int {
	return len(s.Values)
}

// Magnitudes writes |Values[i]| into dst using the provided scratch slices.
// All slices must have the same length as the spectrum.
func (s *FrameSpectrum) Magnitudes(dst, reScratch, imScratch []float64) {
	for i, c := range s.Values {
		reScratch[i] = real(c)
		imScratch[i] = imag(c)
	}

	vecmath.Magnitude(dst, reScratch, imScratch)
}

// Phases writes arg(Values[i]) into dst.
func (s *FrameSpectrum) Phases(dst []float64) {
	for i, c := range s.Values {
		dst[i] = math.Atan2(imag(c), real(c))
	}
}

// TotalMagnitude returns the sum of bin magnitudes.
func (s *FrameSpectrum) TotalMagnitude() float64 {
	sum := 0.0
	for _, c := range s.Values {
		sum += math.Hypot(real(c), imag(c))
	}

	return sum
}
