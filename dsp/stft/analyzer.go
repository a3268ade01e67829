package stft

import (
	"fmt"
	"math"

	"github.com/RichardJohnn/audio-transport/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const magnitudeFloor = 1e-10

// Analyzer turns time-domain frames into FrameSpectrum values. In plain mode
// it runs one windowed FFT per frame; in reassignment mode it runs three
// (plain, time-weighted, derivative windows) and derives per-bin reassigned
// frequencies and times.
type Analyzer struct {
	sampleRate float64
	windowSize int
	fftSize    int
	bins       int
	padOffset  int
	reassign   bool

	win  []float64
	winT []float64
	winD []float64

	freqs []float64

	plan *algofft.Plan[complex128]

	windowed []float64
	fftIn    []complex128
	fftOut   []complex128
	fftOutT  []complex128
	fftOutD  []complex128
}

// NewAnalyzer creates an analyser. fftSize must be at least windowSize; the
// frame is centred in the transform with equal zero padding on both sides.
func NewAnalyzer(windowSize, fftSize int, sampleRate float64, reassign bool) (*Analyzer, error) {
	if windowSize < 2 {
		return nil, fmt.Errorf("stft: window size must be >= 2 samples: %d", windowSize)
	}

	if fftSize < windowSize {
		return nil, fmt.Errorf("stft: fft size %d smaller than window size %d", fftSize, windowSize)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("stft: sample rate must be positive and finite: %f", sampleRate)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("stft: failed to create FFT plan: %w", err)
	}

	bins := fftSize/2 + 1

	a := &Analyzer{
		sampleRate: sampleRate,
		windowSize: windowSize,
		fftSize:    fftSize,
		bins:       bins,
		padOffset:  (fftSize - windowSize) / 2,
		reassign:   reassign,
		win:        window.Generate(window.TypeHann, windowSize),
		freqs:      make([]float64, bins),
		plan:       plan,
		windowed:   make([]float64, windowSize),
		fftIn:      make([]complex128, fftSize),
		fftOut:     make([]complex128, fftSize),
	}

	for i := range a.freqs {
		a.freqs[i] = 2 * math.Pi * float64(i) / float64(fftSize) * sampleRate
	}

	if reassign {
		a.winT = make([]float64, windowSize)
		a.winD = make([]float64, windowSize)

		err = window.ReassignmentSet(a.win, a.winT, a.winD, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("stft: failed to build reassignment windows: %w", err)
		}

		a.fftOutT = make([]complex128, fftSize)
		a.fftOutD = make([]complex128, fftSize)
	}

	return a, nil
}

// Bins returns the one-sided bin count.
func (a *Analyzer) Bins() int { return a.bins }

// WindowSize returns the analysis frame length.
func (a *Analyzer) WindowSize() int { return a.windowSize }

// FFTSize returns the padded transform length.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// Reassignment reports whether reassigned frequencies are computed.
func (a *Analyzer) Reassignment() bool { return a.reassign }

// Analyze fills spec from a windowSize-length time-domain frame. It never
// fails for finite input; spec must have been allocated with Bins() bins.
func (a *Analyzer) Analyze(frame []float64, spec *FrameSpectrum) error {
	if len(frame) != a.windowSize {
		return fmt.Errorf("stft: frame length %d, want %d", len(frame), a.windowSize)
	}

	if spec.Bins() != a.bins {
		return fmt.Errorf("stft: spectrum has %d bins, want %d", spec.Bins(), a.bins)
	}

	err := a.transform(frame, a.win, a.fftOut)
	if err != nil {
		return err
	}

	copy(spec.Freq, a.freqs)

	if !a.reassign {
		for i := range a.bins {
			spec.Values[i] = a.fftOut[i]
			spec.FreqReassigned[i] = a.freqs[i]
			spec.TimeReassigned[i] = 0
		}

		return nil
	}

	err = a.transform(frame, a.winT, a.fftOutT)
	if err != nil {
		return err
	}

	err = a.transform(frame, a.winD, a.fftOutD)
	if err != nil {
		return err
	}

	for i := range a.bins {
		x := a.fftOut[i]
		spec.Values[i] = x
		spec.FreqReassigned[i] = a.freqs[i]
		spec.TimeReassigned[i] = 0

		if math.Hypot(real(x), imag(x)) <= magnitudeFloor {
			continue
		}

		offset := -imag(a.fftOutD[i]/x) / (2 * math.Pi)
		if !math.IsNaN(offset) && !math.IsInf(offset, 0) {
			spec.FreqReassigned[i] = a.freqs[i] + offset
		}

		tOffset := real(a.fftOutT[i] / x)
		if !math.IsNaN(tOffset) && !math.IsInf(tOffset, 0) {
			spec.TimeReassigned[i] = tOffset
		}
	}

	return nil
}

// transform windows frame with coeffs, centre-pads to the FFT length and runs
// the forward transform into dst.
func (a *Analyzer) transform(frame, coeffs []float64, dst []complex128) error {
	vecmath.MulBlock(a.windowed, frame, coeffs)

	for i := range a.fftIn {
		a.fftIn[i] = 0
	}

	for i, v := range a.windowed {
		a.fftIn[a.padOffset+i] = complex(v, 0)
	}

	err := a.plan.Forward(dst, a.fftIn)
	if err != nil {
		return fmt.Errorf("stft: forward FFT failed: %w", err)
	}

	return nil
}
