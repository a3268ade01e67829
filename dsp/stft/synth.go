package stft

import (
	"fmt"
	"math"

	"github.com/RichardJohnn/audio-transport/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Synthesizer inverts a one-sided spectrum into a windowed time-domain frame
// ready for overlap-add. The synthesis Hann window is applied a second time
// and the result is scaled by the exact constant-overlap-add factor
// hop / sum(w^2), so that analysis followed by synthesis at the configured
// hop reconstructs the input.
type Synthesizer struct {
	windowSize int
	fftSize    int
	bins       int
	padOffset  int
	norm       float64

	win []float64

	plan *algofft.Plan[complex128]

	specFull []complex128
	timeOut  []complex128
	windowed []float64
}

// NewSynthesizer creates a synthesiser matching an analyser with the same
// window and FFT sizes, overlap-adding at the given hop.
func NewSynthesizer(windowSize, fftSize, hop int) (*Synthesizer, error) {
	if windowSize < 2 {
		return nil, fmt.Errorf("stft: window size must be >= 2 samples: %d", windowSize)
	}

	if fftSize < windowSize {
		return nil, fmt.Errorf("stft: fft size %d smaller than window size %d", fftSize, windowSize)
	}

	if hop <= 0 || hop > windowSize {
		return nil, fmt.Errorf("stft: hop must be in [1, %d]: %d", windowSize, hop)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("stft: failed to create FFT plan: %w", err)
	}

	win := window.Generate(window.TypeHann, windowSize)

	s := &Synthesizer{
		windowSize: windowSize,
		fftSize:    fftSize,
		bins:       fftSize/2 + 1,
		padOffset:  (fftSize - windowSize) / 2,
		norm:       float64(hop) / window.SumSquares(win),
		win:        win,
		plan:       plan,
		specFull:   make([]complex128, fftSize),
		timeOut:    make([]complex128, fftSize),
		windowed:   make([]float64, windowSize),
	}

	return s, nil
}

// Bins returns the expected one-sided spectrum length.
func (s *Synthesizer) Bins() int { return s.bins }

// Synthesize inverts the one-sided spectrum values into frame, which must
// have windowSize length. Non-finite synthesis samples are flushed to zero so
// a corrupt spectrum cannot poison the overlap-add state.
func (s *Synthesizer) Synthesize(values []complex128, frame []float64) error {
	if len(values) != s.bins {
		return fmt.Errorf("stft: spectrum length %d, want %d", len(values), s.bins)
	}

	if len(frame) != s.windowSize {
		return fmt.Errorf("stft: frame length %d, want %d", len(frame), s.windowSize)
	}

	// Hermitian mirror for a real-valued inverse transform; DC and Nyquist
	// are forced real.
	s.specFull[0] = complex(real(values[0]), 0)
	s.specFull[s.bins-1] = complex(real(values[s.bins-1]), 0)

	for i := 1; i < s.bins-1; i++ {
		v := values[i]
		s.specFull[i] = v
		s.specFull[s.fftSize-i] = complex(real(v), -imag(v))
	}

	err := s.plan.Inverse(s.timeOut, s.specFull)
	if err != nil {
		return fmt.Errorf("stft: inverse FFT failed: %w", err)
	}

	for i := range s.windowed {
		v := real(s.timeOut[s.padOffset+i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}

		s.windowed[i] = v
	}

	vecmath.MulBlockInPlace(s.windowed, s.win)
	vecmath.ScaleBlock(frame, s.windowed, s.norm)

	return nil
}
