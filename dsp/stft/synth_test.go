package stft

import (
	"math"
	"testing"

	"github.com/RichardJohnn/audio-transport/internal/testutil"
)

func TestNewSynthesizerValidation(t *testing.T) {
	if _, err := NewSynthesizer(1024, 512, 256); err == nil {
		t.Fatal("fft size below window size should be rejected")
	}

	if _, err := NewSynthesizer(1024, 2048, 0); err == nil {
		t.Fatal("zero hop should be rejected")
	}

	if _, err := NewSynthesizer(1, 2048, 256); err == nil {
		t.Fatal("window below 2 samples should be rejected")
	}
}

func TestSynthesizerRejectsWrongLengths(t *testing.T) {
	s, err := NewSynthesizer(512, 1024, 128)
	if err != nil {
		t.Fatalf("NewSynthesizer() error = %v", err)
	}

	frame := make([]float64, 512)
	if err := s.Synthesize(make([]complex128, 10), frame); err == nil {
		t.Fatal("wrong spectrum length should be rejected")
	}

	if err := s.Synthesize(make([]complex128, s.Bins()), frame[:100]); err == nil {
		t.Fatal("wrong frame length should be rejected")
	}
}

func TestSynthesizerFlushesNonFiniteSpectrum(t *testing.T) {
	s, err := NewSynthesizer(512, 1024, 128)
	if err != nil {
		t.Fatalf("NewSynthesizer() error = %v", err)
	}

	values := make([]complex128, s.Bins())
	values[3] = complex(math.NaN(), math.Inf(1))

	frame := make([]float64, 512)
	if err := s.Synthesize(values, frame); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	testutil.RequireFinite(t, frame)
}

// Analysis followed by identity synthesis and overlap-add must reconstruct
// the input to well below -40 dB once the overlap has warmed up.
func TestAnalyzeSynthesizeRoundTrip(t *testing.T) {
	const (
		sampleRate = 44100.0
		windowSize = 1024
		fftSize    = 2048
		hop        = windowSize / 4
		length     = 16384
	)

	a, err := NewAnalyzer(windowSize, fftSize, sampleRate, false)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	s, err := NewSynthesizer(windowSize, fftSize, hop)
	if err != nil {
		t.Fatalf("NewSynthesizer() error = %v", err)
	}

	input := testutil.DeterministicSine(440, sampleRate, 0.5, length)
	output := make([]float64, length+windowSize)
	spec := NewFrameSpectrum(a.Bins())
	frame := make([]float64, windowSize)

	for pos := 0; pos+windowSize <= length; pos += hop {
		if err := a.Analyze(input[pos:pos+windowSize], spec); err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}

		if err := s.Synthesize(spec.Values, frame); err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}

		for i, v := range frame {
			output[pos+i] += v
		}
	}

	// Compare away from the ramp-in/ramp-out edges.
	start := windowSize
	end := length - windowSize

	errRMS := 0.0
	sigRMS := 0.0

	for i := start; i < end; i++ {
		d := output[i] - input[i]
		errRMS += d * d
		sigRMS += input[i] * input[i]
	}

	ratio := math.Sqrt(errRMS / sigRMS)
	if db := 20 * math.Log10(ratio); db > -40 {
		t.Fatalf("round-trip error = %.1f dB, want below -40 dB", db)
	}
}
