package stft

import (
	"math"
	"testing"

	"github.com/RichardJohnn/audio-transport/internal/testutil"
)

func TestNewAnalyzerValidation(t *testing.T) {
	tests := []struct {
		name       string
		window     int
		fft        int
		sampleRate float64
		wantErr    bool
	}{
		{name: "valid", window: 1000, fft: 2048, sampleRate: 44100, wantErr: false},
		{name: "window too small", window: 1, fft: 2048, sampleRate: 44100, wantErr: true},
		{name: "fft below window", window: 1000, fft: 512, sampleRate: 44100, wantErr: true},
		{name: "zero sample rate", window: 1000, fft: 2048, sampleRate: 0, wantErr: true},
		{name: "NaN sample rate", window: 1000, fft: 2048, sampleRate: math.NaN(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAnalyzer(tt.window, tt.fft, tt.sampleRate, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAnalyzer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzerBinFrequencies(t *testing.T) {
	const (
		sampleRate = 48000.0
		fftSize    = 2048
	)

	a, err := NewAnalyzer(1024, fftSize, sampleRate, false)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	spec := NewFrameSpectrum(a.Bins())
	frame := make([]float64, 1024)

	if err := a.Analyze(frame, spec); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	for _, i := range []int{0, 1, 100, a.Bins() - 1} {
		want := 2 * math.Pi * float64(i) / fftSize * sampleRate
		if math.Abs(spec.Freq[i]-want) > 1e-9 {
			t.Fatalf("Freq[%d] = %g, want %g", i, spec.Freq[i], want)
		}

		if spec.FreqReassigned[i] != spec.Freq[i] {
			t.Fatalf("plain analysis must copy bin frequencies at %d", i)
		}
	}
}

func TestAnalyzerSinePeakBin(t *testing.T) {
	const (
		sampleRate = 44100.0
		windowSize = 2048
		fftSize    = 4096
		freqHz     = 440.0
	)

	a, err := NewAnalyzer(windowSize, fftSize, sampleRate, false)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	frame := testutil.DeterministicSine(freqHz, sampleRate, 0.8, windowSize)
	spec := NewFrameSpectrum(a.Bins())

	if err := a.Analyze(frame, spec); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	peak := 0
	peakMag := 0.0

	for i := range spec.Values {
		if m := math.Hypot(real(spec.Values[i]), imag(spec.Values[i])); m > peakMag {
			peakMag = m
			peak = i
		}
	}

	wantBin := freqHz / sampleRate * fftSize
	if math.Abs(float64(peak)-wantBin) > 2 {
		t.Fatalf("peak bin = %d, want near %g", peak, wantBin)
	}
}

func TestAnalyzerReassignedFrequencySharpensPeak(t *testing.T) {
	const (
		sampleRate = 44100.0
		windowSize = 2048
		fftSize    = 4096
		freqHz     = 441.3
	)

	a, err := NewAnalyzer(windowSize, fftSize, sampleRate, true)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	frame := testutil.DeterministicSine(freqHz, sampleRate, 0.8, windowSize)
	spec := NewFrameSpectrum(a.Bins())

	if err := a.Analyze(frame, spec); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	peak := 0
	peakMag := 0.0

	for i := range spec.Values {
		if m := math.Hypot(real(spec.Values[i]), imag(spec.Values[i])); m > peakMag {
			peakMag = m
			peak = i
		}
	}

	trueOmega := 2 * math.Pi * freqHz

	// The reassigned frequency at the peak must localise the partial better
	// than the bin centre does.
	binErr := math.Abs(spec.Freq[peak] - trueOmega)
	reassignedErr := math.Abs(spec.FreqReassigned[peak] - trueOmega)

	if reassignedErr >= binErr && binErr > 1e-9 {
		t.Fatalf("reassignment did not sharpen the peak: bin err %g, reassigned err %g", binErr, reassignedErr)
	}

	for i := range spec.FreqReassigned {
		if math.IsNaN(spec.FreqReassigned[i]) || math.IsInf(spec.FreqReassigned[i], 0) {
			t.Fatalf("non-finite reassigned frequency at %d", i)
		}
	}
}

func TestAnalyzerSilentFrame(t *testing.T) {
	a, err := NewAnalyzer(512, 1024, 48000, true)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	spec := NewFrameSpectrum(a.Bins())
	frame := make([]float64, 512)

	if err := a.Analyze(frame, spec); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	for i := range spec.Values {
		if spec.Values[i] != 0 {
			t.Fatalf("silent frame produced non-zero bin %d", i)
		}

		if spec.FreqReassigned[i] != spec.Freq[i] {
			t.Fatalf("silent bins must fall back to bin-centre frequency at %d", i)
		}
	}
}
