package signal

import (
	"math"
	"testing"

	"github.com/RichardJohnn/audio-transport/dsp/core"
)

func newTestGenerator() *Generator {
	return NewGenerator([]core.ProcessorOption{core.WithSampleRate(48000)})
}

func TestSine(t *testing.T) {
	g := newTestGenerator()

	out, err := g.Sine(1000, 0.5, 4800)
	if err != nil {
		t.Fatalf("Sine() error = %v", err)
	}

	if out[0] != 0 {
		t.Fatalf("sine must start at zero phase: %g", out[0])
	}

	// Quarter period of 1 kHz at 48 kHz is 12 samples.
	if math.Abs(out[12]-0.5) > 1e-3 {
		t.Fatalf("sine peak = %g, want 0.5", out[12])
	}

	if _, err := g.Sine(1000, 0.5, 0); err == nil {
		t.Fatal("zero samples should be rejected")
	}
}

func TestChirpFrequencyRises(t *testing.T) {
	g := newTestGenerator()

	const samples = 48000

	out, err := g.Chirp(100, 2000, 1, samples)
	if err != nil {
		t.Fatalf("Chirp() error = %v", err)
	}

	// Instantaneous frequency rises monotonically: zero-crossing spacing at
	// the end must be tighter than at the start.
	first := zeroCrossSpacing(out[:4800])
	last := zeroCrossSpacing(out[samples-4800:])

	if last >= first {
		t.Fatalf("chirp should accelerate: first spacing %g, last spacing %g", first, last)
	}
}

func zeroCrossSpacing(x []float64) float64 {
	count := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] < 0) != (x[i] < 0) {
			count++
		}
	}

	if count == 0 {
		return math.Inf(1)
	}

	return float64(len(x)) / float64(count)
}

func TestWhiteNoiseDeterministic(t *testing.T) {
	g1 := NewGenerator(nil, WithSeed(7))
	g2 := NewGenerator(nil, WithSeed(7))

	a, err := g1.WhiteNoise(1, 1024)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}

	b, _ := g2.WhiteNoise(1, 1024)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed should reproduce identical noise at %d", i)
		}

		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("noise out of range at %d: %g", i, a[i])
		}
	}
}

func TestImpulseAndDC(t *testing.T) {
	g := newTestGenerator()

	imp, err := g.Impulse(10, 32)
	if err != nil {
		t.Fatalf("Impulse() error = %v", err)
	}

	for i, v := range imp {
		want := 0.0
		if i == 10 {
			want = 1
		}

		if v != want {
			t.Fatalf("impulse[%d] = %g, want %g", i, v, want)
		}
	}

	dc, err := g.DC(0.5, 16)
	if err != nil {
		t.Fatalf("DC() error = %v", err)
	}

	for i, v := range dc {
		if v != 0.5 {
			t.Fatalf("dc[%d] = %g, want 0.5", i, v)
		}
	}
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]float64{0.25, -0.5, 0.1}, 1)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if math.Abs(out[1]+1) > 1e-15 {
		t.Fatalf("peak should be scaled to -1: %g", out[1])
	}

	if _, err := Normalize(nil, 1); err == nil {
		t.Fatal("empty input should be rejected")
	}

	zeros, err := Normalize([]float64{0, 0}, 1)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if zeros[0] != 0 || zeros[1] != 0 {
		t.Fatal("all-zero input should stay zero")
	}
}
