package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 0.5, 48)

	if s[0] != 0 {
		t.Fatalf("sine starts at %g, want 0", s[0])
	}

	// Quarter period of 1 kHz at 48 kHz is 12 samples.
	if math.Abs(s[12]-0.5) > 1e-3 {
		t.Fatalf("sine peak = %g, want 0.5", s[12])
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(3, 1, 256)
	b := DeterministicNoise(3, 1, 256)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverges at %d", i)
		}
	}
}

func TestImpulsePosition(t *testing.T) {
	imp := Impulse(16, 5)
	for i, v := range imp {
		want := 0.0
		if i == 5 {
			want = 1
		}

		if v != want {
			t.Fatalf("impulse[%d] = %g, want %g", i, v, want)
		}
	}

	// Out-of-range position yields silence.
	if MaxAbs(Impulse(16, 20)) != 0 {
		t.Fatal("impulse outside the buffer should be silent")
	}
}

func TestRMS(t *testing.T) {
	if RMS(nil) != 0 {
		t.Fatal("empty RMS should be 0")
	}

	if got := RMS(DC(0.5, 100)); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("DC RMS = %g, want 0.5", got)
	}

	sine := DeterministicSine(440, 44100, 1, 44100)
	if got := RMS(sine); math.Abs(got-1/math.Sqrt2) > 1e-3 {
		t.Fatalf("sine RMS = %g, want %g", got, 1/math.Sqrt2)
	}
}

func TestErrorDBIdentical(t *testing.T) {
	sine := DeterministicSine(440, 44100, 1, 4410)

	if db := ErrorDB(t, sine, sine); !math.IsInf(db, -1) {
		t.Fatalf("identical signals should report -Inf dB, got %g", db)
	}
}
