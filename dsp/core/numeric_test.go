package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name          string
		value, lo, hi float64
		want          float64
	}{
		{name: "inside", value: 0.5, lo: 0, hi: 1, want: 0.5},
		{name: "below", value: -0.2, lo: 0, hi: 1, want: 0},
		{name: "above", value: 1.7, lo: 0, hi: 1, want: 1},
		{name: "swapped bounds", value: 2, lo: 1, hi: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, tt.lo, tt.hi); got != tt.want {
				t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestFinite(t *testing.T) {
	if !Finite(1.5) || !Finite(0) || !Finite(-1e300) {
		t.Fatal("Finite rejected an ordinary value")
	}

	if Finite(math.NaN()) || Finite(math.Inf(1)) || Finite(math.Inf(-1)) {
		t.Fatal("Finite accepted a non-finite value")
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8},
		{1000, 1024}, {1024, 1024}, {4410, 8192},
	}

	for _, tt := range tests {
		if got := NextPow2(tt.in); got != tt.want {
			t.Fatalf("NextPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("values within eps should compare equal")
	}

	if NearlyEqual(1.0, 1.1, 1e-12) {
		t.Fatal("distant values should not compare equal")
	}

	if !NearlyEqual(1e12, 1e12+1, 1e-9) {
		t.Fatal("relative comparison should accept large near-equal values")
	}
}

func TestDBConversionRoundTrip(t *testing.T) {
	for _, db := range []float64{-60, -6, 0, 6, 20} {
		got := LinearToDB(DBToLinear(db))
		if math.Abs(got-db) > 1e-9 {
			t.Fatalf("round trip %v dB = %v", db, got)
		}
	}

	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("LinearToDB(0) should be -Inf")
	}

	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("LinearToDB(-1) should be NaN")
	}
}

func TestFlushDenormals(t *testing.T) {
	if FlushDenormals(1e-40) != 0 {
		t.Fatal("denormal-range value should flush to zero")
	}

	if FlushDenormals(1e-20) == 0 {
		t.Fatal("normal value should pass through")
	}
}
