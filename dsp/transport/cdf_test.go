package transport

import (
	"math"
	"testing"
)

func TestNewCDFPlannerValidation(t *testing.T) {
	if _, err := NewCDFPlanner(0); err == nil {
		t.Fatal("zero bins should be rejected")
	}
}

func TestCDFMapIdenticalSpectraIsIdentity(t *testing.T) {
	p, err := NewCDFPlanner(8)
	if err != nil {
		t.Fatalf("NewCDFPlanner() error = %v", err)
	}

	mag := []float64{0.1, 0.5, 1.0, 0.3, 0.2, 0.6, 0.4, 0.1}

	tmap, err := p.Map(mag, mag)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	for i, j := range tmap {
		if j != i {
			t.Fatalf("identity transport expected: map[%d] = %d", i, j)
		}
	}
}

func TestCDFMapMonotone(t *testing.T) {
	p, err := NewCDFPlanner(16)
	if err != nil {
		t.Fatalf("NewCDFPlanner() error = %v", err)
	}

	magX := make([]float64, 16)
	magY := make([]float64, 16)

	for i := range magX {
		magX[i] = 1 + float64(i%3)
		magY[i] = 1 + float64((i+1)%5)
	}

	tmap, err := p.Map(magX, magY)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	for i := 1; i < len(tmap); i++ {
		if tmap[i] < tmap[i-1] {
			t.Fatalf("transport map must be non-decreasing: map[%d]=%d < map[%d]=%d",
				i, tmap[i], i-1, tmap[i-1])
		}
	}
}

func TestCDFMapMovesConcentratedMass(t *testing.T) {
	p, err := NewCDFPlanner(32)
	if err != nil {
		t.Fatalf("NewCDFPlanner() error = %v", err)
	}

	magX := make([]float64, 32)
	magY := make([]float64, 32)
	magX[10] = 1
	magY[20] = 1

	tmap, err := p.Map(magX, magY)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	if tmap[10] != 20 {
		t.Fatalf("all mass at bin 10 should map to bin 20, got %d", tmap[10])
	}
}

func TestCDFMapSilentSidesFallBackToUniform(t *testing.T) {
	p, err := NewCDFPlanner(16)
	if err != nil {
		t.Fatalf("NewCDFPlanner() error = %v", err)
	}

	silent := make([]float64, 16)

	tmap, err := p.Map(silent, silent)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	for i, j := range tmap {
		if j != i {
			t.Fatalf("uniform-to-uniform transport should be identity: map[%d] = %d", i, j)
		}
	}
}

func TestCDFTriplesConserveMass(t *testing.T) {
	p, err := NewCDFPlanner(64)
	if err != nil {
		t.Fatalf("NewCDFPlanner() error = %v", err)
	}

	magX := make([]float64, 64)
	magY := make([]float64, 64)

	for i := range magX {
		magX[i] = math.Abs(math.Sin(float64(i) * 0.3))
		magY[i] = math.Abs(math.Cos(float64(i) * 0.2))
	}

	if _, err := p.Map(magX, magY); err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	triples := p.Triples(nil)

	total := 0.0
	for _, tr := range triples {
		if tr.Mass <= 0 {
			t.Fatalf("plan entry with non-positive mass: %+v", tr)
		}

		total += tr.Mass
	}

	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("plan mass sums to %g, want 1", total)
	}
}

func TestCDFMapLengthMismatch(t *testing.T) {
	p, err := NewCDFPlanner(8)
	if err != nil {
		t.Fatalf("NewCDFPlanner() error = %v", err)
	}

	if _, err := p.Map(make([]float64, 7), make([]float64, 8)); err == nil {
		t.Fatal("length mismatch should be rejected")
	}
}
