package transport

import "fmt"

const epsMass = 1e-10

// Triple is one entry of a transport plan: move Mass from source index Left
// to target index Right.
type Triple struct {
	Left  int
	Right int
	Mass  float64
}

// CDFPlanner computes the 1-D optimal transport map between two magnitude
// spectra via cumulative distribution inversion: T(i) is the smallest j with
// F_Y(j) >= F_X(i). The planner owns its scratch and is reusable across
// frames without allocation.
type CDFPlanner struct {
	bins int
	pX   []float64
	cdfX []float64
	cdfY []float64
	tmap []int
}

// NewCDFPlanner creates a planner for spectra with the given bin count.
func NewCDFPlanner(bins int) (*CDFPlanner, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("transport: bin count must be positive: %d", bins)
	}

	return &CDFPlanner{
		bins: bins,
		pX:   make([]float64, bins),
		cdfX: make([]float64, bins),
		cdfY: make([]float64, bins),
		tmap: make([]int, bins),
	}, nil
}

// Map computes the transport map from magX to magY and returns it. The
// returned slice is owned by the planner and valid until the next call.
// A silent side is treated as a unit mass spread uniformly; when both sides
// are silent the map is the identity.
func (p *CDFPlanner) Map(magX, magY []float64) ([]int, error) {
	if len(magX) != p.bins || len(magY) != p.bins {
		return nil, fmt.Errorf("transport: magnitude lengths %d/%d, want %d", len(magX), len(magY), p.bins)
	}

	sumX := 0.0
	sumY := 0.0

	for i := range p.bins {
		sumX += magX[i]
		sumY += magY[i]
	}

	cumX := 0.0
	cumY := 0.0

	for i := range p.bins {
		if sumX > epsMass {
			cumX += magX[i] / sumX
		} else {
			cumX += 1 / float64(p.bins)
		}

		if sumY > epsMass {
			cumY += magY[i] / sumY
		} else {
			cumY += 1 / float64(p.bins)
		}

		p.pX[i] = 0
		if sumX > epsMass {
			p.pX[i] = magX[i] / sumX
		}

		p.cdfX[i] = cumX
		p.cdfY[i] = cumY
	}

	for i := range p.bins {
		p.tmap[i] = p.invertCDF(p.cdfX[i])
	}

	return p.tmap, nil
}

// Triples writes the implicit plan of the last Map call into dst and returns
// it: one (i, T(i), pX[i]) entry per source bin with positive mass.
func (p *CDFPlanner) Triples(dst []Triple) []Triple {
	dst = dst[:0]

	for i := range p.bins {
		if p.pX[i] > 0 {
			dst = append(dst, Triple{Left: i, Right: p.tmap[i], Mass: p.pX[i]})
		}
	}

	return dst
}

// invertCDF returns the smallest index j with cdfY[j] >= target - eps.
func (p *CDFPlanner) invertCDF(target float64) int {
	lo, hi := 0, p.bins-1
	result := p.bins - 1

	for lo <= hi {
		mid := (lo + hi) / 2
		if p.cdfY[mid] >= target-epsMass {
			result = mid
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}

	return result
}
