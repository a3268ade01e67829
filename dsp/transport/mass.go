package transport

import "fmt"

// Mass is a contiguous group of spectrum bins treated as a single transport
// atom, centred on a detected partial. Masses partition [0, bins) and their
// Mass values are normalised against the spectrum total.
type Mass struct {
	LeftBin   int
	CenterBin int
	RightBin  int
	Mass      float64
}

// Grouper partitions spectra into masses using the sign of the reassigned
// frequency offset: a mass starts on a rising edge of
// sign(freqReassigned > freq) and its centre sits at the following falling
// edge, snapped to whichever adjacent bin localises the partial better.
type Grouper struct {
	bins   int
	masses []Mass
}

// NewGrouper creates a grouper for spectra with the given bin count.
func NewGrouper(bins int) (*Grouper, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("transport: bin count must be positive: %d", bins)
	}

	return &Grouper{
		bins:   bins,
		masses: make([]Mass, 0, bins+1),
	}, nil
}

// Group partitions the spectrum described by the three per-bin slices into
// masses. The returned slice is owned by the grouper and valid until the
// next call. A near-silent spectrum yields a single mass covering the whole
// spectrum with unit weight.
func (g *Grouper) Group(mags, freq, freqReassigned []float64) ([]Mass, error) {
	if len(mags) != g.bins || len(freq) != g.bins || len(freqReassigned) != g.bins {
		return nil, fmt.Errorf("transport: slice lengths %d/%d/%d, want %d",
			len(mags), len(freq), len(freqReassigned), g.bins)
	}

	massSum := 0.0
	for _, m := range mags {
		massSum += m
	}

	g.masses = g.masses[:0]

	if massSum < epsMass {
		g.masses = append(g.masses, Mass{
			LeftBin:   0,
			CenterBin: g.bins / 2,
			RightBin:  g.bins,
			Mass:      1,
		})

		return g.masses, nil
	}

	g.masses = append(g.masses, Mass{})

	var sign bool

	first := true

	for i := range g.bins {
		currentSign := freqReassigned[i] > freq[i]

		if first {
			first = false
			sign = currentSign

			continue
		}

		if currentSign == sign {
			continue
		}

		last := len(g.masses) - 1

		if sign {
			// Falling edge: this is the partial centre. Snap to the
			// adjacent bin whose reassigned frequency sits closer.
			leftDist := freqReassigned[i-1] - freq[i-1]
			rightDist := freq[i] - freqReassigned[i]

			if leftDist < rightDist {
				g.masses[last].CenterBin = i - 1
			} else {
				g.masses[last].CenterBin = i
			}
		} else {
			// Rising edge: the current mass ends here.
			sum := 0.0
			for j := g.masses[last].LeftBin; j < i; j++ {
				sum += mags[j]
			}

			if sum > 0 {
				g.masses[last].Mass = sum / massSum
				g.masses[last].RightBin = i

				g.masses = append(g.masses, Mass{LeftBin: i, CenterBin: i})
			}
		}

		sign = currentSign
	}

	// Close the final mass at the spectrum edge.
	last := len(g.masses) - 1
	g.masses[last].RightBin = g.bins

	sum := 0.0
	for j := g.masses[last].LeftBin; j < g.bins; j++ {
		sum += mags[j]
	}

	g.masses[last].Mass = sum / massSum

	return g.masses, nil
}
