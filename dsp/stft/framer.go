package stft

import "fmt"

// Framer accumulates paired main/sidechain samples into circular buffers and
// reports when a hop's worth of new input is available. Emitted frames are
// time ordered (oldest first) and always cover the last windowSize samples;
// before the buffers fill, the leading region is zero.
type Framer struct {
	size    int
	hop     int
	main    []float64
	side    []float64
	pos     int
	pending int
}

// NewFramer creates a framer emitting windowSize frames every hop samples.
func NewFramer(windowSize, hop int) (*Framer, error) {
	if windowSize < 2 {
		return nil, fmt.Errorf("stft: window size must be >= 2 samples: %d", windowSize)
	}

	if hop <= 0 || hop > windowSize {
		return nil, fmt.Errorf("stft: hop must be in [1, %d]: %d", windowSize, hop)
	}

	return &Framer{
		size: windowSize,
		hop:  hop,
		main: make([]float64, windowSize),
		side: make([]float64, windowSize),
	}, nil
}

// WindowSize returns the frame length in samples.
func (f *Framer) WindowSize() int { return f.size }

// Hop returns the hop size in samples.
func (f *Framer) Hop() int { return f.hop }

// Push appends one sample pair and reports whether a frame is due.
func (f *Framer) Push(mainSample, sideSample float64) bool {
	f.main[f.pos] = mainSample
	f.side[f.pos] = sideSample

	f.pos++
	if f.pos == f.size {
		f.pos = 0
	}

	f.pending++

	return f.pending >= f.hop
}

// Frame copies the last windowSize samples of both channels into the
// destination slices (oldest sample first, newest last) and consumes one hop
// of pending input. Both destinations must have windowSize length.
func (f *Framer) Frame(mainDst, sideDst []float64) {
	// The write position is the oldest slot: the frame starts there.
	n := copy(mainDst, f.main[f.pos:])
	copy(mainDst[n:], f.main[:f.pos])

	n = copy(sideDst, f.side[f.pos:])
	copy(sideDst[n:], f.side[:f.pos])

	f.pending -= f.hop
}

// Reset zeroes the accumulation buffers and cursors.
func (f *Framer) Reset() {
	for i := range f.main {
		f.main[i] = 0
		f.side[i] = 0
	}

	f.pos = 0
	f.pending = 0
}
