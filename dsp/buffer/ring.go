package buffer

import "fmt"

// Ring is a fixed-length circular float64 buffer with independent read and
// write cursors. Writes accumulate (overlap-add); reads clear the slot before
// the read position advances, so a slot never contributes twice.
type Ring struct {
	data     []float64
	readPos  int
	writePos int
}

// NewRing returns a zeroed ring of the given length.
func NewRing(length int) (*Ring, error) {
	if length <= 0 {
		return nil, fmt.Errorf("buffer: ring length must be positive: %d", length)
	}

	return &Ring{data: make([]float64, length)}, nil
}

// Len returns the ring length.
func (r *Ring) Len() int {
	return len(r.data)
}

// Reset zeroes all slots and rewinds both cursors.
func (r *Ring) Reset() {
	for i := range r.data {
		r.data[i] = 0
	}

	r.readPos = 0
	r.writePos = 0
}

// SetWriteOffset positions the write cursor ahead of the read cursor by the
// given number of samples.
func (r *Ring) SetWriteOffset(offset int) {
	if offset < 0 {
		offset = 0
	}

	r.writePos = (r.readPos + offset) % len(r.data)
}

// Accumulate adds frame into the ring starting at the write cursor and then
// advances the write cursor by hop samples. The frame length must not exceed
// the ring length.
func (r *Ring) Accumulate(frame []float64, hop int) {
	n := len(r.data)
	pos := r.writePos

	for _, v := range frame {
		r.data[pos] += v

		pos++
		if pos == n {
			pos = 0
		}
	}

	r.writePos = (r.writePos + hop) % n
}

// ReadAndClear returns the sample at the read cursor, zeroes the slot, and
// advances the cursor.
func (r *Ring) ReadAndClear() float64 {
	v := r.data[r.readPos]
	r.data[r.readPos] = 0

	r.readPos++
	if r.readPos == len(r.data) {
		r.readPos = 0
	}

	return v
}
