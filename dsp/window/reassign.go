package window

import "math"

// The reassignment analysis windows are evaluated on the centred index
// n - (W-1)/2 so that the time-weighted window is antisymmetric about the
// frame centre.

// HannCentered evaluates the symmetric Hann window at centred offset n for a
// window of the given size. Offsets outside [-(size-1)/2, (size-1)/2] return 0.
func HannCentered(n float64, size int) float64 {
	if size < 2 {
		return 0
	}

	half := float64(size-1) / 2
	if n < -half || n > half {
		return 0
	}

	return 0.5 + 0.5*math.Cos(2*math.Pi*n/float64(size-1))
}

// HannTimeWeighted evaluates the Hann window multiplied by the centred time
// offset in seconds: w[n] * n / sampleRate.
func HannTimeWeighted(n float64, size int, sampleRate float64) float64 {
	return HannCentered(n, size) * n / sampleRate
}

// HannDerivative evaluates the analytic time derivative of the Hann window in
// per-second units: dw/dt = dw/dn * sampleRate.
func HannDerivative(n float64, size int, sampleRate float64) float64 {
	if size < 2 {
		return 0
	}

	half := float64(size-1) / 2
	if n < -half || n > half {
		return 0
	}

	return -math.Pi / float64(size-1) * math.Sin(2*math.Pi*n/float64(size-1)) * sampleRate
}

// ReassignmentSet fills three length-size slices with the Hann, time-weighted
// and derivative windows used by reassignment analysis.
func ReassignmentSet(w, wt, wd []float64, sampleRate float64) error {
	size := len(w)
	if len(wt) != size || len(wd) != size {
		return errMismatchedLength
	}

	if size < 2 {
		return errWindowTooShort
	}

	for i := range w {
		n := float64(i) - float64(size-1)/2
		w[i] = HannCentered(n, size)
		wt[i] = HannTimeWeighted(n, size, sampleRate)
		wd[i] = HannDerivative(n, size, sampleRate)
	}

	return nil
}
