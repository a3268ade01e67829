package morph

import "fmt"

// Engine is a thin dispatcher over the two engine kinds. It exists so hosts
// can construct, reconfigure and drive a morph processor without tracking
// which variant is active; the hot path stays monomorphic inside the held
// kind.
type Engine struct {
	cfg      Config
	cdf      *CDFEngine
	reassign *ReassignmentEngine
}

// New builds an engine at the given sample rate. Options select the window
// length, hop divisor, FFT padding, algorithm variant and warning sink.
func New(sampleRate float64, opts ...Option) (*Engine, error) {
	cfg := defaultConfig(sampleRate)

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := &Engine{cfg: cfg}

	err := e.build()
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Engine) build() error {
	switch e.cfg.Algorithm {
	case AlgorithmCDF:
		cdf, err := NewCDFEngine(e.cfg)
		if err != nil {
			return err
		}

		e.cdf = cdf
		e.reassign = nil
	case AlgorithmReassignment:
		re, err := NewReassignmentEngine(e.cfg)
		if err != nil {
			return err
		}

		e.reassign = re
		e.cdf = nil
	default:
		return fmt.Errorf("morph: unknown algorithm %d", int(e.cfg.Algorithm))
	}

	return nil
}

// Process writes len(out) morphed samples; see the engine kinds for the
// contract details.
func (e *Engine) Process(out, mainIn, sideIn []float32, k float64) error {
	if e.cdf != nil {
		return e.cdf.Process(out, mainIn, sideIn, k)
	}

	return e.reassign.Process(out, mainIn, sideIn, k)
}

// Reset zeroes all buffers and phase state.
func (e *Engine) Reset() {
	if e.cdf != nil {
		e.cdf.Reset()

		return
	}

	e.reassign.Reset()
}

// Latency returns the constant input-to-output delay in samples.
func (e *Engine) Latency() int {
	if e.cdf != nil {
		return e.cdf.Latency()
	}

	return e.reassign.Latency()
}

// SampleRate returns the configured sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.cfg.SampleRate }

// WindowSize returns the analysis window length in samples.
func (e *Engine) WindowSize() int {
	if e.cdf != nil {
		return e.cdf.WindowSize()
	}

	return e.reassign.WindowSize()
}

// HopSize returns the hop length in samples.
func (e *Engine) HopSize() int {
	if e.cdf != nil {
		return e.cdf.HopSize()
	}

	return e.reassign.HopSize()
}

// FFTSize returns the padded transform length.
func (e *Engine) FFTSize() int {
	if e.cdf != nil {
		return e.cdf.FFTSize()
	}

	return e.reassign.FFTSize()
}

// Bins returns the one-sided spectrum bin count.
func (e *Engine) Bins() int {
	if e.cdf != nil {
		return e.cdf.Bins()
	}

	return e.reassign.Bins()
}

// Algorithm returns the active variant.
func (e *Engine) Algorithm() Algorithm { return e.cfg.Algorithm }

// SetSampleRate rebuilds derived state for a new sample rate, preserving the
// window duration, hop divisor and FFT multiplier. Must not be called
// concurrently with Process.
func (e *Engine) SetSampleRate(sampleRate float64) error {
	cfg := e.cfg
	cfg.SampleRate = sampleRate

	err := cfg.validate()
	if err != nil {
		return err
	}

	e.cfg = cfg

	if e.cdf != nil {
		return e.cdf.SetSampleRate(sampleRate)
	}

	return e.reassign.SetSampleRate(sampleRate)
}

// SetWindowMS rebuilds derived state for a new window duration. Must not be
// called concurrently with Process.
func (e *Engine) SetWindowMS(ms float64) error {
	cfg := e.cfg
	cfg.WindowMS = ms

	err := cfg.validate()
	if err != nil {
		return err
	}

	if _, err := cfg.windowSamples(); err != nil {
		return err
	}

	e.cfg = cfg

	return e.build()
}

// SetAlgorithm switches the active variant, rebuilding all state. Must not
// be called concurrently with Process.
func (e *Engine) SetAlgorithm(a Algorithm) error {
	if a != AlgorithmCDF && a != AlgorithmReassignment {
		return fmt.Errorf("morph: unknown algorithm %d", int(a))
	}

	if a == e.cfg.Algorithm {
		return nil
	}

	e.cfg.Algorithm = a

	return e.build()
}
