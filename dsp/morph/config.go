package morph

import (
	"fmt"
	"math"
)

// Algorithm selects the morphing variant.
type Algorithm int

const (
	// AlgorithmCDF interpolates bin magnitudes along a CDF-inversion
	// transport map. Cheap: one FFT per input frame.
	AlgorithmCDF Algorithm = iota

	// AlgorithmReassignment groups reassigned spectra into masses and moves
	// them along a monotone transport plan. Three FFTs per input frame,
	// better partial tracking.
	AlgorithmReassignment
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmCDF:
		return "cdf"
	case AlgorithmReassignment:
		return "reassignment"
	default:
		return "unknown"
	}
}

// ParseAlgorithm converts a name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "cdf":
		return AlgorithmCDF, nil
	case "reassignment", "reassign":
		return AlgorithmReassignment, nil
	default:
		return AlgorithmCDF, fmt.Errorf("morph: unknown algorithm %q", name)
	}
}

const (
	defaultWindowMS      = 100.0
	defaultHopDivisor    = 4
	defaultFFTMultiplier = 2
)

// Config holds the engine configuration. It is immutable once an engine is
// built; reconfiguration rebuilds all derived state.
type Config struct {
	SampleRate    float64
	WindowMS      float64
	HopDivisor    int
	FFTMultiplier int
	Algorithm     Algorithm
	Sink          WarningSink
}

// Option mutates a Config before engine construction.
type Option func(*Config)

// WithWindowMS sets the analysis window length in milliseconds. Typical
// values are 20-200 ms; values outside that range are accepted but degrade
// quality.
func WithWindowMS(ms float64) Option {
	return func(c *Config) {
		c.WindowMS = ms
	}
}

// WithHopDivisor sets the hop divisor D. The recognised values are 2, 4
// and 8; the hop is W/D for the CDF variant and W/(2D) for reassignment.
func WithHopDivisor(d int) Option {
	return func(c *Config) {
		c.HopDivisor = d
	}
}

// WithFFTMultiplier sets the zero-padding multiplier M; the FFT length is
// nextPow2(W) * M. The recognised values are 1, 2 and 4.
func WithFFTMultiplier(m int) Option {
	return func(c *Config) {
		c.FFTMultiplier = m
	}
}

// WithAlgorithm selects the morphing variant.
func WithAlgorithm(a Algorithm) Option {
	return func(c *Config) {
		c.Algorithm = a
	}
}

// WithWarningSink injects the diagnostic sink. The default discards all
// warnings.
func WithWarningSink(sink WarningSink) Option {
	return func(c *Config) {
		if sink != nil {
			c.Sink = sink
		}
	}
}

func defaultConfig(sampleRate float64) Config {
	return Config{
		SampleRate:    sampleRate,
		WindowMS:      defaultWindowMS,
		HopDivisor:    defaultHopDivisor,
		FFTMultiplier: defaultFFTMultiplier,
		Algorithm:     AlgorithmCDF,
		Sink:          NopSink{},
	}
}

func (c Config) validate() error {
	if c.SampleRate <= 0 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("morph: sample rate must be positive and finite: %f", c.SampleRate)
	}

	if c.WindowMS <= 0 || math.IsNaN(c.WindowMS) || math.IsInf(c.WindowMS, 0) {
		return fmt.Errorf("morph: window length must be positive and finite: %f ms", c.WindowMS)
	}

	if c.HopDivisor < 1 {
		return fmt.Errorf("morph: hop divisor must be >= 1: %d", c.HopDivisor)
	}

	if c.FFTMultiplier < 1 {
		return fmt.Errorf("morph: fft multiplier must be >= 1: %d", c.FFTMultiplier)
	}

	if c.Algorithm != AlgorithmCDF && c.Algorithm != AlgorithmReassignment {
		return fmt.Errorf("morph: unknown algorithm %d", int(c.Algorithm))
	}

	return nil
}

// windowSamples returns the window length in samples at the configured rate.
func (c Config) windowSamples() (int, error) {
	w := int(c.WindowMS * c.SampleRate / 1000.0)
	if w < 2 {
		return 0, fmt.Errorf("morph: window of %g ms at %g Hz is %d samples, need >= 2",
			c.WindowMS, c.SampleRate, w)
	}

	return w, nil
}
