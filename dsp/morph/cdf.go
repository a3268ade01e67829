package morph

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/RichardJohnn/audio-transport/dsp/buffer"
	"github.com/RichardJohnn/audio-transport/dsp/core"
	"github.com/RichardJohnn/audio-transport/dsp/stft"
	"github.com/RichardJohnn/audio-transport/dsp/transport"
)

const silenceThreshold = 1e-10

// CDFEngine morphs two streams by interpolating bin magnitudes along a
// CDF-inversion optimal transport map. One forward FFT per stream per frame.
type CDFEngine struct {
	cfg Config

	windowSize int
	hop        int
	fftSize    int
	bins       int
	latency    int

	framer   *stft.Framer
	analyzer *stft.Analyzer
	synth    *stft.Synthesizer
	ola      *buffer.Ring
	planner  *transport.CDFPlanner

	specX *stft.FrameSpectrum
	specY *stft.FrameSpectrum

	mainFrame  []float64
	sideFrame  []float64
	synthFrame []float64

	magX []float64
	magY []float64
	phX  []float64
	phY  []float64
	reS  []float64
	imS  []float64

	magOut    []float64
	weightSum []float64
	phaseNum  []float64

	synthValues []complex128
	phases      []float64

	sink WarningSink
}

// NewCDFEngine builds a CDF-variant engine from the configuration.
func NewCDFEngine(cfg Config) (*CDFEngine, error) {
	if cfg.Sink == nil {
		cfg.Sink = NopSink{}
	}

	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	e := &CDFEngine{cfg: cfg, sink: cfg.Sink}

	err = e.rebuildState()
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (e *CDFEngine) rebuildState() error {
	w, err := e.cfg.windowSamples()
	if err != nil {
		return err
	}

	hop := w / e.cfg.HopDivisor
	if hop < 1 {
		return fmt.Errorf("morph: window of %d samples too short for hop divisor %d", w, e.cfg.HopDivisor)
	}

	fftSize := core.NextPow2(w) * e.cfg.FFTMultiplier
	bins := fftSize/2 + 1

	e.windowSize = w
	e.hop = hop
	e.fftSize = fftSize
	e.bins = bins
	e.latency = w

	e.framer, err = stft.NewFramer(w, hop)
	if err != nil {
		return err
	}

	e.analyzer, err = stft.NewAnalyzer(w, fftSize, e.cfg.SampleRate, false)
	if err != nil {
		return err
	}

	e.synth, err = stft.NewSynthesizer(w, fftSize, hop)
	if err != nil {
		return err
	}

	e.ola, err = buffer.NewRing(2 * w)
	if err != nil {
		return err
	}

	e.planner, err = transport.NewCDFPlanner(bins)
	if err != nil {
		return err
	}

	e.specX = stft.NewFrameSpectrum(bins)
	e.specY = stft.NewFrameSpectrum(bins)

	e.mainFrame = make([]float64, w)
	e.sideFrame = make([]float64, w)
	e.synthFrame = make([]float64, w)

	e.magX = make([]float64, bins)
	e.magY = make([]float64, bins)
	e.phX = make([]float64, bins)
	e.phY = make([]float64, bins)
	e.reS = make([]float64, bins)
	e.imS = make([]float64, bins)

	e.magOut = make([]float64, bins)
	e.weightSum = make([]float64, bins)
	e.phaseNum = make([]float64, bins)

	e.synthValues = make([]complex128, bins)
	e.phases = make([]float64, bins)

	e.Reset()

	return nil
}

// SampleRate returns the configured sample rate in Hz.
func (e *CDFEngine) SampleRate() float64 { return e.cfg.SampleRate }

// WindowSize returns the analysis window length in samples.
func (e *CDFEngine) WindowSize() int { return e.windowSize }

// HopSize returns the hop length in samples.
func (e *CDFEngine) HopSize() int { return e.hop }

// FFTSize returns the padded transform length.
func (e *CDFEngine) FFTSize() int { return e.fftSize }

// Bins returns the one-sided spectrum bin count.
func (e *CDFEngine) Bins() int { return e.bins }

// Latency returns the constant input-to-output delay in samples.
func (e *CDFEngine) Latency() int { return e.latency }

// Algorithm returns AlgorithmCDF.
func (e *CDFEngine) Algorithm() Algorithm { return AlgorithmCDF }

// Reset zeroes all circular buffers and phase state.
func (e *CDFEngine) Reset() {
	e.framer.Reset()
	e.ola.Reset()
	e.ola.SetWriteOffset(e.hop)

	for i := range e.phases {
		e.phases[i] = 0
	}
}

// SetSampleRate rebuilds all derived state for a new sample rate, preserving
// the window duration, hop divisor and FFT multiplier. Must not be called
// concurrently with Process.
func (e *CDFEngine) SetSampleRate(sampleRate float64) error {
	cfg := e.cfg
	cfg.SampleRate = sampleRate

	err := cfg.validate()
	if err != nil {
		return err
	}

	e.cfg = cfg

	return e.rebuildState()
}

// Process consumes len(out) samples from both inputs and writes exactly
// len(out) morphed samples. k is clamped to [0,1]; 0 yields the main input,
// 1 the sidechain, both delayed by Latency(). out may alias mainIn for
// in-place processing; it must not alias sideIn.
func (e *CDFEngine) Process(out, mainIn, sideIn []float32, k float64) error {
	err := checkProcessArgs(out, mainIn, sideIn)
	if err != nil {
		return err
	}

	k = core.Clamp(k, 0, 1)
	warned := false

	for i := range out {
		m := float64(mainIn[i])
		s := float64(sideIn[i])

		if !core.Finite(m) || !core.Finite(s) {
			if !warned {
				e.sink.Warnf("non-finite input sample at offset %d, substituting silence", i)

				warned = true
			}

			if !core.Finite(m) {
				m = 0
			}

			if !core.Finite(s) {
				s = 0
			}
		}

		if e.framer.Push(m, s) {
			e.framer.Frame(e.mainFrame, e.sideFrame)

			err = e.processFrame(k)
			if err != nil {
				return err
			}

			e.ola.Accumulate(e.synthFrame, e.hop)
		}

		out[i] = float32(e.ola.ReadAndClear())
	}

	return nil
}

func (e *CDFEngine) processFrame(k float64) error {
	err := e.analyzer.Analyze(e.mainFrame, e.specX)
	if err != nil {
		return err
	}

	err = e.analyzer.Analyze(e.sideFrame, e.specY)
	if err != nil {
		return err
	}

	e.specX.Magnitudes(e.magX, e.reS, e.imS)
	e.specY.Magnitudes(e.magY, e.reS, e.imS)
	e.specX.Phases(e.phX)
	e.specY.Phases(e.phY)

	sumX := 0.0
	sumY := 0.0

	for i := range e.bins {
		sumX += e.magX[i]
		sumY += e.magY[i]
	}

	switch {
	case sumX < silenceThreshold && sumY < silenceThreshold:
		for i := range e.synthValues {
			e.synthValues[i] = 0
		}
	case sumX < silenceThreshold:
		// Silent main: the morph degenerates to the sidechain scaled by k.
		ck := complex(k, 0)
		for i := range e.synthValues {
			e.synthValues[i] = e.specY.Values[i] * ck
			e.phases[i] = e.phY[i]
		}
	case sumY < silenceThreshold:
		ck := complex(1-k, 0)
		for i := range e.synthValues {
			e.synthValues[i] = e.specX.Values[i] * ck
			e.phases[i] = e.phX[i]
		}
	default:
		err = e.interpolate(k)
		if err != nil {
			return err
		}
	}

	return e.synth.Synthesize(e.synthValues, e.synthFrame)
}

// interpolate distributes transported magnitude to fractional bin positions
// and blends phases weighted by the placed magnitude.
func (e *CDFEngine) interpolate(k float64) error {
	tmap, err := e.planner.Map(e.magX, e.magY)
	if err != nil {
		return err
	}

	for i := range e.bins {
		e.magOut[i] = 0
		e.weightSum[i] = 0
		e.phaseNum[i] = 0
	}

	for i := range e.bins {
		j := tmap[i]

		pos := (1-k)*float64(i) + k*float64(j)
		mag := (1-k)*e.magX[i] + k*e.magY[j]

		low := int(math.Floor(pos))
		high := int(math.Ceil(pos))
		frac := pos - float64(low)

		low = clampBin(low, e.bins)
		high = clampBin(high, e.bins)

		w := (1 - frac) * mag
		e.magOut[low] += w
		e.weightSum[low] += w
		e.phaseNum[low] += w * e.phX[i]

		if high != low {
			w = frac * mag
			e.magOut[high] += w
			e.weightSum[high] += w
			e.phaseNum[high] += w * e.phX[i]
		}
	}

	for i := range e.bins {
		ph := e.phY[i]
		if e.weightSum[i] > silenceThreshold {
			ph = e.phaseNum[i] / e.weightSum[i]
		}

		e.synthValues[i] = cmplx.Rect(e.magOut[i], ph)
		e.phases[i] = ph
	}

	return nil
}

func clampBin(i, bins int) int {
	if i < 0 {
		return 0
	}

	if i >= bins {
		return bins - 1
	}

	return i
}

// checkProcessArgs validates the host buffers shared by both engine kinds.
func checkProcessArgs(out, mainIn, sideIn []float32) error {
	if len(out) != len(mainIn) || len(out) != len(sideIn) {
		return fmt.Errorf("morph: buffer lengths out=%d main=%d sidechain=%d must match",
			len(out), len(mainIn), len(sideIn))
	}

	if len(out) > 0 && &out[0] == &sideIn[0] {
		return fmt.Errorf("morph: output buffer must not alias the sidechain input")
	}

	return nil
}
