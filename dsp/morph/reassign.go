package morph

import (
	"math"
	"math/cmplx"

	"github.com/RichardJohnn/audio-transport/dsp/buffer"
	"github.com/RichardJohnn/audio-transport/dsp/core"
	"github.com/RichardJohnn/audio-transport/dsp/stft"
	"github.com/RichardJohnn/audio-transport/dsp/transport"
)

// lowFreqCutoffHz is the carrier frequency below which placed mass is
// attenuated; DC-adjacent bins would otherwise receive meaningless phase and
// crackle.
const lowFreqCutoffHz = 30.0

// ReassignmentEngine morphs two streams by partitioning their reassigned
// spectra into masses and moving mass between matched partials along a
// monotone transport plan. Three forward FFTs per stream per frame.
type ReassignmentEngine struct {
	cfg Config

	windowSize    int
	hop           int
	fftSize       int
	bins          int
	latency       int
	windowSeconds float64

	framer   *stft.Framer
	analyzer *stft.Analyzer
	synth    *stft.Synthesizer
	ola      *buffer.Ring

	grouperX *transport.Grouper
	grouperY *transport.Grouper
	plan     []transport.Triple

	specX *stft.FrameSpectrum
	specY *stft.FrameSpectrum

	mainFrame  []float64
	sideFrame  []float64
	synthFrame []float64

	magX []float64
	magY []float64
	reS  []float64
	imS  []float64

	synthValues []complex128
	phases      []float64
	newPhases   []float64
	newAmps     []float64
	outFreq     []float64

	sink WarningSink
}

// NewReassignmentEngine builds a reassignment-variant engine from the
// configuration.
func NewReassignmentEngine(cfg Config) (*ReassignmentEngine, error) {
	if cfg.Sink == nil {
		cfg.Sink = NopSink{}
	}

	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	e := &ReassignmentEngine{cfg: cfg, sink: cfg.Sink}

	err = e.rebuildState()
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (e *ReassignmentEngine) rebuildState() error {
	w, err := e.cfg.windowSamples()
	if err != nil {
		return err
	}

	// The window is rounded up to a multiple of 2D so the hop divides it
	// exactly.
	step := 2 * e.cfg.HopDivisor
	w = (w + step - 1) / step * step

	hop := w / step

	fftSize := core.NextPow2(w) * e.cfg.FFTMultiplier
	bins := fftSize/2 + 1

	e.windowSize = w
	e.hop = hop
	e.fftSize = fftSize
	e.bins = bins
	e.latency = w
	e.windowSeconds = float64(w) / e.cfg.SampleRate

	e.framer, err = stft.NewFramer(w, hop)
	if err != nil {
		return err
	}

	e.analyzer, err = stft.NewAnalyzer(w, fftSize, e.cfg.SampleRate, true)
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

	e.grouperX, err = transport.NewGrouper(bins)
	if err != nil {
		return err
	}

	e.grouperY, err = transport.NewGrouper(bins)
	if err != nil {
		return err
	}

	e.plan = make([]transport.Triple, 0, 2*bins+2)

	e.specX = stft.NewFrameSpectrum(bins)
	e.specY = stft.NewFrameSpectrum(bins)

	e.mainFrame = make([]float64, w)
	e.sideFrame = make([]float64, w)
	e.synthFrame = make([]float64, w)

	e.magX = make([]float64, bins)
	e.magY = make([]float64, bins)
	e.reS = make([]float64, bins)
	e.imS = make([]float64, bins)

	e.synthValues = make([]complex128, bins)
	e.phases = make([]float64, bins)
	e.newPhases = make([]float64, bins)
	e.newAmps = make([]float64, bins)
	e.outFreq = make([]float64, bins)

	e.Reset()

	return nil
}

// SampleRate returns the configured sample rate in Hz.
func (e *ReassignmentEngine) SampleRate() float64 { return e.cfg.SampleRate }

// WindowSize returns the analysis window length in samples.
func (e *ReassignmentEngine) WindowSize() int { return e.windowSize }

// HopSize returns the hop length in samples.
func (e *ReassignmentEngine) HopSize() int { return e.hop }

// FFTSize returns the padded transform length.
func (e *ReassignmentEngine) FFTSize() int { return e.fftSize }

// Bins returns the one-sided spectrum bin count.
func (e *ReassignmentEngine) Bins() int { return e.bins }

// Latency returns the constant input-to-output delay in samples.
func (e *ReassignmentEngine) Latency() int { return e.latency }

// Algorithm returns AlgorithmReassignment.
func (e *ReassignmentEngine) Algorithm() Algorithm { return AlgorithmReassignment }

// Reset zeroes all circular buffers and phase state.
func (e *ReassignmentEngine) Reset() {
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
func (e *ReassignmentEngine) SetSampleRate(sampleRate float64) error {
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
// len(out) morphed samples. k is clamped to [0,1]. out may alias mainIn; it
// must not alias sideIn.
func (e *ReassignmentEngine) Process(out, mainIn, sideIn []float32, k float64) error {
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

func (e *ReassignmentEngine) processFrame(k float64) error {
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
		e.scaleSide(e.specY, e.magY, k)
	case sumY < silenceThreshold:
		e.scaleSide(e.specX, e.magX, 1-k)
	default:
		err = e.interpolate(k)
		if err != nil {
			return err
		}
	}

	return e.synth.Synthesize(e.synthValues, e.synthFrame)
}

// scaleSide handles the silent-input shortcut: the surviving side is copied
// out scaled by its blend weight and the phase state tracks its partials so
// a later transition back to transport stays coherent.
func (e *ReassignmentEngine) scaleSide(spec *stft.FrameSpectrum, mags []float64, weight float64) {
	cw := complex(weight, 0)

	for i := range e.synthValues {
		e.synthValues[i] = spec.Values[i] * cw

		if mags[i] > 0 {
			ph := math.Atan2(imag(spec.Values[i]), real(spec.Values[i]))
			e.phases[i] = ph + spec.FreqReassigned[i]*e.windowSeconds/2
		}
	}
}

func (e *ReassignmentEngine) interpolate(k float64) error {
	massesX, err := e.grouperX.Group(e.magX, e.specX.Freq, e.specX.FreqReassigned)
	if err != nil {
		return err
	}

	massesY, err := e.grouperY.Group(e.magY, e.specY.Freq, e.specY.FreqReassigned)
	if err != nil {
		return err
	}

	e.plan = transport.Matrix(e.plan, massesX, massesY)

	for i := range e.bins {
		e.synthValues[i] = 0
		e.newPhases[i] = 0
		e.newAmps[i] = 0
		e.outFreq[i] = 0
	}

	for _, tr := range e.plan {
		e.placeTriple(tr, massesX[tr.Left], massesY[tr.Right], k)
	}

	copy(e.phases, e.newPhases)

	return nil
}

// placeTriple realises one transport plan entry: it derives the interpolated
// centre bin and carrier frequency, propagates phase so the partial advances
// by exactly one hop per frame, and places both source masses around the new
// centre.
func (e *ReassignmentEngine) placeTriple(tr transport.Triple, left, right transport.Mass, k float64) {
	cl := float64(left.CenterBin)
	cr := float64(right.CenterBin)

	centerBin := int(math.Round((1-k)*cl + k*cr))

	// Re-derive the blend that the rounded centre actually realises so the
	// carrier frequency lands on the same partial track.
	kr := k
	if left.CenterBin != right.CenterBin {
		kr = (float64(centerBin) - cl) / (cr - cl)
	}

	freq := (1-kr)*e.specX.FreqReassigned[left.CenterBin] + kr*e.specY.FreqReassigned[right.CenterBin]

	if !core.Finite(e.phases[centerBin]) {
		e.sink.Warnf("invalid phase at bin %d, resetting to 0", centerBin)

		e.phases[centerBin] = 0
	}

	quarter := freq * e.windowSeconds / 4
	centerPhase := e.phases[centerBin] + quarter - math.Pi*float64(centerBin)
	nextPhase := centerPhase + quarter + math.Pi*float64(centerBin)

	leftScale := 0.0

	switch {
	case left.Mass > silenceThreshold:
		leftScale = (1 - k) * tr.Mass / left.Mass
	case left.Mass > 0:
		e.sink.Warnf("very small source mass %g at bin %d, clamping scale", left.Mass, left.CenterBin)

		leftScale = 1 - k
	}

	rightScale := 0.0

	switch {
	case right.Mass > silenceThreshold:
		rightScale = k * tr.Mass / right.Mass
	case right.Mass > 0:
		e.sink.Warnf("very small target mass %g at bin %d, clamping scale", right.Mass, right.CenterBin)

		rightScale = k
	}

	e.placeMass(left, centerBin, leftScale, freq, centerPhase, nextPhase, e.specX)
	e.placeMass(right, centerBin, rightScale, freq, centerPhase, nextPhase, e.specY)
}

// placeMass copies the bins of one source mass to their new centre, rotated
// so the mass centre carries centerPhase, and keeps the per-bin amplitude
// envelope that decides which carrier owns each bin's next-frame phase.
func (e *ReassignmentEngine) placeMass(
	mass transport.Mass,
	centerBin int,
	scale float64,
	freq float64,
	centerPhase float64,
	nextPhase float64,
	src *stft.FrameSpectrum,
) {
	if !core.Finite(scale) || scale < 0 {
		e.sink.Warnf("invalid scale %g at bin %d, skipping mass placement", scale, centerBin)

		return
	}

	if !core.Finite(freq) {
		e.sink.Warnf("invalid carrier frequency at bin %d, skipping mass placement", centerBin)

		return
	}

	freqHz := math.Abs(freq) / (2 * math.Pi)
	if freqHz < lowFreqCutoffHz {
		att := freqHz / lowFreqCutoffHz
		scale *= att * att

		if att < 0.5 && scale > 1e-3 {
			e.sink.Warnf("attenuating low carrier frequency %g Hz", freqHz)
		}
	}

	center := src.Values[mass.CenterBin]
	phaseShift := centerPhase - math.Atan2(imag(center), real(center))

	if !core.Finite(phaseShift) {
		e.sink.Warnf("invalid phase shift at bin %d, skipping mass placement", centerBin)

		return
	}

	for i := mass.LeftBin; i < mass.RightBin; i++ {
		newI := i + centerBin - mass.CenterBin
		if newI < 0 || newI >= e.bins {
			continue
		}

		v := src.Values[i]
		mag := scale * math.Hypot(real(v), imag(v))
		ph := phaseShift + math.Atan2(imag(v), real(v))

		if !core.Finite(mag) || !core.Finite(ph) {
			e.sink.Warnf("non-finite bin contribution at %d, skipping", newI)

			continue
		}

		e.synthValues[newI] += cmplx.Rect(mag, ph)

		if mag > e.newAmps[newI] {
			e.newAmps[newI] = mag

			if core.Finite(nextPhase) {
				e.newPhases[newI] = nextPhase
			} else {
				e.sink.Warnf("invalid next phase at bin %d, keeping previous phase", newI)
			}

			e.outFreq[newI] = freq
		}
	}
}
