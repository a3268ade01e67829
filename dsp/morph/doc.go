// Package morph implements the real-time spectral morphing engines. Two
// engine kinds share one streaming STFT skeleton: CDFEngine interpolates bin
// magnitudes along a cumulative-distribution transport map, and
// ReassignmentEngine groups reassigned spectra into masses and moves them
// along a monotone 1-D transport plan with phase-coherent placement.
//
// Engines consume arbitrarily sized paired sample buffers and emit the same
// number of output samples per call with a constant reported latency. The
// processing path never allocates, never blocks, and never fails for finite
// or non-finite audio input; anomalies go to an injected WarningSink.
//
// A thin Engine dispatcher holds whichever kind the configuration selects so
// hosts can switch algorithms without tracking two types.
package morph
