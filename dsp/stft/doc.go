// Package stft provides the streaming short-time Fourier transform plumbing
// for the morph engines: a two-channel framing buffer that turns arbitrary
// host buffers into hop-aligned analysis frames, a frame analyser producing
// complex spectra with optional reassigned frequencies, and a synthesiser
// that inverts an interpolated spectrum back into a windowed time frame for
// overlap-add.
//
// All FFT plans are created at construction and owned by the component; the
// per-frame paths allocate nothing.
package stft
