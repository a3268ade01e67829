// Package transport computes 1-D optimal transport plans between magnitude
// spectra. Two planners are provided: a CDF-inversion map over raw bins
// (cheap, used by the CDF morph engine) and a monotone mass-to-mass matcher
// over grouped spectral masses (used by the reassignment engine). Both are
// pure index/accumulator arithmetic; planners reuse their scratch so the
// per-frame paths allocate nothing.
package transport
