package morph

import (
	"log"
	"os"
)

// WarningSink receives non-fatal diagnostics from the processing path:
// non-finite input samples, vanishing masses, very low interpolated
// frequencies. Sinks must not block; the engines call them from the audio
// thread.
type WarningSink interface {
	Warnf(format string, args ...any)
}

// NopSink discards all warnings. It is the default sink.
type NopSink struct{}

// Warnf implements WarningSink.
func (NopSink) Warnf(string, ...any) {}

// StderrSink writes warnings to standard error.
type StderrSink struct {
	logger *log.Logger
}

// NewStderrSink creates a stderr-backed sink.
func NewStderrSink() *StderrSink {
	return &StderrSink{logger: log.New(os.Stderr, "morph: ", log.LstdFlags)}
}

// Warnf implements WarningSink.
func (s *StderrSink) Warnf(format string, args ...any) {
	s.logger.Printf(format, args...)
}

// CountingSink counts warnings, for tests and health metrics. It is not safe
// for concurrent use; each engine owns one goroutine at a time.
type CountingSink struct {
	count int
}

// Warnf implements WarningSink.
func (s *CountingSink) Warnf(string, ...any) {
	s.count++
}

// Count returns the number of warnings received.
func (s *CountingSink) Count() int {
	return s.count
}

// Reset clears the counter.
func (s *CountingSink) Reset() {
	s.count = 0
}
