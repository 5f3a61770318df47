// Package pitch estimates the fundamental frequency of a short waveform buffer
// using the McLeod Pitch Method (MPM) and maps it onto a semitone scale.
//
// The pipeline has three stages:
//
//   - NSDF: the normalized square difference function is evaluated for every
//     lag of the buffer over a fixed analysis window.
//   - Peak picking: the NSDF is scanned left to right for positive-going
//     segments; one candidate is kept per segment and candidates below
//     threshold*max are discarded.
//   - Mapping: the first surviving lag is converted to Hz (sampleRate/lag)
//     and then to a fractional note index where 0 is C0 and 57 is A4.
//
// Undetected pitch is reported as [ErrNoPitch] rather than a numeric sentinel.
// Invalid buffer, window and lag combinations are rejected with sentinel errors
// instead of reading out of range.
//
// All functions are pure and allocate only call-scoped scratch memory, so a
// [Detector] may be shared between goroutines as long as each call uses its
// own sample buffer.
package pitch
