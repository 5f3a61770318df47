// Package spectrum provides single-bin and power-spectrum helpers.
//
// [Goertzel] evaluates one DFT bin with a second-order recursive filter and
// [BlockMagnitudes] applies it to consecutive non-overlapping blocks of a
// signal. [PowerInPlace] turns FFT bins into a power spectrum, the step
// between forward and inverse transform in FFT autocorrelation.
package spectrum
