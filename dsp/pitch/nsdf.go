package pitch

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// termCount validates a (time, lag, window) triple against a buffer of n
// samples and returns how many products the sums at that lag contain.
// Lags at or beyond the window contribute no terms.
func termCount(n, time, lag, window int) (int, error) {
	if window <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	if time < 0 || lag < 0 {
		return 0, fmt.Errorf("%w: time=%d lag=%d", ErrInvalidLag, time, lag)
	}
	if window > n || time > n-window {
		return 0, fmt.Errorf("%w: time %d window %d, have %d samples", ErrShortBuffer, time, window, n)
	}
	if lag >= window {
		return 0, nil
	}
	return window - lag, nil
}

// widen copies single-precision samples into a new float64 slice.
func widen(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = float64(v)
	}
	return out
}

// nsdfValue combines the energy and autocorrelation terms. A window with no
// energy has zero similarity instead of 0/0.
func nsdfValue(mt, acf float64) float64 {
	if mt == 0 {
		return 0
	}
	return 1 - (mt-2*acf)/mt
}

// ACF returns the type II autocorrelation
//
//	sum_{i=time}^{time+window-lag-1} x[i]*x[i+lag]
//
// samples must hold at least time+window values.
func ACF(samples []float32, time, lag, window int) (float64, error) {
	terms, err := termCount(len(samples), time, lag, window)
	if err != nil || terms == 0 {
		return 0, err
	}
	a := widen(samples[time : time+terms])
	b := widen(samples[time+lag : time+lag+terms])
	return floats.Dot(a, b), nil
}

// SquareSum returns the energy term m'(lag) of the square difference function
//
//	sum_{i=time}^{time+window-lag-1} x[i]^2 + x[i+lag]^2
func SquareSum(samples []float32, time, lag, window int) (float64, error) {
	terms, err := termCount(len(samples), time, lag, window)
	if err != nil || terms == 0 {
		return 0, err
	}
	a := widen(samples[time : time+terms])
	b := widen(samples[time+lag : time+lag+terms])
	energy := make([]float64, terms)
	vecmath.Power(energy, a, b)
	return floats.Sum(energy), nil
}

// NSDF returns the normalized square difference 1 - (m'-2r')/m' at lag.
// The result lies in [-1, 1]; a silent window yields 0.
func NSDF(samples []float32, time, lag, window int) (float64, error) {
	mt, err := SquareSum(samples, time, lag, window)
	if err != nil {
		return 0, err
	}
	acf, err := ACF(samples, time, lag, window)
	if err != nil {
		return 0, err
	}
	return nsdfValue(mt, acf), nil
}

// NSDFSequence evaluates the NSDF at time 0 for every lag in [0, len(samples)).
// Lags at or beyond window have no overlap and are reported as 0.
//
// Cost is O(len(samples) * window); see [NSDFSequenceFFT] for the
// transform-based equivalent.
func NSDFSequence(samples []float32, window int) ([]float64, error) {
	if _, err := termCount(len(samples), 0, 0, window); err != nil {
		return nil, err
	}

	x := widen(samples[:window])
	out := make([]float64, len(samples))
	energy := make([]float64, window)

	for lag := 0; lag < window && lag < len(out); lag++ {
		n := window - lag
		a, b := x[:n], x[lag:window]
		vecmath.Power(energy[:n], a, b)
		out[lag] = nsdfValue(floats.Sum(energy[:n]), floats.Dot(a, b))
	}

	return out, nil
}
