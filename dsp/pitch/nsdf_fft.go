package pitch

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-pitch/dsp/spectrum"
)

// fftRoundingFloor is the fraction of the window energy below which FFT
// autocorrelation and energy terms are indistinguishable from zero.
const fftRoundingFloor = 1e-12

// NSDFSequenceFFT computes the same sequence as [NSDFSequence] in
// O(window log window).
//
// The autocorrelation term comes from the inverse transform of the power
// spectrum of the zero-padded window. The energy term comes from a prefix
// sum of squares, so it is exactly zero wherever both overlapping ranges are
// silent. Terms below the transform's rounding floor are treated as zero.
func NSDFSequenceFFT(samples []float32, window int) ([]float64, error) {
	if _, err := termCount(len(samples), 0, 0, window); err != nil {
		return nil, err
	}

	x := widen(samples[:window])
	fftSize := nextPowerOf2(2 * window)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("pitch: failed to create FFT plan: %w", err)
	}

	buf := make([]complex128, fftSize)
	for i, v := range x {
		buf[i] = complex(v, 0)
	}

	if err := plan.Forward(buf, buf); err != nil {
		return nil, fmt.Errorf("pitch: forward FFT failed: %w", err)
	}

	spectrum.PowerInPlace(buf)

	if err := plan.Inverse(buf, buf); err != nil {
		return nil, fmt.Errorf("pitch: inverse FFT failed: %w", err)
	}

	energy := make([]float64, window+1)
	for i, v := range x {
		energy[i+1] = energy[i] + v*v
	}
	total := energy[window]
	floor := fftRoundingFloor * 2 * total

	out := make([]float64, len(samples))
	for lag := 0; lag < window && lag < len(out); lag++ {
		mt := energy[window-lag] + (total - energy[lag])
		acf := real(buf[lag])
		if mt <= floor {
			continue
		}
		if math.Abs(acf) <= floor {
			acf = 0
		}
		out[lag] = nsdfValue(mt, acf)
	}

	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
