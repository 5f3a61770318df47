package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Sine32 is DeterministicSine narrowed to single precision, the sample format
// the pitch detector consumes.
func Sine32(freqHz, sampleRate, amplitude float64, length int) []float32 {
	return Float32(DeterministicSine(freqHz, sampleRate, amplitude, length))
}

// DeterministicNoise generates white noise with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// RepeatPeriod tiles period until the result holds length samples.
func RepeatPeriod(period []float64, length int) []float64 {
	out := make([]float64, length)
	if len(period) == 0 {
		return out
	}
	for i := range out {
		out[i] = period[i%len(period)]
	}
	return out
}

// Float32 narrows a float64 slice.
func Float32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
