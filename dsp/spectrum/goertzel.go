package spectrum

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidBlockSize  = errors.New("goertzel: block size must be > 0")
	ErrInvalidSampleRate = errors.New("goertzel: sample rate must be > 0")
	ErrInvalidFrequency  = errors.New("goertzel: frequency must be between 0 and sampleRate/2")
	ErrShortSignal       = errors.New("goertzel: signal shorter than requested blocks")
)

// Goertzel evaluates a single DFT bin of fixed-size blocks.
//
// The target frequency is snapped to the nearest bin k = round(N*f/fs) of an
// N-point DFT, so a tone at an exact bin frequency with an integer number of
// cycles per block produces no leakage. Magnitude after N samples of a sine
// of amplitude A at that bin is A*N/2.
//
// The analyzer accumulates every sample processed since the last Reset.
type Goertzel struct {
	blockSize  int
	sampleRate float64
	bin        int
	coeff      float64
	s1, s2     float64
}

// NewGoertzel creates an analyzer for frequency with blockSize-point bins.
func NewGoertzel(frequency, sampleRate float64, blockSize int) (*Goertzel, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if frequency < 0 || frequency > sampleRate/2 || math.IsNaN(frequency) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrequency, frequency)
	}

	bin := int(math.Floor(0.5 + float64(blockSize)*frequency/sampleRate))
	w := 2 * math.Pi * float64(bin) / float64(blockSize)

	return &Goertzel{
		blockSize:  blockSize,
		sampleRate: sampleRate,
		bin:        bin,
		coeff:      2 * math.Cos(w),
	}, nil
}

// Reset clears the filter state.
func (g *Goertzel) Reset() {
	g.s1 = 0
	g.s2 = 0
}

// ProcessSample feeds one sample through the filter.
func (g *Goertzel) ProcessSample(x float64) {
	s0 := g.coeff*g.s1 - g.s2 + x
	g.s2 = g.s1
	g.s1 = s0
}

// ProcessBlock feeds a block of samples through the filter.
func (g *Goertzel) ProcessBlock(input []float64) {
	s1, s2 := g.s1, g.s2

	coeff := g.coeff
	for _, x := range input {
		s0 := coeff*s1 - s2 + x
		s2 = s1
		s1 = s0
	}

	g.s1, g.s2 = s1, s2
}

// Power returns |X[k]|^2 for the samples processed so far.
func (g *Goertzel) Power() float64 {
	return g.s1*g.s1 + g.s2*g.s2 - g.s1*g.s2*g.coeff
}

// Magnitude returns |X[k]|. Small negative powers from rounding clamp to 0.
func (g *Goertzel) Magnitude() float64 {
	p := g.Power()
	if p <= 0 {
		return 0
	}
	return math.Sqrt(p)
}

// PowerDB returns the power in dB with a floor at -300 dB.
func (g *Goertzel) PowerDB() float64 {
	p := g.Power()
	if p <= 1e-30 {
		return -300
	}
	return 10 * math.Log10(p)
}

// Bin returns the DFT bin index k.
func (g *Goertzel) Bin() int { return g.bin }

// BinFrequency returns the centre frequency of the analyzed bin in Hz.
func (g *Goertzel) BinFrequency() float64 {
	return float64(g.bin) * g.sampleRate / float64(g.blockSize)
}

// BlockSize returns N.
func (g *Goertzel) BlockSize() int { return g.blockSize }

// BlockCount returns floor((sampleRate/2)/blockSize), the number of blocks
// [BlockMagnitudes] analyzes: half a second of audio.
func BlockCount(sampleRate float64, blockSize int) int {
	if blockSize <= 0 || !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return 0
	}
	return int(sampleRate) / 2 / blockSize
}

// BlockMagnitudes returns the magnitude of frequency in each of the first
// [BlockCount] non-overlapping blocks of signal. Samples after the last block
// are ignored. ErrShortSignal is returned if signal cannot fill every block.
func BlockMagnitudes(signal []float64, frequency float64, blockSize int, sampleRate float64) ([]float64, error) {
	g, err := NewGoertzel(frequency, sampleRate, blockSize)
	if err != nil {
		return nil, err
	}

	blocks := BlockCount(sampleRate, blockSize)
	if need := blocks * blockSize; len(signal) < need {
		return nil, fmt.Errorf("%w: need %d samples, have %d", ErrShortSignal, need, len(signal))
	}

	return g.magnitudes(signal, blocks), nil
}

// BlockMagnitudesAll is like [BlockMagnitudes] but analyzes every complete
// block of signal regardless of the sample rate.
func BlockMagnitudesAll(signal []float64, frequency float64, blockSize int, sampleRate float64) ([]float64, error) {
	g, err := NewGoertzel(frequency, sampleRate, blockSize)
	if err != nil {
		return nil, err
	}
	return g.magnitudes(signal, len(signal)/blockSize), nil
}

func (g *Goertzel) magnitudes(signal []float64, blocks int) []float64 {
	out := make([]float64, blocks)
	for i := range out {
		g.Reset()
		g.ProcessBlock(signal[i*g.blockSize : (i+1)*g.blockSize])
		out[i] = g.Magnitude()
	}
	g.Reset()
	return out
}
