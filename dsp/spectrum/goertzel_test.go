package spectrum

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/mjibson/go-dsp/fft"

	"github.com/cwbudde/algo-pitch/internal/testutil"
)

func TestGoertzel_MatchesDFTBin(t *testing.T) {
	const (
		sampleRate = 8000.0
		blockSize  = 256
	)

	block := testutil.DeterministicNoise(17, 1, blockSize)
	bins := fft.FFTReal(block)

	for _, freq := range []float64{0, 250, 1000, 1234, 4000} {
		g, err := NewGoertzel(freq, sampleRate, blockSize)
		if err != nil {
			t.Fatalf("NewGoertzel(%v): %v", freq, err)
		}

		g.ProcessBlock(block)

		want := cmplx.Abs(bins[g.Bin()])
		if got := g.Magnitude(); math.Abs(got-want) > 1e-9*math.Max(want, 1) {
			t.Errorf("%v Hz (bin %d): magnitude %v, want %v", freq, g.Bin(), got, want)
		}
	}
}

func TestGoertzel_BinSnapping(t *testing.T) {
	tests := []struct {
		freq    float64
		wantBin int
		wantHz  float64
	}{
		{1000, 50, 1000},
		{1010, 51, 1020},
		{1009, 50, 1000},
		{0, 0, 0},
		{4000, 200, 4000},
	}

	for _, tt := range tests {
		g, err := NewGoertzel(tt.freq, 8000, 400)
		if err != nil {
			t.Fatalf("NewGoertzel(%v): %v", tt.freq, err)
		}
		if g.Bin() != tt.wantBin {
			t.Errorf("%v Hz: bin %d, want %d", tt.freq, g.Bin(), tt.wantBin)
		}
		if g.BinFrequency() != tt.wantHz {
			t.Errorf("%v Hz: bin frequency %v, want %v", tt.freq, g.BinFrequency(), tt.wantHz)
		}
		if g.BlockSize() != 400 {
			t.Errorf("BlockSize = %d, want 400", g.BlockSize())
		}
	}
}

func TestGoertzel_SampleVsBlock(t *testing.T) {
	sig := testutil.DeterministicSine(700, 8000, 0.3, 200)

	a, _ := NewGoertzel(700, 8000, 200)
	b, _ := NewGoertzel(700, 8000, 200)

	a.ProcessBlock(sig)
	for _, x := range sig {
		b.ProcessSample(x)
	}

	if a.Power() != b.Power() {
		t.Errorf("block power %v != sample power %v", a.Power(), b.Power())
	}
}

func TestGoertzel_Reset(t *testing.T) {
	g, _ := NewGoertzel(1000, 48000, 64)
	g.ProcessSample(1.0)

	if g.Power() == 0 {
		t.Error("power should be non-zero after processing")
	}

	g.Reset()

	if g.Power() != 0 || g.Magnitude() != 0 {
		t.Error("power should be zero after reset")
	}
	if g.PowerDB() != -300 {
		t.Errorf("PowerDB = %v, want -300 floor", g.PowerDB())
	}
}

func TestNewGoertzel_Errors(t *testing.T) {
	tests := []struct {
		name       string
		freq, rate float64
		blockSize  int
		want       error
	}{
		{"zero block", 1000, 8000, 0, ErrInvalidBlockSize},
		{"zero rate", 1000, 0, 256, ErrInvalidSampleRate},
		{"inf rate", 1000, math.Inf(1), 256, ErrInvalidSampleRate},
		{"negative freq", -1, 8000, 256, ErrInvalidFrequency},
		{"above nyquist", 4001, 8000, 256, ErrInvalidFrequency},
		{"nan freq", math.NaN(), 8000, 256, ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGoertzel(tt.freq, tt.rate, tt.blockSize); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBlockCount(t *testing.T) {
	tests := []struct {
		rate      float64
		blockSize int
		want      int
	}{
		{8000, 400, 10},
		{44100, 1024, 21},
		{44100, 22050, 1},
		{44100, 30000, 0},
		{8000, 0, 0},
		{0, 256, 0},
	}

	for _, tt := range tests {
		if got := BlockCount(tt.rate, tt.blockSize); got != tt.want {
			t.Errorf("BlockCount(%v, %d) = %d, want %d", tt.rate, tt.blockSize, got, tt.want)
		}
	}
}

func TestBlockMagnitudes_ToneAtTarget(t *testing.T) {
	const (
		sampleRate = 8000.0
		blockSize  = 400
		amplitude  = 0.5
	)

	sig := testutil.DeterministicSine(1000, sampleRate, amplitude, 4000)

	mags, err := BlockMagnitudes(sig, 1000, blockSize, sampleRate)
	if err != nil {
		t.Fatalf("BlockMagnitudes: %v", err)
	}
	if len(mags) != 10 {
		t.Fatalf("len = %d, want 10", len(mags))
	}

	want := amplitude * blockSize / 2
	for i, m := range mags {
		if math.Abs(m-want) > 1e-6*want {
			t.Errorf("block %d: magnitude %v, want %v", i, m, want)
		}
	}

	off, err := BlockMagnitudes(sig, 2000, blockSize, sampleRate)
	if err != nil {
		t.Fatalf("BlockMagnitudes: %v", err)
	}
	for i, m := range off {
		if m > 1e-6*want {
			t.Errorf("block %d: off-target magnitude %v, want ~0", i, m)
		}
	}
}

func TestBlockMagnitudes_Silence(t *testing.T) {
	mags, err := BlockMagnitudes(make([]float64, 4000), 1000, 400, 8000)
	if err != nil {
		t.Fatalf("BlockMagnitudes: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, mags, make([]float64, 10), 0)
}

func TestBlockMagnitudes_LeftoverIgnored(t *testing.T) {
	sig := testutil.DeterministicSine(1000, 8000, 1, 4000)
	tail := append(append([]float64(nil), sig...), testutil.DC(100, 399)...)

	a, err := BlockMagnitudes(sig, 1000, 400, 8000)
	if err != nil {
		t.Fatalf("BlockMagnitudes: %v", err)
	}
	b, err := BlockMagnitudes(tail, 1000, 400, 8000)
	if err != nil {
		t.Fatalf("BlockMagnitudes: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, b, a, 0)
}

func TestBlockMagnitudes_ShortSignal(t *testing.T) {
	_, err := BlockMagnitudes(make([]float64, 3999), 1000, 400, 8000)
	if !errors.Is(err, ErrShortSignal) {
		t.Fatalf("err = %v, want ErrShortSignal", err)
	}

	_, err = BlockMagnitudes(make([]float64, 4000), 1000, 0, 8000)
	if !errors.Is(err, ErrInvalidBlockSize) {
		t.Fatalf("err = %v, want ErrInvalidBlockSize", err)
	}
}

func TestBlockMagnitudesAll(t *testing.T) {
	sig := testutil.DeterministicSine(1000, 8000, 1, 1000)

	mags, err := BlockMagnitudesAll(sig, 1000, 400, 8000)
	if err != nil {
		t.Fatalf("BlockMagnitudesAll: %v", err)
	}
	if len(mags) != 2 {
		t.Fatalf("len = %d, want 2", len(mags))
	}
	testutil.RequireFinite(t, mags)
	for i, m := range mags {
		if math.Abs(m-200) > 1e-6*200 {
			t.Errorf("block %d: %v, want 200", i, m)
		}
	}
}
