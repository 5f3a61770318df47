package pitch

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/cwbudde/algo-pitch/internal/testutil"
)

const testSampleRate = 44100.0

func TestDetector_SineFrequencies(t *testing.T) {
	t.Parallel()

	frequencies := []float64{82.41, 100, 220, 440, 1000}

	for _, useFFT := range []bool{false, true} {
		var opts []Option
		if useFFT {
			opts = append(opts, WithFFT())
		}

		d, err := NewDetector(testSampleRate, opts...)
		if err != nil {
			t.Fatalf("NewDetector: %v", err)
		}

		for _, want := range frequencies {
			t.Run(fmt.Sprintf("fft=%v/%.2fHz", useFFT, want), func(t *testing.T) {
				data := testutil.Sine32(want, testSampleRate, 0.9, 2048)

				got, err := d.Frequency(data)
				if err != nil {
					t.Fatalf("Frequency: %v", err)
				}
				if !testutil.WithinRelative(got, want, 0.02) {
					t.Errorf("Frequency = %.2f Hz, want %.2f Hz +-2%%", got, want)
				}
			})
		}
	}
}

func TestDetector_RepeatedPeriodA4(t *testing.T) {
	period := testutil.DeterministicSine(440, testSampleRate, 1, 100)
	data := testutil.Float32(testutil.RepeatPeriod(period, DefaultWindowSize+DefaultMaxLag))

	lag, err := PeakDistance(data)
	if err != nil {
		t.Fatalf("PeakDistance: %v", err)
	}
	if lag != 100 {
		t.Errorf("PeakDistance = %d, want 100", lag)
	}

	freq, err := GetFrequency(data, testSampleRate)
	if err != nil {
		t.Fatalf("GetFrequency: %v", err)
	}
	if !testutil.WithinRelative(freq, 440, 0.02) {
		t.Errorf("GetFrequency = %v, want ~440", freq)
	}

	note, err := GetPitch(data, testSampleRate)
	if err != nil {
		t.Fatalf("GetPitch: %v", err)
	}
	if math.Abs(note-57) > 0.5 {
		t.Errorf("GetPitch = %v, want ~57 (A4)", note)
	}
	if n := NoteName(note); n.Name != "A" || n.Octave != 4 {
		t.Errorf("NoteName(%v) = %v, want A4", note, n)
	}
}

func TestDetector_SilenceUndetected(t *testing.T) {
	data := make([]float32, 1024)

	if _, err := PeakDistance(data); !errors.Is(err, ErrNoPitch) {
		t.Errorf("PeakDistance err = %v, want ErrNoPitch", err)
	}
	if _, err := GetFrequency(data, testSampleRate); !errors.Is(err, ErrNoPitch) {
		t.Errorf("GetFrequency err = %v, want ErrNoPitch", err)
	}
	if _, err := GetPitch(data, testSampleRate); !errors.Is(err, ErrNoPitch) {
		t.Errorf("GetPitch err = %v, want ErrNoPitch", err)
	}
}

func TestDetector_Estimate(t *testing.T) {
	d, err := NewDetector(testSampleRate)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	est, err := d.Detect(testutil.Sine32(441, testSampleRate, 0.5, 2048))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if est.Lag != 100 {
		t.Errorf("Lag = %d, want 100", est.Lag)
	}
	if est.Frequency != 441 {
		t.Errorf("Frequency = %v, want 441", est.Frequency)
	}
	if math.Abs(est.Note-NoteIndex(441)) > 1e-12 {
		t.Errorf("Note = %v, want %v", est.Note, NoteIndex(441))
	}
	if est.Clarity <= 0.9 || est.Clarity > 1+1e-12 {
		t.Errorf("Clarity = %v, want in (0.9, 1]", est.Clarity)
	}
}

func TestDetector_ShortBuffer(t *testing.T) {
	d, _ := NewDetector(testSampleRate)

	_, err := d.Detect(make([]float32, d.MinBufferSize()-1))
	if !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("err = %v, want ErrShortBuffer", err)
	}
	if errors.Is(err, ErrNoPitch) {
		t.Fatal("short buffer must not be reported as undetected")
	}
}

func TestNewDetector_Validation(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		opts       []Option
		want       error
	}{
		{"zero rate", 0, nil, ErrInvalidSampleRate},
		{"nan rate", math.NaN(), nil, ErrInvalidSampleRate},
		{"zero window", testSampleRate, []Option{WithWindowSize(0)}, ErrInvalidWindow},
		{"tiny max lag", testSampleRate, []Option{WithMaxLag(1)}, ErrInvalidLag},
		{"zero threshold", testSampleRate, []Option{WithThreshold(0)}, ErrInvalidThreshold},
		{"threshold above one", testSampleRate, []Option{WithThreshold(1.5)}, ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDetector(tt.sampleRate, tt.opts...); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewDetector_Options(t *testing.T) {
	d, err := NewDetector(48000,
		WithWindowSize(2048),
		WithMaxLag(1200),
		WithThreshold(0.9),
		WithLogger(nil),
	)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	if d.SampleRate() != 48000 || d.WindowSize() != 2048 || d.MaxLag() != 1200 || d.Threshold() != 0.9 {
		t.Errorf("unexpected config: rate %v window %d maxLag %d threshold %v",
			d.SampleRate(), d.WindowSize(), d.MaxLag(), d.Threshold())
	}
}

func TestDetector_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d, err := NewDetector(testSampleRate, WithLogger(logger))
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	if _, err := d.Detect(testutil.Sine32(441, testSampleRate, 0.5, 2048)); err != nil {
		t.Fatalf("Detect: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "mpm peaks") || !strings.Contains(out, "lag=100") {
		t.Errorf("unexpected log output: %q", out)
	}
}

func TestDetector_Concurrent(t *testing.T) {
	d, err := NewDetector(testSampleRate)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	freqs := []float64{110, 220, 330, 440}
	results := make([]float64, len(freqs))
	errs := make([]error, len(freqs))

	var wg sync.WaitGroup
	for i, f := range freqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = d.Frequency(testutil.Sine32(f, testSampleRate, 1, 2048))
		}()
	}
	wg.Wait()

	for i, f := range freqs {
		if errs[i] != nil {
			t.Fatalf("%v Hz: %v", f, errs[i])
		}
		if !testutil.WithinRelative(results[i], f, 0.02) {
			t.Errorf("%v Hz: got %v", f, results[i])
		}
	}
}
