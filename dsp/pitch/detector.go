package pitch

import (
	"fmt"
	"log/slog"
)

const (
	// DefaultWindowSize is the NSDF analysis window in samples.
	DefaultWindowSize = 1024

	// DefaultMaxLag caps the peak search. At 44.1 kHz the lowest reportable
	// fundamental is about 59 Hz.
	DefaultMaxLag = 750

	// DefaultThreshold is the fraction of the strongest candidate a peak must
	// reach to be kept.
	DefaultThreshold = 0.85
)

// Option configures a [Detector].
type Option func(*config)

type config struct {
	windowSize int
	maxLag     int
	threshold  float64
	useFFT     bool
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{
		windowSize: DefaultWindowSize,
		maxLag:     DefaultMaxLag,
		threshold:  DefaultThreshold,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// WithWindowSize sets the NSDF analysis window.
func WithWindowSize(n int) Option {
	return func(c *config) {
		c.windowSize = n
	}
}

// WithMaxLag sets the largest lag considered by peak picking.
func WithMaxLag(n int) Option {
	return func(c *config) {
		c.maxLag = n
	}
}

// WithThreshold sets the relative peak threshold (kFactor).
func WithThreshold(k float64) Option {
	return func(c *config) {
		c.threshold = k
	}
}

// WithFFT computes the NSDF with [NSDFSequenceFFT] instead of the direct sums.
func WithFFT() Option {
	return func(c *config) {
		c.useFFT = true
	}
}

// WithLogger sets a logger for debug output. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Estimate is a detected pitch.
type Estimate struct {
	// Lag is the period in samples.
	Lag int
	// Frequency is SampleRate/Lag in Hz.
	Frequency float64
	// Note is the fractional note index, 0 = C0.
	Note float64
	// Clarity is the NSDF value at Lag, at most 1.
	Clarity float64
}

// Detector runs the McLeod pitch method on fixed-size buffers.
//
// A Detector holds only read-only configuration and is safe for concurrent
// use.
type Detector struct {
	sampleRate float64
	cfg        config
}

// NewDetector validates the configuration and returns a detector for audio
// sampled at sampleRate Hz.
func NewDetector(sampleRate float64, opts ...Option) (*Detector, error) {
	if !validSampleRate(sampleRate) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.windowSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, cfg.windowSize)
	}
	if cfg.maxLag < 2 {
		return nil, fmt.Errorf("%w: max lag %d", ErrInvalidLag, cfg.maxLag)
	}
	if !(cfg.threshold > 0 && cfg.threshold <= 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, cfg.threshold)
	}

	return &Detector{sampleRate: sampleRate, cfg: cfg}, nil
}

// SampleRate returns the configured sample rate in Hz.
func (d *Detector) SampleRate() float64 { return d.sampleRate }

// WindowSize returns the NSDF analysis window in samples.
func (d *Detector) WindowSize() int { return d.cfg.windowSize }

// MaxLag returns the peak search limit in samples.
func (d *Detector) MaxLag() int { return d.cfg.maxLag }

// Threshold returns the relative peak threshold.
func (d *Detector) Threshold() float64 { return d.cfg.threshold }

// MinBufferSize is the shortest buffer Detect accepts.
func (d *Detector) MinBufferSize() int { return d.cfg.windowSize }

// NSDF returns the NSDF sequence of samples, one value per lag.
func (d *Detector) NSDF(samples []float32) ([]float64, error) {
	if d.cfg.useFFT {
		return NSDFSequenceFFT(samples, d.cfg.windowSize)
	}
	return NSDFSequence(samples, d.cfg.windowSize)
}

// Detect estimates the pitch of samples. It returns [ErrNoPitch] when no
// periodicity peak is found.
func (d *Detector) Detect(samples []float32) (Estimate, error) {
	nsdf, err := d.NSDF(samples)
	if err != nil {
		return Estimate{}, err
	}

	peaks := Peaks(nsdf, d.cfg.maxLag)
	kept := FilterPeaks(peaks, d.cfg.threshold)

	d.cfg.logger.Debug("mpm peaks",
		"samples", len(samples),
		"candidates", len(peaks),
		"kept", len(kept),
	)

	if len(kept) == 0 {
		return Estimate{}, ErrNoPitch
	}

	best := kept[0]
	freq, ok := FrequencyFromLag(best.Lag, d.sampleRate)
	if !ok {
		return Estimate{}, fmt.Errorf("%w: lag %d", ErrNoPitch, best.Lag)
	}

	est := Estimate{
		Lag:       best.Lag,
		Frequency: freq,
		Note:      NoteIndex(freq),
		Clarity:   best.Value,
	}

	d.cfg.logger.Debug("mpm pitch",
		"lag", est.Lag,
		"frequency", est.Frequency,
		"note", est.Note,
		"clarity", est.Clarity,
	)

	return est, nil
}

// PeakDistance returns the detected period in samples.
func (d *Detector) PeakDistance(samples []float32) (int, error) {
	est, err := d.Detect(samples)
	if err != nil {
		return 0, err
	}
	return est.Lag, nil
}

// Frequency returns the detected fundamental in Hz.
func (d *Detector) Frequency(samples []float32) (float64, error) {
	est, err := d.Detect(samples)
	if err != nil {
		return 0, err
	}
	return est.Frequency, nil
}

// Pitch returns the detected note index (0 = C0).
func (d *Detector) Pitch(samples []float32) (float64, error) {
	est, err := d.Detect(samples)
	if err != nil {
		return 0, err
	}
	return est.Note, nil
}

// GetPitch returns the note index of samples using the default configuration.
func GetPitch(samples []float32, sampleRate float64) (float64, error) {
	d, err := NewDetector(sampleRate)
	if err != nil {
		return 0, err
	}
	return d.Pitch(samples)
}

// GetFrequency returns the fundamental of samples in Hz using the default
// configuration.
func GetFrequency(samples []float32, sampleRate float64) (float64, error) {
	d, err := NewDetector(sampleRate)
	if err != nil {
		return 0, err
	}
	return d.Frequency(samples)
}

// PeakDistance returns the period of samples in samples using the default
// configuration. It does not depend on the sample rate.
func PeakDistance(samples []float32) (int, error) {
	nsdf, err := NSDFSequence(samples, DefaultWindowSize)
	if err != nil {
		return 0, err
	}

	lag, ok := PeakLag(nsdf, DefaultMaxLag, DefaultThreshold)
	if !ok {
		return 0, ErrNoPitch
	}
	return lag, nil
}
