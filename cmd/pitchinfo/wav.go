package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

var errNotWAV = errors.New("not a valid WAV file")

// clip is a decoded recording reduced to its first channel and scaled to
// [-1, 1).
type clip struct {
	samples    []float64
	sampleRate float64
}

func (c *clip) duration() float64 {
	return float64(len(c.samples)) / c.sampleRate
}

func loadWAV(path string) (*clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, errNotWAV)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%s: %w: missing channel count or sample rate", path, errNotWAV)
	}
	channels := buf.Format.NumChannels

	// 8-bit PCM is unsigned around a midpoint of 128.
	scale, offset := 1.0, 0.0
	if depth := int(dec.BitDepth); depth > 1 {
		scale = 1 / float64(int64(1)<<(depth-1))
		if depth == 8 {
			offset = 128
		}
	}

	data := buf.AsFloatBuffer().Data
	mono := make([]float64, len(data)/channels)
	for i := range mono {
		mono[i] = (data[i*channels] - offset) * scale
	}

	return &clip{samples: mono, sampleRate: float64(buf.Format.SampleRate)}, nil
}
