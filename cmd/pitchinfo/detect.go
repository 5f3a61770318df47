package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-pitch/dsp/pitch"
	"github.com/cwbudde/algo-pitch/internal/config"
)

type detectOptions struct {
	frame     int
	hop       int
	window    int
	maxLag    int
	threshold float64
	fft       bool
}

func newDetectCmd(root *rootOptions) *cobra.Command {
	opts := &detectOptions{}

	cmd := &cobra.Command{
		Use:   "detect file.wav",
		Short: "Detect the pitch of each frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			c, err := loadWAV(args[0])
			if err != nil {
				return err
			}
			logger.Info("loaded recording",
				"file", args[0],
				"sample_rate", c.sampleRate,
				"samples", len(c.samples),
				"seconds", c.duration(),
			)

			d, err := pitch.NewDetector(c.sampleRate, cfg.DetectorOptions(logger)...)
			if err != nil {
				return err
			}

			rows, err := detectFrames(d, c.samples, cfg.Frames.Size, cfg.Frames.HopSize(), logger)
			if err != nil {
				return err
			}

			return writeDetections(cmd.OutOrStdout(), rows)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.frame, "frame", 0, "frame length in samples (default from config)")
	f.IntVar(&opts.hop, "hop", 0, "hop between frames in samples (default frame length)")
	f.IntVar(&opts.window, "window", 0, "NSDF analysis window in samples")
	f.IntVar(&opts.maxLag, "max-lag", 0, "largest period considered, in samples")
	f.Float64Var(&opts.threshold, "threshold", 0, "relative peak threshold in (0, 1]")
	f.BoolVar(&opts.fft, "fft", false, "compute the NSDF with an FFT")

	return cmd
}

// apply copies explicitly set flags over the loaded configuration.
func (o *detectOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("frame") {
		cfg.Frames.Size = o.frame
	}
	if f.Changed("hop") {
		cfg.Frames.Hop = o.hop
	}
	if f.Changed("window") {
		cfg.Detector.WindowSize = o.window
	}
	if f.Changed("max-lag") {
		cfg.Detector.MaxLag = o.maxLag
	}
	if f.Changed("threshold") {
		cfg.Detector.Threshold = o.threshold
	}
	if f.Changed("fft") {
		cfg.Detector.FFT = o.fft
	}
}

// detection is one analyzed frame. est is nil when no pitch was found.
type detection struct {
	start float64
	est   *pitch.Estimate
}

func detectFrames(d *pitch.Detector, samples []float64, size, hop int, logger *slog.Logger) ([]detection, error) {
	var rows []detection

	frame := make([]float32, size)
	for start := 0; start+size <= len(samples); start += hop {
		for i := range frame {
			frame[i] = float32(samples[start+i])
		}

		row := detection{start: float64(start) / d.SampleRate()}

		est, err := d.Detect(frame)
		switch {
		case errors.Is(err, pitch.ErrNoPitch):
			logger.Debug("frame undetected", "start", row.start)
		case err != nil:
			return nil, fmt.Errorf("frame at %d: %w", start, err)
		default:
			row.est = &est
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("recording has %d samples, need at least %d", len(samples), size)
	}
	return rows, nil
}

func writeDetections(out io.Writer, rows []detection) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tLAG\tFREQ\tNOTE\tNAME")

	var freqs []float64
	for _, r := range rows {
		if r.est == nil {
			fmt.Fprintf(tw, "%.3f\t-\t-\t-\t-\n", r.start)
			continue
		}
		freqs = append(freqs, r.est.Frequency)
		fmt.Fprintf(tw, "%.3f\t%d\t%.2f\t%.2f\t%s\n",
			r.start, r.est.Lag, r.est.Frequency, r.est.Note, pitch.NoteName(r.est.Note))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if len(freqs) == 0 {
		_, err := fmt.Fprintf(out, "\nno pitch detected in %d frames\n", len(rows))
		return err
	}

	sort.Float64s(freqs)
	median := stat.Quantile(0.5, stat.Empirical, freqs, nil)
	_, err := fmt.Fprintf(out, "\n%d/%d frames voiced, median %.2f Hz (%s), mean %.2f Hz\n",
		len(freqs), len(rows), median, pitch.NoteName(pitch.NoteIndex(median)), stat.Mean(freqs, nil))
	return err
}
