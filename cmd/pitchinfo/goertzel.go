package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-pitch/dsp/spectrum"
)

type goertzelOptions struct {
	freqs []float64
	block int
	all   bool
}

func newGoertzelCmd(root *rootOptions) *cobra.Command {
	opts := &goertzelOptions{}

	cmd := &cobra.Command{
		Use:   "goertzel file.wav",
		Short: "Print per-block magnitudes of target frequencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}

			f := cmd.Flags()
			if f.Changed("freq") {
				cfg.Goertzel.Frequencies = opts.freqs
			}
			if f.Changed("block") {
				cfg.Goertzel.BlockSize = opts.block
			}
			if f.Changed("all") {
				cfg.Goertzel.AllBlocks = opts.all
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			c, err := loadWAV(args[0])
			if err != nil {
				return err
			}

			analyze := spectrum.BlockMagnitudes
			if cfg.Goertzel.AllBlocks {
				analyze = spectrum.BlockMagnitudesAll
			}

			columns := make([][]float64, len(cfg.Goertzel.Frequencies))
			for i, freq := range cfg.Goertzel.Frequencies {
				mags, err := analyze(c.samples, freq, cfg.Goertzel.BlockSize, c.sampleRate)
				if err != nil {
					return fmt.Errorf("%.2f Hz: %w", freq, err)
				}
				logger.Debug("goertzel", "frequency", freq, "blocks", len(mags))
				columns[i] = mags
			}

			return writeMagnitudes(cmd.OutOrStdout(), cfg.Goertzel.Frequencies, columns,
				float64(cfg.Goertzel.BlockSize)/c.sampleRate)
		},
	}

	f := cmd.Flags()
	f.Float64SliceVar(&opts.freqs, "freq", nil, "target frequency in Hz (repeatable)")
	f.IntVar(&opts.block, "block", 0, "block size in samples")
	f.BoolVar(&opts.all, "all", false, "analyze every complete block instead of the first half second")

	return cmd
}

func writeMagnitudes(out io.Writer, freqs []float64, columns [][]float64, blockSeconds float64) error {
	header := []string{"TIME"}
	for _, f := range freqs {
		header = append(header, fmt.Sprintf("%.0fHz", f))
	}
	if _, err := fmt.Fprintln(out, strings.Join(header, "\t")); err != nil {
		return err
	}

	blocks := 0
	if len(columns) > 0 {
		blocks = len(columns[0])
	}

	for b := range blocks {
		row := []string{fmt.Sprintf("%.3f", float64(b)*blockSeconds)}
		for _, col := range columns {
			row = append(row, fmt.Sprintf("%.4f", col[b]))
		}
		if _, err := fmt.Fprintln(out, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}
