// Command pitchinfo reports the pitch of WAV recordings.
//
// Usage:
//
//	pitchinfo detect [flags] file.wav
//	pitchinfo goertzel [flags] file.wav
//
// detect cuts the recording into frames and runs the McLeod pitch detector on
// each one. goertzel prints per-block magnitudes for one or more target
// frequencies.
//
// Examples:
//
//	pitchinfo detect guitar-e2.wav
//	pitchinfo detect --frame 4096 --hop 1024 --fft voice.wav
//	pitchinfo goertzel --freq 697 --freq 1209 --block 205 dtmf.wav
//	pitchinfo --config pitchinfo.yaml detect take1.wav
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
