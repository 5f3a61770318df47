package pitch

import (
	"fmt"
	"math"
)

const (
	// SemitoneLog10 is log10(2^(1/12)), one semitone in log-frequency space.
	SemitoneLog10 = 0.0250858

	// ReferenceFrequency is A0 in Hz.
	ReferenceFrequency = 27.5

	// ReferenceOffset is the note index of A0 when C0 is index 0.
	ReferenceOffset = 9.0
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// FrequencyFromLag converts a period in samples to Hz. It reports false for
// non-positive lags and invalid sample rates.
func FrequencyFromLag(lag int, sampleRate float64) (float64, bool) {
	if lag <= 0 || !validSampleRate(sampleRate) {
		return 0, false
	}
	return sampleRate / float64(lag), true
}

// NoteIndex maps a frequency to a fractional semitone index where 0 is C0 and
// 57 is A4. No rounding is applied; the fraction is the detuning.
// frequency must be positive.
func NoteIndex(frequency float64) float64 {
	return math.Log10(frequency/ReferenceFrequency)/SemitoneLog10 + ReferenceOffset
}

// Note is the nearest equal-tempered note for a fractional note index.
type Note struct {
	Name   string
	Octave int
	// Cents is the deviation from Name/Octave in [-50, 50].
	Cents float64
}

func (n Note) String() string {
	return fmt.Sprintf("%s%d%+.0fc", n.Name, n.Octave, n.Cents)
}

// NoteName resolves a note index produced by [NoteIndex].
func NoteName(index float64) Note {
	nearest := math.Round(index)
	semitone := int(nearest)

	octave := semitone / 12
	class := semitone % 12
	if class < 0 {
		class += 12
		octave--
	}

	return Note{
		Name:   noteNames[class],
		Octave: octave,
		Cents:  (index - nearest) * 100,
	}
}

func validSampleRate(sampleRate float64) bool {
	return sampleRate > 0 && !math.IsInf(sampleRate, 0)
}
