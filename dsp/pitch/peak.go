package pitch

import "math"

// Peak is a periodicity candidate found in one positive NSDF segment.
type Peak struct {
	Lag   int
	Value float64
}

type scanState int

const (
	searchingForRise scanState = iota
	inPositiveSegment
)

func (s scanState) String() string {
	switch s {
	case searchingForRise:
		return "searching-for-rise"
	case inPositiveSegment:
		return "in-positive-segment"
	default:
		return "unknown"
	}
}

// peakScanner walks an NSDF sequence once, left to right, and records at most
// one candidate per positive-going segment.
type peakScanner struct {
	nsdf  []float64
	state scanState
	best  float64
	lag   int
	peaks []Peak
}

func newPeakScanner(nsdf []float64) *peakScanner {
	return &peakScanner{
		nsdf:  nsdf,
		state: searchingForRise,
		best:  math.Inf(-1),
	}
}

// step advances the scanner by one sample. A rising zero crossing is handled
// in the same step as the first sample of the segment it opens.
func (s *peakScanner) step(i int) {
	if s.state == searchingForRise {
		s.searchRise(i)
	}
	if s.state == inPositiveSegment {
		s.trackSegment(i)
	}
}

func (s *peakScanner) searchRise(i int) {
	if s.nsdf[i] > 0 && s.nsdf[i-1] <= 0 {
		s.state = inPositiveSegment
	}
}

func (s *peakScanner) trackSegment(i int) {
	if s.nsdf[i] < 0 {
		s.closeSegment()
		return
	}

	// Three-point sum approximates the parabolic peak position.
	if sum := s.nsdf[i-1] + s.nsdf[i] + s.nsdf[i+1]; sum > s.best {
		s.best = sum
		s.lag = i
	}
}

// closeSegment emits the segment candidate. Lag 0 means nothing was recorded.
func (s *peakScanner) closeSegment() {
	if s.lag != 0 {
		s.peaks = append(s.peaks, Peak{Lag: s.lag, Value: s.nsdf[s.lag]})
	}
	s.state = searchingForRise
	s.best = math.Inf(-1)
	s.lag = 0
}

// Peaks returns one candidate per closed positive segment of nsdf, in lag
// order. The scan covers lags [1, min(len(nsdf)-1, maxLag)); a segment still
// open when the scan ends is not reported.
func Peaks(nsdf []float64, maxLag int) []Peak {
	limit := min(len(nsdf)-1, maxLag)

	s := newPeakScanner(nsdf)
	for i := 1; i < limit; i++ {
		s.step(i)
	}

	return s.peaks
}

// FilterPeaks keeps the peaks whose value is at least threshold times the
// largest candidate value. Survivors keep their order. Applying the filter to
// its own output returns the same peaks.
func FilterPeaks(peaks []Peak, threshold float64) []Peak {
	if len(peaks) == 0 {
		return nil
	}

	top := math.Inf(-1)
	for _, p := range peaks {
		if p.Value > top {
			top = p.Value
		}
	}

	cut := top * threshold
	kept := make([]Peak, 0, len(peaks))
	for _, p := range peaks {
		if p.Value >= cut {
			kept = append(kept, p)
		}
	}

	return kept
}

// PeakLag returns the smallest lag that survives [FilterPeaks], or false when
// the sequence shows no periodicity within maxLag.
func PeakLag(nsdf []float64, maxLag int, threshold float64) (int, bool) {
	kept := FilterPeaks(Peaks(nsdf, maxLag), threshold)
	if len(kept) == 0 {
		return 0, false
	}
	return kept[0].Lag, true
}
