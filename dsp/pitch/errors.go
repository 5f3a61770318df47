package pitch

import "errors"

var (
	// ErrNoPitch reports that no periodicity peak survived peak picking.
	ErrNoPitch = errors.New("pitch: no pitch detected")

	ErrShortBuffer       = errors.New("pitch: buffer shorter than analysis window")
	ErrInvalidWindow     = errors.New("pitch: invalid window size")
	ErrInvalidLag        = errors.New("pitch: invalid lag")
	ErrInvalidSampleRate = errors.New("pitch: invalid sample rate")
	ErrInvalidThreshold  = errors.New("pitch: threshold must be in (0, 1]")
)
