// SPDX-License-Identifier: EPL-2.0

// Package srconv is the streaming sample-rate conversion primitive used by
// the real-time path. Its call shape follows libsamplerate's SRC_DATA: the
// caller offers a block of input, asks for up to a number of output frames,
// and learns how many of each were used and generated.
//
// New returns the pure Go converter. The libsamplerate subpackage wraps the
// C library behind the same Converter interface.
package srconv

import (
	"errors"
	"fmt"
)

// Ratio limits accepted by every converter, as in libsamplerate.
const (
	MinRatio = 1.0 / 256
	MaxRatio = 256.0
)

var (
	ErrUnknownAlgorithm = errors.New("unknown conversion algorithm")
	ErrBadChannels      = errors.New("channel count must be positive")
	ErrBadRatio         = errors.New("conversion ratio out of range")
	ErrBadData          = errors.New("buffer shorter than the declared frame count")
	ErrClosed           = errors.New("converter is closed")
)

// Data describes one Process call. Frame counts are per channel; In and Out
// hold interleaved samples.
type Data struct {
	In           []float32
	InputFrames  int
	Out          []float32
	OutputFrames int

	// Ratio is output rate over input rate.
	Ratio float64

	// EndOfInput flushes the converter's internal delay with silence.
	EndOfInput bool

	InputFramesUsed int
	OutputFramesGen int
}

// Validate checks d against a converter of the given channel count.
func (d *Data) Validate(channels int) error {
	if d.Ratio < MinRatio || d.Ratio > MaxRatio {
		return fmt.Errorf("%w: %v", ErrBadRatio, d.Ratio)
	}
	if d.InputFrames < 0 || d.OutputFrames < 0 ||
		len(d.In) < d.InputFrames*channels || len(d.Out) < d.OutputFrames*channels {
		return ErrBadData
	}
	return nil
}

// Converter is a stateful rate converter for one interleaved stream.
// A Converter is not safe for concurrent use.
type Converter interface {
	// Process converts d.In into d.Out and sets InputFramesUsed and
	// OutputFramesGen. Input frames beyond InputFramesUsed were not consumed.
	Process(d *Data) error
	// Reset drops all history, as if the converter was just created.
	Reset() error
	Close() error
}

// New creates the pure Go converter for alg.
func New(alg Algorithm, channels int) (Converter, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(alg))
	}
	if channels < 1 {
		return nil, ErrBadChannels
	}

	return newNative(alg, channels), nil
}
