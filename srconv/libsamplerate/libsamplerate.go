// SPDX-License-Identifier: EPL-2.0

//go:build cgo && !headless

package libsamplerate

import (
	"fmt"

	"github.com/dh1tw/gosamplerate"

	"github.com/mackenziestarr/eccojam/srconv"
)

var converterTypes = map[srconv.Algorithm]int{
	srconv.SincBest:      gosamplerate.SRC_SINC_BEST_QUALITY,
	srconv.SincMedium:    gosamplerate.SRC_SINC_MEDIUM_QUALITY,
	srconv.SincFastest:   gosamplerate.SRC_SINC_FASTEST,
	srconv.ZeroOrderHold: gosamplerate.SRC_ZERO_ORDER_HOLD,
	srconv.Linear:        gosamplerate.SRC_LINEAR,
}

// Converter drives one libsamplerate state.
//
// The Go binding does not report input_frames_used, so every call is taken
// to consume all offered input. Output beyond OutputFrames is discarded.
type Converter struct {
	src      gosamplerate.Src
	channels int
	maxIn    int
	closed   bool
}

// New creates a libsamplerate state for alg. maxInputFrames bounds the
// input block size accepted by Process.
func New(alg srconv.Algorithm, channels, maxInputFrames int) (*Converter, error) {
	convType, ok := converterTypes[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %d", srconv.ErrUnknownAlgorithm, int(alg))
	}
	if channels < 1 {
		return nil, srconv.ErrBadChannels
	}

	src, err := gosamplerate.New(convType, channels, maxInputFrames*channels)
	if err != nil {
		return nil, fmt.Errorf("libsamplerate init: %w", err)
	}

	return &Converter{
		src:      src,
		channels: channels,
		maxIn:    maxInputFrames,
	}, nil
}

func (c *Converter) Process(d *srconv.Data) error {
	if c.closed {
		return srconv.ErrClosed
	}
	if err := d.Validate(c.channels); err != nil {
		return err
	}
	if d.InputFrames > c.maxIn {
		return fmt.Errorf("%w: %d input frames, limit %d", srconv.ErrBadData, d.InputFrames, c.maxIn)
	}

	out, err := c.src.Process(d.In[:d.InputFrames*c.channels], d.Ratio, d.EndOfInput)
	if err != nil {
		return fmt.Errorf("libsamplerate: %w", err)
	}

	n := copy(d.Out[:d.OutputFrames*c.channels], out)
	d.InputFramesUsed = d.InputFrames
	d.OutputFramesGen = n / c.channels
	return nil
}

func (c *Converter) Reset() error {
	if c.closed {
		return srconv.ErrClosed
	}
	if err := c.src.Reset(); err != nil {
		return fmt.Errorf("libsamplerate reset: %w", err)
	}
	return nil
}

func (c *Converter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := gosamplerate.Delete(c.src); err != nil {
		return fmt.Errorf("libsamplerate delete: %w", err)
	}
	return nil
}
