// SPDX-License-Identifier: EPL-2.0

// Package delay is a two-tap echo line over a fixed circular buffer.
//
// One write head and two read heads advance together, one step per sample.
// Each read head trails the write head by a fixed distance, so an impulse
// written now comes back tap1 and tap2 samples later. The buffer is written
// whether or not the echo is mixed in, which keeps the tail coherent when
// the effect is switched on mid-stream.
package delay

import (
	"errors"
	"fmt"
)

// Defaults in samples.
const (
	DefaultCapacity = 51200
	DefaultTap1     = 44100
	DefaultTap2     = 23050
)

var ErrBadTaps = errors.New("tap distances must lie in [0, capacity)")

type options struct {
	channels int
}

type Option func(*options)

// WithChannels rounds both tap distances down to whole frames of n
// interleaved channels so echoes never swap channels.
func WithChannels(n int) Option {
	return func(o *options) { o.channels = n }
}

type Line struct {
	buf   []float32
	write int
	read1 int
	read2 int
	tap1  int
	tap2  int
}

func New(capacity, tap1, tap2 int, opts ...Option) (*Line, error) {
	o := options{channels: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.channels > 1 {
		tap1 -= tap1 % o.channels
		tap2 -= tap2 % o.channels
	}

	if capacity <= 0 || tap1 < 0 || tap2 < 0 || tap1 >= capacity || tap2 >= capacity {
		return nil, fmt.Errorf("%w: capacity %d, taps %d and %d", ErrBadTaps, capacity, tap1, tap2)
	}

	// The write head starts tap1 ahead so the first read head sits at 0.
	return &Line{
		buf:   make([]float32, capacity),
		write: tap1,
		read1: 0,
		read2: (tap1 - tap2 + capacity) % capacity,
		tap1:  tap1,
		tap2:  tap2,
	}, nil
}

// Taps returns the distances of both read heads behind the write head.
func (l *Line) Taps() (int, int) { return l.tap1, l.tap2 }

func (l *Line) Capacity() int { return len(l.buf) }

// Apply writes in through the line into out. in and out may be the same
// slice. Gains are used as given.
func (l *Line) Apply(in, out []float32, g1, g2 float32, enabled bool) {
	n := len(l.buf)
	for i, s := range in {
		l.buf[l.write] = s
		if enabled {
			s += l.buf[l.read1]*g1 + l.buf[l.read2]*g2
		}
		out[i] = s

		l.write++
		if l.write == n {
			l.write = 0
		}
		l.read1++
		if l.read1 == n {
			l.read1 = 0
		}
		l.read2++
		if l.read2 == n {
			l.read2 = 0
		}
	}
}

// Reset silences the buffer without moving the heads.
func (l *Line) Reset() {
	clear(l.buf)
}
