// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds synthetic audio sources shared by package tests.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// ErrInjected is returned by sources built with FailAfter.
var ErrInjected = errors.New("audiotest: injected failure")

// Waveform yields the value of channel ch at frame i.
type Waveform func(i, ch int) float32

// Source generates a fixed number of frames from a Waveform. It satisfies
// audio.Source without importing it.
type Source struct {
	sampleRate int
	channels   int
	bitDepth   int
	frames     int
	pos        int
	failAt     int
	closed     bool
	wave       Waveform
}

func NewSource(sampleRate, channels, frames int, wave Waveform) *Source {
	return &Source{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		failAt:     -1,
		wave:       wave,
	}
}

// Silence generates zeros.
func Silence(sampleRate, channels, frames int) *Source {
	return NewSource(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

// Constant generates the same value on every channel.
func Constant(sampleRate, channels, frames int, v float32) *Source {
	return NewSource(sampleRate, channels, frames, func(int, int) float32 { return v })
}

// Sine generates a sine at freq Hz, identical on every channel.
func Sine(sampleRate, channels, frames int, freq float64) *Source {
	return NewSource(sampleRate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	})
}

// Ramp encodes the frame index and channel into the value so tests can tell
// exactly which frame was emitted: frame i, channel ch -> i + ch/10, scaled
// by 1/frames to stay inside [-1,1].
func Ramp(sampleRate, channels, frames int) *Source {
	return NewSource(sampleRate, channels, frames, RampWave(frames))
}

// RampWave is the waveform used by Ramp.
func RampWave(frames int) Waveform {
	return func(i, ch int) float32 {
		return (float32(i) + float32(ch)/10) / float32(frames)
	}
}

// WithBitDepth makes the source report depth through BitDepth.
func (s *Source) WithBitDepth(depth int) *Source {
	s.bitDepth = depth
	return s
}

// FailAfter makes ReadSamples fail with ErrInjected once frame n is reached.
func (s *Source) FailAfter(n int) *Source {
	s.failAt = n
	return s
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 4096 }
func (s *Source) Closed() bool    { return s.closed }

// BitDepth reports the configured depth, or 0 when unset.
func (s *Source) BitDepth() int { return s.bitDepth }

func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Rewind restarts generation from frame zero.
func (s *Source) Rewind() { s.pos = 0 }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.failAt >= 0 && s.pos >= s.failAt {
		return 0, ErrInjected
	}
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	if s.failAt >= 0 {
		n = min(n, s.failAt-s.pos)
	}
	for f := range n {
		for ch := range s.channels {
			dst[f*s.channels+ch] = s.wave(s.pos+f, ch)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}
