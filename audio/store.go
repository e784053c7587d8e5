// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// DefaultBitDepth is assumed for sources that do not implement BitDepther.
const DefaultBitDepth = 16

// Store is a fully materialized, immutable buffer of interleaved samples.
// It is built once by Load and shared read-only with the audio thread.
type Store struct {
	samples    []float32
	frames     int
	channels   int
	sampleRate int
	bitDepth   int
}

// NewStore wraps already decoded interleaved samples. len(samples) must be a
// non-zero multiple of channels.
func NewStore(samples []float32, sampleRate, channels, bitDepth int) (*Store, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrBadFormat
	}
	if len(samples)%channels != 0 {
		return nil, ErrInvalidDstSize
	}
	if len(samples) == 0 {
		return nil, ErrEmptySource
	}
	if bitDepth <= 0 {
		bitDepth = DefaultBitDepth
	}

	return &Store{
		samples:    samples,
		frames:     len(samples) / channels,
		channels:   channels,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
	}, nil
}

type loadOptions struct {
	sampleRate int
	mono       bool
	maxFrames  int
}

// LoadOption adjusts how Load materializes a source.
type LoadOption func(*loadOptions)

// WithSampleRate converts the source to rate while loading. Zero keeps the
// source rate.
func WithSampleRate(rate int) LoadOption {
	return func(o *loadOptions) { o.sampleRate = rate }
}

// WithMono downmixes multi-channel sources while loading.
func WithMono() LoadOption {
	return func(o *loadOptions) { o.mono = true }
}

// WithMaxFrames fails the load with ErrTooLarge once more than n frames have
// been read. Zero means no limit.
func WithMaxFrames(n int) LoadOption {
	return func(o *loadOptions) { o.maxFrames = n }
}

// Load drains src into memory and returns the resulting Store. The source is
// not closed.
func Load(src Source, opts ...LoadOption) (*Store, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		return nil, ErrBadFormat
	}

	bitDepth := DefaultBitDepth
	if bd, ok := src.(BitDepther); ok && bd.BitDepth() > 0 {
		bitDepth = bd.BitDepth()
	}

	// Load-time conversion pipeline: resample -> mono
	pipeline := src
	if o.sampleRate > 0 && o.sampleRate != src.SampleRate() {
		pipeline = NewResampler(pipeline, o.sampleRate)
	}
	if o.mono && pipeline.Channels() > 1 {
		pipeline = NewMonoMixer(pipeline)
	}

	channels := pipeline.Channels()
	bufSize := pipeline.BufSize()
	if bufSize <= 0 {
		bufSize = 4096
	}
	bufSize -= bufSize % channels
	if bufSize == 0 {
		bufSize = channels
	}

	buf := make([]float32, bufSize)
	samples := make([]float32, 0, pipeline.SampleRate()*channels)

	for {
		n, err := pipeline.ReadSamples(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
			if o.maxFrames > 0 && len(samples)/channels > o.maxFrames {
				return nil, ErrTooLarge
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
		if n == 0 {
			// Sources that report neither progress nor EOF are treated as done.
			break
		}
	}

	// Drop a trailing partial frame
	samples = samples[:len(samples)-len(samples)%channels]

	return NewStore(samples, pipeline.SampleRate(), channels, bitDepth)
}

// Frames returns the number of frames held.
func (s *Store) Frames() int { return s.frames }

// Channels returns the interleaving width.
func (s *Store) Channels() int { return s.channels }

// SampleRate returns the store's sample rate in Hz.
func (s *Store) SampleRate() int { return s.sampleRate }

// BitDepth returns the sample width of the decoded container.
func (s *Store) BitDepth() int { return s.bitDepth }

// Len returns the number of interleaved samples (frames * channels).
func (s *Store) Len() int { return len(s.samples) }

// Samples exposes the interleaved data. Callers must not modify it.
func (s *Store) Samples() []float32 { return s.samples }

// Duration is the playback length at the native rate.
func (s *Store) Duration() time.Duration {
	return time.Duration(float64(s.frames) / float64(s.sampleRate) * float64(time.Second))
}

// Frame copies frame i into dst, which must hold Channels() values.
func (s *Store) Frame(i int, dst []float32) {
	base := i * s.channels
	copy(dst[:s.channels], s.samples[base:base+s.channels])
}

// Release drops the sample buffer. The store must not be read afterwards.
func (s *Store) Release() {
	s.samples = nil
}
