// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/mackenziestarr/eccojam/utils"
)

// Resampler converts a Source to another sample rate using cubic
// interpolation. It is used at load time only; the real-time path uses the
// srconv package. Works on interleaved samples and preserves channel count.
// A one-pole low-pass smooths the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  float64
	step     float64 // source frames advanced per output frame
	channels int

	// window[0] = t-1, window[1] = t0, window[2] = t+1, window[3] = t+2
	window [4][]float32
	filled [4]bool

	pos float64 // fractional position between window[1] and window[2]

	srcBuf []float32
	eof    bool
	primed bool

	lowpass     bool
	filterAlpha float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     float64(dstRate),
		step:        step,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		lowpass:     step > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame reads one source frame into dst. ok is false once the source is
// exhausted.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.srcBuf)
	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		return false, fmt.Errorf("%w", err)
	}
	if n < r.channels {
		r.eof = true
		return false, nil
	}

	copy(dst, r.srcBuf)
	if r.lowpass {
		for c := range r.channels {
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}
	return true, nil
}

// advance shifts the window left by one frame and pulls the next one.
func (r *Resampler) advance() error {
	last := r.window[0]
	copy(r.window[:3], r.window[1:])
	copy(r.filled[:3], r.filled[1:])
	r.window[3] = last

	ok, err := r.readFrame(r.window[3])
	if err != nil {
		return err
	}
	r.filled[3] = ok
	if !ok {
		copy(r.window[3], r.window[2])
	}
	return nil
}

func (r *Resampler) prime() error {
	r.primed = true

	for i := 1; i < 4; i++ {
		ok, err := r.readFrame(r.window[i])
		if err != nil {
			return err
		}
		if !ok {
			// Duplicate the last valid frame into the remaining slots
			for j := i; j < 4; j++ {
				copy(r.window[j], r.window[j-1])
			}
			break
		}
		r.filled[i] = true
		if i == 1 && r.lowpass {
			copy(r.filterState, r.window[1])
		}
	}

	// t-1 mirrors t0 at the very start
	copy(r.window[0], r.window[1])
	r.filled[0] = r.filled[1]
	return nil
}

// ReadSamples produces samples at the destination rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.filled[1] || !r.filled[2] {
			if written == 0 && !r.filled[1] {
				return 0, io.EOF
			}
			if !r.filled[2] {
				return written * r.channels, io.EOF
			}
		}

		alpha := float32(r.pos)
		base := written * r.channels
		for c := range r.channels {
			dst[base+c] = utils.CubicInterpolate(
				r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], alpha)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
