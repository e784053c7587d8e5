// SPDX-License-Identifier: EPL-2.0

// Package device defines the audio output substrate the engine runs on.
//
// A Device calls the Callback once per period with a buffer of exactly
// FramesPerBuffer*Channels interleaved samples to fill. Stop returns only
// after any in-flight callback has finished.
//
// Manual and Clocked are pure Go drivers for tests and headless hosts. Real
// hardware backends live in the portaudio and oto subpackages.
package device

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBadParams   = errors.New("sample rate, channels and frames per buffer must be positive")
	ErrNotOpen     = errors.New("device not open")
	ErrAlreadyOpen = errors.New("device already open")
	ErrNotRunning  = errors.New("device not running")
	ErrUnavailable = errors.New("device backend not compiled in")
)

// Params fixes the stream layout for the lifetime of an open device.
type Params struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

func (p Params) Validate() error {
	if p.SampleRate <= 0 || p.Channels <= 0 || p.FramesPerBuffer <= 0 {
		return fmt.Errorf("%w: %+v", ErrBadParams, p)
	}
	return nil
}

// BlockSamples is the length of the buffer passed to the callback.
func (p Params) BlockSamples() int { return p.FramesPerBuffer * p.Channels }

// Period is the wall-clock time one block lasts.
func (p Params) Period() time.Duration {
	return time.Duration(float64(p.FramesPerBuffer) / float64(p.SampleRate) * float64(time.Second))
}

// Callback fills out. It runs on the device's real-time goroutine and must
// not block.
type Callback func(out []float32)

type Device interface {
	Open(p Params, cb Callback) error
	Start() error
	Stop() error
	Close() error
}
