// SPDX-License-Identifier: EPL-2.0

//go:build cgo && !headless

package portaudio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/mackenziestarr/eccojam/device"
)

// Device owns one output-only callback stream and the PortAudio
// initialization that goes with it.
type Device struct {
	mu     sync.Mutex
	stream *portaudio.Stream
}

func New() *Device { return &Device{} }

func (d *Device) Open(p device.Params, cb device.Callback) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream != nil {
		return device.ErrAlreadyOpen
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing PortAudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(
		0,          // input channels
		p.Channels, // output channels
		float64(p.SampleRate),
		p.FramesPerBuffer,
		func(out []float32) { cb(out) },
	)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("opening output stream: %w", err)
	}

	d.stream = stream
	return nil
}

func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return device.ErrNotOpen
	}
	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	return nil
}

// Stop returns after PortAudio has finished the last callback.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return device.ErrNotOpen
	}
	if err := d.stream.Stop(); err != nil {
		return fmt.Errorf("stopping stream: %w", err)
	}
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return nil
	}

	var errs []error
	if err := d.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing stream: %w", err))
	}
	d.stream = nil
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("terminating PortAudio: %w", err))
	}
	return errors.Join(errs...)
}
