// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package oto

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/mackenziestarr/eccojam/device"
)

// Device is an oto player. Only one may be opened per process, since oto
// allows a single context.
type Device struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	r      *reader
}

func New() *Device { return &Device{} }

func (d *Device) Open(p device.Params, cb device.Callback) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player != nil {
		return device.ErrAlreadyOpen
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   p.SampleRate,
		ChannelCount: p.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   p.Period(),
	})
	if err != nil {
		return fmt.Errorf("oto context: %w", err)
	}
	<-ready

	d.ctx = ctx
	d.r = newReader(p, cb)
	d.player = ctx.NewPlayer(d.r)
	return nil
}

func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return device.ErrNotOpen
	}
	d.r.setRunning(true)
	d.player.Play()
	return nil
}

// Stop switches the reader to silence, which waits out a render in
// progress, then pauses the player.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return device.ErrNotOpen
	}
	d.r.setRunning(false)
	d.player.Pause()
	return d.player.Err()
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return nil
	}
	d.r.setRunning(false)
	err := d.player.Close()
	d.player = nil
	if serr := d.ctx.Suspend(); err == nil {
		err = serr
	}
	return err
}
