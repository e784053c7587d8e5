// SPDX-License-Identifier: EPL-2.0

//go:build !cgo || headless

package portaudio

import "github.com/mackenziestarr/eccojam/device"

type Device struct{}

func New() *Device { return &Device{} }

func (*Device) Open(device.Params, device.Callback) error { return device.ErrUnavailable }
func (*Device) Start() error                              { return device.ErrNotOpen }
func (*Device) Stop() error                               { return device.ErrNotOpen }
func (*Device) Close() error                              { return nil }
