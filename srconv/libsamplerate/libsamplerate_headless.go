// SPDX-License-Identifier: EPL-2.0

//go:build !cgo || headless

package libsamplerate

import "github.com/mackenziestarr/eccojam/srconv"

// Converter is never constructed in this build.
type Converter struct{}

func New(srconv.Algorithm, int, int) (*Converter, error) {
	return nil, ErrUnavailable
}

func (*Converter) Process(*srconv.Data) error { return ErrUnavailable }
func (*Converter) Reset() error               { return ErrUnavailable }
func (*Converter) Close() error               { return nil }
