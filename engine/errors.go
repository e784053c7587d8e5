// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"

	"github.com/mackenziestarr/eccojam/resample"
)

var (
	// ErrHalted is returned by every cycle after a fatal converter error.
	ErrHalted    = errors.New("engine halted")
	ErrBlockSize = errors.New("output buffer does not match the stream layout")
	ErrClosed    = errors.New("engine closed")
	ErrDevice    = errors.New("audio device")

	// ErrConverter marks rate converter failures, both at construction and
	// during a cycle.
	ErrConverter = resample.ErrConverter
)
