// SPDX-License-Identifier: EPL-2.0

// Package libsamplerate provides an srconv.Converter backed by the C
// libsamplerate through github.com/dh1tw/gosamplerate.
//
// It needs cgo and the library at build time. Builds with the headless tag
// or without cgo get a stub whose New returns ErrUnavailable.
package libsamplerate

import "errors"

// ErrUnavailable is returned by New when the binary was built without
// libsamplerate.
var ErrUnavailable = errors.New("libsamplerate backend not compiled in")
