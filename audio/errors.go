// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("no decoder registered for format")
	ErrEmptySource    = errors.New("source contains no audio frames")
	ErrBadFormat      = errors.New("source reports invalid sample rate or channel count")
	ErrTooLarge       = errors.New("source exceeds the configured frame limit")
)
